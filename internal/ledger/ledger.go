package ledger

import (
	"sync"
	"time"

	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

const dayFormat = "2006-01-02"

// Clock abstracts time so tests can drive day rollover.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DayCounts reports one calendar day's per-operation counts.
type DayCounts struct {
	Date   string                     `json:"date"`
	Counts map[models.Operation]int64 `json:"counts"`
}

// UsageLedger tracks invocation counts per operation per local
// calendar day. It is the process's only shared mutable state: one
// instance lives for the whole process, starts empty, and is lost on
// restart. Day rollover is lazy; the first record or read after
// midnight opens a fresh bucket.
type UsageLedger struct {
	mu      sync.Mutex
	clock   Clock
	buckets map[string]map[models.Operation]int64
}

// New creates an empty ledger on the given clock. A nil clock falls
// back to the system clock.
func New(clock Clock) *UsageLedger {
	if clock == nil {
		clock = SystemClock{}
	}
	return &UsageLedger{
		clock:   clock,
		buckets: make(map[string]map[models.Operation]int64),
	}
}

// RecordUsage increments today's counter for the operation. Safe under
// arbitrary concurrent callers and never fails.
func (l *UsageLedger) RecordUsage(op models.Operation) {
	day := l.clock.Now().Format(dayFormat)

	l.mu.Lock()
	defer l.mu.Unlock()
	bucket, ok := l.buckets[day]
	if !ok {
		bucket = make(map[models.Operation]int64)
		l.buckets[day] = bucket
	}
	bucket[op]++
}

// CountToday returns today's count for the operation.
func (l *UsageLedger) CountToday(op models.Operation) int64 {
	day := l.clock.Now().Format(dayFormat)

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buckets[day][op]
}

// CountTodayTotal returns today's count summed across all operations.
func (l *UsageLedger) CountTodayTotal() int64 {
	day := l.clock.Now().Format(dayFormat)

	l.mu.Lock()
	defer l.mu.Unlock()
	var total int64
	for _, count := range l.buckets[day] {
		total += count
	}
	return total
}

// CountsToday returns a copy of today's per-operation counts with
// every operation present, zero-filled.
func (l *UsageLedger) CountsToday() map[models.Operation]int64 {
	day := l.clock.Now().Format(dayFormat)

	l.mu.Lock()
	defer l.mu.Unlock()
	return copyBucket(l.buckets[day])
}

// CountsForRange reports the last `days` calendar days oldest-first,
// today included. Days below 1 are clamped to 1. Absent days report
// zero counts.
func (l *UsageLedger) CountsForRange(days int) []DayCounts {
	if days < 1 {
		days = 1
	}
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]DayCounts, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(dayFormat)
		out = append(out, DayCounts{
			Date:   day,
			Counts: copyBucket(l.buckets[day]),
		})
	}
	return out
}

func copyBucket(bucket map[models.Operation]int64) map[models.Operation]int64 {
	counts := make(map[models.Operation]int64, len(models.Operations))
	for _, op := range models.Operations {
		counts[op] = bucket[op]
	}
	return counts
}
