package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/captain-yun7/facefalcon-sub001/internal/ledger"
	"github.com/captain-yun7/facefalcon-sub001/internal/pricing"
	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeRemote struct {
	costs      []DayCost
	metricsErr error
}

func (f *fakeRemote) GetRekognitionCosts(ctx context.Context, days int) ([]DayCost, error) {
	return f.costs, nil
}

func (f *fakeRemote) GetRekognitionMetrics(ctx context.Context, metricName string, hours int) ([]MetricPoint, error) {
	return nil, f.metricsErr
}

func (f *fakeRemote) ListRekognitionMetrics(ctx context.Context) ([]string, error) {
	return []string{"SuccessfulRequestCount"}, nil
}

func TestEstimateRealTimeCost(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	facade := New(ledger.New(clock), pricing.DefaultPriceTable(), clock, nil)

	if cost := facade.EstimateRealTimeCost(models.OperationDetectFaces, 0); !cost.IsZero() {
		t.Errorf("Expected zero cost for zero calls, got %s", cost)
	}

	one := facade.EstimateRealTimeCost(models.OperationDetectFaces, 1)
	thousand := facade.EstimateRealTimeCost(models.OperationDetectFaces, 1000)
	if !thousand.Equal(one.Mul(decimal.NewFromInt(1000))) {
		t.Errorf("Expected linear scaling: 1000x %s != %s", one, thousand)
	}
}

func TestGetUsageToday(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	l := ledger.New(clock)
	for i := 0; i < 3; i++ {
		l.RecordUsage(models.OperationDetectFaces)
	}
	l.RecordUsage(models.OperationCompareFaces)

	facade := New(l, pricing.DefaultPriceTable(), clock, nil)
	usage := facade.GetUsageToday()

	if usage.TotalCalls != 4 {
		t.Errorf("Expected 4 total calls, got %d", usage.TotalCalls)
	}
	if usage.Counts[models.OperationDetectFaces] != 3 {
		t.Errorf("Expected 3 detect calls, got %d", usage.Counts[models.OperationDetectFaces])
	}
	// 4 calls at 0.001 each
	if usage.EstimatedCostUSD != "0.00" {
		t.Errorf("Expected rounded cost 0.00, got %s", usage.EstimatedCostUSD)
	}
}

func TestGetCostSummary_ProjectsMonthly(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	l := ledger.New(clock)

	// 7 days of uniform traffic: 1000 detect calls per day at $0.001
	// each, so $1.00/day
	for day := 0; day < 7; day++ {
		clock.set(time.Date(2025, 6, 4+day, 8, 0, 0, 0, time.UTC))
		for i := 0; i < 1000; i++ {
			l.RecordUsage(models.OperationDetectFaces)
		}
	}
	// Query on June 10: 30-day month, 20 days remaining
	clock.set(time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC))

	facade := New(l, pricing.DefaultPriceTable(), clock, nil)
	summary := facade.GetCostSummary()

	if summary.Today != "1.00" {
		t.Errorf("Expected today 1.00, got %s", summary.Today)
	}
	if summary.Last7Days != "7.00" {
		t.Errorf("Expected last 7 days 7.00, got %s", summary.Last7Days)
	}
	if summary.Last30Days != "7.00" {
		t.Errorf("Expected last 30 days 7.00, got %s", summary.Last30Days)
	}
	// monthToDate 7.00 + (7.00/7) * 20 remaining days = 27.00
	if summary.ProjectedMonthly != "27.00" {
		t.Errorf("Expected projected monthly 27.00, got %s", summary.ProjectedMonthly)
	}
}

func TestGetCostSummary_EmptyLedger(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	facade := New(ledger.New(clock), pricing.DefaultPriceTable(), clock, nil)

	summary := facade.GetCostSummary()
	if summary.Today != "0.00" || summary.ProjectedMonthly != "0.00" {
		t.Errorf("Expected zero summary, got %+v", summary)
	}
}

func TestRemotePassThrough_NilRemote(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	facade := New(ledger.New(clock), pricing.DefaultPriceTable(), clock, nil)
	ctx := context.Background()

	if _, err := facade.GetRekognitionCosts(ctx, 7); !errors.Is(err, ErrRemoteNotConfigured) {
		t.Errorf("Expected ErrRemoteNotConfigured, got %v", err)
	}
	if _, err := facade.GetRekognitionMetrics(ctx, "SuccessfulRequestCount", 24); !errors.Is(err, ErrRemoteNotConfigured) {
		t.Errorf("Expected ErrRemoteNotConfigured, got %v", err)
	}
	if _, err := facade.ListRekognitionMetrics(ctx); !errors.Is(err, ErrRemoteNotConfigured) {
		t.Errorf("Expected ErrRemoteNotConfigured, got %v", err)
	}
}

func TestRemoteFailureDoesNotBlockLocal(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	l := ledger.New(clock)
	l.RecordUsage(models.OperationCompareFaces)

	remote := &fakeRemote{metricsErr: errors.New("cloudwatch down")}
	facade := New(l, pricing.DefaultPriceTable(), clock, remote)

	if _, err := facade.GetRekognitionMetrics(context.Background(), "SuccessfulRequestCount", 24); err == nil {
		t.Error("Expected remote error to surface")
	}

	usage := facade.GetUsageToday()
	if usage.TotalCalls != 1 {
		t.Errorf("Expected local usage unaffected by remote failure, got %d calls", usage.TotalCalls)
	}
}
