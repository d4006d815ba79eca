package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/captain-yun7/facefalcon-sub001/internal/ledger"
	"github.com/captain-yun7/facefalcon-sub001/internal/metrics"
	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// OperationEvent describes one terminal engine operation outcome.
type OperationEvent struct {
	EventType      EventType         `json:"event_type"`
	Timestamp      time.Time         `json:"timestamp"`
	Operation      models.Operation  `json:"operation"`
	Provider       models.ProviderID `json:"provider"`
	Fallback       bool              `json:"fallback"`
	ProcessingTime time.Duration     `json:"processing_time"`
	ErrorMessage   string            `json:"error_message,omitempty"`
}

// EventType represents the type of operation event
type EventType string

const (
	// OperationSucceeded when an operation returns a normalized result
	OperationSucceeded EventType = "operation_succeeded"
	// OperationFailed when both providers failed or the request was bad
	OperationFailed EventType = "operation_failed"
	// FallbackInvoked when the secondary provider had to serve
	FallbackInvoked EventType = "fallback_invoked"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event OperationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	NotifyObservers(ctx context.Context, event OperationEvent)
}

// UsageObserver records successful operations in the usage ledger.
// This is the RECORD stage: the response path never waits on it and a
// failure here can never unwind a served request. Only successes are
// counted, so failed-but-billed backend calls are undercounted; the
// Cost Explorer reconciliation in the monitoring facade exists to
// surface that drift.
type UsageObserver struct {
	ledger *ledger.UsageLedger
}

// NewUsageObserver creates a usage-recording observer over the ledger
func NewUsageObserver(l *ledger.UsageLedger) Observer {
	return &UsageObserver{ledger: l}
}

// OnEvent increments the ledger for successful operations
func (o *UsageObserver) OnEvent(ctx context.Context, event OperationEvent) {
	if event.EventType != OperationSucceeded {
		return
	}
	o.ledger.RecordUsage(event.Operation)
	metrics.UsageRecordedTotal.WithLabelValues(string(event.Operation), string(event.Provider)).Inc()
}

// GetObserverName returns the observer name
func (o *UsageObserver) GetObserverName() string {
	return "usage_observer"
}

// LoggingObserver logs operation events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles operation events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event OperationEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"operation":          event.Operation,
		"provider":           event.Provider,
		"fallback":           event.Fallback,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	switch event.EventType {
	case OperationSucceeded:
		o.logger.WithFields(fields).Info("Face operation completed")
	case OperationFailed:
		o.logger.WithFields(fields).Error("Face operation failed")
	case FallbackInvoked:
		o.logger.WithFields(fields).Warn("Fell back to secondary provider")
	default:
		o.logger.WithFields(fields).Info("Operation event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver feeds operation events into prometheus collectors
type MetricsObserver struct{}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() Observer {
	return &MetricsObserver{}
}

// OnEvent handles operation events by updating collectors
func (o *MetricsObserver) OnEvent(ctx context.Context, event OperationEvent) {
	op := string(event.Operation)
	provider := string(event.Provider)

	switch event.EventType {
	case OperationSucceeded:
		metrics.OperationsTotal.WithLabelValues(op, provider, "success").Inc()
		metrics.OperationDuration.WithLabelValues(op, provider).Observe(event.ProcessingTime.Seconds())
	case OperationFailed:
		metrics.OperationsTotal.WithLabelValues(op, provider, "error").Inc()
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	pending   sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// NotifyObservers dispatches the event to every observer on its own
// goroutine. Observer panics are captured and logged so a recording
// failure never reaches the request path.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event OperationEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		p.pending.Add(1)
		go func(obs Observer) {
			defer p.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Flush waits for in-flight notifications, used by tests and shutdown.
func (p *EventPublisher) Flush() {
	p.pending.Wait()
}
