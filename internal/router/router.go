package router

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/captain-yun7/facefalcon-sub001/internal/errors"
	"github.com/captain-yun7/facefalcon-sub001/internal/ledger"
	"github.com/captain-yun7/facefalcon-sub001/internal/logger"
	"github.com/captain-yun7/facefalcon-sub001/internal/metrics"
	"github.com/captain-yun7/facefalcon-sub001/internal/observer"
	"github.com/captain-yun7/facefalcon-sub001/internal/pricing"
	"github.com/captain-yun7/facefalcon-sub001/internal/provider"
	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// HybridRouter dispatches each operation to one of the two backends.
// Per request it runs SELECT (policy over the usage snapshot), INVOKE,
// a single FALLBACK on provider outage, then RECORD via the event
// publisher, which the response path does not wait on.
type HybridRouter struct {
	registry  *provider.Registry
	policy    Policy
	ledger    *ledger.UsageLedger
	prices    pricing.PriceTable
	publisher *observer.EventPublisher
}

// New wires a router over its collaborators.
func New(registry *provider.Registry, policy Policy, l *ledger.UsageLedger, prices pricing.PriceTable, publisher *observer.EventPublisher) *HybridRouter {
	return &HybridRouter{
		registry:  registry,
		policy:    policy,
		ledger:    l,
		prices:    prices,
		publisher: publisher,
	}
}

// DetectResult carries detected faces plus routing observability
// fields callers may ignore.
type DetectResult struct {
	Faces    []models.Face     `json:"faces"`
	Provider models.ProviderID `json:"provider"`
	Fallback bool              `json:"fallback,omitempty"`
}

// CompareResult wraps a comparison with routing observability fields.
type CompareResult struct {
	models.FaceComparisonResult
	Provider models.ProviderID `json:"provider"`
	Fallback bool              `json:"fallback,omitempty"`
}

// FindSimilarResult wraps a similarity ranking with routing
// observability fields.
type FindSimilarResult struct {
	models.FindSimilarResponse
	Provider models.ProviderID `json:"provider"`
	Fallback bool              `json:"fallback,omitempty"`
}

// DetectFaces routes a detect request.
func (r *HybridRouter) DetectFaces(ctx context.Context, image string) (*DetectResult, error) {
	faces, served, fellBack, err := invoke(ctx, r, models.OperationDetectFaces,
		func(ctx context.Context, p provider.FaceProvider) ([]models.Face, error) {
			return p.DetectFaces(ctx, image)
		})
	if err != nil {
		return nil, err
	}
	return &DetectResult{Faces: faces, Provider: served, Fallback: fellBack}, nil
}

// CompareFaces routes a compare request.
func (r *HybridRouter) CompareFaces(ctx context.Context, sourceImage, targetImage string, similarityThreshold float64) (*CompareResult, error) {
	result, served, fellBack, err := invoke(ctx, r, models.OperationCompareFaces,
		func(ctx context.Context, p provider.FaceProvider) (*models.FaceComparisonResult, error) {
			return p.CompareFaces(ctx, sourceImage, targetImage, similarityThreshold)
		})
	if err != nil {
		return nil, err
	}
	return &CompareResult{FaceComparisonResult: *result, Provider: served, Fallback: fellBack}, nil
}

// FindSimilarFaces routes a find-similar request.
func (r *HybridRouter) FindSimilarFaces(ctx context.Context, sourceImage string, candidateImages []string) (*FindSimilarResult, error) {
	result, served, fellBack, err := invoke(ctx, r, models.OperationFindSimilarFaces,
		func(ctx context.Context, p provider.FaceProvider) (*models.FindSimilarResponse, error) {
			return p.FindSimilarFaces(ctx, sourceImage, candidateImages)
		})
	if err != nil {
		return nil, err
	}
	return &FindSimilarResult{FindSimilarResponse: *result, Provider: served, Fallback: fellBack}, nil
}

// SelectProvider exposes the SELECT stage decision for the current
// usage snapshot, used by the monitoring surface.
func (r *HybridRouter) SelectProvider(op models.Operation) Decision {
	spend := r.prices.EstimateTotal(r.ledger.CountsToday())
	return r.policy.Select(op, spend)
}

// invoke runs the per-request state machine for one operation.
func invoke[T any](ctx context.Context, r *HybridRouter, op models.Operation, call func(context.Context, provider.FaceProvider) (T, error)) (result T, served models.ProviderID, fellBack bool, err error) {
	started := time.Now()

	// SELECT
	decision := r.SelectProvider(op)
	primary := r.registry.Get(decision.Provider)
	if primary == nil {
		err = apperrors.NewInternalError("no adapter registered for provider "+string(decision.Provider), nil)
		return
	}
	if decision.Reason == ReasonBudgetExceeded {
		logger.WithFields(logrus.Fields{
			"operation": op,
			"provider":  decision.Provider,
		}).Warn("Daily budget reached, preferring self-hosted backend")
	}

	// INVOKE
	served = primary.Name()
	result, err = call(ctx, primary)

	// FALLBACK: exactly one secondary attempt, only on provider
	// outage. Input and schema errors propagate untouched.
	if err != nil && apperrors.IsProviderUnavailable(err) {
		if secondary := r.registry.Other(primary.Name()); secondary != nil {
			metrics.FallbacksTotal.WithLabelValues(string(op), string(primary.Name()), string(secondary.Name())).Inc()
			r.publisher.NotifyObservers(context.Background(), observer.OperationEvent{
				EventType: observer.FallbackInvoked,
				Timestamp: time.Now(),
				Operation: op,
				Provider:  secondary.Name(),
				Fallback:  true,
			})
			served = secondary.Name()
			fellBack = true
			result, err = call(ctx, secondary)
		}
	}

	// RECORD: fire-and-forget on a detached context, so the increment
	// still lands when the inbound caller has already disconnected
	// (the backend spend happened regardless).
	event := observer.OperationEvent{
		Timestamp:      time.Now(),
		Operation:      op,
		Provider:       served,
		Fallback:       fellBack,
		ProcessingTime: time.Since(started),
	}
	if err != nil {
		event.EventType = observer.OperationFailed
		event.ErrorMessage = err.Error()
	} else {
		event.EventType = observer.OperationSucceeded
	}
	r.publisher.NotifyObservers(context.Background(), event)

	return
}
