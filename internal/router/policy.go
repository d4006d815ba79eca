package router

import (
	"github.com/shopspring/decimal"

	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// Policy is the injected routing configuration the SELECT stage
// evaluates. Evaluation is pure: the decision is a function of the
// policy and the usage snapshot passed in, nothing else.
type Policy struct {
	DefaultProvider models.ProviderID
	DailyBudgetUSD  decimal.Decimal
	Overrides       map[models.Operation]models.ProviderID
}

// SelectReason explains a routing decision for observability.
type SelectReason string

const (
	// ReasonOverride means an explicit per-operation override applied
	ReasonOverride SelectReason = "operation_override"
	// ReasonBudgetExceeded means today's estimated spend reached the
	// daily budget, preferring the self-hosted backend
	ReasonBudgetExceeded SelectReason = "budget_exceeded"
	// ReasonDefault means the configured default provider applied
	ReasonDefault SelectReason = "default"
)

// Decision is the outcome of the SELECT stage.
type Decision struct {
	Provider models.ProviderID
	Reason   SelectReason
}

// Select picks the provider for an operation. Precedence: explicit
// operation override, then the soft budget check, then the configured
// default. The budget is advisory; a stale spend snapshot may let a
// request overshoot slightly, which is accepted.
func (p Policy) Select(op models.Operation, estimatedSpendToday decimal.Decimal) Decision {
	if override, ok := p.Overrides[op]; ok {
		return Decision{Provider: override, Reason: ReasonOverride}
	}
	if p.DailyBudgetUSD.IsPositive() && estimatedSpendToday.GreaterThanOrEqual(p.DailyBudgetUSD) {
		return Decision{Provider: models.ProviderSelfHosted, Reason: ReasonBudgetExceeded}
	}
	return Decision{Provider: p.DefaultProvider, Reason: ReasonDefault}
}
