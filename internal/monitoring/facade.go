package monitoring

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/captain-yun7/facefalcon-sub001/internal/ledger"
	"github.com/captain-yun7/facefalcon-sub001/internal/pricing"
	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// Facade is the read-only monitoring surface the operational dashboard
// polls. Its local numbers come from the usage ledger and the static
// price table and never touch the network; the Rekognition
// pass-through queries are ground-truth reconciliation and their
// failures never block the local numbers.
type Facade struct {
	ledger *ledger.UsageLedger
	prices pricing.PriceTable
	clock  ledger.Clock
	remote RekognitionMonitor
}

// New builds the facade. remote may be nil when AWS reconciliation is
// not configured; the local surface still works.
func New(l *ledger.UsageLedger, prices pricing.PriceTable, clock ledger.Clock, remote RekognitionMonitor) *Facade {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	return &Facade{ledger: l, prices: prices, clock: clock, remote: remote}
}

// EstimateRealTimeCost converts a call count into estimated USD spend.
// Pure and remote-free so dashboards can poll it cheaply and often.
func (f *Facade) EstimateRealTimeCost(op models.Operation, callCount int64) decimal.Decimal {
	return f.prices.EstimateCost(op, callCount)
}

// UsageToday reports today's per-operation counts with their estimated
// cost, the dashboard's headline numbers.
type UsageToday struct {
	Counts           map[models.Operation]int64 `json:"counts"`
	TotalCalls       int64                      `json:"totalCalls"`
	EstimatedCostUSD string                     `json:"estimatedCostUsd"`
}

// GetUsageToday snapshots today's ledger state.
func (f *Facade) GetUsageToday() UsageToday {
	counts := f.ledger.CountsToday()
	var total int64
	for _, count := range counts {
		total += count
	}
	return UsageToday{
		Counts:           counts,
		TotalCalls:       total,
		EstimatedCostUSD: f.prices.EstimateTotal(counts).StringFixed(2),
	}
}

// CostSummary aggregates estimated spend over standard windows.
type CostSummary struct {
	Today            string `json:"today"`
	Last7Days        string `json:"last7Days"`
	Last30Days       string `json:"last30Days"`
	ProjectedMonthly string `json:"projectedMonthly"`
}

// GetCostSummary composes ledger reads with the price table.
// ProjectedMonthly extrapolates the trailing 7-day average over the
// remaining days of the month on top of month-to-date actuals.
func (f *Facade) GetCostSummary() CostSummary {
	today := f.prices.EstimateTotal(f.ledger.CountsToday())
	last7 := f.estimateRange(7)
	last30 := f.estimateRange(30)

	now := f.clock.Now()
	daysInMonth := now.AddDate(0, 1, -now.Day()).Day()
	daysRemaining := daysInMonth - now.Day()
	monthToDate := f.estimateRange(now.Day())

	dailyAverage := last7.Div(decimal.NewFromInt(7))
	projected := dailyAverage.Mul(decimal.NewFromInt(int64(daysRemaining))).Add(monthToDate)

	return CostSummary{
		Today:            today.StringFixed(2),
		Last7Days:        last7.StringFixed(2),
		Last30Days:       last30.StringFixed(2),
		ProjectedMonthly: projected.StringFixed(2),
	}
}

func (f *Facade) estimateRange(days int) decimal.Decimal {
	total := decimal.Zero
	for _, day := range f.ledger.CountsForRange(days) {
		total = total.Add(f.prices.EstimateTotal(day.Counts))
	}
	return total
}

// GetRekognitionCosts passes through to the Cost Explorer billing API.
func (f *Facade) GetRekognitionCosts(ctx context.Context, days int) ([]DayCost, error) {
	if f.remote == nil {
		return nil, ErrRemoteNotConfigured
	}
	return f.remote.GetRekognitionCosts(ctx, days)
}

// GetRekognitionMetrics passes through to CloudWatch.
func (f *Facade) GetRekognitionMetrics(ctx context.Context, metricName string, hours int) ([]MetricPoint, error) {
	if f.remote == nil {
		return nil, ErrRemoteNotConfigured
	}
	return f.remote.GetRekognitionMetrics(ctx, metricName, hours)
}

// ListRekognitionMetrics passes through to CloudWatch.
func (f *Facade) ListRekognitionMetrics(ctx context.Context) ([]string, error) {
	if f.remote == nil {
		return nil, ErrRemoteNotConfigured
	}
	return f.remote.ListRekognitionMetrics(ctx)
}
