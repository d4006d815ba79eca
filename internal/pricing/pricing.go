package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// PriceTable maps each billable operation to its USD unit price.
type PriceTable map[models.Operation]decimal.Decimal

// DefaultPriceTable carries the Rekognition image-API list prices. The
// self-hosted backend is treated as free at this tier; routing only
// needs the metered side priced.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		models.OperationDetectFaces:      decimal.NewFromFloat(0.001),
		models.OperationCompareFaces:     decimal.NewFromFloat(0.001),
		models.OperationFindSimilarFaces: decimal.NewFromFloat(0.001),
	}
}

// UnitPrice returns the USD price of a single call of the operation,
// zero for unknown operations.
func (t PriceTable) UnitPrice(op models.Operation) decimal.Decimal {
	if price, ok := t[op]; ok {
		return price
	}
	return decimal.Zero
}

// EstimateCost converts a call count into estimated USD spend. Pure:
// no I/O, zero for zero calls, linear in count.
func (t PriceTable) EstimateCost(op models.Operation, count int64) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return t.UnitPrice(op).Mul(decimal.NewFromInt(count))
}

// EstimateTotal sums the estimated cost over per-operation counts.
func (t PriceTable) EstimateTotal(counts map[models.Operation]int64) decimal.Decimal {
	total := decimal.Zero
	for op, count := range counts {
		total = total.Add(t.EstimateCost(op, count))
	}
	return total
}
