package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

func TestEstimateCost_ZeroCalls(t *testing.T) {
	prices := DefaultPriceTable()
	if got := prices.EstimateCost(models.OperationDetectFaces, 0); !got.IsZero() {
		t.Errorf("Expected zero cost for zero calls, got %s", got)
	}
	if got := prices.EstimateCost(models.OperationDetectFaces, -3); !got.IsZero() {
		t.Errorf("Expected zero cost for negative count, got %s", got)
	}
}

func TestEstimateCost_Linear(t *testing.T) {
	prices := DefaultPriceTable()
	one := prices.EstimateCost(models.OperationCompareFaces, 1)
	for _, k := range []int64{2, 10, 1000} {
		want := one.Mul(decimal.NewFromInt(k))
		got := prices.EstimateCost(models.OperationCompareFaces, k)
		if !got.Equal(want) {
			t.Errorf("Expected cost(%d) == %s, got %s", k, want, got)
		}
	}
}

func TestEstimateCost_UnknownOperation(t *testing.T) {
	prices := DefaultPriceTable()
	if got := prices.EstimateCost(models.Operation("indexFaces"), 100); !got.IsZero() {
		t.Errorf("Expected zero cost for unknown operation, got %s", got)
	}
}

func TestEstimateTotal(t *testing.T) {
	prices := PriceTable{
		models.OperationDetectFaces:  decimal.NewFromFloat(0.001),
		models.OperationCompareFaces: decimal.NewFromFloat(0.002),
	}
	total := prices.EstimateTotal(map[models.Operation]int64{
		models.OperationDetectFaces:  10,
		models.OperationCompareFaces: 5,
	})
	want := decimal.NewFromFloat(0.02)
	if !total.Equal(want) {
		t.Errorf("Expected total %s, got %s", want, total)
	}
}
