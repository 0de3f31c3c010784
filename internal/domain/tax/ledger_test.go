// internal/domain/tax/ledger_test.go
package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

func f(v float64) *float64 { return &v }

func TestComputeLine_StoredAmountAndBasePrice(t *testing.T) {
	ledger := NewLedger(18)

	line, err := ledger.ComputeLine(LineInput{
		ProductName: "Cotton Bedsheet",
		HSNCode:     "6304",
		Quantity:    3,
		UnitPrice:   118,
		BasePrice:   f(100),
		TaxPerUnit:  f(18),
	})
	require.NoError(t, err)

	assert.Equal(t, SourceStored, line.Source)
	assert.InDelta(t, 100, line.BasePrice, 1e-9)
	assert.InDelta(t, 18, line.RatePercent, 0.01)
	assert.InDelta(t, 54, line.TotalTax, 1e-9)
	assert.InDelta(t, line.TotalTax/2, line.CGST, 1e-9)
	assert.Equal(t, line.CGST, line.SGST)
	assert.InDelta(t, 354, line.LineTotal, 1e-9)
	assert.Equal(t, "6304", line.HSNCode)
}

func TestComputeLine_StoredRateIsNeverTrusted(t *testing.T) {
	ledger := NewLedger(18)

	// Stored rate says 12%, but amount and base say 18%. Amounts win.
	line, err := ledger.ComputeLine(LineInput{
		Quantity:    1,
		UnitPrice:   118,
		BasePrice:   f(100),
		RatePercent: f(12),
		TaxPerUnit:  f(18),
	})
	require.NoError(t, err)
	assert.InDelta(t, 18, line.RatePercent, 0.01)
}

func TestComputeLine_BasePriceDerivedFromStoredAmount(t *testing.T) {
	ledger := NewLedger(18)

	// No stored base, but a stored rate and amount: base = unit - tax.
	line, err := ledger.ComputeLine(LineInput{
		Quantity:    2,
		UnitPrice:   236,
		RatePercent: f(18),
		TaxPerUnit:  f(36),
	})
	require.NoError(t, err)
	assert.Equal(t, SourceStored, line.Source)
	assert.InDelta(t, 200, line.BasePrice, 1e-9)
	assert.InDelta(t, 18, line.RatePercent, 0.01)
}

func TestComputeLine_LegacyGSTFieldShape(t *testing.T) {
	ledger := NewLedger(18)

	line, err := ledger.ComputeLine(LineInput{
		Quantity:   1,
		UnitPrice:  118,
		BasePrice:  f(100),
		GSTPerUnit: f(18),
	})
	require.NoError(t, err)
	assert.Equal(t, SourceStored, line.Source)
	assert.InDelta(t, 18, line.TaxPerUnit, 1e-9)

	// When both shapes are present, the newer field wins.
	line, err = ledger.ComputeLine(LineInput{
		Quantity:   1,
		UnitPrice:  118,
		BasePrice:  f(100),
		TaxPerUnit: f(18),
		GSTPerUnit: f(9),
	})
	require.NoError(t, err)
	assert.InDelta(t, 18, line.TaxPerUnit, 1e-9)
}

func TestComputeLine_InclusivePriceFallback(t *testing.T) {
	ledger := NewLedger(18)

	line, err := ledger.ComputeLine(LineInput{
		ProductName: "Pillow Cover",
		Quantity:    1,
		UnitPrice:   118,
	})
	require.NoError(t, err)

	assert.Equal(t, SourceDerived, line.Source)
	assert.InDelta(t, 100, line.BasePrice, 1e-9)
	assert.InDelta(t, 18, line.TaxPerUnit, 1e-9)
	assert.InDelta(t, 18, line.RatePercent, 0.01)
	assert.Equal(t, PlaceholderHSNCode, line.HSNCode)
}

func TestComputeLine_InclusivePriceWithClassRate(t *testing.T) {
	ledger := NewLedger(18)

	// A stored class rate but no stored amount goes through Tier B at 5%.
	line, err := ledger.ComputeLine(LineInput{
		Quantity:    1,
		UnitPrice:   105,
		RatePercent: f(5),
	})
	require.NoError(t, err)
	assert.Equal(t, SourceDerived, line.Source)
	assert.InDelta(t, 100, line.BasePrice, 1e-9)
	assert.InDelta(t, 5, line.RatePercent, 0.01)
}

func TestComputeLine_NegativeDerivedBaseIsValidationError(t *testing.T) {
	ledger := NewLedger(18)

	_, err := ledger.ComputeLine(LineInput{
		ProductName: "Broken Row",
		Quantity:    1,
		UnitPrice:   10,
		RatePercent: f(18),
		TaxPerUnit:  f(25),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestComputeOrder_WeightedAverageRate(t *testing.T) {
	ledger := NewLedger(18)

	breakdown, err := ledger.ComputeOrder([]LineInput{
		{Quantity: 1, UnitPrice: 118, BasePrice: f(100), TaxPerUnit: f(18)},
		{Quantity: 3, UnitPrice: 105, BasePrice: f(100), TaxPerUnit: f(5)},
	}, 0, 0)
	require.NoError(t, err)

	// (18*100*1 + 5*100*3) / (100*1 + 100*3) = 33/4 = 8.25
	assert.InDelta(t, 8.25, breakdown.RatePercent, 0.01)
	assert.InDelta(t, 33, breakdown.TotalTax, 1e-9)
	assert.InDelta(t, 16.5, breakdown.CGST, 1e-9)
	assert.Equal(t, breakdown.CGST, breakdown.SGST)
	assert.Len(t, breakdown.Lines, 2)
	assert.False(t, breakdown.Degraded())
}

func TestComputeOrder_OrderLevelFallback(t *testing.T) {
	ledger := NewLedger(18)

	breakdown, err := ledger.ComputeOrder(nil, 90, 500)
	require.NoError(t, err)

	assert.Equal(t, SourceOrderLevel, breakdown.Source)
	assert.InDelta(t, 90, breakdown.TotalTax, 1e-9)
	assert.InDelta(t, 45, breakdown.CGST, 1e-9)
	assert.InDelta(t, 45, breakdown.SGST, 1e-9)
	assert.InDelta(t, 18, breakdown.RatePercent, 0.01)
}

func TestComputeOrder_NoTaxDataIsDegradedNotError(t *testing.T) {
	ledger := NewLedger(18)

	breakdown, err := ledger.ComputeOrder(nil, 0, 500)
	require.NoError(t, err)

	assert.True(t, breakdown.Degraded())
	assert.Zero(t, breakdown.TotalTax)
	assert.Zero(t, breakdown.RatePercent)
}

func TestComputeOrder_MixedSourcesDowngradeMarker(t *testing.T) {
	ledger := NewLedger(18)

	breakdown, err := ledger.ComputeOrder([]LineInput{
		{Quantity: 1, UnitPrice: 118, BasePrice: f(100), TaxPerUnit: f(18)},
		{Quantity: 1, UnitPrice: 118},
	}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, SourceDerived, breakdown.Source)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 18.0, Round2(17.999999999))
	assert.Equal(t, 45.68, Round2(45.678))
	assert.Equal(t, 100.0, Round2(100.004))
}
