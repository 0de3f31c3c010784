// internal/domain/pricing/totals_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

var testPolicy = ShippingPolicy{FreeThreshold: 500, Fee: 50}

func TestCompute_AboveFreeShippingThreshold(t *testing.T) {
	totals, err := Compute(1000, 100, 45, testPolicy)
	require.NoError(t, err)

	assert.Equal(t, 900.0, totals.TaxableSubtotal)
	assert.Equal(t, 0.0, totals.ShippingFee)
	assert.Equal(t, 945.0, totals.GrandTotal)
}

func TestCompute_BelowFreeShippingThreshold(t *testing.T) {
	totals, err := Compute(300, 0, 15, testPolicy)
	require.NoError(t, err)

	assert.Equal(t, 50.0, totals.ShippingFee)
	assert.Equal(t, 365.0, totals.GrandTotal)
}

func TestCompute_ThresholdIsInclusive(t *testing.T) {
	totals, err := Compute(500, 0, 0, testPolicy)
	require.NoError(t, err)
	assert.Equal(t, 0.0, totals.ShippingFee)
}

func TestCompute_DiscountExceedingSubtotalIsRejected(t *testing.T) {
	_, err := Compute(100, 150, 0, testPolicy)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestCompute_NegativeDiscountIsRejected(t *testing.T) {
	_, err := Compute(100, -10, 0, testPolicy)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestCompute_Idempotent(t *testing.T) {
	first, err := Compute(1234.56, 34.56, 183.2177, testPolicy)
	require.NoError(t, err)
	second, err := Compute(1234.56, 34.56, 183.2177, testPolicy)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompute_RoundsOnlyAtFinalStep(t *testing.T) {
	totals, err := Compute(1000, 0, 0.006, testPolicy)
	require.NoError(t, err)

	// Tax carries full precision; only the grand total is rounded.
	assert.Equal(t, 0.006, totals.TaxAmount)
	assert.Equal(t, 1000.01, totals.GrandTotal)
}
