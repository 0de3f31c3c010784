// internal/domain/pricing/totals.go
package pricing

import (
	"github.com/your-org/storefront-backend/internal/domain/tax"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// ShippingPolicy is the flat-fee-with-free-threshold shipping rule.
type ShippingPolicy struct {
	FreeThreshold float64
	Fee           float64
}

// Totals is the settled monetary position of an order. GrandTotal is rounded
// to 2 decimals; every other figure keeps the precision it was computed with.
type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	Discount        float64 `json:"discount"`
	TaxableSubtotal float64 `json:"taxable_subtotal"`
	TaxAmount       float64 `json:"tax_amount"`
	ShippingFee     float64 `json:"shipping_fee"`
	GrandTotal      float64 `json:"grand_total"`
}

// ShippingFeeFor returns the shipping fee for a taxable subtotal under the
// policy: zero at or above the free threshold, the flat fee below it.
func (p ShippingPolicy) ShippingFeeFor(taxableSubtotal float64) float64 {
	if taxableSubtotal >= p.FreeThreshold {
		return 0
	}
	return p.Fee
}

// Compute combines subtotal, coupon discount, shipping policy and the tax
// ledger output into the payable total. This is the single authoritative
// implementation: the checkout preview and the settlement path both call it,
// so the amounts the shopper sees and the amount charged can never diverge
// through rounding order or a stale shipping fee.
//
// A discount below zero or above the subtotal is rejected rather than
// clamped; silently zeroing it would hide a misapplied coupon.
func Compute(subtotal, discount, totalTax float64, policy ShippingPolicy) (Totals, error) {
	if discount < 0 {
		return Totals{}, apperr.Validation("discount must not be negative, got %.2f", discount)
	}
	if discount > subtotal {
		return Totals{}, apperr.Validation("discount %.2f exceeds subtotal %.2f", discount, subtotal)
	}

	taxableSubtotal := subtotal - discount
	shippingFee := policy.ShippingFeeFor(taxableSubtotal)

	return Totals{
		Subtotal:        subtotal,
		Discount:        discount,
		TaxableSubtotal: taxableSubtotal,
		TaxAmount:       totalTax,
		ShippingFee:     shippingFee,
		// The only rounding step; intermediates stay at full precision.
		GrandTotal: tax.Round2(taxableSubtotal + totalTax + shippingFee),
	}, nil
}
