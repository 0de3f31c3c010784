// internal/domain/tax/strategies.go
package tax

import (
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// taxFacts is the output of one extraction strategy: the three figures every
// downstream computation needs, before quantity multiplication and splitting.
type taxFacts struct {
	basePrice   float64
	ratePercent float64
	taxPerUnit  float64
	source      Source
}

// strategy inspects a line item and either claims it (ok=true) or passes it
// to the next tier. Strategies are ranked; the first match wins. Keeping them
// as an explicit ordered list makes the field precedence auditable and lets
// each tier be tested on its own.
type strategy func(l *Ledger, item LineInput) (taxFacts, bool, error)

var strategies = []strategy{
	extractStoredAmount,
	deriveFromInclusivePrice,
}

// extractStoredAmount handles lines written with per-unit tax amounts on
// record. The stored amount is the transaction of record; any stored rate may
// be stale, so the effective rate is always recomputed from amount and base.
func extractStoredAmount(l *Ledger, item LineInput) (taxFacts, bool, error) {
	taxPerUnit := storedTaxPerUnit(item)
	if taxPerUnit == nil {
		return taxFacts{}, false, nil
	}
	if item.BasePrice == nil && item.RatePercent == nil {
		return taxFacts{}, false, nil
	}

	base := 0.0
	if item.BasePrice != nil {
		base = *item.BasePrice
	} else {
		base = item.UnitPrice - *taxPerUnit
	}
	if base < 0 {
		return taxFacts{}, false, apperr.Validation(
			"line %q: derived base price is negative (unit price %.2f, stored tax %.2f)",
			item.ProductName, item.UnitPrice, *taxPerUnit)
	}

	return taxFacts{
		basePrice:   base,
		ratePercent: effectiveRate(*taxPerUnit, base),
		taxPerUnit:  *taxPerUnit,
		source:      SourceStored,
	}, true, nil
}

// deriveFromInclusivePrice handles lines with no stored tax amount: the unit
// price is assumed tax-inclusive at the stored class rate, or the system
// default when the line carries no rate either.
func deriveFromInclusivePrice(l *Ledger, item LineInput) (taxFacts, bool, error) {
	rate := l.defaultRate
	if item.RatePercent != nil && *item.RatePercent > 0 {
		rate = *item.RatePercent
	}

	base := item.UnitPrice / (1 + rate/100)
	taxPerUnit := item.UnitPrice - base

	// Same rate formula as the stored tier so both report consistently.
	return taxFacts{
		basePrice:   base,
		ratePercent: effectiveRate(taxPerUnit, base),
		taxPerUnit:  taxPerUnit,
		source:      SourceDerived,
	}, true, nil
}

// storedTaxPerUnit resolves the per-unit tax amount across the two accepted
// field shapes, newest first.
func storedTaxPerUnit(item LineInput) *float64 {
	if item.TaxPerUnit != nil {
		return item.TaxPerUnit
	}
	return item.GSTPerUnit
}

// effectiveRate is the authoritative rate formula: amount over base, as a
// percentage. Zero base yields zero rate rather than infinity.
func effectiveRate(taxPerUnit, basePrice float64) float64 {
	if basePrice <= 0 {
		return 0
	}
	return taxPerUnit / basePrice * 100
}
