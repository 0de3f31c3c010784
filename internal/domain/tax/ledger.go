// internal/domain/tax/ledger.go
package tax

import "math"

// Ledger reconstructs per-line and order-level GST breakdowns from whatever
// tax fields an order happens to carry. It is pure computation: no I/O, and
// the same input always yields the same breakdown, so historical orders can
// be re-derived for display and invoicing at any time without mutating them.
type Ledger struct {
	defaultRate float64
}

// NewLedger creates a ledger with the given fallback GST rate percentage.
func NewLedger(defaultRatePercent float64) *Ledger {
	if defaultRatePercent <= 0 {
		defaultRatePercent = DefaultRatePercent
	}
	return &Ledger{defaultRate: defaultRatePercent}
}

// ComputeLine reconstructs the tax position of one line item by running the
// ranked extraction strategies until one claims the line. Intermediate math
// keeps full float precision; callers round at presentation time via Round2.
func (l *Ledger) ComputeLine(item LineInput) (LineBreakdown, error) {
	facts, err := l.extract(item)
	if err != nil {
		return LineBreakdown{}, err
	}

	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	totalTax := facts.taxPerUnit * float64(qty)
	hsn := item.HSNCode
	if hsn == "" {
		hsn = PlaceholderHSNCode
	}

	return LineBreakdown{
		ProductName: item.ProductName,
		HSNCode:     hsn,
		Quantity:    qty,
		UnitPrice:   item.UnitPrice,
		BasePrice:   facts.basePrice,
		RatePercent: facts.ratePercent,
		TaxPerUnit:  facts.taxPerUnit,
		TotalTax:    totalTax,
		CGST:        totalTax / 2,
		SGST:        totalTax / 2,
		LineTotal:   float64(qty) * item.UnitPrice,
		Source:      facts.source,
	}, nil
}

// ComputeOrder aggregates all line breakdowns of an order. When the order has
// no line items it falls back to the stored order-level tax amount against
// the taxable base (subtotal after discount); when even that is absent the
// result is all zeros with Source marked SourceNone so operators can audit
// the gap. The weighted average rate is for summary display only and is never
// used to re-derive totals.
func (l *Ledger) ComputeOrder(items []LineInput, storedOrderTax, taxableBase float64) (OrderBreakdown, error) {
	if len(items) > 0 {
		return l.aggregateLines(items)
	}

	if storedOrderTax > 0 {
		rate := 0.0
		if taxableBase > 0 {
			rate = storedOrderTax / taxableBase * 100
		}
		return OrderBreakdown{
			TotalTax:    storedOrderTax,
			CGST:        storedOrderTax / 2,
			SGST:        storedOrderTax / 2,
			RatePercent: rate,
			Source:      SourceOrderLevel,
		}, nil
	}

	return OrderBreakdown{Source: SourceNone}, nil
}

func (l *Ledger) aggregateLines(items []LineInput) (OrderBreakdown, error) {
	breakdown := OrderBreakdown{
		Lines:  make([]LineBreakdown, 0, len(items)),
		Source: SourceStored,
	}

	var weightedRate, weight float64
	for _, item := range items {
		line, err := l.ComputeLine(item)
		if err != nil {
			return OrderBreakdown{}, err
		}
		breakdown.Lines = append(breakdown.Lines, line)
		breakdown.TotalTax += line.TotalTax
		breakdown.CGST += line.CGST
		breakdown.SGST += line.SGST

		w := line.BasePrice * float64(line.Quantity)
		weightedRate += line.RatePercent * w
		weight += w

		// One derived line downgrades the whole order's source marker.
		if line.Source == SourceDerived {
			breakdown.Source = SourceDerived
		}
	}

	if weight > 0 {
		breakdown.RatePercent = weightedRate / weight
	}
	return breakdown, nil
}

func (l *Ledger) extract(item LineInput) (taxFacts, error) {
	for _, s := range strategies {
		facts, ok, err := s(l, item)
		if err != nil {
			return taxFacts{}, err
		}
		if ok {
			return facts, nil
		}
	}
	// deriveFromInclusivePrice always claims the line, so this is unreachable
	// unless the strategy list is edited.
	return taxFacts{source: SourceNone}, nil
}

// Round2 rounds a currency amount to 2 decimal places. Applied only at
// presentation boundaries; accumulation keeps full precision so rounding
// error does not compound across many lines.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
