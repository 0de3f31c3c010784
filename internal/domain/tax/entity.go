// internal/domain/tax/entity.go
package tax

// DefaultRatePercent is the assumed GST rate when neither the line item nor
// its product carries a rate of its own.
const DefaultRatePercent = 18.0

// PlaceholderHSNCode is printed when no HSN code is on record for a line.
const PlaceholderHSNCode = "NA"

// Source identifies which reconstruction tier produced a breakdown.
type Source string

const (
	// SourceStored means the stored per-unit tax amount was used directly.
	SourceStored Source = "stored"
	// SourceDerived means the amount was reverse-derived from a tax-inclusive
	// unit price.
	SourceDerived Source = "derived"
	// SourceOrderLevel means no line items were available and the order-level
	// stored tax amount was split instead.
	SourceOrderLevel Source = "order_level"
	// SourceNone means no tax data was found anywhere. Reportable degraded
	// state, not an error.
	SourceNone Source = "none"
)

// LineInput is the raw line item data the ledger reconstructs from. The
// stored tax fields are optional because historical orders were written by
// several schema generations; the per-unit amount in particular appears under
// two different field names upstream.
type LineInput struct {
	ProductName string   `json:"product_name"`
	HSNCode     string   `json:"hsn_code,omitempty"`
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unit_price"`
	BasePrice   *float64 `json:"base_price,omitempty"`
	RatePercent *float64 `json:"rate_percent,omitempty"`
	TaxPerUnit  *float64 `json:"tax_per_unit,omitempty"`
	GSTPerUnit  *float64 `json:"gst_per_unit,omitempty"`
}

// LineBreakdown is the reconstructed tax position of a single line.
// TotalTax always equals CGST+SGST, and LineTotal always equals
// Quantity*UnitPrice regardless of which tier produced the tax figures.
type LineBreakdown struct {
	ProductName string  `json:"product_name"`
	HSNCode     string  `json:"hsn_code"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	BasePrice   float64 `json:"base_price"`
	RatePercent float64 `json:"rate_percent"`
	TaxPerUnit  float64 `json:"tax_per_unit"`
	TotalTax    float64 `json:"total_tax"`
	CGST        float64 `json:"cgst"`
	SGST        float64 `json:"sgst"`
	LineTotal   float64 `json:"line_total"`
	Source      Source  `json:"source"`
}

// OrderBreakdown aggregates line breakdowns for one order.
type OrderBreakdown struct {
	Lines       []LineBreakdown `json:"lines"`
	TotalTax    float64         `json:"total_tax"`
	CGST        float64         `json:"cgst"`
	SGST        float64         `json:"sgst"`
	RatePercent float64         `json:"rate_percent"` // quantity-weighted average, display only
	Source      Source          `json:"source"`
}

// Degraded reports whether the ledger found no tax data at all. Operators
// audit these orders separately; the zero figures are still rendered.
func (b OrderBreakdown) Degraded() bool {
	return b.Source == SourceNone
}
