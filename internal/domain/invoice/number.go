// internal/domain/invoice/number.go
package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberLength is the canonical invoice number shape: 4-digit calendar year
// of order creation followed by a 6-digit zero-padded sequence.
const NumberLength = 10

// OrderIdentity carries the identity fields an order may or may not have,
// accumulated across schema generations. DeriveNumber works with whichever
// ones are present.
type OrderIdentity struct {
	OrderID             string
	StoredInvoiceNumber string
	LegacyInvoiceNumber string
	SequentialNumber    *int64
	FormattedNumber     string
	CreatedAt           time.Time
}

// DeriveNumber reconstructs a stable invoice number for an order. The ranked
// fallbacks mean the same order always yields the same number no matter which
// fields survived storage. The returned flag is true only for the absolute
// fallback, which must never be treated as a real invoice number in financial
// exports; callers surface it to operators instead.
func DeriveNumber(o OrderIdentity) (number string, degraded bool) {
	if len(o.StoredInvoiceNumber) == NumberLength {
		return o.StoredInvoiceNumber, false
	}

	if o.LegacyInvoiceNumber != "" {
		return o.LegacyInvoiceNumber, false
	}

	year := o.CreatedAt.Year()
	if o.CreatedAt.IsZero() {
		year = time.Now().Year()
	}

	if o.SequentialNumber != nil {
		return fmt.Sprintf("%d%06d", year, *o.SequentialNumber), false
	}

	if seq, ok := trailingNumber(o.FormattedNumber); ok {
		return fmt.Sprintf("%d%06d", year, seq), false
	}

	if len(o.OrderID) >= 6 {
		return fmt.Sprintf("%d%s", year, o.OrderID[len(o.OrderID)-6:]), false
	}

	return fmt.Sprintf("%d000001", time.Now().Year()), true
}

// Number bundles a derived invoice number with its degraded marker for
// callers that pass both along together.
type Number struct {
	Value    string `json:"value"`
	Degraded bool   `json:"degraded"`
}

// NumberFor derives the invoice number for an order as a Number.
func NumberFor(o OrderIdentity) Number {
	value, degraded := DeriveNumber(o)
	return Number{Value: value, Degraded: degraded}
}

// trailingNumber extracts the numeric tail of a formatted order number such
// as "ORD-20240301-000042".
func trailingNumber(formatted string) (int64, bool) {
	if formatted == "" {
		return 0, false
	}
	parts := strings.Split(formatted, "-")
	tail := parts[len(parts)-1]
	n, err := strconv.ParseInt(tail, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n % 1000000, true
}
