// internal/domain/invoice/number_test.go
package invoice

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func seq(n int64) *int64 { return &n }

var created = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

func TestDeriveNumber_StoredTenCharValueWinsUnchanged(t *testing.T) {
	number, degraded := DeriveNumber(OrderIdentity{
		StoredInvoiceNumber: "2023000417",
		SequentialNumber:    seq(42),
		CreatedAt:           created,
	})
	assert.Equal(t, "2023000417", number)
	assert.False(t, degraded)
}

func TestDeriveNumber_WrongLengthStoredValueIsSkipped(t *testing.T) {
	number, degraded := DeriveNumber(OrderIdentity{
		StoredInvoiceNumber: "INV-417", // not the canonical shape
		SequentialNumber:    seq(42),
		CreatedAt:           created,
	})
	assert.Equal(t, "2024000042", number)
	assert.False(t, degraded)
}

func TestDeriveNumber_LegacyFieldBeatsSequential(t *testing.T) {
	number, _ := DeriveNumber(OrderIdentity{
		LegacyInvoiceNumber: "2022000009",
		SequentialNumber:    seq(42),
		CreatedAt:           created,
	})
	assert.Equal(t, "2022000009", number)
}

func TestDeriveNumber_FromSequentialNumber(t *testing.T) {
	number, degraded := DeriveNumber(OrderIdentity{
		SequentialNumber: seq(417),
		CreatedAt:        created,
	})
	assert.Equal(t, "2024000417", number)
	assert.False(t, degraded)
	assert.Len(t, number, NumberLength)
}

func TestDeriveNumber_FromFormattedOrderNumber(t *testing.T) {
	number, degraded := DeriveNumber(OrderIdentity{
		FormattedNumber: "ORD-20240301-000042",
		CreatedAt:       created,
	})
	assert.Equal(t, "2024000042", number)
	assert.False(t, degraded)
}

func TestDeriveNumber_FromOrderIDTail(t *testing.T) {
	number, degraded := DeriveNumber(OrderIdentity{
		OrderID:   "0f8fad5b-d9cb-469f-a165-70867728950e",
		CreatedAt: created,
	})
	assert.Equal(t, "202428950e", number)
	assert.False(t, degraded)
}

func TestDeriveNumber_AbsoluteFallbackIsFlagged(t *testing.T) {
	number, degraded := DeriveNumber(OrderIdentity{})
	assert.Equal(t, fmt.Sprintf("%d000001", time.Now().Year()), number)
	assert.True(t, degraded)
}

func TestDeriveNumber_Deterministic(t *testing.T) {
	id := OrderIdentity{SequentialNumber: seq(7), CreatedAt: created}
	first, _ := DeriveNumber(id)
	second, _ := DeriveNumber(id)
	assert.Equal(t, first, second)
}
