// internal/domain/order/order_test.go
package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

func TestAddressValidate(t *testing.T) {
	valid := Address{
		Name:    "Asha Rao",
		Line1:   "14 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Address)
	}{
		{"missing line", func(a *Address) { a.Line1 = "" }},
		{"missing city", func(a *Address) { a.City = "" }},
		{"missing state", func(a *Address) { a.State = "" }},
		{"short pincode", func(a *Address) { a.Pincode = "5600" }},
		{"long pincode", func(a *Address) { a.Pincode = "5600011" }},
		{"alpha pincode", func(a *Address) { a.Pincode = "56000a" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := valid
			tt.mutate(&addr)
			err := addr.Validate()
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestOrderTaxInputsCarryAllFieldShapes(t *testing.T) {
	base, rate, taxAmt, gstAmt := 100.0, 18.0, 18.0, 9.0
	ord := Order{Items: []LineItem{{
		Name:           "Quilt",
		HSNCode:        "9404",
		Quantity:       2,
		UnitPrice:      118,
		BasePrice:      &base,
		TaxRatePercent: &rate,
		TaxPerUnit:     &taxAmt,
		GSTPerUnit:     &gstAmt,
	}}}

	inputs := ord.TaxInputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, "Quilt", inputs[0].ProductName)
	assert.Equal(t, "9404", inputs[0].HSNCode)
	assert.Equal(t, &base, inputs[0].BasePrice)
	assert.Equal(t, &rate, inputs[0].RatePercent)
	assert.Equal(t, &taxAmt, inputs[0].TaxPerUnit)
	assert.Equal(t, &gstAmt, inputs[0].GSTPerUnit)
}

func TestOrderInvoiceIdentity(t *testing.T) {
	seq := int64(42)
	created := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	ord := Order{
		ID:               "0f8fad5b-d9cb-469f-a165-70867728950e",
		OrderNumber:      "ORD-20240301-000042",
		SequentialNumber: &seq,
		InvoiceNumber:    "2024000042",
		CreatedAt:        created,
	}

	id := ord.InvoiceIdentity()
	assert.Equal(t, ord.ID, id.OrderID)
	assert.Equal(t, "2024000042", id.StoredInvoiceNumber)
	assert.Equal(t, &seq, id.SequentialNumber)
	assert.Equal(t, "ORD-20240301-000042", id.FormattedNumber)
	assert.Equal(t, created, id.CreatedAt)
}

func TestIsSettled(t *testing.T) {
	paid := Order{PaymentMethod: MethodRazorpay, PaymentStatus: PaymentStatusPaid}
	assert.True(t, paid.IsSettled())

	// COD settles at order creation; payment is collected on delivery.
	cod := Order{PaymentMethod: MethodCashOnDelivery, PaymentStatus: PaymentStatusPending}
	assert.True(t, cod.IsSettled())

	unpaid := Order{PaymentMethod: MethodRazorpay, PaymentStatus: PaymentStatusPending}
	assert.False(t, unpaid.IsSettled())

	failed := Order{PaymentMethod: MethodRazorpay, PaymentStatus: PaymentStatusFailed}
	assert.False(t, failed.IsSettled())
}

func TestMemorySequence_UniqueUnderConcurrency(t *testing.T) {
	var seq MemorySequence
	const n = 100

	var mu sync.Mutex
	seen := make(map[int64]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := seq.Next(context.Background())
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}

func TestMatchesSearch(t *testing.T) {
	ord := Order{
		ID:          "0f8fad5b-d9cb-469f-a165-70867728950e",
		OrderNumber: "ORD-20240301-000042",
		Items:       []LineItem{{Name: "Cotton Bedsheet"}},
	}

	assert.True(t, matchesSearch(ord, "ord-2024"))
	assert.True(t, matchesSearch(ord, "bedsheet"))
	assert.True(t, matchesSearch(ord, "8950e"))
	assert.False(t, matchesSearch(ord, "pillow"))
}
