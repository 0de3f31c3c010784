// internal/domain/payment/razorpay_test.go
package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(baseURL string) *RazorpayClient {
	return NewRazorpayClient(config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
	}, testLogger())
}

func TestCreateGatewayOrder(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_Abc123","amount":28600,"currency":"INR","status":"created"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	id, err := client.CreateGatewayOrder(context.Background(), 286, "INR", checkout.AmountBreakdown{
		Subtotal:    200,
		TaxAmount:   36,
		ShippingFee: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "order_Abc123", id)

	assert.Equal(t, float64(28600), got["amount"], "amount converts to paise")
	assert.Equal(t, "INR", got["currency"])
	notes := got["notes"].(map[string]interface{})
	assert.Equal(t, "36.00", notes["tax_amount"])
}

func TestCreateGatewayOrder_ErrorsAreRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateGatewayOrder(context.Background(), 100, "INR", checkout.AmountBreakdown{})
	require.Error(t, err)
	assert.True(t, apperr.IsGateway(err))
}

func TestCreateGatewayOrder_MissingOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"created"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateGatewayOrder(context.Background(), 100, "INR", checkout.AmountBreakdown{})
	require.Error(t, err)
	assert.True(t, apperr.IsGateway(err))
}

func TestVerifyPayment(t *testing.T) {
	client := newTestClient("http://unused")

	sig := SignPayment("rzp_test_secret", "order_Abc123", "pay_Xyz789")
	err := client.VerifyPayment(context.Background(), checkout.VerificationRequest{
		GatewayOrderID: "order_Abc123",
		PaymentID:      "pay_Xyz789",
		Signature:      sig,
	})
	assert.NoError(t, err)

	err = client.VerifyPayment(context.Background(), checkout.VerificationRequest{
		GatewayOrderID: "order_Abc123",
		PaymentID:      "pay_Xyz789",
		Signature:      "tampered",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsVerification(err))

	err = client.VerifyPayment(context.Background(), checkout.VerificationRequest{
		GatewayOrderID: "order_Abc123",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsVerification(err), "incomplete confirmation is never settled")
}
