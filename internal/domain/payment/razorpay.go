// internal/domain/payment/razorpay.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// RazorpayClient talks to the Razorpay Orders API and verifies payment
// signatures. It implements both checkout.Gateway and checkout.Verifier.
type RazorpayClient struct {
	cfg        config.RazorpayConfig
	httpClient *http.Client
	log        *logrus.Logger
}

// NewRazorpayClient creates a Razorpay client.
func NewRazorpayClient(cfg config.RazorpayConfig, log *logrus.Logger) *RazorpayClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RazorpayClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"` // subunits (paise)
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateGatewayOrder creates a Razorpay order for the payable amount. The
// amount arrives in whole currency units and is converted to paise here; the
// breakdown travels in notes for server-side reconciliation.
func (c *RazorpayClient) CreateGatewayOrder(ctx context.Context, amount float64, currency string, breakdown checkout.AmountBreakdown) (string, error) {
	if amount <= 0 {
		return "", apperr.Validation("payment amount must be positive, got %.2f", amount)
	}

	payload := razorpayOrderRequest{
		Amount:   int64(math.Round(amount * 100)),
		Currency: currency,
		Receipt:  "rcpt_" + uuid.NewString()[:8],
		Notes: map[string]string{
			"subtotal":     fmt.Sprintf("%.2f", breakdown.Subtotal),
			"discount":     fmt.Sprintf("%.2f", breakdown.Discount),
			"tax_amount":   fmt.Sprintf("%.2f", breakdown.TaxAmount),
			"shipping_fee": fmt.Sprintf("%.2f", breakdown.ShippingFee),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperr.Internal("failed to encode gateway order request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Internal("failed to build gateway order request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Gateway("razorpay order request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperr.Gateway("failed to read razorpay response", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Warn("razorpay order creation rejected")
		return "", apperr.Gateway(fmt.Sprintf("razorpay returned status %d", resp.StatusCode), nil)
	}

	var orderResp razorpayOrderResponse
	if err := json.Unmarshal(respBody, &orderResp); err != nil {
		return "", apperr.Gateway("malformed razorpay response", err)
	}
	if orderResp.ID == "" {
		return "", apperr.Gateway("razorpay response missing order id", nil)
	}

	return orderResp.ID, nil
}

// VerifyPayment checks the widget's signature: HMAC-SHA256 over
// "<order_id>|<payment_id>" keyed with the API secret must match.
func (c *RazorpayClient) VerifyPayment(_ context.Context, req checkout.VerificationRequest) error {
	if req.GatewayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return apperr.Verification("incomplete payment confirmation", nil)
	}

	expected := SignPayment(c.cfg.KeySecret, req.GatewayOrderID, req.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		c.log.WithFields(logrus.Fields{
			"gateway_order_id": req.GatewayOrderID,
			"payment_id":       req.PaymentID,
		}).Warn("razorpay signature mismatch")
		return apperr.Verification("payment signature mismatch", nil)
	}
	return nil
}

// SignPayment computes the signature Razorpay attaches to a completed
// payment. Exported for tests and webhook handling.
func SignPayment(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
