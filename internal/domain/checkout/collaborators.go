// internal/domain/checkout/collaborators.go
package checkout

import (
	"context"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Carts is the cart collaborator: read the lines to settle, clear them after
// confirmed settlement.
type Carts interface {
	Snapshot(ctx context.Context, userID uint) (*cart.Snapshot, error)
	Clear(ctx context.Context, userID uint) error
}

// Orders persists a settled order.
type Orders interface {
	Create(ctx context.Context, draft order.Draft) (*order.Order, error)
}

// AddressBook resolves a registered address to the validated shipping shape.
type AddressBook interface {
	Shipping(ctx context.Context, userID, addressID uint) (order.Address, error)
}

// StockChecker re-validates availability at proceed-to-payment time. Cart
// contents can go stale between adding and paying.
type StockChecker interface {
	CheckStock(ctx context.Context, productID uint, quantity int) error
}

// Coupons resolves a coupon code to the discount it grants on a subtotal.
type Coupons interface {
	Discount(ctx context.Context, code string, subtotal float64) (float64, error)
}

// AmountBreakdown accompanies a gateway order so the processor can reconcile
// the charge server-side.
type AmountBreakdown struct {
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	TaxAmount   float64 `json:"tax_amount"`
	ShippingFee float64 `json:"shipping_fee"`
}

// Gateway creates payment orders with the external processor. Amount is in
// whole currency units; implementations convert to the processor's subunit.
type Gateway interface {
	CreateGatewayOrder(ctx context.Context, amount float64, currency string, breakdown AmountBreakdown) (gatewayOrderID string, err error)
}

// VerificationRequest is the signed confirmation handed back by the gateway
// widget, plus the order facts the verifier reconciles against.
type VerificationRequest struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	Amount         float64
	Currency       string
}

// Verifier checks a payment confirmation. A nil return is the only outcome
// that counts as settled; any error leaves the cart untouched.
type Verifier interface {
	VerifyPayment(ctx context.Context, req VerificationRequest) error
}

// Publisher emits settlement lifecycle events. Optional; a nil publisher
// disables events.
type Publisher interface {
	OrderSettled(ctx context.Context, ord *order.Order) error
	PaymentFailed(ctx context.Context, userID uint, gatewayOrderID, reason string) error
}

// GatewayResultStatus is one of the three ways the gateway widget resolves.
type GatewayResultStatus string

const (
	ResultSuccess   GatewayResultStatus = "success"
	ResultFailure   GatewayResultStatus = "failure"
	ResultDismissed GatewayResultStatus = "dismissed"
)

// GatewayResult is the widget outcome fed into the state machine as a single
// discrete event.
type GatewayResult struct {
	Status    GatewayResultStatus `json:"status" binding:"required"`
	PaymentID string              `json:"payment_id,omitempty"`
	Signature string              `json:"signature,omitempty"`
	Reason    string              `json:"reason,omitempty"`
}

// PaymentIntent is what the presentation layer needs to either open the
// gateway widget (online payment) or show the confirmation (cash on delivery).
type PaymentIntent struct {
	Method         order.PaymentMethod `json:"method"`
	GatewayOrderID string              `json:"gateway_order_id,omitempty"`
	Amount         float64             `json:"amount"`
	Currency       string              `json:"currency"`
	OrderID        string              `json:"order_id,omitempty"`
}
