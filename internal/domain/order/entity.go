// internal/domain/order/entity.go
package order

import (
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/invoice"
	"github.com/your-org/storefront-backend/internal/domain/tax"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// PaymentMethod identifies how an order is paid.
type PaymentMethod string

const (
	MethodRazorpay       PaymentMethod = "razorpay"
	MethodCashOnDelivery PaymentMethod = "cod"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// FulfillmentStatus tracks physical fulfillment. Transitions are owned by the
// fulfillment system; this service only reads and filters on them.
type FulfillmentStatus string

const (
	FulfillmentPlaced         FulfillmentStatus = "placed"
	FulfillmentProcessing     FulfillmentStatus = "processing"
	FulfillmentShipped        FulfillmentStatus = "shipped"
	FulfillmentOutForDelivery FulfillmentStatus = "out_for_delivery"
	FulfillmentDelivered      FulfillmentStatus = "delivered"
	FulfillmentCancelled      FulfillmentStatus = "cancelled"
)

// Order is the settled record of a purchase. All monetary figures are in
// whole currency units and are fixed at creation time: GrandTotal is the
// amount that was actually charged and is never recomputed from live rates.
type Order struct {
	ID               string `gorm:"primaryKey;size:36" json:"id"`
	UserID           uint   `gorm:"not null;index" json:"user_id"`
	OrderNumber      string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	SequentialNumber *int64 `gorm:"uniqueIndex" json:"sequential_number,omitempty"`

	// Invoice identity. InvoiceNumber is the canonical 10-char value when a
	// generation of the schema stored it; LegacyInvoiceNumber is the older
	// derived field some rows carry instead. Both optional, both recomputable.
	InvoiceNumber       string `gorm:"size:10" json:"invoice_number,omitempty"`
	LegacyInvoiceNumber string `gorm:"size:20" json:"legacy_invoice_number,omitempty"`

	// Financial information
	Subtotal       float64 `gorm:"not null" json:"subtotal"`
	DiscountAmount float64 `gorm:"default:0" json:"discount_amount"`
	CouponCode     string  `gorm:"size:50" json:"coupon_code,omitempty"`
	ShippingFee    float64 `gorm:"default:0" json:"shipping_fee"`
	TaxAmount      float64 `gorm:"default:0" json:"tax_amount"`
	GrandTotal     float64 `gorm:"not null" json:"grand_total"`

	PaymentMethod     PaymentMethod     `gorm:"not null;size:20" json:"payment_method"`
	PaymentStatus     PaymentStatus     `gorm:"not null;default:'pending'" json:"payment_status"`
	FulfillmentStatus FulfillmentStatus `gorm:"not null;default:'placed'" json:"fulfillment_status"`

	// Gateway correlation, populated only for online payments
	GatewayOrderID   string `gorm:"size:64" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `gorm:"size:64" json:"gateway_payment_id,omitempty"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items []LineItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// LineItem is one purchased line, immutable once the order is placed. The
// optional tax columns mirror the shapes that have existed upstream; the tax
// ledger reconstructs a consistent breakdown from whichever are populated.
type LineItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   string `gorm:"not null;index;size:36" json:"order_id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"not null;size:255" json:"name"`
	HSNCode   string `gorm:"size:20" json:"hsn_code,omitempty"`

	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	LineTotal float64 `gorm:"not null" json:"line_total"`

	BasePrice      *float64 `json:"base_price,omitempty"`
	TaxRatePercent *float64 `json:"tax_rate_percent,omitempty"`
	TaxPerUnit     *float64 `json:"tax_per_unit,omitempty"`
	GSTPerUnit     *float64 `gorm:"column:gst_per_unit" json:"gst_per_unit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Address is the shipping address embedded in an order.
type Address struct {
	Name    string `gorm:"size:100" json:"name"`
	Line1   string `gorm:"size:255" json:"line1"`
	Line2   string `gorm:"size:255" json:"line2,omitempty"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	Pincode string `gorm:"size:6" json:"pincode"`
	Phone   string `gorm:"size:20" json:"phone,omitempty"`
}

var pincodeRe = regexp.MustCompile(`^[0-9]{6}$`)

// Validate enforces the address invariant shared by the registered-address
// and manual-entry checkout paths: line, city, state and a 6-digit pincode.
func (a Address) Validate() error {
	if a.Line1 == "" {
		return apperr.Validation("address line is required")
	}
	if a.City == "" {
		return apperr.Validation("city is required")
	}
	if a.State == "" {
		return apperr.Validation("state is required")
	}
	if !pincodeRe.MatchString(a.Pincode) {
		return apperr.Validation("pincode must be exactly 6 digits")
	}
	return nil
}

// TableName overrides
func (Order) TableName() string    { return "orders" }
func (LineItem) TableName() string { return "order_items" }

// TaxInputs converts the persisted line items into ledger inputs.
func (o *Order) TaxInputs() []tax.LineInput {
	inputs := make([]tax.LineInput, 0, len(o.Items))
	for _, item := range o.Items {
		inputs = append(inputs, tax.LineInput{
			ProductName: item.Name,
			HSNCode:     item.HSNCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			BasePrice:   item.BasePrice,
			RatePercent: item.TaxRatePercent,
			TaxPerUnit:  item.TaxPerUnit,
			GSTPerUnit:  item.GSTPerUnit,
		})
	}
	return inputs
}

// InvoiceIdentity exposes the identity fields invoice numbering derives from.
func (o *Order) InvoiceIdentity() invoice.OrderIdentity {
	return invoice.OrderIdentity{
		OrderID:             o.ID,
		StoredInvoiceNumber: o.InvoiceNumber,
		LegacyInvoiceNumber: o.LegacyInvoiceNumber,
		SequentialNumber:    o.SequentialNumber,
		FormattedNumber:     o.OrderNumber,
		CreatedAt:           o.CreatedAt,
	}
}

// TaxableBase is the subtotal after discount, the denominator for the
// order-level tax rate fallback.
func (o *Order) TaxableBase() float64 {
	return o.Subtotal - o.DiscountAmount
}

// IsSettled reports whether payment has been confirmed.
func (o *Order) IsSettled() bool {
	return o.PaymentStatus == PaymentStatusPaid ||
		(o.PaymentMethod == MethodCashOnDelivery && o.PaymentStatus == PaymentStatusPending)
}
