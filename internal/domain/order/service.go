// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// Service handles order persistence
type Service struct {
	db       *gorm.DB
	sequence Sequence
}

// NewService creates a new order service
func NewService(db *gorm.DB, sequence Sequence) *Service {
	return &Service{db: db, sequence: sequence}
}

// Draft is the payload the checkout settlement hands over for persistence.
// All monetary figures are already settled; Create stores them verbatim.
type Draft struct {
	UserID           uint
	Items            []LineItem
	Subtotal         float64
	DiscountAmount   float64
	CouponCode       string
	ShippingFee      float64
	TaxAmount        float64
	GrandTotal       float64
	ShippingAddress  Address
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	GatewayOrderID   string
	GatewayPaymentID string
}

// Create persists a settled order: assigns the uuid, draws the next
// sequential number and writes order plus items in one transaction.
func (s *Service) Create(ctx context.Context, draft Draft) (*Order, error) {
	if len(draft.Items) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}
	if err := draft.ShippingAddress.Validate(); err != nil {
		return nil, err
	}

	seq, err := s.sequence.Next(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ord := &Order{
		ID:                uuid.NewString(),
		UserID:            draft.UserID,
		OrderNumber:       fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), seq),
		SequentialNumber:  &seq,
		Subtotal:          draft.Subtotal,
		DiscountAmount:    draft.DiscountAmount,
		CouponCode:        draft.CouponCode,
		ShippingFee:       draft.ShippingFee,
		TaxAmount:         draft.TaxAmount,
		GrandTotal:        draft.GrandTotal,
		PaymentMethod:     draft.PaymentMethod,
		PaymentStatus:     draft.PaymentStatus,
		FulfillmentStatus: FulfillmentPlaced,
		GatewayOrderID:    draft.GatewayOrderID,
		GatewayPaymentID:  draft.GatewayPaymentID,
		ShippingAddress:   draft.ShippingAddress,
		CreatedAt:         now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ord).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for i := range draft.Items {
			draft.Items[i].OrderID = ord.ID
			if err := tx.Create(&draft.Items[i]).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ord.Items = draft.Items
	return ord, nil
}

// Get retrieves a single order with its items, scoped to the owning user.
func (s *Service) Get(ctx context.Context, userID uint, orderID string) (*Order, error) {
	var ord Order
	result := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order %s not found", orderID)
		}
		// Pure read; nothing was mutated, the caller can simply retry.
		return nil, apperr.Transient("failed to retrieve order", result.Error)
	}

	return &ord, nil
}
