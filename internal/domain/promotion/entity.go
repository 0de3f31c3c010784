// internal/domain/promotion/entity.go
package promotion

import (
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// DiscountType distinguishes percentage coupons from flat-amount ones.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed_amount"
)

// Coupon is a redeemable discount code. Value is a percentage for percentage
// coupons and a rupee amount for fixed ones; MaxDiscount caps percentage
// coupons only.
type Coupon struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Code           string       `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Type           DiscountType `gorm:"not null;size:20" json:"type"`
	Value          float64      `gorm:"not null" json:"value"`
	MinOrderAmount float64      `gorm:"default:0" json:"min_order_amount"`
	MaxDiscount    float64      `gorm:"default:0" json:"max_discount"`
	IsActive       bool         `gorm:"default:true" json:"is_active"`
	ExpiresAt      *time.Time   `json:"expires_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// Usable reports whether the coupon can be applied to an order of the given
// subtotal at the given time.
func (c *Coupon) Usable(subtotal float64, now time.Time) error {
	if !c.IsActive {
		return apperr.Validation("coupon %q is no longer active", c.Code)
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return apperr.Validation("coupon %q has expired", c.Code)
	}
	if subtotal < c.MinOrderAmount {
		return apperr.Validation("coupon %q requires a minimum order of %.2f", c.Code, c.MinOrderAmount)
	}
	return nil
}

// DiscountFor returns the discount amount for the given subtotal. The caller
// is expected to have checked Usable first.
func (c *Coupon) DiscountFor(subtotal float64) float64 {
	if c.Type == DiscountFixed {
		return c.Value
	}
	discount := subtotal * c.Value / 100
	if c.MaxDiscount > 0 && discount > c.MaxDiscount {
		discount = c.MaxDiscount
	}
	return discount
}
