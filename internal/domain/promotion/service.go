// internal/domain/promotion/service.go
package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// Service validates coupon codes against the coupons table.
type Service struct {
	db *gorm.DB
}

// NewService creates a new promotion service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Discount resolves a coupon code and returns the discount it grants on the
// given subtotal. Unknown, inactive and expired codes all come back as
// validation errors so the shopper can correct the code in place.
func (s *Service) Discount(ctx context.Context, code string, subtotal float64) (float64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, apperr.Validation("coupon code is required")
	}

	var coupon Coupon
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.Validation("invalid coupon code %q", code)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up coupon: %w", err)
	}

	if err := coupon.Usable(subtotal, time.Now().UTC()); err != nil {
		return 0, err
	}
	return coupon.DiscountFor(subtotal), nil
}
