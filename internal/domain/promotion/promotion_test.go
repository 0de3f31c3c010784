// internal/domain/promotion/promotion_test.go
package promotion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

func TestCouponUsable(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	active := Coupon{Code: "SAVE10", Type: DiscountPercentage, Value: 10, MinOrderAmount: 1999, IsActive: true}
	assert.NoError(t, active.Usable(2500, now))

	err := active.Usable(1500, now)
	assert.True(t, apperr.IsValidation(err), "below minimum order")

	inactive := active
	inactive.IsActive = false
	assert.True(t, apperr.IsValidation(inactive.Usable(2500, now)))

	expired := active
	expired.ExpiresAt = &past
	assert.True(t, apperr.IsValidation(expired.Usable(2500, now)))
}

func TestCouponDiscountFor(t *testing.T) {
	percentage := Coupon{Code: "SAVE10", Type: DiscountPercentage, Value: 10, MaxDiscount: 1499}
	assert.InDelta(t, 250.0, percentage.DiscountFor(2500), 1e-9)
	assert.InDelta(t, 1499.0, percentage.DiscountFor(20000), 1e-9, "capped at max discount")

	uncapped := Coupon{Code: "WELCOME20", Type: DiscountPercentage, Value: 20}
	assert.InDelta(t, 400.0, uncapped.DiscountFor(2000), 1e-9)

	fixed := Coupon{Code: "FLAT500", Type: DiscountFixed, Value: 500}
	assert.InDelta(t, 500.0, fixed.DiscountFor(3000), 1e-9)
	assert.InDelta(t, 500.0, fixed.DiscountFor(9000), 1e-9)
}
