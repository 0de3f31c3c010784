// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{db: db, log: log}
}

// RunAutoMigrations runs GORM auto-migrations for all models in dependency
// order.
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("running database auto-migrations")

	models := []interface{}{
		&user.User{},
		&user.Address{},

		&product.Product{},
		&promotion.Coupon{},

		&cart.CartItem{},

		&order.Order{},
		&order.LineItem{},
		&order.Counter{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	if err := m.seedCounters(); err != nil {
		return err
	}
	if err := m.seedCoupons(); err != nil {
		return err
	}

	m.log.Info("database auto-migrations completed")
	return nil
}

// seedCounters makes sure the order sequence row exists so the first upsert
// has a base value.
func (m *Migration) seedCounters() error {
	counter := order.Counter{Name: order.CounterOrders, Value: 0}
	err := m.db.Where(order.Counter{Name: order.CounterOrders}).
		FirstOrCreate(&counter).Error
	if err != nil {
		return fmt.Errorf("failed to seed order counter: %w", err)
	}
	return nil
}

// seedCoupons inserts the standing promotional codes if they are missing.
func (m *Migration) seedCoupons() error {
	coupons := []promotion.Coupon{
		{Code: "SAVE10", Type: promotion.DiscountPercentage, Value: 10, MinOrderAmount: 1999, MaxDiscount: 1499, IsActive: true},
		{Code: "FLAT500", Type: promotion.DiscountFixed, Value: 500, MinOrderAmount: 2999, IsActive: true},
		{Code: "WELCOME20", Type: promotion.DiscountPercentage, Value: 20, MinOrderAmount: 999, MaxDiscount: 1999, IsActive: true},
	}

	for _, coupon := range coupons {
		seed := coupon
		err := m.db.Where(promotion.Coupon{Code: coupon.Code}).
			FirstOrCreate(&seed).Error
		if err != nil {
			return fmt.Errorf("failed to seed coupon %s: %w", coupon.Code, err)
		}
	}
	return nil
}
