// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// Service handles catalog reads. Catalog management itself lives elsewhere;
// checkout only needs current price, stock and tax class per product.
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get retrieves an active product by id.
func (s *Service) Get(ctx context.Context, id uint) (*Product, error) {
	var prod Product
	result := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&prod)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %d not found or inactive", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// List retrieves active products for browsing.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// CheckStock validates that the requested quantity is available.
func (s *Service) CheckStock(ctx context.Context, id uint, quantity int) error {
	prod, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !prod.InStock(quantity) {
		return apperr.Validation("insufficient stock for %q: available %d, requested %d",
			prod.Name, prod.Quantity, quantity)
	}
	return nil
}
