// internal/domain/user/address_service.go
package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// AddressService manages a user's saved delivery addresses
type AddressService struct {
	db *gorm.DB
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

// AddressRequest represents a create or update address request
type AddressRequest struct {
	Name      string `json:"name" binding:"required"`
	Line1     string `json:"line1" binding:"required"`
	Line2     string `json:"line2"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Pincode   string `json:"pincode" binding:"required"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}

// Shipping converts a saved address to the shape orders embed. Both paths
// into checkout (saved and manually entered) validate through this type.
func (a *Address) Shipping() order.Address {
	return order.Address{
		Name:    a.Name,
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		Pincode: a.Pincode,
		Phone:   a.Phone,
	}
}

// Shipping resolves a saved address to the validated order shape. This is the
// registered-address path into checkout.
func (s *AddressService) Shipping(ctx context.Context, userID, addressID uint) (order.Address, error) {
	addr, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return order.Address{}, err
	}
	return addr.Shipping(), nil
}

// Create saves a new address after validating it.
func (s *AddressService) Create(ctx context.Context, userID uint, req *AddressRequest) (*Address, error) {
	addr := Address{
		UserID:    userID,
		Name:      req.Name,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		State:     req.State,
		Pincode:   req.Pincode,
		Phone:     req.Phone,
		IsDefault: req.IsDefault,
	}
	if err := addr.Shipping().Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			if err := tx.Model(&Address{}).Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&addr).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &addr, nil
}

// Get retrieves one of the user's addresses.
func (s *AddressService) Get(ctx context.Context, userID, addressID uint) (*Address, error) {
	var addr Address
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("address %d not found", addressID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve address: %w", err)
	}
	return &addr, nil
}

// List retrieves all of the user's addresses, default first.
func (s *AddressService) List(ctx context.Context, userID uint) ([]Address, error) {
	var addresses []Address
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	return addresses, nil
}

// Update replaces the fields of an existing address.
func (s *AddressService) Update(ctx context.Context, userID, addressID uint, req *AddressRequest) (*Address, error) {
	addr, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	addr.Name = req.Name
	addr.Line1 = req.Line1
	addr.Line2 = req.Line2
	addr.City = req.City
	addr.State = req.State
	addr.Pincode = req.Pincode
	addr.Phone = req.Phone
	addr.IsDefault = req.IsDefault
	if err := addr.Shipping().Validate(); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			if err := tx.Model(&Address{}).Where("user_id = ? AND id <> ?", userID, addressID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(addr).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return addr, nil
}

// Delete removes an address.
func (s *AddressService) Delete(ctx context.Context, userID, addressID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).Delete(&Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("address %d not found", addressID)
	}
	return nil
}
