// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

const guestCartTTL = 24 * time.Hour

// Service handles cart business logic
type Service struct {
	db             *gorm.DB
	redisClient    *redis.Client
	productService *product.Service
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, productService *product.Service) *Service {
	return &Service{
		db:             db,
		redisClient:    redisClient,
		productService: productService,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// Snapshot loads the user's cart and enriches each line with current product
// data. This is the shape both the checkout preview and settlement read, so
// both sides price the same lines.
func (s *Service) Snapshot(ctx context.Context, userID uint) (*Snapshot, error) {
	var dbItems []CartItem
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&dbItems).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	snapshot := &Snapshot{Items: make([]SnapshotItem, 0, len(dbItems))}
	for _, item := range dbItems {
		prod, err := s.productService.Get(ctx, item.ProductID)
		if err != nil {
			// Product withdrawn since it was added; skip the line rather
			// than block the whole cart.
			continue
		}
		snapshot.Items = append(snapshot.Items, SnapshotItem{
			ProductID: prod.ID,
			Name:      prod.Name,
			HSNCode:   prod.HSNCode,
			GSTRate:   prod.GSTRate,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
		snapshot.Subtotal += item.Price * float64(item.Quantity)
	}

	return snapshot, nil
}

// Add puts a product in the user's cart, or raises the quantity if the line
// exists. Stock is checked against the combined quantity.
func (s *Service) Add(ctx context.Context, userID uint, req *AddToCartRequest) (*Snapshot, error) {
	prod, err := s.productService.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	var existing CartItem
	result := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if !prod.InStock(req.Quantity) {
			return nil, apperr.Validation("insufficient stock for %q: available %d", prod.Name, prod.Quantity)
		}
		item := CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     prod.Price,
		}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
		return s.Snapshot(ctx, userID)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to read cart item: %w", result.Error)
	}

	newQuantity := existing.Quantity + req.Quantity
	if !prod.InStock(newQuantity) {
		return nil, apperr.Validation("insufficient stock for %q: available %d", prod.Name, prod.Quantity)
	}
	existing.Quantity = newQuantity
	existing.Price = prod.Price // price refreshes until checkout fixes it
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.Snapshot(ctx, userID)
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*Snapshot, error) {
	if quantity < 0 {
		return nil, apperr.Validation("quantity cannot be negative")
	}

	if quantity == 0 {
		if err := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&CartItem{}).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.Snapshot(ctx, userID)
	}

	if err := s.productService.CheckStock(ctx, productID, quantity); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("item not found in cart")
	}

	return s.Snapshot(ctx, userID)
}

// Clear removes every line of the user's cart. Only called by the checkout
// settlement path after a confirmed payment, or by the shopper explicitly.
func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItem{}).Error
}

// MergeGuestCart folds a guest session cart into the user's cart at login.
func (s *Service) MergeGuestCart(ctx context.Context, userID uint, sessionID string) error {
	guestCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil || len(guestCart.Items) == 0 {
		return nil // nothing to merge
	}

	for _, guestItem := range guestCart.Items {
		_, err := s.Add(ctx, userID, &AddToCartRequest{
			ProductID: guestItem.ProductID,
			Quantity:  guestItem.Quantity,
		})
		if err != nil && !apperr.IsValidation(err) {
			return err
		}
	}

	return s.redisClient.Del(ctx, guestCartKey(sessionID)).Err()
}

// AddToGuestCart records a line on an anonymous session cart in Redis.
func (s *Service) AddToGuestCart(ctx context.Context, sessionID string, req *AddToCartRequest) (*SessionCart, error) {
	prod, err := s.productService.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	sessionCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ProductID == req.ProductID {
			sessionCart.Items[i].Quantity += req.Quantity
			sessionCart.Items[i].Price = prod.Price
			found = true
			break
		}
	}
	if !found {
		sessionCart.Items = append(sessionCart.Items, SessionCartItem{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     prod.Price,
			AddedAt:   time.Now().UTC(),
		})
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	if err := s.saveGuestCart(ctx, sessionID, sessionCart); err != nil {
		return nil, err
	}
	return sessionCart, nil
}

// Private helper methods

func guestCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *Service) getGuestCart(ctx context.Context, sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, apperr.Validation("session ID required for guest cart")
	}

	cartData, err := s.redisClient.Get(ctx, guestCartKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionCartItem{},
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}, nil
	} else if err != nil {
		return nil, err
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(cartData), &sessionCart); err != nil {
		return nil, err
	}
	return &sessionCart, nil
}

func (s *Service) saveGuestCart(ctx context.Context, sessionID string, sessionCart *SessionCart) error {
	cartData, err := json.Marshal(sessionCart)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, guestCartKey(sessionID), cartData, guestCartTTL).Err()
}
