// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is a cart line stored in the database for authenticated users,
// keyed by user and product. Quantity is the only field a shopper mutates
// before checkout.
type CartItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	Price     float64        `gorm:"not null" json:"price"` // price at time of adding
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// SessionCart is a guest cart kept in Redis until login merges it.
type SessionCart struct {
	SessionID string            `json:"session_id"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionCartItem is one guest cart line.
type SessionCartItem struct {
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	AddedAt   time.Time `json:"added_at"`
}

// Snapshot is the cart state checkout settles against: each line enriched
// with the product's current name and tax class, plus the derived subtotal.
type Snapshot struct {
	Items    []SnapshotItem `json:"items"`
	Subtotal float64        `json:"subtotal"`
}

// SnapshotItem is one enriched cart line.
type SnapshotItem struct {
	ProductID uint     `json:"product_id"`
	Name      string   `json:"name"`
	HSNCode   string   `json:"hsn_code,omitempty"`
	GSTRate   *float64 `json:"gst_rate,omitempty"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unit_price"`
}

// IsEmpty reports whether the snapshot has no lines.
func (s *Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}
