// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product is the catalog entry the cart and tax ledger consult. GSTRate and
// HSNCode are the tax-class metadata carried into order line items at
// checkout; both are optional because older catalog rows predate them.
type Product struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	SKU         string   `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string   `gorm:"not null;size:255" json:"name"`
	Slug        string   `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string   `gorm:"type:text" json:"description"`
	Price       float64  `gorm:"not null" json:"price"` // tax-inclusive selling price
	GSTRate     *float64 `json:"gst_rate,omitempty"`
	HSNCode     string   `gorm:"size:20" json:"hsn_code,omitempty"`

	Quantity      int  `gorm:"default:0" json:"quantity"`
	TrackQuantity bool `gorm:"default:true" json:"track_quantity"`
	IsActive      bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// InStock reports whether the requested quantity can be fulfilled.
func (p *Product) InStock(quantity int) bool {
	if !p.TrackQuantity {
		return true
	}
	return p.Quantity >= quantity
}
