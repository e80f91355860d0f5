// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	OwnedModel
	Name     string         `json:"name" gorm:"size:255;not null"`
	Category string         `json:"category" gorm:"size:100;index"`
	Tags     pq.StringArray `json:"tags" gorm:"type:text[]"`

	// Relationships
	Variants []Variant `json:"variants" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// Variant is a priced batch of stock. Amounts are integer minor units so two
// receipts at the same price always land in the same batch.
type Variant struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	ProductID     uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Position      int       `json:"position" gorm:"not null;default:0"`
	PurchasePrice int64     `json:"purchase_price" gorm:"not null;default:0"`
	SalePrice     int64     `json:"sale_price" gorm:"not null;default:0"`
	Stock         int64     `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	IsOriginal    bool      `json:"is_original" gorm:"not null;default:false"`
}

type Category struct {
	OwnedModel
	Name string `json:"name" gorm:"size:100;not null"`
}
