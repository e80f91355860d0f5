// internal/models/sale.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Allocation records how many units a sale consumed from one variant and at
// what unit cost, so the sale can be reversed exactly.
type Allocation struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int64     `json:"quantity"`
	UnitCost  int64     `json:"unit_cost"`
}

type Sale struct {
	OwnedModel
	ProductID    uuid.UUID                        `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductName  string                           `json:"product_name" gorm:"size:255;not null"`
	Quantity     int64                            `json:"quantity" gorm:"not null"`
	SalePrice    int64                            `json:"sale_price" gorm:"not null"`
	Discount     int64                            `json:"discount" gorm:"not null;default:0"`
	PurchaseCost int64                            `json:"purchase_cost" gorm:"not null;default:0"`
	Total        int64                            `json:"total" gorm:"not null"`
	CustomerName string                           `json:"customer_name" gorm:"size:255"`
	PersonID     *uuid.UUID                       `json:"person_id" gorm:"type:uuid;index"`
	BatchID      uuid.UUID                        `json:"batch_id" gorm:"type:uuid;index"`
	SoldAt       time.Time                        `json:"sold_at" gorm:"not null;index"`
	Allocations  datatypes.JSONType[[]Allocation] `json:"allocations" gorm:"type:jsonb"`
}

// Profit is the sale's gross margin.
func (s *Sale) Profit() int64 {
	return s.Total - s.PurchaseCost
}
