// internal/models/receipt.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// StockReceipt is an inbound stock event. CustomerName holds the supplier.
type StockReceipt struct {
	OwnedModel
	ProductID    uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductName  string     `json:"product_name" gorm:"size:255;not null"`
	VariantID    *uuid.UUID `json:"variant_id" gorm:"type:uuid"`
	Quantity     int64      `json:"quantity" gorm:"not null"`
	Price        int64      `json:"price" gorm:"not null"`
	CustomerName string     `json:"customer_name" gorm:"size:255"`
	PersonID     *uuid.UUID `json:"person_id" gorm:"type:uuid;index"`
	BatchID      uuid.UUID  `json:"batch_id" gorm:"type:uuid;index"`
	ReceivedAt   time.Time  `json:"received_at" gorm:"not null;index"`
}

// Cost is what the batch cost to buy.
func (r *StockReceipt) Cost() int64 {
	return r.Quantity * r.Price
}
