// internal/models/invoice.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	OwnedModel
	Number       string        `json:"number" gorm:"size:32;uniqueIndex;not null"`
	CustomerName string        `json:"customer_name" gorm:"size:255;not null"`
	IssuedAt     time.Time     `json:"issued_at" gorm:"not null"`
	Subtotal     int64         `json:"subtotal" gorm:"not null"`
	Discount     int64         `json:"discount" gorm:"not null;default:0"`
	Total        int64         `json:"total" gorm:"not null"`
	Note         string        `json:"note" gorm:"type:text"`
	ArchiveKey   string        `json:"archive_key,omitempty" gorm:"size:512"`
	Items        []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

type InvoiceItem struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	InvoiceID   uuid.UUID  `json:"invoice_id" gorm:"type:uuid;not null;index"`
	Position    int        `json:"position" gorm:"not null;default:0"`
	SaleID      *uuid.UUID `json:"sale_id,omitempty" gorm:"type:uuid"`
	Description string     `json:"description" gorm:"size:255;not null"`
	Quantity    int64      `json:"quantity" gorm:"not null"`
	UnitPrice   int64      `json:"unit_price" gorm:"not null"`
	Discount    int64      `json:"discount" gorm:"not null;default:0"`
	LineTotal   int64      `json:"line_total" gorm:"not null"`
}
