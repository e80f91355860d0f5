// internal/models/account.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the owner of a bookkeeping space. The id matches the subject of
// the bearer token; sign-up happens elsewhere.
type Account struct {
	BaseModel
	DisplayName      string     `json:"display_name" gorm:"size:255"`
	SubscriptionDays int        `json:"subscription_days" gorm:"not null;default:0"`
	LastRenewedAt    *time.Time `json:"last_renewed_at"`
}

func (a *Account) SubscriptionActive() bool {
	return a.SubscriptionDays > 0
}

type SubscriptionPayment struct {
	BaseModel
	AccountID       uuid.UUID     `json:"account_id" gorm:"type:uuid;not null;index"`
	PaymentIntentID string        `json:"payment_intent_id" gorm:"size:255;uniqueIndex;not null"`
	Days            int           `json:"days" gorm:"not null"`
	Amount          int64         `json:"amount" gorm:"not null"`
	Currency        string        `json:"currency" gorm:"size:10"`
	Status          PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ProcessedAt     *time.Time    `json:"processed_at"`
}

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	Status       int        `json:"status"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`
}
