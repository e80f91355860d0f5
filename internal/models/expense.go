// internal/models/expense.go
package models

import "time"

type Expense struct {
	OwnedModel
	Title    string    `json:"title" gorm:"size:255;not null"`
	Category string    `json:"category" gorm:"size:100;index"`
	Amount   int64     `json:"amount" gorm:"not null"`
	Note     string    `json:"note" gorm:"type:text"`
	SpentAt  time.Time `json:"spent_at" gorm:"not null;index"`
}
