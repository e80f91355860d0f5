// internal/models/person.go
package models

import "github.com/lib/pq"

// Person is an entry of the People directory: customers and suppliers that
// sales and receipts can be matched against.
type Person struct {
	OwnedModel
	Name   string         `json:"name" gorm:"size:255;not null;index"`
	Kind   PersonKind     `json:"kind" gorm:"type:varchar(20);default:'customer'"`
	Phones pq.StringArray `json:"phones" gorm:"type:text[]"`
	Note   string         `json:"note" gorm:"type:text"`
}
