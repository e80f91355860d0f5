// internal/services/store.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopbook/shopbook-backend/internal/models"
)

// Helpers shared by the services that touch product stock.

func orderedVariants(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func owned(db *gorm.DB, ownerID uuid.UUID) *gorm.DB {
	return db.Where("owner_id = ?", ownerID)
}

// loadProduct fetches a product with its variants. With forUpdate the product
// row stays locked until the surrounding transaction ends, so concurrent
// submits on one product run one after the other.
func loadProduct(tx *gorm.DB, ownerID, productID uuid.UUID, forUpdate bool) (*models.Product, error) {
	query := owned(tx, ownerID)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product models.Product
	if err := query.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := orderedVariants(tx).Where("product_id = ?", product.ID).Find(&product.Variants).Error; err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	return &product, nil
}

// saveVariants makes the stored variant set of p equal to p.Variants.
func saveVariants(tx *gorm.DB, p *models.Product) error {
	ids := make([]uuid.UUID, 0, len(p.Variants))
	for i := range p.Variants {
		if p.Variants[i].ID == uuid.Nil {
			p.Variants[i].ID = uuid.New()
		}
		p.Variants[i].ProductID = p.ID
		ids = append(ids, p.Variants[i].ID)
	}

	stale := tx.Where("product_id = ?", p.ID)
	if len(ids) > 0 {
		stale = stale.Where("id NOT IN ?", ids)
	}
	if err := stale.Delete(&models.Variant{}).Error; err != nil {
		return fmt.Errorf("failed to remove variants: %w", err)
	}

	if len(p.Variants) == 0 {
		return nil
	}
	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&p.Variants).Error; err != nil {
		return fmt.Errorf("failed to save variants: %w", err)
	}
	return nil
}

// findPersonByName matches free-text names against the People directory,
// ignoring case and surrounding spaces.
func findPersonByName(tx *gorm.DB, ownerID uuid.UUID, name string) (*models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var person models.Person
	err := owned(tx, ownerID).Where("LOWER(name) = LOWER(?)", name).First(&person).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &person, nil
}

// resolveCounterparty links a sale or receipt to a person: an explicit id
// must exist, otherwise the typed name is looked up.
func resolveCounterparty(tx *gorm.DB, ownerID uuid.UUID, personID *uuid.UUID, name string) (*uuid.UUID, string, error) {
	name = strings.TrimSpace(name)
	if personID != nil {
		var person models.Person
		if err := owned(tx, ownerID).First(&person, "id = ?", *personID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", ErrPersonNotFound
			}
			return nil, "", fmt.Errorf("database error: %w", err)
		}
		if name == "" {
			name = person.Name
		}
		return &person.ID, name, nil
	}

	person, err := findPersonByName(tx, ownerID, name)
	if err != nil || person == nil {
		return nil, name, err
	}
	return &person.ID, name, nil
}
