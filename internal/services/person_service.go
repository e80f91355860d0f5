// internal/services/person_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type PersonService struct {
	db *gorm.DB
}

type CreatePersonRequest struct {
	Name   string   `json:"name" validate:"required,notblank,max=255"`
	Kind   string   `json:"kind,omitempty" validate:"omitempty,oneof=customer supplier both"`
	Phones []string `json:"phones,omitempty" validate:"max=10,dive,max=32"`
	Note   string   `json:"note" validate:"max=2000"`
}

type UpdatePersonRequest struct {
	Name   string   `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Kind   string   `json:"kind,omitempty" validate:"omitempty,oneof=customer supplier both"`
	Phones []string `json:"phones,omitempty" validate:"omitempty,max=10,dive,max=32"`
	Note   *string  `json:"note,omitempty" validate:"omitempty,max=2000"`
}

type PersonFilter struct {
	utils.PaginationParams
	Kind string
}

// PersonActivity sums what a person bought and supplied.
type PersonActivity struct {
	Person        *models.Person `json:"person"`
	SalesCount    int64          `json:"sales_count"`
	SalesTotal    int64          `json:"sales_total"`
	ReceiptsCount int64          `json:"receipts_count"`
	ReceiptsTotal int64          `json:"receipts_total"`
}

func NewPersonService(db *gorm.DB) *PersonService {
	return &PersonService{db: db}
}

func cleanPhones(phones []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(phones))
	for _, phone := range phones {
		if phone = strings.TrimSpace(phone); phone != "" {
			out = append(out, phone)
		}
	}
	return out
}

func (s *PersonService) CreatePerson(ctx context.Context, ownerID uuid.UUID, req *CreatePersonRequest) (*models.Person, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	kind := models.PersonKind(req.Kind)
	if kind == "" {
		kind = models.PersonKindCustomer
	}

	person := &models.Person{
		Name:   strings.TrimSpace(req.Name),
		Kind:   kind,
		Phones: cleanPhones(req.Phones),
		Note:   req.Note,
	}
	person.OwnerID = ownerID

	if err := s.db.WithContext(ctx).Create(person).Error; err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}
	return person, nil
}

func (s *PersonService) GetPerson(ctx context.Context, ownerID, id uuid.UUID) (*models.Person, error) {
	var person models.Person
	if err := owned(s.db.WithContext(ctx), ownerID).First(&person, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &person, nil
}

// GetActivity returns the person with totals over linked sales and receipts.
func (s *PersonService) GetActivity(ctx context.Context, ownerID, id uuid.UUID) (*PersonActivity, error) {
	person, err := s.GetPerson(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	activity := &PersonActivity{Person: person}

	var sales struct {
		Count int64
		Total int64
	}
	if err := owned(db.Model(&models.Sale{}), ownerID).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("person_id = ?", id).Scan(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}

	var receipts struct {
		Count int64
		Total int64
	}
	if err := owned(db.Model(&models.StockReceipt{}), ownerID).
		Select("COUNT(*) AS count, COALESCE(SUM(quantity * price), 0) AS total").
		Where("person_id = ?", id).Scan(&receipts).Error; err != nil {
		return nil, fmt.Errorf("failed to sum receipts: %w", err)
	}

	activity.SalesCount, activity.SalesTotal = sales.Count, sales.Total
	activity.ReceiptsCount, activity.ReceiptsTotal = receipts.Count, receipts.Total
	return activity, nil
}

func (s *PersonService) UpdatePerson(ctx context.Context, ownerID, id uuid.UUID, req *UpdatePersonRequest) (*models.Person, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	person, err := s.GetPerson(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Kind != "" {
		updates["kind"] = models.PersonKind(req.Kind)
	}
	if req.Phones != nil {
		updates["phones"] = cleanPhones(req.Phones)
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if len(updates) == 0 {
		return person, nil
	}

	if err := s.db.WithContext(ctx).Model(person).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update person: %w", err)
	}
	return s.GetPerson(ctx, ownerID, id)
}

// DeletePerson unlinks the person from sales and receipts; the typed names on
// those records stay.
func (s *PersonService) DeletePerson(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := owned(tx, ownerID).Delete(&models.Person{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete person: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrPersonNotFound
		}

		if err := owned(tx.Model(&models.Sale{}), ownerID).Where("person_id = ?", id).
			Update("person_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink sales: %w", err)
		}
		if err := owned(tx.Model(&models.StockReceipt{}), ownerID).Where("person_id = ?", id).
			Update("person_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink receipts: %w", err)
		}
		return nil
	})
}

func (s *PersonService) ListPeople(ctx context.Context, ownerID uuid.UUID, filter PersonFilter) ([]models.Person, int64, error) {
	query := owned(s.db.WithContext(ctx).Model(&models.Person{}), ownerID)

	switch filter.Kind {
	case "":
	case string(models.PersonKindCustomer), string(models.PersonKindSupplier):
		query = query.Where("kind IN ?", []string{filter.Kind, string(models.PersonKindBoth)})
	default:
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR array_to_string(phones, ' ') LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count people: %w", err)
	}

	allowedSortFields := []string{"name", "created_at", "kind"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var people []models.Person
	if err := query.Find(&people).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch people: %w", err)
	}
	return people, total, nil
}
