// internal/services/expense_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type ExpenseService struct {
	db *gorm.DB
}

type CreateExpenseRequest struct {
	Title    string     `json:"title" validate:"required,notblank,max=255"`
	Category string     `json:"category" validate:"max=100"`
	Amount   int64      `json:"amount" validate:"gt=0,lte=1000000000000"`
	Note     string     `json:"note" validate:"max=2000"`
	SpentAt  *time.Time `json:"spent_at,omitempty"`
}

type UpdateExpenseRequest struct {
	Title    string     `json:"title,omitempty" validate:"omitempty,notblank,max=255"`
	Category *string    `json:"category,omitempty" validate:"omitempty,max=100"`
	Amount   *int64     `json:"amount,omitempty" validate:"omitempty,gt=0,lte=1000000000000"`
	Note     *string    `json:"note,omitempty" validate:"omitempty,max=2000"`
	SpentAt  *time.Time `json:"spent_at,omitempty"`
}

type ExpenseFilter struct {
	utils.PaginationParams
	utils.DateRange
}

func NewExpenseService(db *gorm.DB) *ExpenseService {
	return &ExpenseService{db: db}
}

func (s *ExpenseService) CreateExpense(ctx context.Context, ownerID uuid.UUID, req *CreateExpenseRequest) (*models.Expense, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	expense := &models.Expense{
		Title:    strings.TrimSpace(req.Title),
		Category: strings.TrimSpace(req.Category),
		Amount:   req.Amount,
		Note:     req.Note,
		SpentAt:  time.Now(),
	}
	expense.OwnerID = ownerID
	if req.SpentAt != nil {
		expense.SpentAt = *req.SpentAt
	}

	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return expense, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, ownerID, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := owned(s.db.WithContext(ctx), ownerID).First(&expense, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &expense, nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, ownerID, id uuid.UUID, req *UpdateExpenseRequest) (*models.Expense, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	expense, err := s.GetExpense(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = strings.TrimSpace(req.Title)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if req.SpentAt != nil {
		updates["spent_at"] = *req.SpentAt
	}
	if len(updates) == 0 {
		return expense, nil
	}

	if err := s.db.WithContext(ctx).Model(expense).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return s.GetExpense(ctx, ownerID, id)
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	result := owned(s.db.WithContext(ctx), ownerID).Delete(&models.Expense{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete expense: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context, ownerID uuid.UUID, filter ExpenseFilter) ([]models.Expense, int64, error) {
	query := owned(s.db.WithContext(ctx).Model(&models.Expense{}), ownerID)
	query = utils.ApplyDateRange(query, "spent_at", filter.DateRange)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(note) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	allowedSortFields := []string{"spent_at", "created_at", "amount", "title"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch expenses: %w", err)
	}
	return expenses, total, nil
}
