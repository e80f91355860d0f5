// internal/services/subscription_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopbook/shopbook-backend/internal/config"
	"github.com/shopbook/shopbook-backend/internal/database"
	"github.com/shopbook/shopbook-backend/internal/models"
)

// SubscriptionService sells usage days. Days are only ever added here; the
// daily decrement runs outside this service.
type SubscriptionService struct {
	db      *gorm.DB
	gateway PaymentGateway
	config  config.SubscriptionConfig
}

type SubscriptionStatus struct {
	AccountID     uuid.UUID  `json:"account_id"`
	DaysRemaining int        `json:"days_remaining"`
	Active        bool       `json:"active"`
	LastRenewedAt *time.Time `json:"last_renewed_at,omitempty"`
	DayPrice      int64      `json:"day_price"`
	Currency      string     `json:"currency"`
	MinDays       int        `json:"min_days"`
	MaxDays       int        `json:"max_days"`
}

type CreateIntentRequest struct {
	Days int `json:"days" validate:"required,gt=0"`
}

type IntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Days            int    `json:"days"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

type ConfirmIntentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required,notblank"`
}

// NewSubscriptionService takes a nil gateway when payments are not set up;
// status checks keep working and purchases fail with ErrPaymentsDisabled.
func NewSubscriptionService(db *gorm.DB, gateway PaymentGateway, cfg config.SubscriptionConfig) *SubscriptionService {
	return &SubscriptionService{db: db, gateway: gateway, config: cfg}
}

// EnsureAccount creates the account row the first time a token subject is
// seen. New accounts start without days.
func (s *SubscriptionService) EnsureAccount(ctx context.Context, accountID uuid.UUID, displayName string) (*models.Account, error) {
	account := models.Account{DisplayName: displayName}
	account.ID = accountID

	err := s.db.WithContext(ctx).
		Where("id = ?", accountID).
		FirstOrCreate(&account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &account, nil
}

func (s *SubscriptionService) getAccount(tx *gorm.DB, accountID uuid.UUID, forUpdate bool) (*models.Account, error) {
	query := tx
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var account models.Account
	if err := query.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &account, nil
}

// IsActive reports whether the account has days left.
func (s *SubscriptionService) IsActive(ctx context.Context, accountID uuid.UUID) (bool, error) {
	account, err := s.getAccount(s.db.WithContext(ctx), accountID, false)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return account.SubscriptionActive(), nil
}

func (s *SubscriptionService) Status(ctx context.Context, accountID uuid.UUID) (*SubscriptionStatus, error) {
	account, err := s.EnsureAccount(ctx, accountID, "")
	if err != nil {
		return nil, err
	}
	return &SubscriptionStatus{
		AccountID:     account.ID,
		DaysRemaining: account.SubscriptionDays,
		Active:        account.SubscriptionActive(),
		LastRenewedAt: account.LastRenewedAt,
		DayPrice:      s.config.DayPrice,
		Currency:      s.config.Currency,
		MinDays:       s.config.MinDays,
		MaxDays:       s.config.MaxDays,
	}, nil
}

// CreateIntent prices the requested days and opens a payment intent for them.
func (s *SubscriptionService) CreateIntent(ctx context.Context, accountID uuid.UUID, req *CreateIntentRequest) (*IntentResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	if req.Days < s.config.MinDays || req.Days > s.config.MaxDays {
		return nil, ErrInvalidDays
	}
	if _, err := s.EnsureAccount(ctx, accountID, ""); err != nil {
		return nil, err
	}

	amount := int64(req.Days) * s.config.DayPrice
	intent, err := s.gateway.CreateIntent(ctx, amount, s.config.Currency, map[string]string{
		"account_id": accountID.String(),
		"days":       strconv.Itoa(req.Days),
	})
	if err != nil {
		return nil, err
	}

	payment := &models.SubscriptionPayment{
		AccountID:       accountID,
		PaymentIntentID: intent.ID,
		Days:            req.Days,
		Amount:          amount,
		Currency:        s.config.Currency,
		Status:          models.PaymentStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return &IntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Days:            req.Days,
		Amount:          amount,
		Currency:        s.config.Currency,
	}, nil
}

// Confirm credits the purchased days once the provider reports success.
// Confirming the same intent again returns the current status unchanged.
func (s *SubscriptionService) Confirm(ctx context.Context, accountID uuid.UUID, req *ConfirmIntentRequest) (*SubscriptionStatus, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}

	var payment models.SubscriptionPayment
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND payment_intent_id = ?", accountID, req.PaymentIntentID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	switch payment.Status {
	case models.PaymentStatusCompleted:
		return s.Status(ctx, accountID)
	case models.PaymentStatusFailed:
		return nil, ErrPaymentFailed
	}

	intent, err := s.gateway.GetIntent(ctx, payment.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	switch intent.Status {
	case IntentPending:
		return nil, ErrPaymentPending
	case IntentFailed:
		if err := s.db.WithContext(ctx).Model(&payment).Update("status", models.PaymentStatusFailed).Error; err != nil {
			return nil, fmt.Errorf("failed to update payment: %w", err)
		}
		return nil, ErrPaymentFailed
	}

	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var locked models.SubscriptionPayment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, "id = ?", payment.ID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if locked.Status == models.PaymentStatusCompleted {
			return nil
		}

		account, err := s.getAccount(tx, accountID, true)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(account).Updates(map[string]interface{}{
			"subscription_days": gorm.Expr("subscription_days + ?", locked.Days),
			"last_renewed_at":   now,
		}).Error; err != nil {
			return fmt.Errorf("failed to credit days: %w", err)
		}

		if err := tx.Model(&locked).Updates(map[string]interface{}{
			"status":       models.PaymentStatusCompleted,
			"processed_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"days":       locked.Days,
			"intent":     locked.PaymentIntentID,
		}).Info("Subscription renewed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Status(ctx, accountID)
}
