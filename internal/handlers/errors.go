// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shopbook/shopbook-backend/internal/i18n"
	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/services"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

var notFoundKeys = []struct {
	err error
	key string
}{
	{services.ErrProductNotFound, i18n.KeyProductNotFound},
	{services.ErrCategoryNotFound, i18n.KeyCategoryNotFound},
	{services.ErrSaleNotFound, i18n.KeySaleNotFound},
	{services.ErrReceiptNotFound, i18n.KeyReceiptNotFound},
	{services.ErrExpenseNotFound, i18n.KeyExpenseNotFound},
	{services.ErrPersonNotFound, i18n.KeyPersonNotFound},
	{services.ErrInvoiceNotFound, i18n.KeyInvoiceNotFound},
	{services.ErrPaymentNotFound, i18n.KeySubscriptionNotFound},
}

// respondError maps service and ledger errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(validationErrs))
		return
	}

	var insufficient *ledger.InsufficientStockError
	if errors.As(err, &insufficient) {
		utils.InsufficientStockResponse(c, insufficient.Product, gin.H{
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
		return
	}

	var consumed *ledger.StockConsumedError
	if errors.As(err, &consumed) {
		utils.ErrorResponse(c, http.StatusConflict, "STOCK_CONSUMED", i18n.T(lang, i18n.KeyStockConsumed), gin.H{
			"variant_id": consumed.VariantID,
			"needed":     consumed.Needed,
			"available":  consumed.Available,
		})
		return
	}

	for _, nf := range notFoundKeys {
		if errors.Is(err, nf.err) {
			utils.NotFoundResponse(c, nf.key)
			return
		}
	}

	switch {
	case errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, ledger.ErrInvalidDiscount),
		errors.Is(err, ledger.ErrAmountOverflow),
		errors.Is(err, ledger.ErrNoVariants):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrEmptyBatch), errors.Is(err, services.ErrEmptyInvoice):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationEmpty), nil)
	case errors.Is(err, services.ErrProductInUse):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyProductInUse))
	case errors.Is(err, services.ErrCategoryExists):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCategoryExists))
	case errors.Is(err, services.ErrInvalidDays):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeySubscriptionInvalid), nil)
	case errors.Is(err, services.ErrPaymentPending):
		utils.ErrorResponse(c, http.StatusConflict, "PAYMENT_PENDING", i18n.T(lang, i18n.KeySubscriptionPending), nil)
	case errors.Is(err, services.ErrPaymentFailed):
		utils.ErrorResponse(c, http.StatusPaymentRequired, "PAYMENT_FAILED", i18n.T(lang, i18n.KeySubscriptionFailed), nil)
	case errors.Is(err, services.ErrPaymentsDisabled):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "PAYMENTS_DISABLED", i18n.T(lang, i18n.KeySubscriptionNoPayment), nil)
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}

// accountID reads the authenticated account or answers 401.
func accountID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return id, ok
}

// bindJSON decodes and validates a request body, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// optionalUUID parses a uuid query parameter; malformed values are ignored.
func optionalUUID(c *gin.Context, name string) *uuid.UUID {
	if raw := c.Query(name); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return &id
		}
	}
	return nil
}

// dateRange reads from/to, answering 400 on bad input.
func dateRange(c *gin.Context) (utils.DateRange, bool) {
	r, err := utils.GetDateRange(c)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "date range"), err.Error())
		return r, false
	}
	return r, true
}
