// internal/services/errors.go
package services

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInUse     = errors.New("product has sales or receipts")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrSaleNotFound     = errors.New("sale not found")
	ErrReceiptNotFound  = errors.New("receipt not found")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrPersonNotFound   = errors.New("person not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrEmptyBatch       = errors.New("at least one item is required")
	ErrEmptyInvoice     = errors.New("invoice needs items or sales")

	ErrAccountNotFound  = errors.New("account not found")
	ErrPaymentsDisabled = errors.New("payments are not configured")
	ErrInvalidDays      = errors.New("subscription days out of range")
	ErrPaymentNotFound  = errors.New("subscription payment not found")
	ErrPaymentPending   = errors.New("payment has not completed")
	ErrPaymentFailed    = errors.New("payment failed")
)
