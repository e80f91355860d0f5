package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrInvalidDiscount   = errors.New("discount must be between zero and the sale amount")
	ErrNoVariants        = errors.New("product has no variants")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockConsumed     = errors.New("received stock has already been sold")
	ErrAmountOverflow    = errors.New("amount is out of range")
)

// InsufficientStockError is returned when a sale asks for more units than the
// product holds across all of its variants. It matches ErrInsufficientStock
// under errors.Is.
type InsufficientStockError struct {
	Product   string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.Product, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// StockConsumedError is returned when undoing a receipt would push its
// variant below zero because part of the batch was sold in the meantime.
type StockConsumedError struct {
	Product   string
	VariantID string
	Needed    int64
	Available int64
}

func (e *StockConsumedError) Error() string {
	return fmt.Sprintf("cannot remove %d units from product %s (variant %s): only %d left in stock",
		e.Needed, e.Product, e.VariantID, e.Available)
}

func (e *StockConsumedError) Is(target error) bool {
	return target == ErrStockConsumed
}
