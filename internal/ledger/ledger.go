// Package ledger holds the stock arithmetic of the catalog: selling from the
// cheapest batches first, receiving goods into price batches and undoing
// either. Every function works on copies and leaves the caller's product
// untouched; persisting the result is the caller's job.
package ledger

import (
	"cmp"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/shopbook/shopbook-backend/internal/models"
)

// SaleInput describes one sale line. Amounts are minor units.
type SaleInput struct {
	Quantity  int64
	SalePrice int64
	Discount  int64
}

type SaleResult struct {
	Variants     []models.Variant
	PurchaseCost int64
	Total        int64
	Allocations  []models.Allocation
}

type ReceiptResult struct {
	Variants  []models.Variant
	VariantID uuid.UUID
	Created   bool
}

// Clone returns a deep copy of a variant list.
func Clone(variants []models.Variant) []models.Variant {
	if variants == nil {
		return nil
	}
	out := make([]models.Variant, len(variants))
	copy(out, variants)
	return out
}

// TotalStock sums stock across variants, saturating at math.MaxInt64.
func TotalStock(variants []models.Variant) int64 {
	var total int64
	for _, v := range variants {
		sum, err := addAmounts(total, v.Stock)
		if err != nil {
			return math.MaxInt64
		}
		total = sum
	}
	return total
}

// StockValue is the purchase value of everything on hand.
func StockValue(variants []models.Variant) int64 {
	var total int64
	for _, v := range variants {
		total += v.Stock * v.PurchasePrice
	}
	return total
}

// SaleTotal is quantity × price − discount. It fails with ErrAmountOverflow
// when the result does not fit in an int64.
func SaleTotal(quantity, salePrice, discount int64) (int64, error) {
	gross, err := mulAmounts(quantity, salePrice)
	if err != nil {
		return 0, err
	}
	if discount == math.MinInt64 {
		return 0, ErrAmountOverflow
	}
	return addAmounts(gross, -discount)
}

func addAmounts(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

func mulAmounts(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, ErrAmountOverflow
	}
	return c, nil
}

// Discount derives the discount granted when a line is sold below its list
// price. Selling above list price is not a negative discount.
func Discount(listPrice, enteredPrice, quantity int64) int64 {
	if enteredPrice >= listPrice || quantity <= 0 {
		return 0
	}
	return (listPrice - enteredPrice) * quantity
}

// ApplySale deducts in.Quantity units from the product, consuming the
// lowest purchase price first (ties keep their current order), and reports
// the cost of goods sold along with the per-variant breakdown.
func ApplySale(p *models.Product, in SaleInput) (*SaleResult, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if in.SalePrice < 0 {
		return nil, ErrInvalidPrice
	}
	gross, err := mulAmounts(in.Quantity, in.SalePrice)
	if err != nil {
		return nil, err
	}
	if in.Discount < 0 || in.Discount > gross {
		return nil, ErrInvalidDiscount
	}
	if len(p.Variants) == 0 {
		return nil, ErrNoVariants
	}

	available := TotalStock(p.Variants)
	if in.Quantity > available {
		return nil, &InsufficientStockError{Product: p.Name, Requested: in.Quantity, Available: available}
	}

	variants := Clone(p.Variants)
	order := make([]int, len(variants))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(variants[a].PurchasePrice, variants[b].PurchasePrice)
	})

	result := &SaleResult{Total: gross - in.Discount}
	remaining := in.Quantity
	for _, i := range order {
		if remaining == 0 {
			break
		}
		deduct := min(remaining, variants[i].Stock)
		if deduct <= 0 {
			continue
		}
		cost, err := mulAmounts(deduct, variants[i].PurchasePrice)
		if err != nil {
			return nil, err
		}
		if result.PurchaseCost, err = addAmounts(result.PurchaseCost, cost); err != nil {
			return nil, err
		}
		remaining -= deduct
		variants[i].Stock -= deduct
		result.Allocations = append(result.Allocations, models.Allocation{
			VariantID: variants[i].ID,
			Quantity:  deduct,
			UnitCost:  variants[i].PurchasePrice,
		})
	}
	result.Variants = variants
	return result, nil
}

// ReverseSale puts a sale's units back where they were taken from. Units
// whose variant no longer exists, and sales recorded without a breakdown,
// are credited to the first variant.
func ReverseSale(p *models.Product, sale *models.Sale) []models.Variant {
	variants := Clone(p.Variants)
	allocations := sale.Allocations.Data()

	var unplaced int64
	var unplacedCost int64
	if len(allocations) == 0 {
		unplaced = sale.Quantity
		if sale.Quantity > 0 {
			unplacedCost = sale.PurchaseCost / sale.Quantity
		}
	}
	for _, a := range allocations {
		if i := indexOf(variants, a.VariantID); i >= 0 {
			variants[i].Stock += a.Quantity
			continue
		}
		unplaced += a.Quantity
		unplacedCost = a.UnitCost
	}

	if unplaced > 0 {
		if len(variants) == 0 {
			variants = append(variants, models.Variant{
				ID:            uuid.New(),
				ProductID:     p.ID,
				PurchasePrice: unplacedCost,
				IsOriginal:    true,
			})
		}
		variants[0].Stock += unplaced
	}
	return variants
}

// ApplyReceipt adds received goods to the batch with the same purchase price
// or opens a new, non-original batch.
func ApplyReceipt(p *models.Product, quantity, purchasePrice int64) (*ReceiptResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if purchasePrice < 0 {
		return nil, ErrInvalidPrice
	}

	variants := Clone(p.Variants)
	for i := range variants {
		if variants[i].PurchasePrice == purchasePrice {
			stock, err := addAmounts(variants[i].Stock, quantity)
			if err != nil {
				return nil, err
			}
			variants[i].Stock = stock
			return &ReceiptResult{Variants: variants, VariantID: variants[i].ID}, nil
		}
	}

	v := models.Variant{
		ID:            uuid.New(),
		ProductID:     p.ID,
		Position:      nextPosition(variants),
		PurchasePrice: purchasePrice,
		Stock:         quantity,
		IsOriginal:    false,
	}
	variants = append(variants, v)
	return &ReceiptResult{Variants: variants, VariantID: v.ID, Created: true}, nil
}

// ReverseReceipt takes a receipt's units back out of its batch. The batch is
// found by the recorded variant id and then by price; when neither matches,
// the variants come back unchanged with matched=false.
func ReverseReceipt(p *models.Product, receipt *models.StockReceipt) ([]models.Variant, bool, error) {
	variants := Clone(p.Variants)

	i := -1
	if receipt.VariantID != nil {
		i = indexOf(variants, *receipt.VariantID)
	}
	if i < 0 {
		i = slices.IndexFunc(variants, func(v models.Variant) bool {
			return v.PurchasePrice == receipt.Price
		})
	}
	if i < 0 {
		return variants, false, nil
	}

	if variants[i].Stock < receipt.Quantity {
		return nil, true, &StockConsumedError{
			Product:   p.Name,
			VariantID: variants[i].ID.String(),
			Needed:    receipt.Quantity,
			Available: variants[i].Stock,
		}
	}
	variants[i].Stock -= receipt.Quantity
	return variants, true, nil
}

// EditSale undoes old against the product as it is now and applies the new
// line against the result. Nothing is returned unless the whole edit fits.
func EditSale(p *models.Product, old *models.Sale, in SaleInput) (*SaleResult, error) {
	reversed := *p
	reversed.Variants = ReverseSale(p, old)
	return ApplySale(&reversed, in)
}

// EditReceipt undoes old and receives the new quantity and price.
func EditReceipt(p *models.Product, old *models.StockReceipt, quantity, purchasePrice int64) (*ReceiptResult, error) {
	variants, _, err := ReverseReceipt(p, old)
	if err != nil {
		return nil, err
	}
	reversed := *p
	reversed.Variants = variants
	return ApplyReceipt(&reversed, quantity, purchasePrice)
}

// OriginalVariant returns the variant used for price pre-fill: the first one
// flagged original, or the first variant when none is.
func OriginalVariant(variants []models.Variant) *models.Variant {
	if len(variants) == 0 {
		return nil
	}
	for i := range variants {
		if variants[i].IsOriginal {
			return &variants[i]
		}
	}
	return &variants[0]
}

// NormalizeOriginal makes exactly one variant original: the first flagged
// one, or the first variant when none is flagged.
func NormalizeOriginal(variants []models.Variant) []models.Variant {
	out := Clone(variants)
	if len(out) == 0 {
		return out
	}
	keep := slices.IndexFunc(out, func(v models.Variant) bool { return v.IsOriginal })
	if keep < 0 {
		keep = 0
	}
	for i := range out {
		out[i].IsOriginal = i == keep
	}
	return out
}

func indexOf(variants []models.Variant, id uuid.UUID) int {
	return slices.IndexFunc(variants, func(v models.Variant) bool { return v.ID == id })
}

func nextPosition(variants []models.Variant) int {
	next := 0
	for _, v := range variants {
		if v.Position >= next {
			next = v.Position + 1
		}
	}
	return next
}
