package ledger

import (
	"github.com/google/uuid"

	"github.com/shopbook/shopbook-backend/internal/models"
)

// Plan stages a multi-item submission. Each product gets one working copy so
// later lines see the stock left by earlier ones; the caller persists
// Products() only when every line was accepted.
type Plan struct {
	products map[uuid.UUID]*models.Product
	order    []uuid.UUID
}

func NewPlan() *Plan {
	return &Plan{products: make(map[uuid.UUID]*models.Product)}
}

func (pl *Plan) working(p *models.Product) *models.Product {
	if w, ok := pl.products[p.ID]; ok {
		return w
	}
	w := *p
	w.Variants = Clone(p.Variants)
	pl.products[p.ID] = &w
	pl.order = append(pl.order, p.ID)
	return &w
}

// Product returns the staged state of a product already touched by the plan.
func (pl *Plan) Product(id uuid.UUID) (*models.Product, bool) {
	w, ok := pl.products[id]
	return w, ok
}

func (pl *Plan) Sale(p *models.Product, in SaleInput) (*SaleResult, error) {
	w := pl.working(p)
	res, err := ApplySale(w, in)
	if err != nil {
		return nil, err
	}
	w.Variants = res.Variants
	return res, nil
}

func (pl *Plan) ReverseSale(p *models.Product, sale *models.Sale) {
	w := pl.working(p)
	w.Variants = ReverseSale(w, sale)
}

func (pl *Plan) Receipt(p *models.Product, quantity, purchasePrice int64) (*ReceiptResult, error) {
	w := pl.working(p)
	res, err := ApplyReceipt(w, quantity, purchasePrice)
	if err != nil {
		return nil, err
	}
	w.Variants = res.Variants
	return res, nil
}

func (pl *Plan) ReverseReceipt(p *models.Product, receipt *models.StockReceipt) (bool, error) {
	w := pl.working(p)
	variants, matched, err := ReverseReceipt(w, receipt)
	if err != nil {
		return matched, err
	}
	w.Variants = variants
	return matched, nil
}

// Products lists the staged products in the order they were first touched.
func (pl *Plan) Products() []*models.Product {
	out := make([]*models.Product, 0, len(pl.order))
	for _, id := range pl.order {
		out = append(out, pl.products[id])
	}
	return out
}
