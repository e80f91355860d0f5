package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/shopbook/shopbook-backend/internal/models"
)

func variant(price, stock int64) models.Variant {
	return models.Variant{ID: uuid.New(), PurchasePrice: price, Stock: stock}
}

func product(name string, variants ...models.Variant) *models.Product {
	p := &models.Product{Name: name, Variants: variants}
	p.ID = uuid.New()
	for i := range p.Variants {
		p.Variants[i].ProductID = p.ID
		p.Variants[i].Position = i
	}
	return p
}

func stocks(variants []models.Variant) []int64 {
	out := make([]int64, len(variants))
	for i, v := range variants {
		out[i] = v.Stock
	}
	return out
}

func saleFrom(p *models.Product, in SaleInput, res *SaleResult) *models.Sale {
	return &models.Sale{
		ProductID:    p.ID,
		ProductName:  p.Name,
		Quantity:     in.Quantity,
		SalePrice:    in.SalePrice,
		Discount:     in.Discount,
		PurchaseCost: res.PurchaseCost,
		Total:        res.Total,
		Allocations:  datatypes.NewJSONType(res.Allocations),
	}
}

func TestApplySaleConsumesCheapestFirst(t *testing.T) {
	p := product("Cable", variant(20, 5), variant(10, 5))

	res, err := ApplySale(p, SaleInput{Quantity: 7, SalePrice: 30})
	require.NoError(t, err)

	assert.Equal(t, int64(5*10+2*20), res.PurchaseCost)
	assert.Equal(t, []int64{3, 0}, stocks(res.Variants))
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, p.Variants[1].ID, res.Allocations[0].VariantID)
	assert.Equal(t, int64(5), res.Allocations[0].Quantity)
	assert.Equal(t, p.Variants[0].ID, res.Allocations[1].VariantID)
	assert.Equal(t, int64(2), res.Allocations[1].Quantity)
}

func TestApplySaleLowestCostExample(t *testing.T) {
	p := product("Mug", variant(10, 5), variant(20, 5))

	res, err := ApplySale(p, SaleInput{Quantity: 7, SalePrice: 25})
	require.NoError(t, err)

	assert.Equal(t, int64(5*10+2*20), res.PurchaseCost)
	assert.Equal(t, []int64{0, 3}, stocks(res.Variants))
}

func TestApplySaleTiesKeepOrder(t *testing.T) {
	p := product("Pen", variant(10, 2), variant(10, 2))

	res, err := ApplySale(p, SaleInput{Quantity: 3, SalePrice: 12})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, stocks(res.Variants))
}

func TestApplySaleRejectsInsufficientStock(t *testing.T) {
	p := product("Lamp", variant(10, 2), variant(15, 1))

	res, err := ApplySale(p, SaleInput{Quantity: 4, SalePrice: 20})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Lamp", stockErr.Product)
	assert.Equal(t, int64(3), stockErr.Available)
	assert.Contains(t, err.Error(), "insufficient stock for product Lamp")

	assert.Equal(t, []int64{2, 1}, stocks(p.Variants))
}

func TestApplySaleValidatesInput(t *testing.T) {
	p := product("Box", variant(1, 10))

	_, err := ApplySale(p, SaleInput{Quantity: 0, SalePrice: 5})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ApplySale(p, SaleInput{Quantity: 1, SalePrice: -1})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ApplySale(p, SaleInput{Quantity: 1, SalePrice: 5, Discount: 6})
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = ApplySale(product("Empty"), SaleInput{Quantity: 1, SalePrice: 5})
	assert.ErrorIs(t, err, ErrNoVariants)
}

func TestApplySaleDoesNotMutateInput(t *testing.T) {
	p := product("Cup", variant(10, 4))

	_, err := ApplySale(p, SaleInput{Quantity: 3, SalePrice: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.Variants[0].Stock)
}

func TestReverseSaleRestoresExactVariants(t *testing.T) {
	p := product("Cable", variant(20, 5), variant(10, 5))
	in := SaleInput{Quantity: 7, SalePrice: 30}

	res, err := ApplySale(p, in)
	require.NoError(t, err)

	after := product("Cable")
	after.ID = p.ID
	after.Variants = res.Variants

	restored := ReverseSale(after, saleFrom(p, in, res))
	assert.Equal(t, []int64{5, 5}, stocks(restored))
}

func TestReverseSaleFallsBackToFirstVariant(t *testing.T) {
	p := product("Old", variant(10, 1), variant(12, 1))
	legacy := &models.Sale{Quantity: 3, PurchaseCost: 30}

	restored := ReverseSale(p, legacy)
	assert.Equal(t, []int64{4, 1}, stocks(restored))

	gone := &models.Sale{
		Quantity:    2,
		Allocations: datatypes.NewJSONType([]models.Allocation{{VariantID: uuid.New(), Quantity: 2, UnitCost: 9}}),
	}
	restored = ReverseSale(p, gone)
	assert.Equal(t, []int64{3, 1}, stocks(restored))
}

func TestReverseSaleRecreatesVariantWhenNoneLeft(t *testing.T) {
	p := product("Bare")
	sale := &models.Sale{
		Quantity:    2,
		Allocations: datatypes.NewJSONType([]models.Allocation{{VariantID: uuid.New(), Quantity: 2, UnitCost: 7}}),
	}

	restored := ReverseSale(p, sale)
	require.Len(t, restored, 1)
	assert.Equal(t, int64(2), restored[0].Stock)
	assert.Equal(t, int64(7), restored[0].PurchasePrice)
	assert.True(t, restored[0].IsOriginal)
}

func TestApplyReceiptMergesSamePrice(t *testing.T) {
	p := product("Soap", variant(10, 5))

	res, err := ApplyReceipt(p, 3, 10)
	require.NoError(t, err)
	require.Len(t, res.Variants, 1)
	assert.Equal(t, int64(8), res.Variants[0].Stock)
	assert.Equal(t, p.Variants[0].ID, res.VariantID)
	assert.False(t, res.Created)
}

func TestApplyReceiptCreatesBatch(t *testing.T) {
	orig := variant(10, 5)
	orig.IsOriginal = true
	p := product("Soap", orig)

	res, err := ApplyReceipt(p, 4, 11)
	require.NoError(t, err)
	require.Len(t, res.Variants, 2)
	added := res.Variants[1]
	assert.True(t, res.Created)
	assert.Equal(t, res.VariantID, added.ID)
	assert.False(t, added.IsOriginal)
	assert.Equal(t, int64(4), added.Stock)
	assert.Equal(t, int64(11), added.PurchasePrice)
	assert.Equal(t, 1, added.Position)
	assert.Equal(t, p.ID, added.ProductID)
	assert.Len(t, p.Variants, 1)
}

func TestApplyReceiptValidatesInput(t *testing.T) {
	p := product("Soap", variant(10, 5))

	_, err := ApplyReceipt(p, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ApplyReceipt(p, 1, -10)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestApplyReceiptRejectsStockOverflow(t *testing.T) {
	p := product("Soap", variant(100, math.MaxInt64-1))

	res, err := ApplyReceipt(p, 5, 100)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrAmountOverflow)
	assert.Equal(t, int64(math.MaxInt64-1), p.Variants[0].Stock)

	res, err = ApplyReceipt(p, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), res.Variants[0].Stock)
}

func TestApplySaleRejectsAmountOverflow(t *testing.T) {
	p := product("Gold", variant(10, 2))

	_, err := ApplySale(p, SaleInput{Quantity: 2, SalePrice: 5e18})
	assert.ErrorIs(t, err, ErrAmountOverflow)
	assert.NotErrorIs(t, err, ErrInvalidDiscount)

	p = product("Gold", variant(5e18, 2))
	_, err = ApplySale(p, SaleInput{Quantity: 2, SalePrice: 1})
	assert.ErrorIs(t, err, ErrAmountOverflow)
	assert.Equal(t, int64(2), p.Variants[0].Stock)
}

func TestSaleTotal(t *testing.T) {
	total, err := SaleTotal(3, 150, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(420), total)

	_, err = SaleTotal(math.MaxInt64, 2, 0)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	_, err = SaleTotal(1, 1, math.MinInt64)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestTotalStockSaturates(t *testing.T) {
	variants := []models.Variant{variant(1, math.MaxInt64), variant(2, 10)}
	assert.Equal(t, int64(math.MaxInt64), TotalStock(variants))
}

func TestReverseReceipt(t *testing.T) {
	p := product("Rice", variant(10, 5), variant(12, 8))
	id := p.Variants[1].ID

	variants, matched, err := ReverseReceipt(p, &models.StockReceipt{VariantID: &id, Quantity: 3, Price: 12})
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, []int64{5, 5}, stocks(variants))

	variants, matched, err = ReverseReceipt(p, &models.StockReceipt{Quantity: 2, Price: 10})
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, []int64{3, 8}, stocks(variants))
}

func TestReverseReceiptMissingBatchIsNoop(t *testing.T) {
	p := product("Rice", variant(10, 5))

	variants, matched, err := ReverseReceipt(p, &models.StockReceipt{Quantity: 2, Price: 99})
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, []int64{5}, stocks(variants))
}

func TestReverseReceiptRefusesNegativeStock(t *testing.T) {
	p := product("Rice", variant(10, 1))

	variants, _, err := ReverseReceipt(p, &models.StockReceipt{Quantity: 3, Price: 10})
	assert.Nil(t, variants)
	assert.ErrorIs(t, err, ErrStockConsumed)
	assert.Equal(t, int64(1), p.Variants[0].Stock)
}

func TestEditSale(t *testing.T) {
	p := product("Tea", variant(10, 5))
	in := SaleInput{Quantity: 4, SalePrice: 15}
	res, err := ApplySale(p, in)
	require.NoError(t, err)
	old := saleFrom(p, in, res)
	p.Variants = res.Variants

	edited, err := EditSale(p, old, SaleInput{Quantity: 5, SalePrice: 15})
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, stocks(edited.Variants))
	assert.Equal(t, int64(50), edited.PurchaseCost)

	_, err = EditSale(p, old, SaleInput{Quantity: 6, SalePrice: 15})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, []int64{1}, stocks(p.Variants))
}

func TestEditReceipt(t *testing.T) {
	p := product("Oil", variant(10, 5))
	res, err := ApplyReceipt(p, 5, 12)
	require.NoError(t, err)
	old := &models.StockReceipt{VariantID: &res.VariantID, Quantity: 5, Price: 12}
	p.Variants = res.Variants

	edited, err := EditReceipt(p, old, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 0}, stocks(edited.Variants))

	p.Variants[1].Stock = 1
	_, err = EditReceipt(p, old, 2, 10)
	assert.ErrorIs(t, err, ErrStockConsumed)
}

func TestStockConservation(t *testing.T) {
	p := product("Flour", variant(30, 4), variant(10, 2), variant(20, 6))
	before := TotalStock(p.Variants)

	r1, err := ApplyReceipt(p, 5, 25)
	require.NoError(t, err)
	p1 := *p
	p1.Variants = r1.Variants
	receipt := &models.StockReceipt{VariantID: &r1.VariantID, Quantity: 5, Price: 25}

	in := SaleInput{Quantity: 9, SalePrice: 40}
	s1, err := ApplySale(&p1, in)
	require.NoError(t, err)
	p2 := p1
	p2.Variants = s1.Variants

	p3 := p2
	p3.Variants = ReverseSale(&p2, saleFrom(&p1, in, s1))

	variants, matched, err := ReverseReceipt(&p3, receipt)
	require.NoError(t, err)
	require.True(t, matched)

	assert.Equal(t, before, TotalStock(variants))
	assert.Equal(t, int64(30*4+10*2+20*6), StockValue(variants))
}

func TestDiscount(t *testing.T) {
	first := Discount(150, 140, 3)
	second := Discount(150, 140, 3)
	assert.Equal(t, int64(30), first)
	assert.Equal(t, first, second)

	assert.Equal(t, int64(0), Discount(150, 160, 3))
	assert.Equal(t, int64(0), Discount(150, 150, 3))
	assert.Equal(t, int64(0), Discount(150, 100, 0))
}

func TestWidgetScenario(t *testing.T) {
	v := variant(100, 10)
	v.IsOriginal = true
	v.SalePrice = 150
	p := product("Widget", v)

	in := SaleInput{Quantity: 4, SalePrice: OriginalVariant(p.Variants).SalePrice}
	res, err := ApplySale(p, in)
	require.NoError(t, err)
	assert.Equal(t, int64(400), res.PurchaseCost)
	assert.Equal(t, int64(6), res.Variants[0].Stock)
	assert.Equal(t, int64(600), res.Total)

	sale := saleFrom(p, in, res)
	p.Variants = res.Variants
	restored := ReverseSale(p, sale)
	assert.Equal(t, int64(10), restored[0].Stock)
}

func TestOriginalVariantPolicy(t *testing.T) {
	a, b, c := variant(1, 1), variant(2, 1), variant(3, 1)
	assert.Equal(t, a.ID, OriginalVariant([]models.Variant{a, b, c}).ID)
	assert.Nil(t, OriginalVariant(nil))

	b.IsOriginal = true
	c.IsOriginal = true
	assert.Equal(t, b.ID, OriginalVariant([]models.Variant{a, b, c}).ID)

	normalized := NormalizeOriginal([]models.Variant{a, b, c})
	assert.False(t, normalized[0].IsOriginal)
	assert.True(t, normalized[1].IsOriginal)
	assert.False(t, normalized[2].IsOriginal)

	normalized = NormalizeOriginal([]models.Variant{variant(1, 1), variant(2, 1)})
	assert.True(t, normalized[0].IsOriginal)
	assert.False(t, normalized[1].IsOriginal)
}
