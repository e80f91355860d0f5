package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/models"
)

func widget() *models.Product {
	p := &models.Product{Name: "Widget"}
	p.ID = uuid.New()
	p.Variants = []models.Variant{
		{ID: uuid.New(), ProductID: p.ID, PurchasePrice: 100, SalePrice: 150, Stock: 10, IsOriginal: true},
		{ID: uuid.New(), ProductID: p.ID, Position: 1, PurchasePrice: 90, SalePrice: 140, Stock: 5},
	}
	return p
}

func ptr(v int64) *int64 { return &v }

func TestPriceSaleDefaultsToListPrice(t *testing.T) {
	in := priceSale(widget(), 3, nil, nil)
	assert.Equal(t, ledger.SaleInput{Quantity: 3, SalePrice: 150}, in)
}

func TestPriceSaleBelowListBooksDiscount(t *testing.T) {
	in := priceSale(widget(), 2, ptr(120), nil)

	assert.Equal(t, int64(150), in.SalePrice)
	assert.Equal(t, int64(60), in.Discount)
	total, err := ledger.SaleTotal(in.Quantity, in.SalePrice, in.Discount)
	require.NoError(t, err)
	assert.Equal(t, int64(240), total)
}

func TestPriceSaleAboveListKeepsPrice(t *testing.T) {
	in := priceSale(widget(), 2, ptr(200), nil)
	assert.Equal(t, ledger.SaleInput{Quantity: 2, SalePrice: 200}, in)
}

func TestPriceSaleExplicitDiscountWins(t *testing.T) {
	in := priceSale(widget(), 2, ptr(120), ptr(10))
	assert.Equal(t, ledger.SaleInput{Quantity: 2, SalePrice: 120, Discount: 10}, in)
}

func TestPriceSaleUsesOriginalVariant(t *testing.T) {
	p := widget()
	p.Variants[0].IsOriginal = false
	p.Variants[1].IsOriginal = true

	in := priceSale(p, 1, nil, nil)
	assert.Equal(t, int64(140), in.SalePrice)
}

func TestBuildVariantsKeepsOnlyKnownIDs(t *testing.T) {
	current := widget().Variants
	foreign := uuid.New()

	variants := buildVariants(uuid.New(), []VariantInput{
		{ID: &current[1].ID, PurchasePrice: 90, SalePrice: 140, Stock: 2},
		{ID: &foreign, PurchasePrice: 80, SalePrice: 130, Stock: 1},
		{PurchasePrice: 70, SalePrice: 120, Stock: 4},
	}, current)

	require.Len(t, variants, 3)
	assert.Equal(t, current[1].ID, variants[0].ID)
	assert.NotEqual(t, foreign, variants[1].ID)
	assert.NotEqual(t, uuid.Nil, variants[2].ID)
	assert.Equal(t, []int{0, 1, 2}, []int{variants[0].Position, variants[1].Position, variants[2].Position})
	assert.True(t, variants[0].IsOriginal, "first variant becomes original when none is flagged")
	assert.False(t, variants[1].IsOriginal)
}

func TestBuildVariantsRejectsDuplicatedID(t *testing.T) {
	current := widget().Variants
	id := current[0].ID

	variants := buildVariants(uuid.New(), []VariantInput{
		{ID: &id, PurchasePrice: 100, Stock: 1},
		{ID: &id, PurchasePrice: 100, Stock: 1},
	}, current)

	assert.Equal(t, id, variants[0].ID)
	assert.NotEqual(t, id, variants[1].ID)
}

func TestCleanTags(t *testing.T) {
	assert.Equal(t, []string{"tea", "green"}, cleanTags([]string{" tea", "", "green", "tea "}))
}

func TestPriceNewBatch(t *testing.T) {
	p := widget()
	res, err := ledger.ApplyReceipt(p, 4, 95)
	require.NoError(t, err)
	p.Variants = res.Variants

	priceNewBatch(p, res, nil)
	assert.Equal(t, int64(150), p.Variants[2].SalePrice, "new batch inherits the list price")

	res, err = ledger.ApplyReceipt(p, 1, 85)
	require.NoError(t, err)
	p.Variants = res.Variants
	priceNewBatch(p, res, ptr(175))
	assert.Equal(t, int64(175), p.Variants[3].SalePrice)
}

func TestPriceNewBatchLeavesMergedBatch(t *testing.T) {
	p := widget()
	res, err := ledger.ApplyReceipt(p, 4, 90)
	require.NoError(t, err)
	p.Variants = res.Variants

	priceNewBatch(p, res, ptr(999))
	assert.Equal(t, int64(140), p.Variants[1].SalePrice)
}
