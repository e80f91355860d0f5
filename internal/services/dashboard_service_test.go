package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbook/shopbook-backend/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 10, 0, 0, 0, time.UTC)
}

func TestSummarize(t *testing.T) {
	tea := uuid.New()
	cup := uuid.New()

	products := []models.Product{
		{Name: "Tea", Variants: []models.Variant{{PurchasePrice: 100, Stock: 3}, {PurchasePrice: 80, Stock: 10}}},
		{Name: "Cup", Variants: []models.Variant{{PurchasePrice: 50, Stock: 20}}},
	}
	products[0].ID = tea
	products[1].ID = cup

	in := SummaryInput{
		Sales: []models.Sale{
			{ProductID: tea, ProductName: "Tea", Quantity: 2, SalePrice: 150, Discount: 20, PurchaseCost: 180, Total: 280, SoldAt: day(1)},
			{ProductID: cup, ProductName: "Cup", Quantity: 1, SalePrice: 90, PurchaseCost: 50, Total: 90, SoldAt: day(1)},
			{ProductID: tea, ProductName: "Tea", Quantity: 1, SalePrice: 150, PurchaseCost: 80, Total: 150, SoldAt: day(2)},
		},
		Receipts: []models.StockReceipt{
			{Quantity: 10, Price: 80, ReceivedAt: day(1)},
		},
		Expenses: []models.Expense{
			{Category: "rent", Amount: 100, SpentAt: day(2)},
			{Category: "power", Amount: 30, SpentAt: day(3)},
			{Category: "rent", Amount: 50, SpentAt: day(3)},
		},
		Products:          products,
		LowStockThreshold: 13,
	}

	sum := Summarize(in)

	assert.Equal(t, 3, sum.SaleCount)
	assert.Equal(t, int64(4), sum.UnitsSold)
	assert.Equal(t, int64(520), sum.Revenue)
	assert.Equal(t, int64(20), sum.Discounts)
	assert.Equal(t, int64(310), sum.CostOfGoodsSold)
	assert.Equal(t, int64(210), sum.GrossProfit)
	assert.Equal(t, int64(180), sum.Expenses)
	assert.Equal(t, int64(30), sum.NetProfit)
	assert.Equal(t, 1, sum.ReceiptCount)
	assert.Equal(t, int64(800), sum.Purchases)
	assert.Equal(t, int64(33), sum.StockUnits)
	assert.Equal(t, int64(300+800+1000), sum.StockValue)

	assert.Equal(t, []CategoryTotal{{"rent", 150}, {"power", 30}}, sum.ExpensesByCategory)

	require.Len(t, sum.TopProducts, 2)
	assert.Equal(t, "Tea", sum.TopProducts[0].Name)
	assert.Equal(t, int64(430), sum.TopProducts[0].Revenue)
	assert.Equal(t, int64(170), sum.TopProducts[0].Profit)

	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, "Tea", sum.LowStock[0].Name)

	require.Len(t, sum.Daily, 3)
	assert.Equal(t, DailyTotal{Date: "2024-03-01", Revenue: 370, Profit: 140}, sum.Daily[0])
	assert.Equal(t, DailyTotal{Date: "2024-03-02", Revenue: 150, Profit: 70, Expenses: 100}, sum.Daily[1])
	assert.Equal(t, DailyTotal{Date: "2024-03-03", Expenses: 80}, sum.Daily[2])
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(SummaryInput{})

	assert.Zero(t, sum.Revenue)
	assert.Zero(t, sum.NetProfit)
	assert.NotNil(t, sum.TopProducts)
	assert.NotNil(t, sum.LowStock)
	assert.NotNil(t, sum.Daily)
	assert.NotNil(t, sum.ExpensesByCategory)
}

func TestSummarizeLimitsTopProducts(t *testing.T) {
	var sales []models.Sale
	for i := 0; i < topProductsLimit+3; i++ {
		sales = append(sales, models.Sale{ProductID: uuid.New(), ProductName: string(rune('A' + i)), Total: int64(i)})
	}

	sum := Summarize(SummaryInput{Sales: sales})

	require.Len(t, sum.TopProducts, topProductsLimit)
	assert.Equal(t, int64(topProductsLimit+2), sum.TopProducts[0].Revenue)
}
