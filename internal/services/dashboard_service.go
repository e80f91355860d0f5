// internal/services/dashboard_service.go
package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

const topProductsLimit = 5

type DashboardService struct {
	db                *gorm.DB
	lowStockThreshold int64
}

type CategoryTotal struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
}

type ProductTotal struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	Revenue   int64     `json:"revenue"`
	Profit    int64     `json:"profit"`
}

type StockLevel struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int64     `json:"stock"`
}

type DailyTotal struct {
	Date     string `json:"date"`
	Revenue  int64  `json:"revenue"`
	Profit   int64  `json:"profit"`
	Expenses int64  `json:"expenses"`
}

// Summary is the accounting roll-up over a period. Stock figures describe
// the catalog as it is now, not at the end of the period.
type Summary struct {
	SaleCount          int             `json:"sale_count"`
	UnitsSold          int64           `json:"units_sold"`
	Revenue            int64           `json:"revenue"`
	Discounts          int64           `json:"discounts"`
	CostOfGoodsSold    int64           `json:"cost_of_goods_sold"`
	GrossProfit        int64           `json:"gross_profit"`
	Expenses           int64           `json:"expenses"`
	NetProfit          int64           `json:"net_profit"`
	ReceiptCount       int             `json:"receipt_count"`
	Purchases          int64           `json:"purchases"`
	StockUnits         int64           `json:"stock_units"`
	StockValue         int64           `json:"stock_value"`
	ExpensesByCategory []CategoryTotal `json:"expenses_by_category"`
	TopProducts        []ProductTotal  `json:"top_products"`
	LowStock           []StockLevel    `json:"low_stock"`
	Daily              []DailyTotal    `json:"daily"`
}

type SummaryInput struct {
	Sales             []models.Sale
	Receipts          []models.StockReceipt
	Expenses          []models.Expense
	Products          []models.Product
	LowStockThreshold int64
}

func NewDashboardService(db *gorm.DB, lowStockThreshold int64) *DashboardService {
	return &DashboardService{db: db, lowStockThreshold: lowStockThreshold}
}

func (s *DashboardService) GetSummary(ctx context.Context, ownerID uuid.UUID, r utils.DateRange) (*Summary, error) {
	db := s.db.WithContext(ctx)
	in := SummaryInput{LowStockThreshold: s.lowStockThreshold}

	if err := utils.ApplyDateRange(owned(db, ownerID), "sold_at", r).Find(&in.Sales).Error; err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	if err := utils.ApplyDateRange(owned(db, ownerID), "received_at", r).Find(&in.Receipts).Error; err != nil {
		return nil, fmt.Errorf("failed to load receipts: %w", err)
	}
	if err := utils.ApplyDateRange(owned(db, ownerID), "spent_at", r).Find(&in.Expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	if err := owned(db, ownerID).Preload("Variants", orderedVariants).Find(&in.Products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	return Summarize(in), nil
}

const dayLayout = "2006-01-02"

// Summarize rolls records up into a Summary.
func Summarize(in SummaryInput) *Summary {
	sum := &Summary{
		ExpensesByCategory: []CategoryTotal{},
		TopProducts:        []ProductTotal{},
		LowStock:           []StockLevel{},
		Daily:              []DailyTotal{},
	}

	days := make(map[string]*DailyTotal)
	day := func(key string) *DailyTotal {
		if d, ok := days[key]; ok {
			return d
		}
		d := &DailyTotal{Date: key}
		days[key] = d
		return d
	}

	byProduct := make(map[uuid.UUID]*ProductTotal)
	for _, sale := range in.Sales {
		sum.SaleCount++
		sum.UnitsSold += sale.Quantity
		sum.Revenue += sale.Total
		sum.Discounts += sale.Discount
		sum.CostOfGoodsSold += sale.PurchaseCost

		pt, ok := byProduct[sale.ProductID]
		if !ok {
			pt = &ProductTotal{ProductID: sale.ProductID, Name: sale.ProductName}
			byProduct[sale.ProductID] = pt
		}
		pt.Quantity += sale.Quantity
		pt.Revenue += sale.Total
		pt.Profit += sale.Profit()

		d := day(sale.SoldAt.Format(dayLayout))
		d.Revenue += sale.Total
		d.Profit += sale.Profit()
	}
	sum.GrossProfit = sum.Revenue - sum.CostOfGoodsSold

	byCategory := make(map[string]int64)
	for _, expense := range in.Expenses {
		sum.Expenses += expense.Amount
		byCategory[expense.Category] += expense.Amount
		day(expense.SpentAt.Format(dayLayout)).Expenses += expense.Amount
	}
	sum.NetProfit = sum.GrossProfit - sum.Expenses

	for _, receipt := range in.Receipts {
		sum.ReceiptCount++
		sum.Purchases += receipt.Cost()
	}

	for _, product := range in.Products {
		stock := ledger.TotalStock(product.Variants)
		sum.StockUnits += stock
		sum.StockValue += ledger.StockValue(product.Variants)
		if stock <= in.LowStockThreshold {
			sum.LowStock = append(sum.LowStock, StockLevel{ProductID: product.ID, Name: product.Name, Stock: stock})
		}
	}
	slices.SortStableFunc(sum.LowStock, func(a, b StockLevel) int {
		return cmp.Compare(a.Stock, b.Stock)
	})

	for category, amount := range byCategory {
		sum.ExpensesByCategory = append(sum.ExpensesByCategory, CategoryTotal{Category: category, Amount: amount})
	}
	slices.SortFunc(sum.ExpensesByCategory, func(a, b CategoryTotal) int {
		if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	for _, pt := range byProduct {
		sum.TopProducts = append(sum.TopProducts, *pt)
	}
	slices.SortFunc(sum.TopProducts, func(a, b ProductTotal) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(sum.TopProducts) > topProductsLimit {
		sum.TopProducts = sum.TopProducts[:topProductsLimit]
	}

	for _, d := range days {
		sum.Daily = append(sum.Daily, *d)
	}
	slices.SortFunc(sum.Daily, func(a, b DailyTotal) int {
		return cmp.Compare(a.Date, b.Date)
	})

	return sum
}
