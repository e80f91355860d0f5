// internal/services/export_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/shopbook/shopbook-backend/internal/config"
	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

const exportTimeLayout = "2006-01-02 15:04"

type ExportService struct {
	db    *gorm.DB
	books config.BooksConfig
}

func NewExportService(db *gorm.DB, books config.BooksConfig) *ExportService {
	return &ExportService{db: db, books: books}
}

func (s *ExportService) ExportProducts(ctx context.Context, ownerID uuid.UUID) (*xlsx.File, error) {
	var products []models.Product
	if err := owned(s.db.WithContext(ctx), ownerID).
		Preload("Variants", orderedVariants).
		Order("name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return BuildProductsWorkbook(products, s.books)
}

func (s *ExportService) ExportSales(ctx context.Context, ownerID uuid.UUID, r utils.DateRange) (*xlsx.File, error) {
	var sales []models.Sale
	query := utils.ApplyDateRange(owned(s.db.WithContext(ctx), ownerID), "sold_at", r)
	if err := query.Order("sold_at ASC").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	return BuildSalesWorkbook(sales, s.books)
}

func addHeader(sheet *xlsx.Sheet, headers ...string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetString(h)
	}
}

func addAmount(row *xlsx.Row, amount int64, scale int32) {
	value, _ := utils.MinorToDecimal(amount, scale).Float64()
	row.AddCell().SetFloat(value)
}

// BuildProductsWorkbook writes one row per variant.
func BuildProductsWorkbook(products []models.Product, books config.BooksConfig) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	addHeader(sheet, "Product", "Category", "Tags", "Batch", "Original",
		"Purchase price", "Sale price", "Stock", "Stock value")
	for _, p := range products {
		for i, v := range p.Variants {
			row := sheet.AddRow()
			row.AddCell().SetString(p.Name)
			row.AddCell().SetString(p.Category)
			row.AddCell().SetString(strings.Join(p.Tags, ", "))
			row.AddCell().SetInt(i + 1)
			row.AddCell().SetBool(v.IsOriginal)
			addAmount(row, v.PurchasePrice, books.CurrencyScale)
			addAmount(row, v.SalePrice, books.CurrencyScale)
			row.AddCell().SetInt64(v.Stock)
			addAmount(row, v.Stock*v.PurchasePrice, books.CurrencyScale)
		}
	}

	totals, err := file.AddSheet("Totals")
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	addHeader(totals, "Product", "Stock", "Stock value")
	for _, p := range products {
		row := totals.AddRow()
		row.AddCell().SetString(p.Name)
		row.AddCell().SetInt64(ledger.TotalStock(p.Variants))
		addAmount(row, ledger.StockValue(p.Variants), books.CurrencyScale)
	}
	return file, nil
}

func BuildSalesWorkbook(sales []models.Sale, books config.BooksConfig) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales")
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	addHeader(sheet, "Date", "Product", "Customer", "Quantity", "Sale price",
		"Discount", "Total", "Purchase cost", "Profit")
	for i := range sales {
		sale := &sales[i]
		row := sheet.AddRow()
		row.AddCell().SetString(sale.SoldAt.Format(exportTimeLayout))
		row.AddCell().SetString(sale.ProductName)
		row.AddCell().SetString(sale.CustomerName)
		row.AddCell().SetInt64(sale.Quantity)
		addAmount(row, sale.SalePrice, books.CurrencyScale)
		addAmount(row, sale.Discount, books.CurrencyScale)
		addAmount(row, sale.Total, books.CurrencyScale)
		addAmount(row, sale.PurchaseCost, books.CurrencyScale)
		addAmount(row, sale.Profit(), books.CurrencyScale)
	}
	return file, nil
}
