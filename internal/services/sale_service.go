// internal/services/sale_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopbook/shopbook-backend/internal/database"
	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/metrics"
	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type SaleService struct {
	db *gorm.DB
}

// SaleItem is one line of a sale submission. UnitPrice defaults to the
// list price of the product's original variant. Without an explicit
// Discount, selling below list price is booked as a discount. The upper
// bounds keep quantity × price inside int64.
type SaleItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int64     `json:"quantity" validate:"gt=0,lte=1000000"`
	UnitPrice *int64    `json:"unit_price,omitempty" validate:"omitempty,gte=0,lte=1000000000000"`
	Discount  *int64    `json:"discount,omitempty" validate:"omitempty,gte=0,lte=1000000000000000000"`
}

type RecordSalesRequest struct {
	CustomerName string     `json:"customer_name" validate:"max=255"`
	PersonID     *uuid.UUID `json:"person_id,omitempty"`
	SoldAt       *time.Time `json:"sold_at,omitempty"`
	Items        []SaleItem `json:"items" validate:"required,min=1,max=100,dive"`
}

type UpdateSaleRequest struct {
	Quantity     int64      `json:"quantity" validate:"gt=0,lte=1000000"`
	UnitPrice    *int64     `json:"unit_price,omitempty" validate:"omitempty,gte=0,lte=1000000000000"`
	Discount     *int64     `json:"discount,omitempty" validate:"omitempty,gte=0,lte=1000000000000000000"`
	CustomerName *string    `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	PersonID     *uuid.UUID `json:"person_id,omitempty"`
	SoldAt       *time.Time `json:"sold_at,omitempty"`
}

type SaleFilter struct {
	utils.PaginationParams
	utils.DateRange
	ProductID *uuid.UUID
	PersonID  *uuid.UUID
}

func NewSaleService(db *gorm.DB) *SaleService {
	return &SaleService{db: db}
}

// priceSale works out the booked unit price and discount of a line.
func priceSale(p *models.Product, quantity int64, unitPrice, discount *int64) ledger.SaleInput {
	var listPrice int64
	if original := ledger.OriginalVariant(p.Variants); original != nil {
		listPrice = original.SalePrice
	}

	entered := listPrice
	if unitPrice != nil {
		entered = *unitPrice
	}

	in := ledger.SaleInput{Quantity: quantity, SalePrice: entered}
	switch {
	case discount != nil:
		in.Discount = *discount
	case entered < listPrice:
		in.SalePrice = listPrice
		in.Discount = ledger.Discount(listPrice, entered, quantity)
	}
	return in
}

func applySaleResult(sale *models.Sale, in ledger.SaleInput, res *ledger.SaleResult) {
	sale.Quantity = in.Quantity
	sale.SalePrice = in.SalePrice
	sale.Discount = in.Discount
	sale.PurchaseCost = res.PurchaseCost
	sale.Total = res.Total
	sale.Allocations = datatypes.NewJSONType(res.Allocations)
}

func recordStockRejection(err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientStock):
		metrics.RecordStockRejection("insufficient_stock")
	case errors.Is(err, ledger.ErrStockConsumed):
		metrics.RecordStockRejection("stock_consumed")
	}
}

// productLoader fetches a product with its variants, usually locked inside
// the caller's transaction.
type productLoader func(id uuid.UUID) (*models.Product, error)

// stageSales prices and applies every line against a shared plan, so later
// lines see the stock left by earlier ones. Nothing is returned unless every
// line fits; the products are the staged state to persist.
func stageSales(load productLoader, items []SaleItem, header models.Sale) ([]models.Sale, []*models.Product, error) {
	plan := ledger.NewPlan()
	sales := make([]models.Sale, 0, len(items))
	for _, item := range items {
		product, ok := plan.Product(item.ProductID)
		if !ok {
			var err error
			if product, err = load(item.ProductID); err != nil {
				return nil, nil, fmt.Errorf("%w: %s", err, item.ProductID)
			}
		}

		in := priceSale(product, item.Quantity, item.UnitPrice, item.Discount)
		res, err := plan.Sale(product, in)
		if err != nil {
			return nil, nil, err
		}

		sale := header
		sale.ProductID = product.ID
		sale.ProductName = product.Name
		applySaleResult(&sale, in, res)
		sales = append(sales, sale)
	}
	return sales, plan.Products(), nil
}

// RecordSales books every line of a submission or none of them. All lines
// are checked against the staged stock first; nothing is written unless
// every line fits.
func (s *SaleService) RecordSales(ctx context.Context, ownerID uuid.UUID, req *RecordSalesRequest) ([]models.Sale, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	soldAt := time.Now()
	if req.SoldAt != nil {
		soldAt = *req.SoldAt
	}
	batchID := uuid.New()

	var sales []models.Sale
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		personID, customerName, err := resolveCounterparty(tx, ownerID, req.PersonID, req.CustomerName)
		if err != nil {
			return err
		}

		header := models.Sale{
			CustomerName: customerName,
			PersonID:     personID,
			BatchID:      batchID,
			SoldAt:       soldAt,
		}
		header.OwnerID = ownerID

		staged, products, err := stageSales(func(id uuid.UUID) (*models.Product, error) {
			return loadProduct(tx, ownerID, id, true)
		}, req.Items, header)
		if err != nil {
			return err
		}
		sales = staged

		for _, product := range products {
			if err := saveVariants(tx, product); err != nil {
				return err
			}
		}
		if err := tx.Create(&sales).Error; err != nil {
			return fmt.Errorf("failed to save sales: %w", err)
		}
		return nil
	})
	if err != nil {
		recordStockRejection(err)
		return nil, err
	}

	metrics.RecordStockEvents("sale", "apply", len(sales))
	return sales, nil
}

func (s *SaleService) loadSale(tx *gorm.DB, ownerID, id uuid.UUID, forUpdate bool) (*models.Sale, error) {
	query := owned(tx, ownerID)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var sale models.Sale
	if err := query.First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &sale, nil
}

func (s *SaleService) GetSale(ctx context.Context, ownerID, id uuid.UUID) (*models.Sale, error) {
	return s.loadSale(s.db.WithContext(ctx), ownerID, id, false)
}

// UpdateSale reverses the sale against the product's current stock and
// books the new line in its place.
func (s *SaleService) UpdateSale(ctx context.Context, ownerID, id uuid.UUID, req *UpdateSaleRequest) (*models.Sale, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var sale *models.Sale
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var err error
		if sale, err = s.loadSale(tx, ownerID, id, true); err != nil {
			return err
		}

		product, err := loadProduct(tx, ownerID, sale.ProductID, true)
		if err != nil {
			return err
		}

		// price against the list as it stands once the old sale is undone
		reversed := *product
		reversed.Variants = ledger.ReverseSale(product, sale)
		in := priceSale(&reversed, req.Quantity, req.UnitPrice, req.Discount)

		res, err := ledger.EditSale(product, sale, in)
		if err != nil {
			return err
		}
		product.Variants = res.Variants
		if err := saveVariants(tx, product); err != nil {
			return err
		}

		applySaleResult(sale, in, res)
		if req.CustomerName != nil || req.PersonID != nil {
			name := sale.CustomerName
			if req.CustomerName != nil {
				name = *req.CustomerName
			}
			if sale.PersonID, sale.CustomerName, err = resolveCounterparty(tx, ownerID, req.PersonID, name); err != nil {
				return err
			}
		}
		if req.SoldAt != nil {
			sale.SoldAt = *req.SoldAt
		}

		if err := tx.Save(sale).Error; err != nil {
			return fmt.Errorf("failed to update sale: %w", err)
		}
		return nil
	})
	if err != nil {
		recordStockRejection(err)
		return nil, err
	}

	metrics.RecordStockEvents("sale", "edit", 1)
	return sale, nil
}

// DeleteSale puts the sold units back and removes the record. A sale whose
// product no longer exists is removed without touching stock.
func (s *SaleService) DeleteSale(ctx context.Context, ownerID, id uuid.UUID) error {
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		sale, err := s.loadSale(tx, ownerID, id, true)
		if err != nil {
			return err
		}

		product, err := loadProduct(tx, ownerID, sale.ProductID, true)
		switch {
		case errors.Is(err, ErrProductNotFound):
			logrus.WithFields(logrus.Fields{
				"sale_id":    sale.ID,
				"product_id": sale.ProductID,
			}).Warn("Deleting sale of a missing product, stock left unchanged")
		case err != nil:
			return err
		default:
			product.Variants = ledger.ReverseSale(product, sale)
			if err := saveVariants(tx, product); err != nil {
				return err
			}
		}

		if err := tx.Delete(sale).Error; err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordStockEvents("sale", "reverse", 1)
	return nil
}

// VoidSaleBatch reverses every sale of one submission and removes them
// together. Sales of products that no longer exist are removed without
// touching stock.
func (s *SaleService) VoidSaleBatch(ctx context.Context, ownerID, batchID uuid.UUID) (int, error) {
	var voided int
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var sales []models.Sale
		if err := owned(tx, ownerID).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("batch_id = ?", batchID).Order("created_at ASC").Find(&sales).Error; err != nil {
			return fmt.Errorf("failed to load sales: %w", err)
		}
		if len(sales) == 0 {
			return ErrSaleNotFound
		}

		products, err := stageSaleReversals(func(id uuid.UUID) (*models.Product, error) {
			return loadProduct(tx, ownerID, id, true)
		}, sales)
		if err != nil {
			return err
		}
		for _, product := range products {
			if err := saveVariants(tx, product); err != nil {
				return err
			}
		}

		if err := owned(tx, ownerID).Where("batch_id = ?", batchID).Delete(&models.Sale{}).Error; err != nil {
			return fmt.Errorf("failed to delete sales: %w", err)
		}
		voided = len(sales)
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.RecordStockEvents("sale", "reverse", voided)
	return voided, nil
}

// stageSaleReversals puts the units of every sale back on a shared plan.
func stageSaleReversals(load productLoader, sales []models.Sale) ([]*models.Product, error) {
	plan := ledger.NewPlan()
	missing := make(map[uuid.UUID]bool)
	for i := range sales {
		sale := &sales[i]
		if missing[sale.ProductID] {
			continue
		}

		product, ok := plan.Product(sale.ProductID)
		if !ok {
			var err error
			product, err = load(sale.ProductID)
			switch {
			case errors.Is(err, ErrProductNotFound):
				logrus.WithFields(logrus.Fields{
					"batch_id":   sale.BatchID,
					"product_id": sale.ProductID,
				}).Warn("Voiding sales of a missing product, stock left unchanged")
				missing[sale.ProductID] = true
				continue
			case err != nil:
				return nil, err
			}
		}
		plan.ReverseSale(product, sale)
	}
	return plan.Products(), nil
}

func (s *SaleService) ListSales(ctx context.Context, ownerID uuid.UUID, filter SaleFilter) ([]models.Sale, int64, error) {
	query := owned(s.db.WithContext(ctx).Model(&models.Sale{}), ownerID)
	query = utils.ApplyDateRange(query, "sold_at", filter.DateRange)

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.PersonID != nil {
		query = query.Where("person_id = ?", *filter.PersonID)
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(product_name) LIKE ? OR LOWER(customer_name) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	allowedSortFields := []string{"sold_at", "created_at", "total", "quantity", "product_name"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sales: %w", err)
	}
	return sales, total, nil
}
