// internal/services/receipt_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopbook/shopbook-backend/internal/database"
	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/metrics"
	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type ReceiptService struct {
	db *gorm.DB
}

// ReceiptItem is one line of goods received. SalePrice only applies when the
// line opens a new price batch; it defaults to the current list price.
type ReceiptItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int64     `json:"quantity" validate:"gt=0,lte=1000000"`
	Price     int64     `json:"price" validate:"gte=0,lte=1000000000000"`
	SalePrice *int64    `json:"sale_price,omitempty" validate:"omitempty,gte=0,lte=1000000000000"`
}

type RecordReceiptsRequest struct {
	SupplierName string        `json:"supplier_name" validate:"max=255"`
	PersonID     *uuid.UUID    `json:"person_id,omitempty"`
	ReceivedAt   *time.Time    `json:"received_at,omitempty"`
	Items        []ReceiptItem `json:"items" validate:"required,min=1,max=100,dive"`
}

type UpdateReceiptRequest struct {
	Quantity     int64      `json:"quantity" validate:"gt=0,lte=1000000"`
	Price        int64      `json:"price" validate:"gte=0,lte=1000000000000"`
	SupplierName *string    `json:"supplier_name,omitempty" validate:"omitempty,max=255"`
	PersonID     *uuid.UUID `json:"person_id,omitempty"`
	ReceivedAt   *time.Time `json:"received_at,omitempty"`
}

type ReceiptFilter struct {
	utils.PaginationParams
	utils.DateRange
	ProductID *uuid.UUID
	PersonID  *uuid.UUID
}

func NewReceiptService(db *gorm.DB) *ReceiptService {
	return &ReceiptService{db: db}
}

// priceNewBatch sets the selling price of a batch opened by a receipt.
func priceNewBatch(p *models.Product, res *ledger.ReceiptResult, salePrice *int64) {
	if !res.Created {
		return
	}

	price := int64(0)
	if original := ledger.OriginalVariant(p.Variants); original != nil {
		price = original.SalePrice
	}
	if salePrice != nil {
		price = *salePrice
	}
	for i := range p.Variants {
		if p.Variants[i].ID == res.VariantID {
			p.Variants[i].SalePrice = price
		}
	}
}

// stageReceipts applies every line of a delivery to a shared plan. Lines
// for one product land in the batches left by earlier lines.
func stageReceipts(load productLoader, items []ReceiptItem, header models.StockReceipt) ([]models.StockReceipt, []*models.Product, error) {
	plan := ledger.NewPlan()
	receipts := make([]models.StockReceipt, 0, len(items))
	for _, item := range items {
		product, ok := plan.Product(item.ProductID)
		if !ok {
			var err error
			if product, err = load(item.ProductID); err != nil {
				return nil, nil, fmt.Errorf("%w: %s", err, item.ProductID)
			}
		}

		res, err := plan.Receipt(product, item.Quantity, item.Price)
		if err != nil {
			return nil, nil, err
		}
		staged, _ := plan.Product(item.ProductID)
		priceNewBatch(staged, res, item.SalePrice)

		variantID := res.VariantID
		receipt := header
		receipt.ProductID = staged.ID
		receipt.ProductName = staged.Name
		receipt.VariantID = &variantID
		receipt.Quantity = item.Quantity
		receipt.Price = item.Price
		receipts = append(receipts, receipt)
	}
	return receipts, plan.Products(), nil
}

// RecordReceipts books a delivery as a whole. Any failing line leaves stock
// and the receipt table untouched.
func (s *ReceiptService) RecordReceipts(ctx context.Context, ownerID uuid.UUID, req *RecordReceiptsRequest) ([]models.StockReceipt, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}
	batchID := uuid.New()

	var receipts []models.StockReceipt
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		personID, supplierName, err := resolveCounterparty(tx, ownerID, req.PersonID, req.SupplierName)
		if err != nil {
			return err
		}

		header := models.StockReceipt{
			CustomerName: supplierName,
			PersonID:     personID,
			BatchID:      batchID,
			ReceivedAt:   receivedAt,
		}
		header.OwnerID = ownerID

		staged, products, err := stageReceipts(func(id uuid.UUID) (*models.Product, error) {
			return loadProduct(tx, ownerID, id, true)
		}, req.Items, header)
		if err != nil {
			return err
		}
		receipts = staged

		for _, product := range products {
			if err := saveVariants(tx, product); err != nil {
				return err
			}
		}
		if err := tx.Create(&receipts).Error; err != nil {
			return fmt.Errorf("failed to save receipts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordStockEvents("receipt", "apply", len(receipts))
	return receipts, nil
}

func (s *ReceiptService) loadReceipt(tx *gorm.DB, ownerID, id uuid.UUID, forUpdate bool) (*models.StockReceipt, error) {
	query := owned(tx, ownerID)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var receipt models.StockReceipt
	if err := query.First(&receipt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &receipt, nil
}

func (s *ReceiptService) GetReceipt(ctx context.Context, ownerID, id uuid.UUID) (*models.StockReceipt, error) {
	return s.loadReceipt(s.db.WithContext(ctx), ownerID, id, false)
}

// UpdateReceipt takes the old quantity out of its batch and receives the new
// line. It fails with ErrStockConsumed when the old units were already sold.
func (s *ReceiptService) UpdateReceipt(ctx context.Context, ownerID, id uuid.UUID, req *UpdateReceiptRequest) (*models.StockReceipt, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var receipt *models.StockReceipt
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var err error
		if receipt, err = s.loadReceipt(tx, ownerID, id, true); err != nil {
			return err
		}

		product, err := loadProduct(tx, ownerID, receipt.ProductID, true)
		if err != nil {
			return err
		}

		res, err := ledger.EditReceipt(product, receipt, req.Quantity, req.Price)
		if err != nil {
			return err
		}
		product.Variants = res.Variants
		priceNewBatch(product, res, nil)
		if err := saveVariants(tx, product); err != nil {
			return err
		}

		variantID := res.VariantID
		receipt.VariantID = &variantID
		receipt.Quantity = req.Quantity
		receipt.Price = req.Price
		if req.SupplierName != nil || req.PersonID != nil {
			name := receipt.CustomerName
			if req.SupplierName != nil {
				name = *req.SupplierName
			}
			if receipt.PersonID, receipt.CustomerName, err = resolveCounterparty(tx, ownerID, req.PersonID, name); err != nil {
				return err
			}
		}
		if req.ReceivedAt != nil {
			receipt.ReceivedAt = *req.ReceivedAt
		}

		if err := tx.Save(receipt).Error; err != nil {
			return fmt.Errorf("failed to update receipt: %w", err)
		}
		return nil
	})
	if err != nil {
		recordStockRejection(err)
		return nil, err
	}

	metrics.RecordStockEvents("receipt", "edit", 1)
	return receipt, nil
}

// DeleteReceipt removes the receipt and its units. When the batch it filled
// is gone the record is still removed and stock stays as it is.
func (s *ReceiptService) DeleteReceipt(ctx context.Context, ownerID, id uuid.UUID) error {
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		receipt, err := s.loadReceipt(tx, ownerID, id, true)
		if err != nil {
			return err
		}

		product, err := loadProduct(tx, ownerID, receipt.ProductID, true)
		switch {
		case errors.Is(err, ErrProductNotFound):
			logrus.WithFields(logrus.Fields{
				"receipt_id": receipt.ID,
				"product_id": receipt.ProductID,
			}).Warn("Deleting receipt of a missing product, stock left unchanged")
		case err != nil:
			return err
		default:
			variants, matched, err := ledger.ReverseReceipt(product, receipt)
			if err != nil {
				return err
			}
			if !matched {
				logrus.WithFields(logrus.Fields{
					"receipt_id": receipt.ID,
					"product_id": receipt.ProductID,
					"price":      receipt.Price,
				}).Warn("No batch matches deleted receipt, stock left unchanged")
				break
			}
			product.Variants = variants
			if err := saveVariants(tx, product); err != nil {
				return err
			}
		}

		if err := tx.Delete(receipt).Error; err != nil {
			return fmt.Errorf("failed to delete receipt: %w", err)
		}
		return nil
	})
	if err != nil {
		recordStockRejection(err)
		return err
	}

	metrics.RecordStockEvents("receipt", "reverse", 1)
	return nil
}

// VoidReceiptBatch takes a whole delivery back out of stock. It fails with
// ErrStockConsumed, and changes nothing, when any line was already sold.
func (s *ReceiptService) VoidReceiptBatch(ctx context.Context, ownerID, batchID uuid.UUID) (int, error) {
	var voided int
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var receipts []models.StockReceipt
		if err := owned(tx, ownerID).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("batch_id = ?", batchID).Order("created_at ASC").Find(&receipts).Error; err != nil {
			return fmt.Errorf("failed to load receipts: %w", err)
		}
		if len(receipts) == 0 {
			return ErrReceiptNotFound
		}

		products, err := stageReceiptReversals(func(id uuid.UUID) (*models.Product, error) {
			return loadProduct(tx, ownerID, id, true)
		}, receipts)
		if err != nil {
			return err
		}
		for _, product := range products {
			if err := saveVariants(tx, product); err != nil {
				return err
			}
		}

		if err := owned(tx, ownerID).Where("batch_id = ?", batchID).Delete(&models.StockReceipt{}).Error; err != nil {
			return fmt.Errorf("failed to delete receipts: %w", err)
		}
		voided = len(receipts)
		return nil
	})
	if err != nil {
		recordStockRejection(err)
		return 0, err
	}

	metrics.RecordStockEvents("receipt", "reverse", voided)
	return voided, nil
}

// stageReceiptReversals removes every receipt from its batch on a shared
// plan. Receipts whose product or batch is gone are skipped with a warning.
func stageReceiptReversals(load productLoader, receipts []models.StockReceipt) ([]*models.Product, error) {
	plan := ledger.NewPlan()
	missing := make(map[uuid.UUID]bool)
	for i := range receipts {
		receipt := &receipts[i]
		if missing[receipt.ProductID] {
			continue
		}

		product, ok := plan.Product(receipt.ProductID)
		if !ok {
			var err error
			product, err = load(receipt.ProductID)
			switch {
			case errors.Is(err, ErrProductNotFound):
				logrus.WithFields(logrus.Fields{
					"batch_id":   receipt.BatchID,
					"product_id": receipt.ProductID,
				}).Warn("Voiding receipts of a missing product, stock left unchanged")
				missing[receipt.ProductID] = true
				continue
			case err != nil:
				return nil, err
			}
		}

		matched, err := plan.ReverseReceipt(product, receipt)
		if err != nil {
			return nil, err
		}
		if !matched {
			logrus.WithFields(logrus.Fields{
				"receipt_id": receipt.ID,
				"product_id": receipt.ProductID,
				"price":      receipt.Price,
			}).Warn("No batch matches voided receipt, stock left unchanged")
		}
	}
	return plan.Products(), nil
}

func (s *ReceiptService) ListReceipts(ctx context.Context, ownerID uuid.UUID, filter ReceiptFilter) ([]models.StockReceipt, int64, error) {
	query := owned(s.db.WithContext(ctx).Model(&models.StockReceipt{}), ownerID)
	query = utils.ApplyDateRange(query, "received_at", filter.DateRange)

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
		return nil, 0, fmt.Errorf("failed to count receipts: %w", err)
	}

	allowedSortFields := []string{"received_at", "created_at", "quantity", "price", "product_name"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var receipts []models.StockReceipt
	if err := query.Find(&receipts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch receipts: %w", err)
	}
	return receipts, total, nil
}
