// internal/services/catalog_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopbook/shopbook-backend/internal/database"
	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type CatalogService struct {
	db *gorm.DB
}

type VariantInput struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	PurchasePrice int64      `json:"purchase_price" validate:"gte=0,lte=1000000000000"`
	SalePrice     int64      `json:"sale_price" validate:"gte=0,lte=1000000000000"`
	Stock         int64      `json:"stock" validate:"gte=0,lte=1000000000"`
	IsOriginal    bool       `json:"is_original"`
}

type CreateProductRequest struct {
	Name     string         `json:"name" validate:"required,notblank,max=255"`
	Category string         `json:"category" validate:"max=100"`
	Tags     []string       `json:"tags,omitempty" validate:"max=20,dive,max=50"`
	Variants []VariantInput `json:"variants" validate:"required,min=1,max=50,dive"`
}

// UpdateProductRequest replaces only what is set. Variants, when given,
// become the full variant set; entries carrying an existing id keep it.
type UpdateProductRequest struct {
	Name     string         `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Category *string        `json:"category,omitempty" validate:"omitempty,max=100"`
	Tags     []string       `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	Variants []VariantInput `json:"variants,omitempty" validate:"omitempty,min=1,max=50,dive"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	InStock  *bool `json:"in_stock,omitempty"`
	LowStock int64 `json:"low_stock,omitempty"`
}

// Catalog is everything a client needs to render its books offline.
type Catalog struct {
	Products []models.Product      `json:"products"`
	Sales    []models.Sale         `json:"sales"`
	Receipts []models.StockReceipt `json:"receipts"`
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// buildVariants turns request rows into variants. A row keeps its id only
// when it names one of the product's current variants, so sales that
// consumed that batch can still be reversed into it.
func buildVariants(productID uuid.UUID, inputs []VariantInput, current []models.Variant) []models.Variant {
	known := make(map[uuid.UUID]bool, len(current))
	for _, v := range current {
		known[v.ID] = true
	}

	variants := make([]models.Variant, 0, len(inputs))
	for i, in := range inputs {
		id := uuid.New()
		if in.ID != nil && known[*in.ID] {
			id = *in.ID
			delete(known, id)
		}
		variants = append(variants, models.Variant{
			ID:            id,
			ProductID:     productID,
			Position:      i,
			PurchasePrice: in.PurchasePrice,
			SalePrice:     in.SalePrice,
			Stock:         in.Stock,
			IsOriginal:    in.IsOriginal,
		})
	}
	return ledger.NormalizeOriginal(variants)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func (s *CatalogService) CreateProduct(ctx context.Context, ownerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product := &models.Product{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Tags:     cleanTags(req.Tags),
	}
	product.ID = uuid.New()
	product.OwnerID = ownerID
	product.Variants = buildVariants(product.ID, req.Variants, nil)

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, ownerID, id uuid.UUID) (*models.Product, error) {
	return loadProduct(s.db.WithContext(ctx), ownerID, id, false)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, ownerID, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product *models.Product
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var err error
		product, err = loadProduct(tx, ownerID, id, true)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Name != "" {
			product.Name = strings.TrimSpace(req.Name)
			updates["name"] = product.Name
		}
		if req.Category != nil {
			product.Category = strings.TrimSpace(*req.Category)
			updates["category"] = product.Category
		}
		if req.Tags != nil {
			product.Tags = cleanTags(req.Tags)
			updates["tags"] = product.Tags
		}
		if len(updates) > 0 {
			if err := tx.Model(product).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}
		}

		if req.Variants != nil {
			product.Variants = buildVariants(product.ID, req.Variants, product.Variants)
			if err := saveVariants(tx, product); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct refuses while sales or receipts still point at the product;
// those records would otherwise lose the stock they refer to.
func (s *CatalogService) DeleteProduct(ctx context.Context, ownerID, id uuid.UUID) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		product, err := loadProduct(tx, ownerID, id, true)
		if err != nil {
			return err
		}

		var sales, receipts int64
		if err := tx.Model(&models.Sale{}).Where("product_id = ?", id).Count(&sales).Error; err != nil {
			return fmt.Errorf("failed to check sales: %w", err)
		}
		if err := tx.Model(&models.StockReceipt{}).Where("product_id = ?", id).Count(&receipts).Error; err != nil {
			return fmt.Errorf("failed to check receipts: %w", err)
		}
		if sales > 0 || receipts > 0 {
			return ErrProductInUse
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
			return fmt.Errorf("failed to delete variants: %w", err)
		}
		if err := tx.Delete(product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

func (s *CatalogService) SearchProducts(ctx context.Context, ownerID uuid.UUID, params ProductSearchParams) ([]models.Product, int64, error) {
	query := owned(s.db.WithContext(ctx).Model(&models.Product{}), ownerID)

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchTerm)
	}

	stockSum := "(SELECT COALESCE(SUM(v.stock), 0) FROM variants v WHERE v.product_id = products.id)"
	if params.InStock != nil {
		if *params.InStock {
			query = query.Where(stockSum + " > 0")
		} else {
			query = query.Where(stockSum + " = 0")
		}
	}
	if params.LowStock > 0 {
		query = query.Where(stockSum+" <= ?", params.LowStock)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "category"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Preload("Variants", orderedVariants).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// LoadCatalog returns the account's products, sales and receipts in one go.
func (s *CatalogService) LoadCatalog(ctx context.Context, ownerID uuid.UUID) (*Catalog, error) {
	db := s.db.WithContext(ctx)
	catalog := &Catalog{}

	if err := owned(db, ownerID).Preload("Variants", orderedVariants).
		Order("name ASC").Find(&catalog.Products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if err := owned(db, ownerID).Order("sold_at DESC").Find(&catalog.Sales).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	if err := owned(db, ownerID).Order("received_at DESC").Find(&catalog.Receipts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch receipts: %w", err)
	}
	return catalog, nil
}

// Categories

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

func (s *CatalogService) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	if err := owned(s.db.WithContext(ctx), ownerID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, ownerID uuid.UUID, req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	db := s.db.WithContext(ctx)

	var count int64
	if err := owned(db.Model(&models.Category{}), ownerID).
		Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrCategoryExists
	}

	category := &models.Category{Name: name}
	category.OwnerID = ownerID
	if err := db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes the label only; products keep the text they carry.
func (s *CatalogService) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error {
	result := owned(s.db.WithContext(ctx), ownerID).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
