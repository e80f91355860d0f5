// internal/handlers/catalog.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopbook/shopbook-backend/internal/i18n"
	"github.com/shopbook/shopbook-backend/internal/services"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// GET /catalog
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	catalog, err := h.catalogService.LoadCatalog(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, catalog)
}

// GET /products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	searchParams := services.ProductSearchParams{
		PaginationParams: params,
	}

	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil {
			searchParams.InStock = &inStock
		}
	}

	if lowStockStr := c.Query("low_stock"); lowStockStr != "" {
		if lowStock, err := strconv.ParseInt(lowStockStr, 10, 64); err == nil && lowStock > 0 {
			searchParams.LowStock = lowStock
		}
	}

	products, total, err := h.catalogService.SearchProducts(c.Request.Context(), ownerID, searchParams)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductCreated),
		"product": product,
	})
}

// GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// PUT /products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), ownerID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductUpdated),
		"product": product,
	})
}

// DELETE /products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductDeleted),
	})
}

// GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	categories, err := h.catalogService.ListCategories(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"categories": categories,
	})
}

// POST /categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	var req services.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyCategoryCreated),
		"category": category,
	})
}

// DELETE /categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCategoryDeleted),
	})
}
