// internal/handlers/sale.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopbook/shopbook-backend/internal/i18n"
	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/services"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

// SaleBook is the part of services.SaleService the handler uses.
type SaleBook interface {
	RecordSales(ctx context.Context, ownerID uuid.UUID, req *services.RecordSalesRequest) ([]models.Sale, error)
	GetSale(ctx context.Context, ownerID, id uuid.UUID) (*models.Sale, error)
	UpdateSale(ctx context.Context, ownerID, id uuid.UUID, req *services.UpdateSaleRequest) (*models.Sale, error)
	DeleteSale(ctx context.Context, ownerID, id uuid.UUID) error
	VoidSaleBatch(ctx context.Context, ownerID, batchID uuid.UUID) (int, error)
	ListSales(ctx context.Context, ownerID uuid.UUID, filter services.SaleFilter) ([]models.Sale, int64, error)
}

type SaleHandler struct {
	saleService SaleBook
}

func NewSaleHandler(saleService SaleBook) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// GET /sales
func (h *SaleHandler) GetSales(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	r, ok := dateRange(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	filter := services.SaleFilter{
		PaginationParams: params,
		DateRange:        r,
		ProductID:        optionalUUID(c, "product_id"),
		PersonID:         optionalUUID(c, "person_id"),
	}

	sales, total, err := h.saleService.ListSales(c.Request.Context(), ownerID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(sales, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /sales
func (h *SaleHandler) RecordSales(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	var req services.RecordSalesRequest
	if !bindJSON(c, &req) {
		return
	}

	sales, err := h.saleService.RecordSales(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySaleRecorded),
		"sales":   sales,
	})
}

// GET /sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"sale": sale,
	})
}

// PUT /sales/:id
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.UpdateSale(c.Request.Context(), ownerID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySaleUpdated),
		"sale":    sale,
	})
}

// DELETE /sales/:id
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySaleDeleted),
	})
}

// DELETE /sale-batches/:id
func (h *SaleHandler) VoidSaleBatch(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	batchID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	voided, err := h.saleService.VoidSaleBatch(c.Request.Context(), ownerID, batchID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySaleVoided),
		"voided":  voided,
	})
}
