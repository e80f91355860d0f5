// internal/handlers/receipt.go
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

// ReceiptBook is the part of services.ReceiptService the handler uses.
type ReceiptBook interface {
	RecordReceipts(ctx context.Context, ownerID uuid.UUID, req *services.RecordReceiptsRequest) ([]models.StockReceipt, error)
	GetReceipt(ctx context.Context, ownerID, id uuid.UUID) (*models.StockReceipt, error)
	UpdateReceipt(ctx context.Context, ownerID, id uuid.UUID, req *services.UpdateReceiptRequest) (*models.StockReceipt, error)
	DeleteReceipt(ctx context.Context, ownerID, id uuid.UUID) error
	VoidReceiptBatch(ctx context.Context, ownerID, batchID uuid.UUID) (int, error)
	ListReceipts(ctx context.Context, ownerID uuid.UUID, filter services.ReceiptFilter) ([]models.StockReceipt, int64, error)
}

type ReceiptHandler struct {
	receiptService ReceiptBook
}

func NewReceiptHandler(receiptService ReceiptBook) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// GET /receipts
func (h *ReceiptHandler) GetReceipts(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	r, ok := dateRange(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	filter := services.ReceiptFilter{
		PaginationParams: params,
		DateRange:        r,
		ProductID:        optionalUUID(c, "product_id"),
		PersonID:         optionalUUID(c, "person_id"),
	}

	receipts, total, err := h.receiptService.ListReceipts(c.Request.Context(), ownerID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(receipts, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /receipts
func (h *ReceiptHandler) RecordReceipts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	var req services.RecordReceiptsRequest
	if !bindJSON(c, &req) {
		return
	}

	receipts, err := h.receiptService.RecordReceipts(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyReceiptRecorded),
		"receipts": receipts,
	})
}

// GET /receipts/:id
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"receipt": receipt,
	})
}

// PUT /receipts/:id
func (h *ReceiptHandler) UpdateReceipt(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := h.receiptService.UpdateReceipt(c.Request.Context(), ownerID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReceiptUpdated),
		"receipt": receipt,
	})
}

// DELETE /receipts/:id
func (h *ReceiptHandler) DeleteReceipt(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.receiptService.DeleteReceipt(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReceiptDeleted),
	})
}

// DELETE /receipt-batches/:id
func (h *ReceiptHandler) VoidReceiptBatch(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	batchID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	voided, err := h.receiptService.VoidReceiptBatch(c.Request.Context(), ownerID, batchID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReceiptVoided),
		"voided":  voided,
	})
}
