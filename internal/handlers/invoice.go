// internal/handlers/invoice.go
package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shopbook/shopbook-backend/internal/i18n"
	"github.com/shopbook/shopbook-backend/internal/services"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// GET /invoices
func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	r, ok := dateRange(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), ownerID, services.InvoiceFilter{
		PaginationParams: params,
		DateRange:        r,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(invoices, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	var req services.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInvoiceCreated),
		"invoice": invoice,
	})
}

// GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"invoice": invoice}
	if invoice.ArchiveKey != "" {
		url, err := h.invoiceService.ArchiveURL(c.Request.Context(), ownerID, id)
		if err != nil {
			logrus.WithError(err).WithField("invoice", invoice.Number).Warn("Failed to sign archive URL")
		} else if url != "" {
			response["archive_url"] = url
		}
	}

	utils.SuccessResponse(c, response)
}

// GET /invoices/:id/html
func (h *InvoiceHandler) RenderInvoice(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.RenderInvoiceHTML(&buf, invoice, h.invoiceService.Books()); err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// DELETE /invoices/:id
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInvoiceDeleted),
	})
}
