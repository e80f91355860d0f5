// internal/handlers/report.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"

	"github.com/shopbook/shopbook-backend/internal/services"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type ReportHandler struct {
	dashboardService *services.DashboardService
	exportService    *services.ExportService
}

func NewReportHandler(dashboardService *services.DashboardService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{
		dashboardService: dashboardService,
		exportService:    exportService,
	}
}

// GET /dashboard
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	r, ok := dateRange(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.GetSummary(c.Request.Context(), ownerID, r)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, summary)
}

// GET /export/products.xlsx
func (h *ReportHandler) ExportProducts(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	file, err := h.exportService.ExportProducts(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	writeWorkbook(c, file, "products.xlsx")
}

// GET /export/sales.xlsx
func (h *ReportHandler) ExportSales(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	r, ok := dateRange(c)
	if !ok {
		return
	}

	file, err := h.exportService.ExportSales(c.Request.Context(), ownerID, r)
	if err != nil {
		respondError(c, err)
		return
	}
	writeWorkbook(c, file, "sales.xlsx")
}

func writeWorkbook(c *gin.Context, file *xlsx.File, filename string) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")

	if err := file.Write(c.Writer); err != nil {
		// headers are gone by now, so only log
		logrus.WithError(err).WithField("file", filename).Error("Failed to write workbook")
	}
}
