// internal/handlers/expense.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopbook/shopbook-backend/internal/i18n"
	"github.com/shopbook/shopbook-backend/internal/services"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
	}
}

// GET /expenses
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	r, ok := dateRange(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	expenses, total, err := h.expenseService.ListExpenses(c.Request.Context(), ownerID, services.ExpenseFilter{
		PaginationParams: params,
		DateRange:        r,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(expenses, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /expenses
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	var req services.CreateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyExpenseCreated),
		"expense": expense,
	})
}

// GET /expenses/:id
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"expense": expense,
	})
}

// PUT /expenses/:id
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), ownerID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyExpenseUpdated),
		"expense": expense,
	})
}

// DELETE /expenses/:id
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyExpenseDeleted),
	})
}
