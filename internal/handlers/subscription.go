// internal/handlers/subscription.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopbook/shopbook-backend/internal/i18n"
	"github.com/shopbook/shopbook-backend/internal/services"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type Subscriptions interface {
	Status(ctx context.Context, accountID uuid.UUID) (*services.SubscriptionStatus, error)
	CreateIntent(ctx context.Context, accountID uuid.UUID, req *services.CreateIntentRequest) (*services.IntentResponse, error)
	Confirm(ctx context.Context, accountID uuid.UUID, req *services.ConfirmIntentRequest) (*services.SubscriptionStatus, error)
}

type SubscriptionHandler struct {
	subscriptionService Subscriptions
}

func NewSubscriptionHandler(subscriptionService Subscriptions) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// GET /subscription
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	status, err := h.subscriptionService.Status(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, status)
}

// POST /subscription/intent
func (h *SubscriptionHandler) CreateIntent(c *gin.Context) {
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	var req services.CreateIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	intent, err := h.subscriptionService.CreateIntent(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, intent)
}

// POST /subscription/confirm
func (h *SubscriptionHandler) Confirm(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := accountID(c)
	if !ok {
		return
	}

	var req services.ConfirmIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	status, err := h.subscriptionService.Confirm(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":      i18n.T(lang, i18n.KeySubscriptionRenewed),
		"subscription": status,
	})
}
