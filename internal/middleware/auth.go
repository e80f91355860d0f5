// internal/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shopbook/shopbook-backend/internal/i18n"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}

		// ValidateJWT already checked the id
		accountID, _ := uuid.Parse(claims.AccountID)
		c.Set("account_id", accountID)
		c.Set("display_name", claims.DisplayName)
		c.Next()
	}
}

type SubscriptionChecker interface {
	IsActive(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// SubscriptionRequired blocks accounts without remaining days. It must run
// after AuthRequired.
func SubscriptionRequired(checker SubscriptionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := utils.GetAccountIDFromContext(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		active, err := checker.IsActive(c.Request.Context(), accountID)
		if err != nil {
			logrus.WithError(err).WithField("account_id", accountID).Error("Subscription check failed")
			utils.InternalErrorResponse(c, "")
			c.Abort()
			return
		}
		if !active {
			utils.PaymentRequiredResponse(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
