// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/shopbook/shopbook-backend/internal/i18n"
)

// I18nMiddleware stores the response language under "lang". An explicit
// ?lang= wins over Accept-Language.
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			lang = c.GetHeader("Accept-Language")
		}

		c.Set("lang", i18n.Match(lang))
		c.Next()
	}
}
