// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sapmusicgroup/sap-backend/internal/i18n"
)

// I18nMiddleware picks the response language from Accept-Language.
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", parseLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// parseLanguage maps the first preference of a header such as
// "zh-TW,zh;q=0.9,en;q=0.8" to a supported locale.
func parseLanguage(header string) string {
	if header == "" {
		return i18n.DefaultLang
	}
	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch first {
	case "zh-TW", "zh-Hant", "zh_TW", "zh-HK":
		return "zh_TW"
	default:
		return i18n.DefaultLang
	}
}
