package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam разбирает положительный числовой параметр пути и кладет его
// в контекст как uint под ключом contextKey. Ноль и нечисловые значения дают 400.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		value, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || value == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + paramName + ": " + strconv.Quote(raw)})
			return
		}
		c.Set(contextKey, uint(value))
		c.Next()
	}
}
