package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-catalog-api/internal/transport/http/response"
)

func SimpleRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					response.Body{Success: false, Message: "internal server error"})
			}
		}()
		c.Next()
	}
}
