package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-catalog-api/internal/core/auth"
	"go-catalog-api/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyRole   = "role"
)

func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Body{Success: false, Message: "missing token"})
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Body{Success: false, Message: "invalid token"})
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

// Authorize 统一走策略表，handler 里不再各写一份角色比较
func Authorize(p *auth.Policy, action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyRole)
		if !p.Allow(role, action) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.Body{Success: false, Message: "forbidden"})
			return
		}
		c.Next()
	}
}

// UID 从上下文取当前用户 id
func UID(c *gin.Context) int64 {
	v, ok := c.Get(KeyUserID)
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}
