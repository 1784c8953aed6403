package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const KeyRequestID = "X-Request-ID"

// RequestID 透传上游带来的请求 id；缺失或不是合法 uuid 就重新生成，
// 防止客户端随便塞脏值进日志。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		c.Set(KeyRequestID, rid)
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Next()
	}
}
