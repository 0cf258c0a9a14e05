package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lk2023060901/kidlingo/pkg/logger"
)

// RequestIDHeader 请求 ID 头，客户端传入时沿用，否则生成 uuid
const RequestIDHeader = "X-Request-ID"

// RequestID 为每个请求设置 X-Request-ID，并写入 request context 供日志使用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
