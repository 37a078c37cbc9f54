package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey типизированный ключ request ID в context.Context
type RequestIDKey struct{}

// GinRequestIDMiddleware присваивает запросу request ID и протаскивает его
// через Gin-контекст, context.Context и заголовок ответа
func GinRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Переданный клиентом ID сохраняется, свой генерируется только
		// при его отсутствии
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Set("request_id", reqID)

		ctx := SetRequestID(c.Request.Context(), reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", reqID)

		c.Next()
	}
}

// GetRequestID возвращает request ID из context.Context, пустую строку -
// если его там нет
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	reqID, ok := ctx.Value(RequestIDKey{}).(string)
	if !ok {
		return ""
	}
	return reqID
}

// SetRequestID кладет request ID в context.Context
func SetRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, reqID)
}

// GetRequestIDFromGin возвращает request ID из Gin-контекста
func GetRequestIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}

	reqID, exists := c.Get("request_id")
	if !exists {
		return ""
	}

	if id, ok := reqID.(string); ok {
		return id
	}

	return ""
}
