package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// GinCORSMiddleware добавляет CORS заголовки
func GinCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// GinGzipMiddleware включает сжатие ответов
func GinGzipMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed)
}

// GinLoggerMiddleware логирует запросы с request ID и временем обработки
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()
		reqID := GetRequestIDFromGin(c)
		bodySize := c.Writer.Size()

		if raw != "" {
			path = path + "?" + raw
		}

		timestamp := time.Now().Format("2006/01/02 - 15:04:05")
		logLine := fmt.Sprintf(
			"[%s] %s [%s] %s %d %s %d",
			timestamp,
			clientIP,
			method,
			path,
			statusCode,
			latency,
			bodySize,
		)
		if reqID != "" {
			logLine += " [RequestID: " + reqID + "]"
		}
		if err := c.Errors.Last(); err != nil {
			logLine += " [Error: " + err.Error() + "]"
		}
		gin.DefaultWriter.Write([]byte(logLine + "\n"))
	}
}

// GinRecoveryMiddleware обрабатывает паники в обработчиках
func GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				reqID := GetRequestIDFromGin(c)
				stackTrace := debug.Stack()

				slog.Error("[GIN] Panic recovered",
					"panic", err,
					"stack", string(stackTrace),
					"request_id", reqID,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)

				gin.DefaultErrorWriter.Write([]byte(
					"[GIN] Panic recovered: " + toString(err) + "\n",
				))
				gin.DefaultErrorWriter.Write(stackTrace)

				c.JSON(500, gin.H{
					"error":      true,
					"message":    "Internal server error",
					"request_id": reqID,
				})

				c.Abort()
			}
		}()

		c.Next()
	}
}

// toString преобразует значение в строку
func toString(v interface{}) string {
	if str, ok := v.(string); ok {
		return str
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return ""
}
