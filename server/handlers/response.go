package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "quoteserver/server/errors"
	"quoteserver/server/middleware"
)

// JSONResponse стандартная структура JSON ответа
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse структура ошибки для Swagger документации
type ErrorResponse struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error" example:"prospect not found"`
	Timestamp string `json:"timestamp"`
}

// SendJSONResponse отправляет успешный JSON ответ через Gin context
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, JSONResponse{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// SendJSONError отправляет JSON ошибку через Gin context и логирует её
func SendJSONError(c *gin.Context, statusCode int, message string) {
	reqID := middleware.GetRequestIDFromGin(c)

	slog.Error("HTTP error",
		"error", message,
		"status_code", statusCode,
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	c.JSON(statusCode, JSONResponse{
		Success:   false,
		Error:     message,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// HandleServiceError преобразует ошибку сервисного слоя в HTTP ответ.
// AppError несет собственный статус-код и безопасное сообщение для
// пользователя, остальные ошибки отдаются как 500 без деталей.
func HandleServiceError(c *gin.Context, metrics *apperrors.ErrorMetricsCollector, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("internal server error", err)
	}

	if metrics != nil {
		metrics.RecordError(httpSeverity(appErr), c.FullPath(), appErr.Error(), middleware.GetRequestIDFromGin(c))
	}

	SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
}

// httpSeverity грубая оценка серьезности по HTTP статусу:
// серверные сбои заметны в метриках, клиентские ошибки - фон
func httpSeverity(appErr *apperrors.AppError) apperrors.Severity {
	if appErr.StatusCode() >= http.StatusInternalServerError {
		return apperrors.SeverityHigh
	}
	return apperrors.SeverityLow
}

// ValidateMethod проверяет HTTP метод и возвращает false если не совпадает
func ValidateMethod(c *gin.Context, allowedMethod string) bool {
	if c.Request.Method != allowedMethod {
		SendJSONError(c, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}
