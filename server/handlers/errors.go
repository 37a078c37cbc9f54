package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quoteserver/server/services"
)

// ErrorLogHandler обработчик журнала ошибок и метрик
type ErrorLogHandler struct {
	service *services.ErrorLogService
}

// NewErrorLogHandler создает новый обработчик журнала ошибок
func NewErrorLogHandler(service *services.ErrorLogService) *ErrorLogHandler {
	return &ErrorLogHandler{
		service: service,
	}
}

// UpdateResolutionRequest запрос на смену статуса резолюции
type UpdateResolutionRequest struct {
	Status string `json:"status" binding:"required"`
	Reopen bool   `json:"reopen"`
}

// @Summary List error log entries
// @Description Returns error log entries, optionally filtered by severity
// @Tags errors
// @Produce json
// @Param severity query string false "Severity filter (low, medium, high, critical)"
// @Param limit query int false "Maximum number of entries" default(100)
// @Success 200 {object} JSONResponse "Error log entries"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/errors [get]
func (h *ErrorLogHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		SendJSONError(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	entries, err := h.service.GetErrors(c.Request.Context(), c.Query("severity"), limit)
	if err != nil {
		HandleServiceError(c, h.service.Metrics(), err)
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// @Summary Update error resolution
// @Description Advances the resolution status of an error log entry
// @Tags errors
// @Accept json
// @Produce json
// @Param id path string true "Error ID"
// @Param request body UpdateResolutionRequest true "New resolution status"
// @Success 200 {object} JSONResponse "Resolution updated"
// @Failure 400 {object} ErrorResponse "Invalid status transition"
// @Failure 404 {object} ErrorResponse "Error entry not found"
// @Router /api/errors/{id}/resolution [put]
func (h *ErrorLogHandler) UpdateResolution(c *gin.Context) {
	var req UpdateResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.UpdateResolution(c.Request.Context(), c.Param("id"), req.Status, req.Reopen); err != nil {
		HandleServiceError(c, h.service.Metrics(), err)
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{
		"error_id": c.Param("id"),
		"status":   req.Status,
	})
}

// @Summary Error metrics
// @Description Returns aggregated error metrics collected since startup
// @Tags errors
// @Produce json
// @Success 200 {object} JSONResponse "Error metrics"
// @Router /api/errors/metrics [get]
func (h *ErrorLogHandler) Metrics(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.service.Metrics().Snapshot())
}

// ResetMetrics сбрасывает накопленные метрики (служебный эндпоинт)
// @Summary Reset error metrics
// @Description Clears all accumulated error metrics
// @Tags errors
// @Produce json
// @Success 200 {object} JSONResponse "Metrics reset"
// @Router /api/errors/metrics/reset [post]
func (h *ErrorLogHandler) ResetMetrics(c *gin.Context) {
	h.service.Metrics().Reset()
	SendJSONResponse(c, http.StatusOK, gin.H{"reset": true})
}
