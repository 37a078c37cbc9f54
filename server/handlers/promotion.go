package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "quoteserver/server/errors"
	"quoteserver/server/middleware"
	"quoteserver/server/services"
)

// PromotionHandler обработчик пайплайна промоции prospect -> client
type PromotionHandler struct {
	service *services.PromotionService
	metrics *apperrors.ErrorMetricsCollector
}

// NewPromotionHandler создает новый обработчик промоции
func NewPromotionHandler(service *services.PromotionService, metrics *apperrors.ErrorMetricsCollector) *PromotionHandler {
	return &PromotionHandler{
		service: service,
		metrics: metrics,
	}
}

// @Summary Promote prospect
// @Description Validates, transforms and inserts a prospect into the production schema
// @Tags promotion
// @Produce json
// @Param id path string true "Prospect ID"
// @Param rearm query bool false "Re-arm a previously failed promotion"
// @Success 200 {object} JSONResponse "Promotion outcome"
// @Failure 404 {object} ErrorResponse "Prospect not found"
// @Failure 409 {object} ErrorResponse "Promotion already attempted or in flight"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Router /api/prospects/{id}/promote [post]
func (h *PromotionHandler) Promote(c *gin.Context) {
	rearm, _ := strconv.ParseBool(c.DefaultQuery("rearm", "false"))

	outcome, err := h.service.TriggerPromotion(c.Request.Context(), c.Param("id"), rearm)
	if err != nil {
		// Итог с ошибками валидации важнее кода статуса: клиент должен
		// видеть, какие именно проверки не прошли
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			appErr = apperrors.NewInternalError("internal server error", err)
		}
		if h.metrics != nil {
			h.metrics.RecordError(httpSeverity(appErr), c.FullPath(), appErr.Error(), middleware.GetRequestIDFromGin(c))
		}
		c.JSON(appErr.StatusCode(), JSONResponse{
			Success:   false,
			Data:      outcome,
			Error:     appErr.UserMessage(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	SendJSONResponse(c, http.StatusOK, outcome)
}

// @Summary Roll back promotion
// @Description Deletes promoted records and returns the prospect to the staging pool
// @Tags promotion
// @Produce json
// @Param id path string true "Promotion ID"
// @Success 200 {object} JSONResponse "Rollback outcome"
// @Failure 404 {object} ErrorResponse "Promotion not found"
// @Failure 409 {object} ErrorResponse "Promotion is not rollbackable"
// @Router /api/promotions/{id}/rollback [post]
func (h *PromotionHandler) Rollback(c *gin.Context) {
	outcome, err := h.service.Rollback(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, outcome)
}

// @Summary Promotion audit log
// @Description Returns promotion log entries, newest first
// @Tags promotion
// @Produce json
// @Param limit query int false "Maximum number of entries" default(50)
// @Success 200 {object} JSONResponse "Promotion log"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/promotions/log [get]
func (h *PromotionHandler) Log(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		SendJSONError(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	entries, err := h.service.GetPromotionLog(c.Request.Context(), limit)
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// @Summary Get promotion
// @Description Returns a single promotion log entry by its identifier
// @Tags promotion
// @Produce json
// @Param id path string true "Promotion ID"
// @Success 200 {object} JSONResponse "Promotion log entry"
// @Failure 404 {object} ErrorResponse "Promotion not found"
// @Router /api/promotions/{id} [get]
func (h *PromotionHandler) Get(c *gin.Context) {
	entry, err := h.service.GetPromotion(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, entry)
}

// @Summary Get promoted client
// @Description Returns a client record from the production schema
// @Tags promotion
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} JSONResponse "Client record"
// @Failure 404 {object} ErrorResponse "Client not found"
// @Router /api/clients/{id} [get]
func (h *PromotionHandler) GetClient(c *gin.Context) {
	client, err := h.service.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, client)
}
