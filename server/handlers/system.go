package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quoteserver/database"
	apperrors "quoteserver/server/errors"
	"quoteserver/server/services"
)

// SystemHandler обработчик состояния сервиса и сводной статистики
type SystemHandler struct {
	stagingDB   *database.StagingDB
	promotionDB *database.PromotionDB
	promotions  *services.PromotionService
	metrics     *apperrors.ErrorMetricsCollector
	startedAt   time.Time
}

// NewSystemHandler создает новый системный обработчик
func NewSystemHandler(stagingDB *database.StagingDB, promotionDB *database.PromotionDB, promotions *services.PromotionService, metrics *apperrors.ErrorMetricsCollector) *SystemHandler {
	return &SystemHandler{
		stagingDB:   stagingDB,
		promotionDB: promotionDB,
		promotions:  promotions,
		metrics:     metrics,
		startedAt:   time.Now(),
	}
}

// @Summary Health check
// @Description Reports service and database health
// @Tags system
// @Produce json
// @Success 200 {object} JSONResponse "Service is healthy"
// @Failure 503 {object} ErrorResponse "A dependency is unavailable"
// @Router /api/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	status := http.StatusOK
	health := "healthy"
	checks := gin.H{
		"staging_db":   "ok",
		"promotion_db": "ok",
	}

	if err := h.stagingDB.Ping(); err != nil {
		checks["staging_db"] = err.Error()
		status = http.StatusServiceUnavailable
		health = "degraded"
	}
	if err := h.promotionDB.GetConnection().Ping(); err != nil {
		checks["promotion_db"] = err.Error()
		status = http.StatusServiceUnavailable
		health = "degraded"
	}

	SendJSONResponse(c, status, gin.H{
		"status":         health,
		"checks":         checks,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}

// @Summary Service statistics
// @Description Returns prospect and promoted record counts
// @Tags system
// @Produce json
// @Success 200 {object} JSONResponse "Aggregate statistics"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/stats [get]
func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.promotions.GetStats(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, stats)
}
