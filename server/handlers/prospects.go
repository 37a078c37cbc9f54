package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quoteserver/database"
	apperrors "quoteserver/server/errors"
	"quoteserver/server/services"
)

// ProspectsHandler обработчик staging-записей проспектов и движков котирования
type ProspectsHandler struct {
	service *services.ProspectService
	metrics *apperrors.ErrorMetricsCollector
}

// NewProspectsHandler создает новый обработчик проспектов
func NewProspectsHandler(service *services.ProspectService, metrics *apperrors.ErrorMetricsCollector) *ProspectsHandler {
	return &ProspectsHandler{
		service: service,
		metrics: metrics,
	}
}

// SimulateRequest параметры запуска Monte Carlo симуляции
type SimulateRequest struct {
	VolatilityPct float64 `json:"volatility_pct"`
	Iterations    int     `json:"iterations"`
}

// @Summary Create prospect
// @Description Creates a new prospect record in the staging store
// @Tags prospects
// @Accept json
// @Produce json
// @Param prospect body database.Prospect true "Prospect record"
// @Success 201 {object} JSONResponse "Prospect created"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 409 {object} ErrorResponse "Prospect already exists"
// @Router /api/prospects [post]
func (h *ProspectsHandler) Create(c *gin.Context) {
	var prospect database.Prospect
	if err := c.ShouldBindJSON(&prospect); err != nil {
		SendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.service.CreateProspect(c.Request.Context(), &prospect)
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusCreated, created)
}

// @Summary Get prospect
// @Description Returns a single prospect by its identifier
// @Tags prospects
// @Produce json
// @Param id path string true "Prospect ID"
// @Success 200 {object} JSONResponse "Prospect record"
// @Failure 404 {object} ErrorResponse "Prospect not found"
// @Router /api/prospects/{id} [get]
func (h *ProspectsHandler) Get(c *gin.Context) {
	prospect, err := h.service.GetProspect(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, prospect)
}

// @Summary List prospects
// @Description Returns all prospects in the staging store
// @Tags prospects
// @Produce json
// @Success 200 {object} JSONResponse "Prospect list"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/prospects [get]
func (h *ProspectsHandler) List(c *gin.Context) {
	prospects, err := h.service.ListProspects(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{
		"prospects": prospects,
		"total":     len(prospects),
	})
}

// @Summary Get quoting artifacts
// @Description Returns the stored engine artifacts for a prospect
// @Tags prospects
// @Produce json
// @Param id path string true "Prospect ID"
// @Success 200 {object} JSONResponse "Artifact set"
// @Failure 404 {object} ErrorResponse "Prospect not found"
// @Router /api/prospects/{id}/artifacts [get]
func (h *ProspectsHandler) Artifacts(c *gin.Context) {
	artifacts, err := h.service.GetArtifacts(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, artifacts)
}

// @Summary Run claim simulation
// @Description Runs the Monte Carlo claim simulator and stores the artifact
// @Tags engines
// @Accept json
// @Produce json
// @Param id path string true "Prospect ID"
// @Param request body SimulateRequest true "Simulation parameters"
// @Success 200 {object} JSONResponse "Simulation result"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Prospect not found"
// @Router /api/prospects/{id}/simulate [post]
func (h *ProspectsHandler) Simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.RunSimulation(c.Request.Context(), c.Param("id"), req.VolatilityPct, req.Iterations)
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, result)
}

// @Summary Run utilizer split
// @Description Splits the projected population into high and standard utilizers
// @Tags engines
// @Produce json
// @Param id path string true "Prospect ID"
// @Success 200 {object} JSONResponse "Utilizer split"
// @Failure 404 {object} ErrorResponse "Prospect not found"
// @Router /api/prospects/{id}/split [post]
func (h *ProspectsHandler) Split(c *gin.Context) {
	result, err := h.service.RunSplit(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, result)
}

// @Summary Run savings projection
// @Description Projects first-year and multi-year savings for a prospect
// @Tags engines
// @Produce json
// @Param id path string true "Prospect ID"
// @Success 200 {object} JSONResponse "Savings scenario"
// @Failure 404 {object} ErrorResponse "Prospect not found"
// @Router /api/prospects/{id}/savings [post]
func (h *ProspectsHandler) Savings(c *gin.Context) {
	result, err := h.service.RunSavings(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, result)
}

// @Summary Run compliance matching
// @Description Matches applicable compliance requirements for a prospect
// @Tags engines
// @Produce json
// @Param id path string true "Prospect ID"
// @Success 200 {object} JSONResponse "Compliance result"
// @Failure 404 {object} ErrorResponse "Prospect not found"
// @Router /api/prospects/{id}/compliance [post]
func (h *ProspectsHandler) Compliance(c *gin.Context) {
	result, err := h.service.RunCompliance(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, result)
}

// @Summary Run all quoting engines
// @Description Runs simulation, split, savings and compliance in sequence
// @Tags engines
// @Accept json
// @Produce json
// @Param id path string true "Prospect ID"
// @Param request body SimulateRequest true "Simulation parameters"
// @Success 200 {object} JSONResponse "Full artifact set"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Prospect not found"
// @Router /api/prospects/{id}/quote [post]
func (h *ProspectsHandler) Quote(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	artifacts, err := h.service.RunAllEngines(c.Request.Context(), c.Param("id"), req.VolatilityPct, req.Iterations)
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, artifacts)
}
