package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"quoteserver/reporting"
	apperrors "quoteserver/server/errors"
	"quoteserver/server/services"
)

// ExportHandler обработчик экспорта квот в JSON/CSV/Excel
type ExportHandler struct {
	service  *services.ProspectService
	exporter *reporting.Exporter
	metrics  *apperrors.ErrorMetricsCollector
}

// NewExportHandler создает новый обработчик экспорта
func NewExportHandler(service *services.ProspectService, metrics *apperrors.ErrorMetricsCollector) *ExportHandler {
	return &ExportHandler{
		service:  service,
		exporter: reporting.NewExporter(),
		metrics:  metrics,
	}
}

// @Summary Export quote report
// @Description Exports a prospect quote report in the requested format
// @Tags export
// @Produce json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Prospect ID"
// @Param format query string false "Export format (json, csv, excel)" default(json)
// @Success 200 {object} JSONResponse "Exported report"
// @Failure 400 {object} ErrorResponse "Unsupported format"
// @Failure 404 {object} ErrorResponse "Prospect not found"
// @Router /api/prospects/{id}/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	prospectID := c.Param("id")
	format := reporting.ExportFormat(c.DefaultQuery("format", "json"))

	prospect, err := h.service.GetProspect(c.Request.Context(), prospectID)
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	// Отчет строится из того, что есть: отсутствующие артефакты дают
	// пустые секции, а не ошибку
	artifacts, err := h.service.GetArtifacts(c.Request.Context(), prospectID)
	if err != nil {
		HandleServiceError(c, h.metrics, err)
		return
	}

	report := h.exporter.BuildReport(prospect, artifacts)

	switch format {
	case reporting.FormatJSON:
		c.Header("Content-Type", "application/json; charset=utf-8")
		err = h.exporter.ExportJSON(c.Writer, report)
	case reporting.FormatCSV:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quote_%s.csv", prospectID))
		err = h.exporter.ExportCSV(c.Writer, report)
	case reporting.FormatExcel:
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quote_%s.xlsx", prospectID))
		err = h.exporter.ExportExcel(c.Writer, report)
	default:
		SendJSONError(c, http.StatusBadRequest, "unsupported format: "+string(format))
		return
	}

	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, "export failed: "+err.Error())
	}
}
