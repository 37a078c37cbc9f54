package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"quoteserver/database"
)

// ExportFormat формат экспорта
type ExportFormat string

const (
	FormatJSON  ExportFormat = "json"
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
)

// QuoteReport плоское представление проспекта и его артефактов для экспорта
type QuoteReport struct {
	ProspectID      string  `json:"prospect_id"`
	CompanyName     string  `json:"company_name"`
	State           string  `json:"state"`
	EmployeeCount   int     `json:"employee_count"`
	TotalClaims     float64 `json:"total_claims"`
	PromotionStatus string  `json:"promotion_status,omitempty"`

	SimulationIterations int     `json:"simulation_iterations,omitempty"`
	ExpectedClaims       float64 `json:"expected_claims,omitempty"`
	P50                  float64 `json:"p50,omitempty"`
	P95                  float64 `json:"p95,omitempty"`
	P99                  float64 `json:"p99,omitempty"`

	HighUtilizerCount int     `json:"high_utilizer_count,omitempty"`
	HighUtilizerCost  float64 `json:"high_utilizer_cost,omitempty"`
	CostMultiplier    float64 `json:"cost_multiplier,omitempty"`

	SavingsAmount float64 `json:"savings_amount,omitempty"`
	CostIncrease  float64 `json:"cost_increase,omitempty"`

	FederalRequirements []string `json:"federal_requirements,omitempty"`
	StateRequirements   []string `json:"state_requirements,omitempty"`
	ACAApplicable       bool     `json:"aca_applicable"`
}

// Exporter экспортер квотных отчетов в JSON/CSV/Excel
type Exporter struct {
	printer *message.Printer
}

// NewExporter создает экспортер с американским форматированием сумм
func NewExporter() *Exporter {
	return &Exporter{printer: message.NewPrinter(language.AmericanEnglish)}
}

// BuildReport собирает отчет из staging-записи и набора артефактов.
// Отсутствующие артефакты оставляют соответствующие поля нулевыми.
func (e *Exporter) BuildReport(p *database.Prospect, artifacts *database.ArtifactSet) *QuoteReport {
	report := &QuoteReport{
		ProspectID:      p.ProspectID,
		CompanyName:     p.CompanyName,
		State:           p.State,
		EmployeeCount:   p.EmployeeCount,
		TotalClaims:     p.TotalClaims.Float64(),
		PromotionStatus: p.PromotionStatus,
	}

	if artifacts == nil {
		return report
	}

	if sim := artifacts.Simulation; sim != nil {
		report.SimulationIterations = sim.Iterations
		report.ExpectedClaims = sim.Summary.Mean
		report.P50 = sim.Summary.P50
		report.P95 = sim.Summary.P95
		report.P99 = sim.Summary.P99
	}
	if split := artifacts.Split; split != nil {
		report.HighUtilizerCount = split.HighUtilizers.Count
		report.HighUtilizerCost = split.HighUtilizers.CostTotal
		report.CostMultiplier = split.CostMultiplier
	}
	if savings := artifacts.Savings; savings != nil {
		report.SavingsAmount = savings.SavingsAmount
		report.CostIncrease = savings.CostIncrease
	}
	if comp := artifacts.Compliance; comp != nil {
		report.FederalRequirements = comp.Federal
		report.StateRequirements = comp.State
		report.ACAApplicable = comp.ACAApplicable
	}

	return report
}

// ExportJSON пишет отчет в JSON
func (e *Exporter) ExportJSON(w io.Writer, report *QuoteReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	result := map[string]interface{}{
		"exported_at": time.Now().UTC().Format(time.RFC3339),
		"report":      report,
	}

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportCSV пишет отчет в CSV: одна строка на показатель
func (e *Exporter) ExportCSV(w io.Writer, report *QuoteReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range e.metricRows(report) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return writer.Error()
}

// ExportExcel пишет отчет в XLSX
func (e *Exporter) ExportExcel(w io.Writer, report *QuoteReport) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Quote Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	// Стиль заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []string{"Metric", "Value"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range e.metricRows(report) {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIdx+2), row[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIdx+2), row[1])
	}

	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "B", 22)
	f.SetActiveSheet(index)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// metricRows единый порядок строк для табличных форматов
func (e *Exporter) metricRows(report *QuoteReport) [][]string {
	rows := [][]string{
		{"Prospect ID", report.ProspectID},
		{"Company", report.CompanyName},
		{"State", report.State},
		{"Employees", fmt.Sprintf("%d", report.EmployeeCount)},
		{"Total Claims", e.currency(report.TotalClaims)},
		{"Promotion Status", report.PromotionStatus},
		{"Simulation Iterations", fmt.Sprintf("%d", report.SimulationIterations)},
		{"Expected Claims", e.currency(report.ExpectedClaims)},
		{"P50", e.currency(report.P50)},
		{"P95", e.currency(report.P95)},
		{"P99", e.currency(report.P99)},
		{"High Utilizer Count", fmt.Sprintf("%d", report.HighUtilizerCount)},
		{"High Utilizer Cost", e.currency(report.HighUtilizerCost)},
		{"Cost Multiplier", fmt.Sprintf("%.2f", report.CostMultiplier)},
		{"Projected Savings", e.currency(report.SavingsAmount)},
		{"Projected Cost Increase", e.currency(report.CostIncrease)},
		{"ACA Applicable", fmt.Sprintf("%t", report.ACAApplicable)},
	}

	for _, req := range report.FederalRequirements {
		rows = append(rows, []string{"Federal Requirement", req})
	}
	for _, req := range report.StateRequirements {
		rows = append(rows, []string{"State Requirement", req})
	}

	return rows
}

// currency форматирует сумму с разделителями тысяч: $1,234,567.89
func (e *Exporter) currency(amount float64) string {
	return e.printer.Sprintf("$%.2f", amount)
}
