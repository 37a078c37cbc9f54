package reporting

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteserver/actuarial"
	"quoteserver/compliance"
	"quoteserver/database"
)

func sampleReport(t *testing.T) *QuoteReport {
	t.Helper()

	prospect := &database.Prospect{
		ProspectID:      "prospect-rep-1",
		CompanyName:     "Orchid Logistics LLC",
		State:           "NY",
		EmployeeCount:   80,
		TotalClaims:     1234567.89,
		PromotionStatus: database.PromotionStatusCompleted,
	}

	split, err := actuarial.NewUtilizerSplitEngine().Split(80, 1234567.89)
	require.NoError(t, err)
	savings, err := actuarial.NewSavingsScenarioEngine().Project(1234567.89)
	require.NoError(t, err)
	comp, err := compliance.NewMatcher().Match(80, "NY")
	require.NoError(t, err)
	sim, err := actuarial.NewMonteCarloEngineWithSampler(actuarial.NewSeededNormalSampler(7)).
		Simulate(1234567.89, 0.12, 1000)
	require.NoError(t, err)

	return NewExporter().BuildReport(prospect, &database.ArtifactSet{
		Simulation: sim,
		Split:      split,
		Savings:    savings,
		Compliance: comp,
	})
}

func TestBuildReportFlattensArtifacts(t *testing.T) {
	report := sampleReport(t)

	assert.Equal(t, "Orchid Logistics LLC", report.CompanyName)
	assert.Equal(t, 1000, report.SimulationIterations)
	assert.Equal(t, 8, report.HighUtilizerCount)
	assert.NotZero(t, report.SavingsAmount)
	assert.NotEmpty(t, report.FederalRequirements)
	assert.True(t, report.ACAApplicable)
}

func TestBuildReportWithoutArtifacts(t *testing.T) {
	prospect := &database.Prospect{ProspectID: "p-1", CompanyName: "Bare Co"}

	report := NewExporter().BuildReport(prospect, nil)

	assert.Equal(t, "Bare Co", report.CompanyName)
	assert.Zero(t, report.SimulationIterations)
	assert.Empty(t, report.FederalRequirements)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().ExportJSON(&buf, sampleReport(t)))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Contains(t, payload, "exported_at")

	report, ok := payload["report"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "prospect-rep-1", report["prospect_id"])
}

func TestExportCSVFormatsCurrency(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().ExportCSV(&buf, sampleReport(t)))

	content := buf.String()
	assert.True(t, strings.HasPrefix(content, "Metric,Value"))
	// Thousand separators in money cells
	assert.Contains(t, content, "$1,234,567.89")
	assert.Contains(t, content, "Federal Requirement")
}

func TestExportExcelProducesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().ExportExcel(&buf, sampleReport(t)))

	// XLSX container is a ZIP archive
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}
