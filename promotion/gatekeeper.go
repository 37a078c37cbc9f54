package promotion

import (
	"fmt"
	"strings"
	"time"

	"quoteserver/database"
)

const (
	// MinSimulationIterations минимально допустимое число испытаний симуляции
	MinSimulationIterations = 1000
	// DefaultFreshnessWindow максимальный возраст артефакта для промоции
	DefaultFreshnessWindow = 24 * time.Hour
)

// ValidationResult результат проверки готовности проспекта к промоции
type ValidationResult struct {
	IsValid  bool                   `json:"is_valid"`
	Errors   []string               `json:"errors"`
	Warnings []string               `json:"warnings"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Gatekeeper проверяет полноту и свежесть staging-записи и всех вычисленных
// артефактов перед промоцией. Никакого I/O: артефакты передаются уже
// загруженными, их получение - обязанность оркестратора.
type Gatekeeper struct {
	freshnessWindow time.Duration
	now             func() time.Time
}

// NewGatekeeper создает валидатор с окном свежести по умолчанию (24 часа)
func NewGatekeeper() *Gatekeeper {
	return NewGatekeeperWithWindow(DefaultFreshnessWindow)
}

// NewGatekeeperWithWindow создает валидатор с заданным окном свежести
func NewGatekeeperWithWindow(window time.Duration) *Gatekeeper {
	return &Gatekeeper{
		freshnessWindow: window,
		now:             time.Now,
	}
}

// Validate проверяет все условия промоции. Ошибки накапливаются,
// а не обрывают проверку - вызывающий получает полный список за один проход.
// Результат детерминирован: повторный вызов на тех же входных данных
// дает тот же IsValid и тот же список ошибок.
func (g *Gatekeeper) Validate(staging *database.Prospect, artifacts *database.ArtifactSet) *ValidationResult {
	result := &ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
		Metadata: map[string]interface{}{},
	}

	now := g.now().UTC()

	g.checkStaging(staging, result)
	g.checkSimulation(artifacts, now, result)
	g.checkSplit(artifacts, now, result)
	g.checkCompliance(artifacts, result)
	g.checkSavings(artifacts, now, result)

	result.IsValid = len(result.Errors) == 0
	result.Metadata["validated_at"] = now.Format(time.RFC3339)
	result.Metadata["error_count"] = len(result.Errors)
	result.Metadata["warning_count"] = len(result.Warnings)

	return result
}

func (g *Gatekeeper) checkStaging(staging *database.Prospect, result *ValidationResult) {
	if staging == nil {
		result.Errors = append(result.Errors, "staging record is missing")
		return
	}

	if staging.Status != database.ProspectStatusClient {
		result.Errors = append(result.Errors,
			fmt.Sprintf("staging status is %q, promotion requires %q", staging.Status, database.ProspectStatusClient))
	}
	if strings.TrimSpace(staging.CompanyName) == "" {
		result.Errors = append(result.Errors, "company name is missing")
	}
	if strings.TrimSpace(staging.TaxID) == "" {
		result.Errors = append(result.Errors, "tax id is missing")
	}
	if staging.EmployeeCount <= 0 {
		result.Errors = append(result.Errors, "employee count is missing or not positive")
	}
	if strings.TrimSpace(staging.State) == "" {
		result.Errors = append(result.Errors, "state is missing")
	}
	if staging.TotalClaims <= 0 {
		result.Errors = append(result.Errors, "total claims is missing or not positive")
	}

	// Неблокирующие предупреждения
	if len(staging.Census) == 0 {
		result.Warnings = append(result.Warnings, "census detail is missing, employees will be synthesized from split averages")
	}
	if strings.TrimSpace(staging.RenewalDate) == "" {
		result.Warnings = append(result.Warnings, "renewal date is missing")
	}
}

func (g *Gatekeeper) checkSimulation(artifacts *database.ArtifactSet, now time.Time, result *ValidationResult) {
	sim := artifacts.Simulation
	if sim == nil {
		result.Errors = append(result.Errors, "simulation artifact is missing")
		return
	}

	if sim.Iterations < MinSimulationIterations {
		result.Errors = append(result.Errors,
			fmt.Sprintf("simulation iteration count %d is below required minimum %d", sim.Iterations, MinSimulationIterations))
	}

	s := sim.Summary
	if s.P10 == 0 && s.P50 == 0 && s.P90 == 0 && s.P95 == 0 && s.P99 == 0 && s.Max == 0 {
		result.Errors = append(result.Errors, "simulation percentile fields are missing")
	}

	g.checkFreshness("simulation", sim.GeneratedAt, now, result)
}

func (g *Gatekeeper) checkSplit(artifacts *database.ArtifactSet, now time.Time, result *ValidationResult) {
	split := artifacts.Split
	if split == nil {
		result.Errors = append(result.Errors, "utilizer split artifact is missing")
		return
	}

	if split.HighUtilizers.Count <= 0 {
		result.Errors = append(result.Errors, "utilizer split high group count is missing")
	}
	if split.StandardUtilizers.Count < 0 {
		result.Errors = append(result.Errors, "utilizer split standard group count is invalid")
	}
	if split.HighUtilizers.CostTotal < 0 || split.StandardUtilizers.CostTotal < 0 {
		result.Errors = append(result.Errors, "utilizer split group costs are invalid")
	}

	g.checkFreshness("utilizer split", split.GeneratedAt, now, result)
}

func (g *Gatekeeper) checkCompliance(artifacts *database.ArtifactSet, result *ValidationResult) {
	comp := artifacts.Compliance
	if comp == nil {
		result.Errors = append(result.Errors, "compliance artifact is missing")
		return
	}

	// Массивы могут быть пустыми, но должны присутствовать
	if comp.Federal == nil {
		result.Errors = append(result.Errors, "compliance federal requirements array is missing")
	}
	if comp.State == nil {
		result.Errors = append(result.Errors, "compliance state requirements array is missing")
	}
}

func (g *Gatekeeper) checkSavings(artifacts *database.ArtifactSet, now time.Time, result *ValidationResult) {
	savings := artifacts.Savings
	if savings == nil {
		result.Errors = append(result.Errors, "savings scenario artifact is missing")
		return
	}

	// Ретроспектива плюс прогнозы на годы 1/3/5
	if savings.WithSavingsAmount < 0 || savings.WithoutSavingsAmount < 0 {
		result.Errors = append(result.Errors, "savings retrospective amounts are invalid")
	}

	wantYears := map[int]bool{1: false, 3: false, 5: false}
	for _, fp := range savings.Forward {
		if _, ok := wantYears[fp.Year]; ok {
			wantYears[fp.Year] = true
		}
	}
	for _, year := range []int{1, 3, 5} {
		if !wantYears[year] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("savings forward projection for year %d is missing", year))
		}
	}

	g.checkFreshness("savings scenario", savings.GeneratedAt, now, result)
}

// checkFreshness проверяет, что артефакт сгенерирован внутри окна свежести
func (g *Gatekeeper) checkFreshness(name string, generatedAt, now time.Time, result *ValidationResult) {
	if generatedAt.IsZero() {
		result.Errors = append(result.Errors, fmt.Sprintf("%s artifact has no generation timestamp", name))
		return
	}

	age := now.Sub(generatedAt.UTC())
	if age > g.freshnessWindow {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s artifact is stale: generated %s ago, freshness window is %s",
				name, age.Round(time.Minute), g.freshnessWindow))
	}
}
