package promotion

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"quoteserver/database"
)

// TransformationError нарушение инварианта между пройденным Gatekeeper
// и трансформацией. Фатальная ошибка: указывает на баг в коде,
// не ретраится и не обрабатывается как сбой хранилища.
type TransformationError struct {
	Field  string
	Reason string
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("transformation error: field %q: %s", e.Field, e.Reason)
}

// PromotionRecord граф записей строгой целевой схемы, связанных общим clientId.
// Создается только трансформатором из валидированного снимка staging-записи,
// иммутабелен после создания.
type PromotionRecord struct {
	Client     *database.Client
	Employees  []database.Employee
	Compliance *database.ComplianceFlagRecord
	Financial  *database.FinancialModel
	Savings    *database.SavingsScenarioRecord
	// BlueprintVersion версия схемы отображения, по которой построен граф
	BlueprintVersion string
}

// Transformer чистое отображение валидированного staging-графа
// в граф целевой схемы. Входные данные не мутируются.
type Transformer struct{}

// NewTransformer создает трансформатор
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform строит граф целевой схемы. clientID генерируется вызывающим
// (оркестратором) и пронизывает все пять записей.
// Возвращает TransformationError при отсутствии обязательного поля -
// такого не должно происходить после пройденного Gatekeeper.
func (t *Transformer) Transform(staging *database.Prospect, artifacts *database.ArtifactSet, clientID, blueprintVersion string) (*PromotionRecord, error) {
	if staging == nil {
		return nil, &TransformationError{Field: "staging", Reason: "record is nil"}
	}
	if clientID == "" {
		return nil, &TransformationError{Field: "client_id", Reason: "client id is empty"}
	}
	if artifacts == nil || artifacts.Simulation == nil {
		return nil, &TransformationError{Field: "simulation", Reason: "artifact is nil"}
	}
	if artifacts.Split == nil {
		return nil, &TransformationError{Field: "split", Reason: "artifact is nil"}
	}
	if artifacts.Compliance == nil {
		return nil, &TransformationError{Field: "compliance", Reason: "artifact is nil"}
	}
	if artifacts.Savings == nil {
		return nil, &TransformationError{Field: "savings", Reason: "artifact is nil"}
	}

	taxID, err := CanonicalTaxID(staging.TaxID)
	if err != nil {
		return nil, &TransformationError{Field: "tax_id", Reason: err.Error()}
	}

	renewalDate := ""
	if strings.TrimSpace(staging.RenewalDate) != "" {
		renewalDate, err = NormalizeDate(staging.RenewalDate)
		if err != nil {
			return nil, &TransformationError{Field: "renewal_date", Reason: err.Error()}
		}
	}

	client := &database.Client{
		ClientID:      clientID,
		ProspectID:    staging.ProspectID,
		CompanyName:   strings.TrimSpace(staging.CompanyName),
		TaxID:         taxID,
		Industry:      strings.TrimSpace(staging.Industry),
		EmployeeCount: staging.EmployeeCount,
		State:         strings.ToUpper(strings.TrimSpace(staging.State)),
		RenewalDate:   renewalDate,
		PromotedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	employees := t.buildEmployees(staging, artifacts, clientID)

	comp := artifacts.Compliance
	complianceFlags := &database.ComplianceFlagRecord{
		ClientID:            clientID,
		FederalRequirements: append([]string{}, comp.Federal...),
		StateRequirements:   append([]string{}, comp.State...),
		ACAApplicable:       comp.ACAApplicable,
		ERISAPlan:           comp.ERISAPlan,
	}

	sim := artifacts.Simulation
	split := artifacts.Split
	financial := &database.FinancialModel{
		ClientID:              clientID,
		MeanClaims:            sim.MeanClaims,
		VolatilityPct:         sim.VolatilityPct,
		Iterations:            sim.Iterations,
		P10:                   sim.Summary.P10,
		P50:                   sim.Summary.P50,
		P90:                   sim.Summary.P90,
		P95:                   sim.Summary.P95,
		P99:                   sim.Summary.P99,
		StdDev:                sim.Summary.StdDev,
		HighUtilizerCount:     split.HighUtilizers.Count,
		HighUtilizerCost:      split.HighUtilizers.CostTotal,
		StandardUtilizerCount: split.StandardUtilizers.Count,
		StandardUtilizerCost:  split.StandardUtilizers.CostTotal,
		CostMultiplier:        split.CostMultiplier,
	}

	savings := artifacts.Savings
	forwardJSON, err := json.Marshal(savings.Forward)
	if err != nil {
		return nil, &TransformationError{Field: "savings.forward", Reason: err.Error()}
	}
	savingsRecord := &database.SavingsScenarioRecord{
		ClientID:             clientID,
		ActualClaims:         savings.ActualClaims,
		WithSavingsAmount:    savings.WithSavingsAmount,
		WithoutSavingsAmount: savings.WithoutSavingsAmount,
		SavingsAmount:        savings.SavingsAmount,
		CostIncrease:         savings.CostIncrease,
		SavingsPercentage:    savings.SavingsPercentage,
		IncreasePercentage:   savings.IncreasePercentage,
		ForwardJSON:          string(forwardJSON),
	}

	return &PromotionRecord{
		Client:           client,
		Employees:        employees,
		Compliance:       complianceFlags,
		Financial:        financial,
		Savings:          savingsRecord,
		BlueprintVersion: blueprintVersion,
	}, nil
}

// buildEmployees формирует записи сотрудников с тегом тира утилизации.
// При наличии переписи верхние highCount сотрудников по убыткам получают
// тир high. Без переписи записи синтезируются из средних значений групп.
// ID сотрудников детерминированы в рамках клиента.
func (t *Transformer) buildEmployees(staging *database.Prospect, artifacts *database.ArtifactSet, clientID string) []database.Employee {
	split := artifacts.Split
	highCount := split.HighUtilizers.Count

	var employees []database.Employee

	if len(staging.Census) > 0 {
		// Сортируем копию переписи по убыткам по убыванию, порядок стабильный
		census := make([]database.CensusMember, len(staging.Census))
		copy(census, staging.Census)
		sort.SliceStable(census, func(i, j int) bool {
			return census[i].AnnualClaims > census[j].AnnualClaims
		})

		for i, member := range census {
			tier := database.TierStandard
			if i < highCount {
				tier = database.TierHigh
			}
			employees = append(employees, database.Employee{
				EmployeeID:   employeeID(clientID, i+1),
				ClientID:     clientID,
				Tier:         tier,
				Age:          member.Age,
				Gender:       strings.ToUpper(strings.TrimSpace(member.Gender)),
				Dependents:   member.Dependents,
				CoverageTier: strings.ToLower(strings.TrimSpace(member.CoverageTier)),
				AnnualClaims: member.AnnualClaims.Float64(),
			})
		}
		return employees
	}

	// Переписи нет: синтезируем записи из средних значений групп
	seq := 1
	for i := 0; i < split.HighUtilizers.Count; i++ {
		employees = append(employees, database.Employee{
			EmployeeID:   employeeID(clientID, seq),
			ClientID:     clientID,
			Tier:         database.TierHigh,
			AnnualClaims: split.HighUtilizers.AvgPerEmployee,
		})
		seq++
	}
	for i := 0; i < split.StandardUtilizers.Count; i++ {
		employees = append(employees, database.Employee{
			EmployeeID:   employeeID(clientID, seq),
			ClientID:     clientID,
			Tier:         database.TierStandard,
			AnnualClaims: split.StandardUtilizers.AvgPerEmployee,
		})
		seq++
	}
	return employees
}

// employeeID детерминированный синтетический ID сотрудника в рамках клиента
func employeeID(clientID string, seq int) string {
	return fmt.Sprintf("%s-EMP-%04d", clientID, seq)
}

var nonDigits = regexp.MustCompile(`\D`)

// CanonicalTaxID приводит налоговый идентификатор к канонической дефисной
// форме EIN: XX-XXXXXXX. Принимает идентификатор с любыми разделителями.
func CanonicalTaxID(raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) != 9 {
		return "", fmt.Errorf("tax id must contain 9 digits, got %d", len(digits))
	}
	return digits[:2] + "-" + digits[2:], nil
}

// dateLayouts форматы дат, принимаемые из staging-записи
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// NormalizeDate приводит дату к единому представлению ISO-8601 (YYYY-MM-DD)
func NormalizeDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts.UTC().Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date format: %q", raw)
}

