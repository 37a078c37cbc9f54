package compliance

import (
	"fmt"
	"strings"
	"time"
)

// Requirement требование нормативного регулирования
type Requirement struct {
	Code         string `json:"code"`
	Description  string `json:"description"`
	MinEmployees int    `json:"min_employees"`
}

// Result результат сопоставления проспекта со статическим набором правил.
// Federal и State могут быть пустыми, но никогда не nil - Gatekeeper
// проверяет присутствие обоих массивов.
type Result struct {
	Federal       []string  `json:"federal"`
	State         []string  `json:"state"`
	ACAApplicable bool      `json:"aca_applicable"`
	ERISAPlan     bool      `json:"erisa_plan"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// federalRequirements федеральные требования с порогами по числу сотрудников
var federalRequirements = []Requirement{
	{Code: "ERISA-REPORTING", Description: "ERISA plan document and reporting requirements", MinEmployees: 1},
	{Code: "COBRA", Description: "COBRA continuation coverage", MinEmployees: 20},
	{Code: "ACA-EMPLOYER-MANDATE", Description: "ACA applicable large employer shared responsibility", MinEmployees: 50},
	{Code: "ACA-1094-1095", Description: "ACA forms 1094-C/1095-C reporting", MinEmployees: 50},
	{Code: "FMLA", Description: "Family and Medical Leave Act", MinEmployees: 50},
	{Code: "MEDICARE-SECONDARY", Description: "Medicare secondary payer rules", MinEmployees: 100},
}

// stateRequirements требования уровня штата
var stateRequirements = map[string][]Requirement{
	"CA": {
		{Code: "CA-SB-1375", Description: "California small group stop-loss restrictions", MinEmployees: 1},
		{Code: "CA-CALSAVERS", Description: "CalSavers retirement program mandate", MinEmployees: 5},
	},
	"NY": {
		{Code: "NY-PFL", Description: "New York paid family leave", MinEmployees: 1},
		{Code: "NY-DBL", Description: "New York statutory disability benefits", MinEmployees: 1},
	},
	"MA": {
		{Code: "MA-HIRD", Description: "Massachusetts HIRD filing", MinEmployees: 6},
		{Code: "MA-PFML", Description: "Massachusetts paid family and medical leave", MinEmployees: 1},
	},
	"TX": {
		{Code: "TX-HB-2015", Description: "Texas consumer choice plan disclosure", MinEmployees: 2},
	},
	"WA": {
		{Code: "WA-PFML", Description: "Washington paid family and medical leave", MinEmployees: 1},
		{Code: "WA-LTC", Description: "Washington long-term care payroll premium", MinEmployees: 1},
	},
}

const (
	// ACAThreshold порог ACA для крупного работодателя
	ACAThreshold = 50
)

// Matcher сопоставляет проспекта со статическим набором правил
// по числу сотрудников и штату. Детерминированный, без I/O.
type Matcher struct{}

// NewMatcher создает matcher со встроенным набором правил
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match возвращает коды подходящих требований по федеральному уровню и уровню штата.
// Неизвестный штат дает пустой массив требований штата, это не ошибка.
func (m *Matcher) Match(employeeCount int, state string) (*Result, error) {
	if employeeCount <= 0 {
		return nil, fmt.Errorf("employee count must be > 0, got %d", employeeCount)
	}

	result := &Result{
		Federal:       []string{},
		State:         []string{},
		ACAApplicable: employeeCount >= ACAThreshold,
		ERISAPlan:     true, // Групповые планы работодателей подпадают под ERISA
		GeneratedAt:   time.Now().UTC(),
	}

	for _, req := range federalRequirements {
		if employeeCount >= req.MinEmployees {
			result.Federal = append(result.Federal, req.Code)
		}
	}

	stateCode := strings.ToUpper(strings.TrimSpace(state))
	for _, req := range stateRequirements[stateCode] {
		if employeeCount >= req.MinEmployees {
			result.State = append(result.State, req.Code)
		}
	}

	return result, nil
}

// KnownStates возвращает список штатов, для которых есть правила уровня штата
func (m *Matcher) KnownStates() []string {
	states := make([]string, 0, len(stateRequirements))
	for state := range stateRequirements {
		states = append(states, state)
	}
	return states
}
