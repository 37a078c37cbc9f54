package database

import "time"

// Статусы staging-записи проспекта.
// Статус движется только вперед, кроме явного отката оператором.
const (
	ProspectStatusProspect = "prospect"
	ProspectStatusClient   = "client"
)

// Статусы промоции в журнале promotion_log
const (
	PromotionStatusPending    = "pending"
	PromotionStatusCompleted  = "completed"
	PromotionStatusFailed     = "failed"
	PromotionStatusRolledBack = "rolled_back"
)

// Статусы резолюции записей error_log.
// Переходы однонаправленные, кроме явного reopen.
const (
	ResolutionUnresolved = "unresolved"
	ResolutionInProgress = "in_progress"
	ResolutionResolved   = "resolved"
	ResolutionWontFix    = "wont_fix"
	ResolutionArchived   = "archived"
)

// CensusMember запись о сотруднике в переписи проспекта
type CensusMember struct {
	Age          int         `json:"age"`
	Gender       string      `json:"gender"`
	Dependents   int         `json:"dependents"`
	CoverageTier string      `json:"coverage_tier"`
	AnnualClaims ClaimAmount `json:"annual_claims"`
}

// AnnualClaims исторические годовые убытки
type AnnualClaims struct {
	Year  int         `json:"year"`
	Total ClaimAmount `json:"total"`
}

// Prospect staging-запись проспекта (гибкая схема).
// Источник истины для пайплайна промоции. Никогда не удаляется.
type Prospect struct {
	ProspectID    string         `json:"prospect_id"`
	CompanyName   string         `json:"company_name"`
	TaxID         string         `json:"tax_id"`
	Industry      string         `json:"industry"`
	EmployeeCount int            `json:"employee_count"`
	State         string         `json:"state"`
	RenewalDate   string         `json:"renewal_date"`
	Status        string         `json:"status"`
	TotalClaims   ClaimAmount    `json:"total_claims"`
	Census        []CensusMember `json:"census,omitempty"`
	ClaimsHistory []AnnualClaims `json:"claims_history,omitempty"`

	// Поля подтверждения промоции - единственная мутация staging-записи
	// со стороны пайплайна
	PromotionStatus    string         `json:"promotion_status,omitempty"`
	TargetClientID     string         `json:"target_client_id,omitempty"`
	PromotionTimestamp string         `json:"promotion_timestamp,omitempty"`
	RecordsInserted    map[string]int `json:"records_inserted,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Client запись клиента в строгой целевой схеме (1:1 с проспектом)
type Client struct {
	ClientID      string `json:"client_id"`
	ProspectID    string `json:"prospect_id"`
	CompanyName   string `json:"company_name"`
	TaxID         string `json:"tax_id"`
	Industry      string `json:"industry"`
	EmployeeCount int    `json:"employee_count"`
	State         string `json:"state"`
	RenewalDate   string `json:"renewal_date"`
	PromotedAt    string `json:"promoted_at"`
}

// Тиры утилизации для сотрудников целевой схемы
const (
	TierHigh     = "high"
	TierStandard = "standard"
)

// Employee запись сотрудника в целевой схеме (0..N на клиента)
type Employee struct {
	EmployeeID   string  `json:"employee_id"`
	ClientID     string  `json:"client_id"`
	Tier         string  `json:"tier"`
	Age          int     `json:"age"`
	Gender       string  `json:"gender"`
	Dependents   int     `json:"dependents"`
	CoverageTier string  `json:"coverage_tier"`
	AnnualClaims float64 `json:"annual_claims"`
}

// ComplianceFlagRecord флаги комплаенса клиента (1:1)
type ComplianceFlagRecord struct {
	ClientID             string   `json:"client_id"`
	FederalRequirements  []string `json:"federal_requirements"`
	StateRequirements    []string `json:"state_requirements"`
	ACAApplicable        bool     `json:"aca_applicable"`
	ERISAPlan            bool     `json:"erisa_plan"`
}

// FinancialModel объединенные числовые показатели симуляции и разбиения (1:1)
type FinancialModel struct {
	ClientID              string  `json:"client_id"`
	MeanClaims            float64 `json:"mean_claims"`
	VolatilityPct         float64 `json:"volatility_pct"`
	Iterations            int     `json:"iterations"`
	P10                   float64 `json:"p10"`
	P50                   float64 `json:"p50"`
	P90                   float64 `json:"p90"`
	P95                   float64 `json:"p95"`
	P99                   float64 `json:"p99"`
	StdDev                float64 `json:"std_dev"`
	HighUtilizerCount     int     `json:"high_utilizer_count"`
	HighUtilizerCost      float64 `json:"high_utilizer_cost"`
	StandardUtilizerCount int     `json:"standard_utilizer_count"`
	StandardUtilizerCost  float64 `json:"standard_utilizer_cost"`
	CostMultiplier        float64 `json:"cost_multiplier"`
}

// SavingsScenarioRecord сценарий экономии в целевой схеме (1:1)
type SavingsScenarioRecord struct {
	ClientID             string  `json:"client_id"`
	ActualClaims         float64 `json:"actual_claims"`
	WithSavingsAmount    float64 `json:"with_savings_amount"`
	WithoutSavingsAmount float64 `json:"without_savings_amount"`
	SavingsAmount        float64 `json:"savings_amount"`
	CostIncrease         float64 `json:"cost_increase"`
	SavingsPercentage    float64 `json:"savings_percentage"`
	IncreasePercentage   float64 `json:"increase_percentage"`
	ForwardJSON          string  `json:"forward_json"`
}

// PromotionLogEntry строка журнала промоций (append-only).
// После достижения терминального статуса изменяется только через
// отдельную запись отката, не редактированием.
type PromotionLogEntry struct {
	PromotionID     string         `json:"promotion_id"`
	ProspectID      string         `json:"prospect_id"`
	ClientID        string         `json:"client_id,omitempty"`
	Status          string         `json:"status"`
	RecordsInserted map[string]int `json:"records_inserted"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ErrorLogEntry запись журнала ошибок
type ErrorLogEntry struct {
	ErrorID          string    `json:"error_id"`
	Severity         string    `json:"severity"`
	Process          string    `json:"process"`
	Message          string    `json:"message"`
	ResolutionStatus string    `json:"resolution_status"`
	RetryCount       int       `json:"retry_count"`
	StackSummary     string    `json:"stack_summary,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
