package actuarial

import (
	"fmt"
	"math"
	"time"
)

const (
	// WithSavingsMultiplier множитель затрат при внедрении программы экономии
	WithSavingsMultiplier = 0.60
	// WithoutSavingsMultiplier множитель затрат при отказе от программы
	WithoutSavingsMultiplier = 1.60
	// DefaultAnnualTrendRate годовой медицинский тренд для прогнозных лет
	DefaultAnnualTrendRate = 0.08
)

// ForwardYears горизонты прогноза в годах
var ForwardYears = []int{1, 3, 5}

// ForwardProjection прогноз затрат на заданный год вперед
type ForwardProjection struct {
	Year           int     `json:"year"`
	WithSavings    float64 `json:"with_savings"`
	WithoutSavings float64 `json:"without_savings"`
}

// SavingsScenario ретроспективный и прогнозный сценарии затрат.
// Инварианты: WithSavingsAmount = ActualClaims * 0.60;
// WithoutSavingsAmount = ActualClaims * 1.60;
// SavingsAmount = ActualClaims - WithSavingsAmount;
// CostIncrease = WithoutSavingsAmount - ActualClaims.
type SavingsScenario struct {
	ActualClaims         float64             `json:"actual_claims"`
	WithSavingsAmount    float64             `json:"with_savings_amount"`
	WithoutSavingsAmount float64             `json:"without_savings_amount"`
	SavingsAmount        float64             `json:"savings_amount"`
	CostIncrease         float64             `json:"cost_increase"`
	SavingsPercentage    float64             `json:"savings_percentage"`
	IncreasePercentage   float64             `json:"increase_percentage"`
	Forward              []ForwardProjection `json:"forward"`
	GeneratedAt          time.Time           `json:"generated_at"`
}

// SavingsScenarioEngine детерминированный движок сценариев экономии.
// Чистая арифметика с фиксированными множителями.
type SavingsScenarioEngine struct {
	trendRate float64
}

// NewSavingsScenarioEngine создает движок с годовым трендом по умолчанию
func NewSavingsScenarioEngine() *SavingsScenarioEngine {
	return &SavingsScenarioEngine{trendRate: DefaultAnnualTrendRate}
}

// NewSavingsScenarioEngineWithTrend создает движок с заданным годовым трендом
func NewSavingsScenarioEngineWithTrend(trendRate float64) *SavingsScenarioEngine {
	return &SavingsScenarioEngine{trendRate: trendRate}
}

// Project строит сценарии экономии по фактическим годовым убыткам.
// Возвращает ErrInvalidInput при actualClaims < 0.
func (e *SavingsScenarioEngine) Project(actualClaims float64) (*SavingsScenario, error) {
	if actualClaims < 0 {
		return nil, fmt.Errorf("%w: actual claims must be >= 0, got %f", ErrInvalidInput, actualClaims)
	}

	withSavings := actualClaims * WithSavingsMultiplier
	withoutSavings := actualClaims * WithoutSavingsMultiplier

	scenario := &SavingsScenario{
		ActualClaims:         actualClaims,
		WithSavingsAmount:    withSavings,
		WithoutSavingsAmount: withoutSavings,
		SavingsAmount:        actualClaims - withSavings,
		CostIncrease:         withoutSavings - actualClaims,
		SavingsPercentage:    (1 - WithSavingsMultiplier) * 100,
		IncreasePercentage:   (WithoutSavingsMultiplier - 1) * 100,
		GeneratedAt:          time.Now().UTC(),
	}

	// Прогнозные годы: оба пути растут по годовому медицинскому тренду
	for _, year := range ForwardYears {
		trend := math.Pow(1+e.trendRate, float64(year))
		scenario.Forward = append(scenario.Forward, ForwardProjection{
			Year:           year,
			WithSavings:    withSavings * trend,
			WithoutSavings: withoutSavings * trend,
		})
	}

	return scenario, nil
}
