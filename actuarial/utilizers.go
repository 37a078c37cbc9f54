package actuarial

import (
	"fmt"
	"math"
	"time"
)

const (
	// HighUtilizerRatio доля сотрудников, относимых к высокозатратной группе
	HighUtilizerRatio = 0.10
	// HighUtilizerCostShare доля затрат, приходящаяся на высокозатратную группу
	HighUtilizerCostShare = 0.85
)

// UtilizerGroup группа сотрудников с агрегированными затратами
type UtilizerGroup struct {
	Count          int     `json:"count"`
	CostTotal      float64 `json:"cost_total"`
	AvgPerEmployee float64 `json:"avg_per_employee"`
}

// UtilizerSplit разбиение сотрудников на высокозатратную и стандартную группы
// по правилу "10% участников генерируют 85% затрат".
// Инварианты: HighUtilizers.Count + StandardUtilizers.Count == EmployeeTotal;
// сумма затрат групп равна TotalClaims с точностью до погрешности float.
type UtilizerSplit struct {
	EmployeeTotal     int           `json:"employee_total"`
	TotalClaims       float64       `json:"total_claims"`
	HighUtilizers     UtilizerGroup `json:"high_utilizers"`
	StandardUtilizers UtilizerGroup `json:"standard_utilizers"`
	// CostMultiplier отношение средних затрат высокой группы к стандартной.
	// Если средние затраты стандартной группы равны 0, множитель равен 0
	// (деление на ноль не выполняется).
	CostMultiplier float64   `json:"cost_multiplier"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// UtilizerSplitEngine детерминированный движок разбиения 10/85.
// Без случайности и без побочных эффектов.
type UtilizerSplitEngine struct{}

// NewUtilizerSplitEngine создает движок разбиения
func NewUtilizerSplitEngine() *UtilizerSplitEngine {
	return &UtilizerSplitEngine{}
}

// Split разбивает сотрудников и затраты на группы.
// highCount = ceil(employeeTotal * 0.10), минимум 1 при employeeTotal > 0.
// Возвращает ErrInvalidInput при employeeTotal <= 0 или totalClaims < 0.
func (e *UtilizerSplitEngine) Split(employeeTotal int, totalClaims float64) (*UtilizerSplit, error) {
	if employeeTotal <= 0 {
		return nil, fmt.Errorf("%w: employee total must be > 0, got %d", ErrInvalidInput, employeeTotal)
	}
	if totalClaims < 0 {
		return nil, fmt.Errorf("%w: total claims must be >= 0, got %f", ErrInvalidInput, totalClaims)
	}

	highCount := int(math.Ceil(float64(employeeTotal) * HighUtilizerRatio))
	if highCount < 1 {
		highCount = 1
	}
	standardCount := employeeTotal - highCount

	highCost := totalClaims * HighUtilizerCostShare
	standardCost := totalClaims * (1 - HighUtilizerCostShare)

	high := UtilizerGroup{
		Count:          highCount,
		CostTotal:      highCost,
		AvgPerEmployee: avgPerEmployee(highCost, highCount),
	}
	standard := UtilizerGroup{
		Count:          standardCount,
		CostTotal:      standardCost,
		AvgPerEmployee: avgPerEmployee(standardCost, standardCount),
	}

	multiplier := 0.0
	if standard.AvgPerEmployee > 0 {
		multiplier = high.AvgPerEmployee / standard.AvgPerEmployee
	}

	return &UtilizerSplit{
		EmployeeTotal:     employeeTotal,
		TotalClaims:       totalClaims,
		HighUtilizers:     high,
		StandardUtilizers: standard,
		CostMultiplier:    multiplier,
		GeneratedAt:       time.Now().UTC(),
	}, nil
}

func avgPerEmployee(cost float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return cost / float64(count)
}
