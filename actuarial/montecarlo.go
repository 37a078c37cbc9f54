package actuarial

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// DefaultIterations количество испытаний Monte Carlo по умолчанию
	DefaultIterations = 10000
)

// SimulationSummary сводная статистика по отсортированной выборке
type SimulationSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	P10    float64 `json:"p10"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	StdDev float64 `json:"std_dev"`
}

// SimulationResult результат Monte Carlo симуляции годовой стоимости убытков.
// Артефакт создается один раз за цикл промоции и далее не изменяется
// (повторный запуск перезаписывает артефакт целиком).
type SimulationResult struct {
	Iterations    int               `json:"iterations"`
	MeanClaims    float64           `json:"mean_claims"`
	VolatilityPct float64           `json:"volatility_pct"`
	Summary       SimulationSummary `json:"summary"`
	RawSamples    []float64         `json:"raw_samples,omitempty"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// MonteCarloEngine движок симуляции стоимости убытков по нормальной модели.
// Чистая синхронная функция без разделяемого состояния: безопасно вызывать
// параллельно для разных проспектов, каждый со своим сэмплером.
type MonteCarloEngine struct {
	sampler *NormalSampler
}

// NewMonteCarloEngine создает движок со случайным seed
func NewMonteCarloEngine() *MonteCarloEngine {
	return &MonteCarloEngine{sampler: NewNormalSampler()}
}

// NewMonteCarloEngineWithSampler создает движок с заданным сэмплером (для тестов)
func NewMonteCarloEngineWithSampler(sampler *NormalSampler) *MonteCarloEngine {
	return &MonteCarloEngine{sampler: sampler}
}

// Simulate выполняет iterations испытаний: sample = meanClaims + (meanClaims*volatilityPct)*z,
// где z - стандартное нормальное отклонение. Отрицательные значения обрезаются до 0,
// так как убытки не могут быть отрицательными.
// Возвращает ErrInvalidInput при iterations < 1 или meanClaims < 0.
func (e *MonteCarloEngine) Simulate(meanClaims, volatilityPct float64, iterations int) (*SimulationResult, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be >= 1, got %d", ErrInvalidInput, iterations)
	}
	if meanClaims < 0 {
		return nil, fmt.Errorf("%w: mean claims must be >= 0, got %f", ErrInvalidInput, meanClaims)
	}
	if volatilityPct < 0 {
		return nil, fmt.Errorf("%w: volatility must be >= 0, got %f", ErrInvalidInput, volatilityPct)
	}

	stdDev := meanClaims * volatilityPct
	samples := make([]float64, iterations)

	for i := 0; i < iterations; i++ {
		sample := meanClaims + stdDev*e.sampler.Next()
		if sample < 0 {
			sample = 0
		}
		samples[i] = sample
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	summary := summarize(sorted)

	return &SimulationResult{
		Iterations:    iterations,
		MeanClaims:    meanClaims,
		VolatilityPct: volatilityPct,
		Summary:       summary,
		RawSamples:    samples,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// summarize вычисляет сводную статистику по отсортированной выборке
func summarize(sorted []float64) SimulationSummary {
	n := len(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, v := range sorted {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(n)

	return SimulationSummary{
		Min:    sorted[0],
		Max:    sorted[n-1],
		Median: percentile(sorted, 50),
		Mean:   mean,
		P10:    percentile(sorted, 10),
		P50:    percentile(sorted, 50),
		P90:    percentile(sorted, 90),
		P95:    percentile(sorted, 95),
		P99:    percentile(sorted, 99),
		StdDev: math.Sqrt(variance),
	}
}

// percentile вычисляет перцентиль методом ближайшего ранга с линейной интерполяцией.
// Выборка должна быть отсортирована по возрастанию.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	rank := (p / 100) * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
