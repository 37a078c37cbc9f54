package actuarial

import (
	"errors"
	"math"
	"testing"
)

func TestSimulatePercentileOrdering(t *testing.T) {
	engine := NewMonteCarloEngineWithSampler(NewSeededNormalSampler(42))

	result, err := engine.Simulate(1_000_000, 0.2, 10000)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}

	s := result.Summary
	if !(s.P10 <= s.P50 && s.P50 <= s.P90 && s.P90 <= s.P95 && s.P95 <= s.P99 && s.P99 <= s.Max) {
		t.Errorf("percentiles not ordered: p10=%f p50=%f p90=%f p95=%f p99=%f max=%f",
			s.P10, s.P50, s.P90, s.P95, s.P99, s.Max)
	}
}

func TestSimulateSamplesNonNegative(t *testing.T) {
	// Высокая волатильность гарантированно дает отрицательные сырые значения,
	// которые должны быть обрезаны до 0
	engine := NewMonteCarloEngineWithSampler(NewSeededNormalSampler(7))

	result, err := engine.Simulate(100, 5.0, 5000)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}

	for i, sample := range result.RawSamples {
		if sample < 0 {
			t.Fatalf("sample %d is negative: %f", i, sample)
		}
	}
	if result.Summary.Min < 0 {
		t.Errorf("summary min is negative: %f", result.Summary.Min)
	}
}

func TestSimulateMedianNearMean(t *testing.T) {
	// Медиана должна лежать в пределах ±5% от среднего значения убытков
	engine := NewMonteCarloEngineWithSampler(NewSeededNormalSampler(1))

	result, err := engine.Simulate(1_000_000, 0.2, 10000)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}

	if math.Abs(result.Summary.P50-1_000_000) > 50_000 {
		t.Errorf("p50 = %f, expected within 5%% of 1000000", result.Summary.P50)
	}
	if !(result.Summary.P90 > result.Summary.P50 && result.Summary.P50 > result.Summary.P10) {
		t.Errorf("expected p90 > p50 > p10, got p90=%f p50=%f p10=%f",
			result.Summary.P90, result.Summary.P50, result.Summary.P10)
	}
}

func TestSimulateZeroVolatility(t *testing.T) {
	engine := NewMonteCarloEngineWithSampler(NewSeededNormalSampler(3))

	result, err := engine.Simulate(500_000, 0, 1000)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}

	if result.Summary.Min != 500_000 || result.Summary.Max != 500_000 {
		t.Errorf("zero volatility should produce constant samples, got min=%f max=%f",
			result.Summary.Min, result.Summary.Max)
	}
	if result.Summary.StdDev != 0 {
		t.Errorf("expected zero std dev, got %f", result.Summary.StdDev)
	}
}

func TestSimulateInvalidInput(t *testing.T) {
	engine := NewMonteCarloEngine()

	tests := []struct {
		name       string
		meanClaims float64
		volatility float64
		iterations int
	}{
		{name: "zero iterations", meanClaims: 1000, volatility: 0.1, iterations: 0},
		{name: "negative iterations", meanClaims: 1000, volatility: 0.1, iterations: -5},
		{name: "negative mean claims", meanClaims: -1, volatility: 0.1, iterations: 100},
		{name: "negative volatility", meanClaims: 1000, volatility: -0.1, iterations: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Simulate(tt.meanClaims, tt.volatility, tt.iterations)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	tests := []struct {
		p    float64
		want float64
	}{
		{p: 0, want: 10},
		{p: 50, want: 55},
		{p: 100, want: 100},
	}

	for _, tt := range tests {
		got := percentile(sorted, tt.p)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("percentile(%f) = %f, want %f", tt.p, got, tt.want)
		}
	}
}

func TestSamplerAvoidsLogZero(t *testing.T) {
	// Прогоняем большое количество отклонений: ни одно не должно быть NaN или Inf
	sampler := NewSeededNormalSampler(99)
	for i := 0; i < 100000; i++ {
		z := sampler.Next()
		if math.IsNaN(z) || math.IsInf(z, 0) {
			t.Fatalf("deviate %d is not finite: %f", i, z)
		}
	}
}
