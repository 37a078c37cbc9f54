package actuarial

import (
	"errors"
	"math"
	"testing"
)

func TestSplitScenario(t *testing.T) {
	// 100 сотрудников, 1 000 000 убытков
	engine := NewUtilizerSplitEngine()

	split, err := engine.Split(100, 1_000_000)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}

	if split.HighUtilizers.Count != 10 {
		t.Errorf("high count = %d, want 10", split.HighUtilizers.Count)
	}
	if split.HighUtilizers.CostTotal != 850_000 {
		t.Errorf("high cost = %f, want 850000", split.HighUtilizers.CostTotal)
	}
	if split.StandardUtilizers.Count != 90 {
		t.Errorf("standard count = %d, want 90", split.StandardUtilizers.Count)
	}
	if math.Abs(split.StandardUtilizers.CostTotal-150_000) > 1e-6 {
		t.Errorf("standard cost = %f, want 150000", split.StandardUtilizers.CostTotal)
	}
}

func TestSplitInvariants(t *testing.T) {
	engine := NewUtilizerSplitEngine()

	tests := []struct {
		name          string
		employeeTotal int
		totalClaims   float64
	}{
		{name: "single employee", employeeTotal: 1, totalClaims: 50_000},
		{name: "small group", employeeTotal: 7, totalClaims: 123_456.78},
		{name: "exact boundary", employeeTotal: 10, totalClaims: 1_000_000},
		{name: "large group", employeeTotal: 12345, totalClaims: 98_765_432.10},
		{name: "zero claims", employeeTotal: 50, totalClaims: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := engine.Split(tt.employeeTotal, tt.totalClaims)
			if err != nil {
				t.Fatalf("Split returned error: %v", err)
			}

			if split.HighUtilizers.Count+split.StandardUtilizers.Count != tt.employeeTotal {
				t.Errorf("group counts %d + %d != employee total %d",
					split.HighUtilizers.Count, split.StandardUtilizers.Count, tt.employeeTotal)
			}

			costSum := split.HighUtilizers.CostTotal + split.StandardUtilizers.CostTotal
			if tt.totalClaims > 0 {
				relErr := math.Abs(costSum-tt.totalClaims) / tt.totalClaims
				if relErr > 1e-6 {
					t.Errorf("cost sum %f differs from total claims %f (rel err %g)",
						costSum, tt.totalClaims, relErr)
				}
			} else if costSum != 0 {
				t.Errorf("cost sum = %f, want 0", costSum)
			}

			wantHigh := int(math.Ceil(float64(tt.employeeTotal) * 0.10))
			if wantHigh < 1 {
				wantHigh = 1
			}
			if split.HighUtilizers.Count != wantHigh {
				t.Errorf("high count = %d, want ceil(%d * 0.10) = %d",
					split.HighUtilizers.Count, tt.employeeTotal, wantHigh)
			}
		})
	}
}

func TestSplitCostMultiplierZeroStandardAvg(t *testing.T) {
	engine := NewUtilizerSplitEngine()

	// При нулевых убытках средние затраты стандартной группы равны 0,
	// множитель должен быть 0, а не Inf/NaN
	split, err := engine.Split(20, 0)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}

	if split.CostMultiplier != 0 {
		t.Errorf("cost multiplier = %f, want 0 for zero standard average", split.CostMultiplier)
	}
}

func TestSplitInvalidInput(t *testing.T) {
	engine := NewUtilizerSplitEngine()

	if _, err := engine.Split(0, 1000); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero employees, got %v", err)
	}
	if _, err := engine.Split(-10, 1000); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative employees, got %v", err)
	}
	if _, err := engine.Split(10, -1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative claims, got %v", err)
	}
}
