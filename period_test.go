package gogp

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"testing"
)

func TestEstimatePeriod(t *testing.T) {
	src := rand.New(rand.NewPCG(10, 20))
	const (
		n      = 300
		period = 20.0
	)
	times := make([]float64, n)
	for i := range times {
		times[i] = 400 * src.Float64()
	}
	sort.Float64s(times)
	values := make([]float64, n)
	for i, ti := range times {
		values[i] = 3 + math.Sin(2*math.Pi*ti/period) + 0.05*src.NormFloat64()
	}
	p, err := EstimatePeriod(times, values, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-period)/period > 0.02 {
		t.Fatalf("estimated period %f expected %f", p, period)
	}
}

func TestEstimatePeriodErrors(t *testing.T) {
	if _, err := EstimatePeriod([]float64{0, 1, 2}, []float64{0, 1, 0}, 64); err == nil {
		t.Fatal("three samples accepted")
	}
	if _, err := EstimatePeriod([]float64{0, 1, 1, 2}, []float64{0, 1, 0, 1}, 64); err == nil {
		t.Fatal("repeated times accepted")
	}
	if _, err := EstimatePeriod([]float64{0, 1, 2, 3}, []float64{0, 1, 0}, 64); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("mismatched values accepted: %v", err)
	}
	if _, err := EstimatePeriod([]float64{0, 1, 2, 3}, []float64{0, 1, 0, 1}, 2); err == nil {
		t.Fatal("two grid points accepted")
	}
	if _, err := EstimatePeriod([]float64{0, 1, 2, 3, 4}, []float64{5, 5, 5, 5, 5}, 64); !errors.Is(err, ErrFlatSignal) {
		t.Fatalf("flat signal accepted: %v", err)
	}
}

func TestApplyPeriod(t *testing.T) {
	for _, name := range []string{PeriodicSquareExponentialName, PeriodicSquareExponential2Name, SquareExponentialPeriodicName} {
		cov, _ := NewCovarianceFunction(name, nil, nil)
		if err := ApplyPeriod(cov, 80); err != nil {
			t.Fatal(err)
		}
		if p := cov.(Periodic).Period(); math.Abs(p-80) > 1e-9 {
			t.Fatalf("%s: period is %f", name, p)
		}
		if err := ApplyPeriod(cov, -1); err == nil {
			t.Fatalf("%s: negative period accepted", name)
		}
	}
}
