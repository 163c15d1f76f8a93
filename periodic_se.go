package gogp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

var _ CovarianceFunction = (*PeriodicSquareExponential)(nil)

// PeriodicSquareExponential is the product of a periodic kernel and a square
// exponential envelope:
//
//	k(d) = σ²·exp(-2·sin²(π·d/p)/λp²)·exp(-d²/(2·λse²))
//
// Hyperparameters (all log):
// - 0: λp, length scale of the periodic part
// - 1: p, period length
// - 2: σ, signal standard deviation
// - 3: λse, length scale of the envelope
type PeriodicSquareExponential struct {
	parameters
}

// NewPeriodicSquareExponential returns a new PeriodicSquareExponential. A nil slice
// sets all four hyperparameters to zero.
func NewPeriodicSquareExponential(hyper []float64) (*PeriodicSquareExponential, error) {
	p, err := newParameters(PeriodicSquareExponentialName, 4, hyper, nil)
	if err != nil {
		return nil, err
	}
	return &PeriodicSquareExponential{p}, nil
}

func (k *PeriodicSquareExponential) entry() entryFunc {
	λp := math.Exp(k.hyper[0])
	p := math.Exp(k.hyper[1])
	σ2 := math.Exp(2 * k.hyper[2])
	λse := math.Exp(k.hyper[3])
	return func(d2 float64, dk []float64) float64 {
		per, sin, arg := periodic(math.Sqrt(d2), p, λp)
		v := σ2 * per * squareExponential(d2, λse)
		if dk != nil {
			dk[0] = v * 4 * sin * sin / (λp * λp)
			dk[1] = v * 2 * arg * math.Sin(2*arg) / (λp * λp)
			dk[2] = 2 * v
			dk[3] = v * d2 / (λse * λse)
		}
		return v
	}
}

// Evaluate implements the CovarianceFunction interface.
func (k *PeriodicSquareExponential) Evaluate(x, y mat.Matrix) (*mat.Dense, []*mat.Dense) {
	return evaluate(x, y, k.ParameterCount(), k.entry())
}

// Covariance implements the CovarianceFunction interface.
func (k *PeriodicSquareExponential) Covariance(x, y mat.Matrix) *mat.Dense {
	K, _ := evaluate(x, y, 0, k.entry())
	return K
}

// Period returns the period length.
func (k *PeriodicSquareExponential) Period() float64 {
	return math.Exp(k.hyper[1])
}

// SetPeriod sets the period length.
func (k *PeriodicSquareExponential) SetPeriod(p float64) {
	k.hyper[1] = math.Log(p)
}

// Clone implements the CovarianceFunction interface.
func (k *PeriodicSquareExponential) Clone() CovarianceFunction {
	return &PeriodicSquareExponential{k.clone()}
}
