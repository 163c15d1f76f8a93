package gogp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

var _ CovarianceFunction = (*PeriodicSquareExponential2)(nil)

// PeriodicSquareExponential2 sums a short square exponential, a periodic kernel
// with an explicit period length and a long square exponential:
//
//	k(d) = σ0²·exp(-d²/(2λ0²)) + σp²·exp(-2·sin²(π·d/p)/λp²) + σ1²·exp(-d²/(2λ1²))
//
// Hyperparameters (all log): 0: λ0, 1: σ0, 2: λp, 3: σp, 4: λ1, 5: σ1.
// The period p is the only extra parameter (log) and is not optimized. Until it is set
// the period is infinite and the periodic part is the constant σp².
type PeriodicSquareExponential2 struct {
	parameters
}

// NewPeriodicSquareExponential2 returns a new PeriodicSquareExponential2. A nil slice
// sets all six hyperparameters to zero.
func NewPeriodicSquareExponential2(hyper []float64) (*PeriodicSquareExponential2, error) {
	p, err := newParameters(PeriodicSquareExponential2Name, 6, hyper, []float64{math.Inf(1)})
	if err != nil {
		return nil, err
	}
	return &PeriodicSquareExponential2{p}, nil
}

func (k *PeriodicSquareExponential2) entry() entryFunc {
	λ0 := math.Exp(k.hyper[0])
	σ02 := math.Exp(2 * k.hyper[1])
	λp := math.Exp(k.hyper[2])
	σp2 := math.Exp(2 * k.hyper[3])
	λ1 := math.Exp(k.hyper[4])
	σ12 := math.Exp(2 * k.hyper[5])
	p := math.Exp(k.extra[0])
	return func(d2 float64, dk []float64) float64 {
		se0 := σ02 * squareExponential(d2, λ0)
		per, sin, _ := periodic(math.Sqrt(d2), p, λp)
		per *= σp2
		se1 := σ12 * squareExponential(d2, λ1)
		if dk != nil {
			dk[0] = se0 * d2 / (λ0 * λ0)
			dk[1] = 2 * se0
			dk[2] = per * 4 * sin * sin / (λp * λp)
			dk[3] = 2 * per
			dk[4] = se1 * d2 / (λ1 * λ1)
			dk[5] = 2 * se1
		}
		return se0 + per + se1
	}
}

// Evaluate implements the CovarianceFunction interface.
func (k *PeriodicSquareExponential2) Evaluate(x, y mat.Matrix) (*mat.Dense, []*mat.Dense) {
	return evaluate(x, y, k.ParameterCount(), k.entry())
}

// Covariance implements the CovarianceFunction interface.
func (k *PeriodicSquareExponential2) Covariance(x, y mat.Matrix) *mat.Dense {
	K, _ := evaluate(x, y, 0, k.entry())
	return K
}

// Period returns the period length.
func (k *PeriodicSquareExponential2) Period() float64 {
	return math.Exp(k.extra[0])
}

// SetPeriod sets the period length.
func (k *PeriodicSquareExponential2) SetPeriod(p float64) {
	k.extra[0] = math.Log(p)
}

// Clone implements the CovarianceFunction interface.
func (k *PeriodicSquareExponential2) Clone() CovarianceFunction {
	return &PeriodicSquareExponential2{k.clone()}
}
