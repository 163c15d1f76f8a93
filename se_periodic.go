package gogp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

var _ CovarianceFunction = (*SquareExponentialPeriodic)(nil)

// SquareExponentialPeriodic sums a periodic kernel, whose period is a hyperparameter,
// and a square exponential:
//
//	k(d) = σp²·exp(-2·sin²(π·d/p)/λp²) + σse²·exp(-d²/(2·λse²))
//
// Hyperparameters (all log): 0: λp, 1: σp, 2: p, 3: λse, 4: σse.
type SquareExponentialPeriodic struct {
	parameters
}

// NewSquareExponentialPeriodic returns a new SquareExponentialPeriodic. A nil slice
// sets all five hyperparameters to zero.
func NewSquareExponentialPeriodic(hyper []float64) (*SquareExponentialPeriodic, error) {
	p, err := newParameters(SquareExponentialPeriodicName, 5, hyper, nil)
	if err != nil {
		return nil, err
	}
	return &SquareExponentialPeriodic{p}, nil
}

func (k *SquareExponentialPeriodic) entry() entryFunc {
	λp := math.Exp(k.hyper[0])
	σp2 := math.Exp(2 * k.hyper[1])
	p := math.Exp(k.hyper[2])
	λse := math.Exp(k.hyper[3])
	σse2 := math.Exp(2 * k.hyper[4])
	return func(d2 float64, dk []float64) float64 {
		per, sin, arg := periodic(math.Sqrt(d2), p, λp)
		per *= σp2
		se := σse2 * squareExponential(d2, λse)
		if dk != nil {
			dk[0] = per * 4 * sin * sin / (λp * λp)
			dk[1] = 2 * per
			dk[2] = per * 2 * arg * math.Sin(2*arg) / (λp * λp)
			dk[3] = se * d2 / (λse * λse)
			dk[4] = 2 * se
		}
		return per + se
	}
}

// Evaluate implements the CovarianceFunction interface.
func (k *SquareExponentialPeriodic) Evaluate(x, y mat.Matrix) (*mat.Dense, []*mat.Dense) {
	return evaluate(x, y, k.ParameterCount(), k.entry())
}

// Covariance implements the CovarianceFunction interface.
func (k *SquareExponentialPeriodic) Covariance(x, y mat.Matrix) *mat.Dense {
	K, _ := evaluate(x, y, 0, k.entry())
	return K
}

// Period returns the period length.
func (k *SquareExponentialPeriodic) Period() float64 {
	return math.Exp(k.hyper[2])
}

// SetPeriod sets the period length.
func (k *SquareExponentialPeriodic) SetPeriod(p float64) {
	k.hyper[2] = math.Log(p)
}

// Clone implements the CovarianceFunction interface.
func (k *SquareExponentialPeriodic) Clone() CovarianceFunction {
	return &SquareExponentialPeriodic{k.clone()}
}
