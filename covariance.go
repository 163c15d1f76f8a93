package gogp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CovarianceFunction defines a kernel of the GP. All hyperparameters are stored in
// log space, and the derivatives returned by Evaluate are taken with respect to
// those log values.
type CovarianceFunction interface {
	// Evaluate returns K(x, y) and ∂K/∂θᵢ for every hyperparameter θᵢ.
	// Rows of x and y are locations, columns are input dimensions.
	Evaluate(x, y mat.Matrix) (*mat.Dense, []*mat.Dense)
	// Covariance returns K(x, y) without computing the derivatives.
	Covariance(x, y mat.Matrix) *mat.Dense
	HyperParameters() []float64
	SetHyperParameters(h []float64) error
	ParameterCount() int
	// ExtraParameters are fixed during optimization, e.g. a known period length.
	ExtraParameters() []float64
	SetExtraParameters(e []float64) error
	ExtraParameterCount() int
	Clone() CovarianceFunction
	Name() string
	String() string
}

// Periodic is implemented by covariance functions which carry a period length.
type Periodic interface {
	Period() float64
	SetPeriod(p float64)
}

// Kernel names as used in configuration files.
const (
	PeriodicSquareExponentialName  = "periodic_square_exponential"
	PeriodicSquareExponential2Name = "periodic_square_exponential2"
	SquareExponentialPeriodicName  = "square_exponential_periodic"
)

// NewCovarianceFunction returns the covariance function of the given name with the
// provided hyperparameters and extra parameters (either may be nil for the defaults).
func NewCovarianceFunction(name string, hyper, extra []float64) (CovarianceFunction, error) {
	var cov CovarianceFunction
	var err error
	switch name {
	case PeriodicSquareExponentialName:
		cov, err = NewPeriodicSquareExponential(hyper)
	case PeriodicSquareExponential2Name:
		cov, err = NewPeriodicSquareExponential2(hyper)
	case SquareExponentialPeriodicName:
		cov, err = NewSquareExponentialPeriodic(hyper)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
	}
	if err != nil {
		return nil, err
	}
	if extra != nil {
		if err := cov.SetExtraParameters(extra); err != nil {
			return nil, err
		}
	}
	return cov, nil
}

// parameters stores the hyperparameters and extra parameters shared by all kernels.
type parameters struct {
	name  string
	hyper []float64
	extra []float64
}

func newParameters(name string, nHyper int, hyper []float64, extra []float64) (parameters, error) {
	p := parameters{name: name, hyper: make([]float64, nHyper), extra: extra}
	if hyper != nil {
		if err := p.SetHyperParameters(hyper); err != nil {
			return parameters{}, err
		}
	}
	return p, nil
}

// HyperParameters returns a copy of the (log) hyperparameters.
func (p *parameters) HyperParameters() []float64 {
	return append([]float64(nil), p.hyper...)
}

// SetHyperParameters sets the (log) hyperparameters. The length must match ParameterCount.
func (p *parameters) SetHyperParameters(h []float64) error {
	if len(h) != len(p.hyper) {
		return sizeMismatch(p.name+" hyperparameters", len(p.hyper), len(h))
	}
	copy(p.hyper, h)
	return nil
}

// ParameterCount returns the number of hyperparameters.
func (p *parameters) ParameterCount() int {
	return len(p.hyper)
}

// ExtraParameters returns a copy of the extra parameters.
func (p *parameters) ExtraParameters() []float64 {
	return append([]float64(nil), p.extra...)
}

// SetExtraParameters sets the extra parameters. The length must match ExtraParameterCount.
func (p *parameters) SetExtraParameters(e []float64) error {
	if len(e) != len(p.extra) {
		return sizeMismatch(p.name+" extra parameters", len(p.extra), len(e))
	}
	copy(p.extra, e)
	return nil
}

// ExtraParameterCount returns the number of extra parameters.
func (p *parameters) ExtraParameterCount() int {
	return len(p.extra)
}

// Name returns the configuration name of the covariance function.
func (p *parameters) Name() string {
	return p.name
}

func (p *parameters) String() string {
	if len(p.extra) == 0 {
		return fmt.Sprintf("%s{θ=%v}", p.name, p.hyper)
	}
	return fmt.Sprintf("%s{θ=%v extra=%v}", p.name, p.hyper, p.extra)
}

func (p *parameters) clone() parameters {
	return parameters{name: p.name, hyper: p.HyperParameters(), extra: p.ExtraParameters()}
}

// entryFunc returns the covariance at squared distance d2 and, if dk is not nil,
// fills dk with the derivative with respect to each hyperparameter.
type entryFunc func(d2 float64, dk []float64) float64

// evaluate fills K(x, y) entry by entry, and the derivative matrices if nHyper > 0.
// When x and y hold the same locations only the upper triangle is computed, which keeps
// K(x, x) exactly symmetric.
func evaluate(x, y mat.Matrix, nHyper int, entry entryFunc) (*mat.Dense, []*mat.Dense) {
	var d2 mat.Matrix
	self := mat.Equal(x, y)
	if self {
		d2 = SelfSquareDistance(x)
	} else {
		d2 = SquareDistance(x, y)
	}
	r, c := d2.Dims()
	K := mat.NewDense(r, c, nil)
	var dK []*mat.Dense
	var dk []float64
	if nHyper > 0 {
		dK = make([]*mat.Dense, nHyper)
		for i := range dK {
			dK[i] = mat.NewDense(r, c, nil)
		}
		dk = make([]float64, nHyper)
	}
	for i := 0; i < r; i++ {
		j0 := 0
		if self {
			j0 = i
		}
		for j := j0; j < c; j++ {
			v := entry(d2.At(i, j), dk)
			K.Set(i, j, v)
			for h := range dK {
				dK[h].Set(i, j, dk[h])
			}
			if self && j != i {
				K.Set(j, i, v)
				for h := range dK {
					dK[h].Set(j, i, dk[h])
				}
			}
		}
	}
	return K, dK
}

// The kernels are assembled from these two terms, with d the distance between locations.

// squareExponential returns exp(-d²/(2λ²)).
func squareExponential(d2, λ float64) float64 {
	return math.Exp(-0.5 * d2 / (λ * λ))
}

// periodic returns exp(-2·sin²(π·d/p)/λ²) along with sin(π·d/p) and π·d/p,
// which the derivatives need.
func periodic(d, p, λ float64) (v, sin, arg float64) {
	arg = math.Pi * d / p
	sin = math.Sin(arg)
	return math.Exp(-2 * sin * sin / (λ * λ)), sin, arg
}
