package gogp

import (
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// State is the lifecycle state of a GP.
type State uint8

const (
	// Empty means no training data: the GP behaves as its zero mean prior.
	Empty State = iota
	// Fitted means the GP holds training data and its factorization.
	Fitted
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Fitted:
		return "fitted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

const (
	// DefaultLogNoiseSD is the log noise standard deviation of a new GP
	// (a noise variance of e⁻⁴⁰, i.e. practically noise free).
	DefaultLogNoiseSD = -20.0
	// SampleJitter is the smallest value added to the diagonal of covariance matrices
	// before sampling.
	SampleJitter = 1e-6
	// SampleRelativeJitter scales the largest diagonal element into the sampling jitter
	// when that is larger than SampleJitter.
	SampleRelativeJitter = 1e-10
	// maxJitterAttempts bounds the tenfold jitter increases when sampling.
	maxJitterAttempts = 8
)

// posterior holds everything which depends on the training data. It only exists
// while the GP is Fitted and is always built for the kernel and noise it is stored with.
type posterior struct {
	locations *mat.Dense
	outputs   *mat.VecDense
	gram      *LDLT         // factorization of K(train, train) + σ²I
	alpha     *mat.VecDense // (K + σ²I)⁻¹·y
}

// GP is a Gaussian Process with zero prior mean. Use NewGP to initialize.
// A GP is not safe for concurrent use.
type GP struct {
	covFunc    CovarianceFunction
	logNoiseSD float64
	state      State
	post       *posterior
	src        rand.Source
	logger     *zap.Logger
}

// Option configures a GP.
type Option func(*GP)

// WithLogger sets the logger used by the GP.
func WithLogger(l *zap.Logger) Option {
	return func(gp *GP) {
		gp.logger = l.Named("gp")
	}
}

// WithRandSource sets the random source used to draw samples.
func WithRandSource(src rand.Source) Option {
	return func(gp *GP) {
		gp.src = src
	}
}

// WithLogNoiseSD sets the log noise standard deviation.
func WithLogNoiseSD(v float64) Option {
	return func(gp *GP) {
		gp.logNoiseSD = v
	}
}

// NewGP returns a new GP in the Empty state which owns a copy of the provided covariance
// function. A nil covariance function selects a PeriodicSquareExponential with zero
// hyperparameters.
func NewGP(cov CovarianceFunction, opts ...Option) *GP {
	if cov == nil {
		cov, _ = NewPeriodicSquareExponential(nil)
	}
	gp := &GP{covFunc: cov.Clone(), logNoiseSD: DefaultLogNoiseSD, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(gp)
	}
	return gp
}

func (gp *GP) String() string {
	return fmt.Sprintf("GP[%s] noise=%g %s", gp.state, gp.logNoiseSD, gp.covFunc)
}

// State returns whether the GP is Empty or Fitted.
func (gp *GP) State() State {
	return gp.state
}

// CovarianceFunction returns a copy of the covariance function.
func (gp *GP) CovarianceFunction() CovarianceFunction {
	return gp.covFunc.Clone()
}

// SetCovarianceFunction replaces the covariance function. It returns false, and changes
// nothing, if cov is nil or if the GP is Fitted since the factorization would not match
// the new kernel; call Clear first.
func (gp *GP) SetCovarianceFunction(cov CovarianceFunction) bool {
	if cov == nil {
		gp.logger.Warn("nil covariance function ignored")
		return false
	}
	if gp.state == Fitted {
		gp.logger.Warn("covariance function cannot change while the GP holds data",
			zap.String("current", gp.covFunc.Name()), zap.String("requested", cov.Name()))
		return false
	}
	gp.covFunc = cov.Clone()
	return true
}

// HyperParameters returns the log noise standard deviation followed by the
// hyperparameters of the covariance function.
func (gp *GP) HyperParameters() []float64 {
	return append([]float64{gp.logNoiseSD}, gp.covFunc.HyperParameters()...)
}

// SetHyperParameters sets the log noise standard deviation (first element) and the
// covariance function hyperparameters (the rest). A Fitted GP infers again from its
// data; if that fails nothing is changed and the error is returned.
func (gp *GP) SetHyperParameters(h []float64) error {
	if want := 1 + gp.covFunc.ParameterCount(); len(h) != want {
		return sizeMismatch("GP hyperparameters", want, len(h))
	}
	cov := gp.covFunc.Clone()
	if err := cov.SetHyperParameters(h[1:]); err != nil {
		return err
	}
	if gp.state == Fitted {
		post, err := gp.infer(cov, h[0], gp.post.locations, gp.post.outputs)
		if err != nil {
			return err
		}
		gp.covFunc, gp.logNoiseSD, gp.post = cov, h[0], post
		return nil
	}
	gp.covFunc, gp.logNoiseSD = cov, h[0]
	return nil
}

// noiseVariance returns exp(2·log σ).
func noiseVariance(logNoiseSD float64) float64 {
	return math.Exp(2 * logNoiseSD)
}

// Infer conditions the GP on the outputs observed at the provided locations (one
// location per row). Previous data is replaced. If the covariance matrix cannot be
// factorized the GP is left unchanged and the error wraps ErrNotPositiveDefinite.
func (gp *GP) Infer(locations mat.Matrix, outputs mat.Vector) error {
	if err := checkMatDims(locations, outputs, "locations", "outputs", rows2rows); err != nil {
		return err
	}
	post, err := gp.infer(gp.covFunc, gp.logNoiseSD, mat.DenseCopyOf(locations), mat.VecDenseCopyOf(outputs))
	if err != nil {
		return err
	}
	gp.post = post
	gp.state = Fitted
	return nil
}

// infer builds a posterior without touching the GP.
func (gp *GP) infer(cov CovarianceFunction, logNoiseSD float64, locations *mat.Dense, outputs *mat.VecDense) (*posterior, error) {
	gram, err := AsSymDense(cov.Covariance(locations, locations))
	if err != nil {
		return nil, fmt.Errorf("gram matrix: %w", err)
	}
	σ2 := noiseVariance(logNoiseSD)
	addToDiagonal(gram, σ2)
	n := gram.SymmetricDim()
	gp.logger.Debug("inferring", zap.Int("points", n), zap.Float64("noise_var", σ2))

	var ldlt LDLT
	if err := ldlt.Factorize(gram); err != nil {
		return nil, fmt.Errorf("gp: inference on %d points: %w", n, err)
	}
	if r := ldlt.Rank(); r < n {
		gp.logger.Debug("rank deficient covariance", zap.Int("rank", r), zap.Int("points", n))
	}
	alpha := mat.NewVecDense(n, nil)
	if err := ldlt.SolveVecTo(alpha, outputs); err != nil {
		return nil, err
	}
	return &posterior{locations: locations, outputs: outputs, gram: &ldlt, alpha: alpha}, nil
}

// Clear discards the training data and returns the GP to the Empty state.
func (gp *GP) Clear() {
	gp.post = nil
	gp.state = Empty
}

// Locations returns a copy of the training locations, nil if the GP is Empty.
func (gp *GP) Locations() *mat.Dense {
	if gp.state == Empty {
		return nil
	}
	return mat.DenseCopyOf(gp.post.locations)
}

// Outputs returns a copy of the training outputs, nil if the GP is Empty.
func (gp *GP) Outputs() *mat.VecDense {
	if gp.state == Empty {
		return nil
	}
	return mat.VecDenseCopyOf(gp.post.outputs)
}

// Predict returns the posterior (or, if Empty, prior) mean and covariance at the locations.
func (gp *GP) Predict(locations mat.Matrix) (Prediction, error) {
	mean, covar, err := gp.moments(locations)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{mean: mean, covar: covar}, nil
}

// moments computes the mean vector and full covariance matrix at the locations.
func (gp *GP) moments(locations mat.Matrix) (*mat.VecDense, *mat.SymDense, error) {
	n, _ := locations.Dims()
	prior := gp.covFunc.Covariance(locations, locations)
	if gp.state == Empty {
		return mat.NewVecDense(n, nil), symmetrize(prior), nil
	}
	if err := checkMatDims(locations, gp.post.locations, "locations", "training locations", cols2cols); err != nil {
		return nil, nil, err
	}
	mixed := gp.covFunc.Covariance(locations, gp.post.locations)
	mean := mat.NewVecDense(n, nil)
	mean.MulVec(mixed, gp.post.alpha)

	var v, correction mat.Dense
	if err := gp.post.gram.SolveTo(&v, mixed.T()); err != nil {
		return nil, nil, err
	}
	correction.Mul(mixed, &v)
	correction.Sub(prior, &correction)
	return mean, symmetrize(&correction), nil
}

// DrawSample returns a sample of the GP at the locations: mean + L·z with L the Cholesky
// factor of the (posterior or prior) covariance. If z is nil it is drawn from a standard
// normal distribution using the GP's random source.
// The covariance is jittered by max(SampleJitter, SampleRelativeJitter·max|diag|), tenfold
// larger after every failed factorization.
func (gp *GP) DrawSample(locations mat.Matrix, z mat.Vector) (*mat.VecDense, error) {
	n, _ := locations.Dims()
	if z == nil {
		z = NormalRandomVector(n, gp.src)
	} else if err := checkMatDims(locations, z, "locations", "random vector", rows2rows); err != nil {
		return nil, err
	}
	mean, covar, err := gp.moments(locations)
	if err != nil {
		return nil, err
	}
	var maxDiag float64
	for i := 0; i < n; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(covar.At(i, i)))
	}
	var chol mat.Cholesky
	jitter := math.Max(SampleJitter, SampleRelativeJitter*maxDiag)
	for attempt := 0; ; attempt++ {
		jittered := mat.NewSymDense(n, nil)
		jittered.CopySym(covar)
		addToDiagonal(jittered, jitter)
		if chol.Factorize(jittered) {
			break
		}
		if attempt == maxJitterAttempts {
			return nil, fmt.Errorf("gp: sampling covariance with jitter %g: %w", jitter, ErrNotPositiveDefinite)
		}
		gp.logger.Debug("cholesky failed, increasing jitter", zap.Int("attempt", attempt+1), zap.Float64("jitter", jitter))
		jitter *= 10
	}
	var L mat.TriDense
	chol.LTo(&L)
	sample := mat.NewVecDense(n, nil)
	sample.MulVec(&L, z)
	sample.AddVec(sample, mean)
	return sample, nil
}

// NegLogLikelihood returns 0.5·(yᵀK⁻¹y + log|K| + n·log 2π) of the training data,
// with K including the noise.
func (gp *GP) NegLogLikelihood() (float64, error) {
	if gp.state == Empty {
		return 0, fmt.Errorf("negative log likelihood: %w", ErrNoTrainingData)
	}
	n := gp.post.outputs.Len()
	quad := mat.Dot(gp.post.outputs, gp.post.alpha)
	return 0.5 * (quad + gp.post.gram.LogDet() + float64(n)*math.Log(2*math.Pi)), nil
}

// NegLogLikelihoodGradient returns the derivative of NegLogLikelihood with respect to
// every hyperparameter, in the order of HyperParameters:
// gᵢ = 0.5·tr(K⁻¹·∂K/∂θᵢ) - 0.5·αᵀ·∂K/∂θᵢ·α with α = K⁻¹y.
func (gp *GP) NegLogLikelihoodGradient() ([]float64, error) {
	if gp.state == Empty {
		return nil, fmt.Errorf("negative log likelihood gradient: %w", ErrNoTrainingData)
	}
	loc := gp.post.locations
	alpha := gp.post.alpha
	n := alpha.Len()
	_, dK := gp.covFunc.Evaluate(loc, loc)
	// The noise term has ∂K/∂θ0 = 2σ²·I.
	derivs := append([]mat.Matrix{ScaledIdentity(n, 2*noiseVariance(gp.logNoiseSD))}, asMatrices(dK)...)

	grad := make([]float64, len(derivs))
	var X mat.Dense
	var dKα mat.VecDense
	for i, d := range derivs {
		X.Reset()
		if err := gp.post.gram.SolveTo(&X, d); err != nil {
			return nil, err
		}
		dKα.Reset()
		dKα.MulVec(d, alpha)
		grad[i] = 0.5 * (mat.Trace(&X) - mat.Dot(alpha, &dKα))
	}
	return grad, nil
}

func asMatrices(m []*mat.Dense) []mat.Matrix {
	out := make([]mat.Matrix, len(m))
	for i, v := range m {
		out[i] = v
	}
	return out
}
