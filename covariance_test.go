package gogp

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

var (
	covLocations = mat.NewDense(5, 1, []float64{0, 50, 100, 150, 200})
	covX         = mat.NewDense(3, 1, []float64{0, 100, 200})
)

// toeplitz returns the symmetric matrix whose first row is r.
func toeplitz(r []float64) *mat.Dense {
	n := len(r)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i > j {
				m.Set(i, j, r[i-j])
			} else {
				m.Set(i, j, r[j-i])
			}
		}
	}
	return m
}

// checkMatlabCovariance compares the kernel with Matlab values at covLocations and covX,
// which are the even elements of covLocations.
func checkMatlabCovariance(t *testing.T, cov CovarianceFunction, firstRow []float64, tol float64) {
	kxxMatlab := toeplitz(firstRow)
	kxXMatlab := mat.NewDense(5, 3, nil)
	kXXMatlab := mat.NewDense(3, 3, nil)
	for i := 0; i < 5; i++ {
		for j := 0; j < 3; j++ {
			kxXMatlab.Set(i, j, kxxMatlab.At(i, 2*j))
			if i < 3 {
				kXXMatlab.Set(i, j, kxxMatlab.At(2*i, 2*j))
			}
		}
	}
	if kxx := cov.Covariance(covLocations, covLocations); !mat.EqualApprox(kxx, kxxMatlab, tol) {
		t.Fatalf("%s: kxx=\n%v\nexpected\n%v", cov.Name(), mat.Formatted(kxx), mat.Formatted(kxxMatlab))
	}
	if kxX := cov.Covariance(covLocations, covX); !mat.EqualApprox(kxX, kxXMatlab, tol) {
		t.Fatalf("%s: kxX=\n%v\nexpected\n%v", cov.Name(), mat.Formatted(kxX), mat.Formatted(kxXMatlab))
	}
	kXX, dK := cov.Evaluate(covX, covX)
	if !mat.EqualApprox(kXX, kXXMatlab, tol) {
		t.Fatalf("%s: kXX=\n%v\nexpected\n%v", cov.Name(), mat.Formatted(kXX), mat.Formatted(kXXMatlab))
	}
	if len(dK) != cov.ParameterCount() {
		t.Fatalf("%s: %d derivatives for %d hyperparameters", cov.Name(), len(dK), cov.ParameterCount())
	}
}

func logs(vals ...float64) []float64 {
	for i, v := range vals {
		vals[i] = math.Log(v)
	}
	return vals
}

func TestPeriodicSquareExponentialMatlab(t *testing.T) {
	cov, err := NewPeriodicSquareExponential([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	checkMatlabCovariance(t, cov, []float64{403.4288, 234.9952, 57.6856, 7.7574, 0.4862}, 0.003)
}

func TestPeriodicSquareExponential2Matlab(t *testing.T) {
	cov, err := NewPeriodicSquareExponential2(logs(10, 1, 1, 1, 100, 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := cov.SetExtraParameters(logs(80)); err != nil {
		t.Fatal(err)
	}
	checkMatlabCovariance(t, cov, []float64{3, 1.06389, 0.97441, 1.07075, 0.27067}, 0.01)
}

func TestSquareExponentialPeriodicMatlab(t *testing.T) {
	cov, err := NewSquareExponentialPeriodic(logs(10, 1, 1, 80, 1))
	if err != nil {
		t.Fatal(err)
	}
	checkMatlabCovariance(t, cov, []float64{2, 1.82258, 1.45783, 1.17242, 1.04394}, 0.01)
}

func TestPeriodicSquareExponential2DefaultPeriod(t *testing.T) {
	cov, _ := NewPeriodicSquareExponential2(nil)
	if !math.IsInf(cov.Period(), 1) {
		t.Fatalf("default period is %f", cov.Period())
	}
	// With an infinite period the periodic part is the constant σp².
	K := cov.Covariance(covX, covX)
	if math.Abs(K.At(0, 1)-1) > 1e-12 || math.Abs(K.At(0, 0)-3) > 1e-12 {
		t.Fatalf("K(0, 0)=%f K(0, 100)=%f", K.At(0, 0), K.At(0, 1))
	}
}

// checkDerivatives compares the analytic derivatives against central differences.
func checkDerivatives(t *testing.T, cov CovarianceFunction) {
	const eps = 1e-6
	src := rand.NewPCG(42, 1024)
	hyper := cov.HyperParameters()
	for h := range hyper {
		for i := 0; i < 10; i++ {
			location := NormalRandomMatrix(5, 1, src)
			if err := cov.SetHyperParameters(hyper); err != nil {
				t.Fatal(err)
			}
			_, dK := cov.Evaluate(location, location)

			plus := append([]float64(nil), hyper...)
			plus[h] += eps
			cov.SetHyperParameters(plus)
			kPlus := cov.Covariance(location, location)
			minus := append([]float64(nil), hyper...)
			minus[h] -= eps
			cov.SetHyperParameters(minus)
			kMinus := cov.Covariance(location, location)

			var numeric mat.Dense
			numeric.Sub(kPlus, kMinus)
			numeric.Scale(1/(2*eps), &numeric)
			if !mat.EqualApprox(&numeric, dK[h], 1e-6) {
				t.Fatalf("%s: derivative %d\nanalytic=\n%v\nnumeric=\n%v", cov.Name(), h, mat.Formatted(dK[h]), mat.Formatted(&numeric))
			}
		}
	}
	cov.SetHyperParameters(hyper)
}

func TestCovarianceDerivatives(t *testing.T) {
	pse, _ := NewPeriodicSquareExponential([]float64{1, 2, 3, 4})
	checkDerivatives(t, pse)

	pse2, _ := NewPeriodicSquareExponential2(logs(10, 1, 1, 1, 100, 1))
	pse2.SetExtraParameters(logs(80))
	checkDerivatives(t, pse2)

	sep, _ := NewSquareExponentialPeriodic(logs(10, 1, 1, 80, 1))
	checkDerivatives(t, sep)
}

func TestCovarianceSymmetry(t *testing.T) {
	loc := UniformRandomMatrix(8, 2, rand.NewPCG(7, 7))
	for _, name := range []string{PeriodicSquareExponentialName, PeriodicSquareExponential2Name, SquareExponentialPeriodicName} {
		cov, err := NewCovarianceFunction(name, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		hyper := cov.HyperParameters()
		for i := range hyper {
			hyper[i] = 0.1 * float64(i+1)
		}
		cov.SetHyperParameters(hyper)
		K, dK := cov.Evaluate(loc, loc)
		if !mat.Equal(K, K.T()) {
			t.Fatalf("%s: K is not symmetric", name)
		}
		for h, d := range dK {
			if !mat.Equal(d, d.T()) {
				t.Fatalf("%s: derivative %d is not symmetric", name, h)
			}
		}
		if _, err := AsSymDense(K); err != nil {
			t.Fatalf("%s: %s", name, err)
		}
	}
}

func TestCovarianceTranspose(t *testing.T) {
	src := rand.NewPCG(11, 3)
	X := UniformRandomMatrix(8, 2, src)
	Y := UniformRandomMatrix(5, 2, src)
	for _, name := range []string{PeriodicSquareExponentialName, PeriodicSquareExponential2Name, SquareExponentialPeriodicName} {
		cov, err := NewCovarianceFunction(name, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		hyper := cov.HyperParameters()
		for i := range hyper {
			hyper[i] = 0.2 * float64(i+1)
		}
		cov.SetHyperParameters(hyper)
		Kxy, dKxy := cov.Evaluate(X, Y)
		Kyx, dKyx := cov.Evaluate(Y, X)
		if r, c := Kxy.Dims(); r != 8 || c != 5 {
			t.Fatalf("%s: K(X, Y) is %dx%d", name, r, c)
		}
		if !mat.Equal(Kxy, Kyx.T()) {
			t.Fatalf("%s: K(X, Y) is not K(Y, X)ᵀ", name)
		}
		for h := range dKxy {
			if !mat.Equal(dKxy[h], dKyx[h].T()) {
				t.Fatalf("%s: derivative %d of K(X, Y) is not the transpose of K(Y, X)", name, h)
			}
		}
	}
}

func TestCovarianceParameterCounts(t *testing.T) {
	for _, tc := range []struct {
		name         string
		hyper, extra int
	}{
		{PeriodicSquareExponentialName, 4, 0},
		{PeriodicSquareExponential2Name, 6, 1},
		{SquareExponentialPeriodicName, 5, 0},
	} {
		cov, err := NewCovarianceFunction(tc.name, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if cov.ParameterCount() != tc.hyper || cov.ExtraParameterCount() != tc.extra {
			t.Fatalf("%s: %d hyperparameters and %d extra", tc.name, cov.ParameterCount(), cov.ExtraParameterCount())
		}
		if cov.Name() != tc.name {
			t.Fatalf("%s: name is %s", tc.name, cov.Name())
		}
		if err := cov.SetHyperParameters(make([]float64, tc.hyper+1)); !errors.Is(err, ErrSizeMismatch) {
			t.Fatalf("%s: accepted too many hyperparameters (%v)", tc.name, err)
		}
		if err := cov.SetExtraParameters(make([]float64, tc.extra+1)); !errors.Is(err, ErrSizeMismatch) {
			t.Fatalf("%s: accepted too many extra parameters (%v)", tc.name, err)
		}
		if _, err := NewCovarianceFunction(tc.name, make([]float64, tc.hyper-1), nil); !errors.Is(err, ErrSizeMismatch) {
			t.Fatalf("%s: constructed with too few hyperparameters (%v)", tc.name, err)
		}
	}
	if _, err := NewCovarianceFunction("matern", nil, nil); !errors.Is(err, ErrUnknownKernel) {
		t.Fatalf("unknown kernel accepted: %v", err)
	}
}

func TestCovarianceClone(t *testing.T) {
	cov, _ := NewPeriodicSquareExponential2([]float64{1, 2, 3, 4, 5, 6})
	cov.SetExtraParameters([]float64{3})
	clone := cov.Clone()
	clone.SetHyperParameters(make([]float64, 6))
	clone.SetExtraParameters([]float64{0})
	if cov.HyperParameters()[5] != 6 || cov.ExtraParameters()[0] != 3 {
		t.Fatal("updating the clone changed the original")
	}
	// Getters return copies.
	cov.HyperParameters()[0] = 42
	if cov.HyperParameters()[0] != 1 {
		t.Fatal("HyperParameters does not return a copy")
	}
	if cov.String() == "" {
		t.Fatal("empty String")
	}
}

func TestPeriodicKernels(t *testing.T) {
	for _, name := range []string{PeriodicSquareExponentialName, PeriodicSquareExponential2Name, SquareExponentialPeriodicName} {
		cov, _ := NewCovarianceFunction(name, nil, nil)
		p, ok := cov.(Periodic)
		if !ok {
			t.Fatalf("%s is not periodic", name)
		}
		p.SetPeriod(24)
		if math.Abs(p.Period()-24) > 1e-12 {
			t.Fatalf("%s: period is %f", name, p.Period())
		}
	}
}
