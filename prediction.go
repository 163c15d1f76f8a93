package gogp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Prediction is returned from Predict.
type Prediction struct {
	mean  *mat.VecDense
	covar *mat.SymDense
}

// Mean returns the predicted mean at each location.
func (p Prediction) Mean() *mat.VecDense {
	return p.mean
}

// Covariance returns the predicted covariance between the locations.
func (p Prediction) Covariance() mat.Symmetric {
	return p.covar
}

// Variance returns the diagonal of the covariance.
func (p Prediction) Variance() *mat.VecDense {
	n := p.mean.Len()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, p.covar.At(i, i))
	}
	return v
}

// StdDev returns the predicted standard deviation at location i. Negative round-off
// variances are reported as zero.
func (p Prediction) StdDev(i int) float64 {
	return math.Sqrt(math.Max(0, p.covar.At(i, i)))
}

// IsWithinNσ returns whether the provided values are within the N*σ bounds of the prediction.
func (p Prediction) IsWithinNσ(truth mat.Vector, N float64) bool {
	for i := 0; i < p.mean.Len(); i++ {
		nσ := N * p.StdDev(i)
		if δ := truth.AtVec(i) - p.mean.AtVec(i); δ > nσ || δ < -nσ {
			return false
		}
	}
	return true
}

func (p Prediction) String() string {
	mean := mat.Formatted(p.mean, mat.Prefix("  "))
	covar := mat.Formatted(p.covar, mat.Prefix("  "))
	return fmt.Sprintf("{\nμ=%v\nΣ=%v\n}", mean, covar)
}
