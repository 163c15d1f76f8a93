package gogp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NEES returns the normalized estimation error squared (y-μ)ᵀ·Σ⁻¹·(y-μ) of truth
// under the prediction.
func (p Prediction) NEES(truth mat.Vector) (float64, error) {
	n := p.mean.Len()
	if truth.Len() != n {
		return 0, sizeMismatch("NEES truth", n, truth.Len())
	}
	var f LDLT
	if err := f.Factorize(p.covar); err != nil {
		return 0, fmt.Errorf("NEES: %w", err)
	}
	var δ, x mat.VecDense
	δ.SubVec(truth, p.mean)
	if err := f.SolveVecTo(&x, &δ); err != nil {
		return 0, err
	}
	return mat.Dot(&δ, &x), nil
}

// NewChiSquare runs the Chi square test of the sample runs against the prediction at
// the same locations: if the samples follow the prediction, the sum of their NEES
// follows a Chi square distribution with runs·locations degrees of freedom.
// Returns the mean NEES of the runs and the probability of a sum at least as large.
func NewChiSquare(pred Prediction, runs SampleRuns) (float64, float64, error) {
	numRuns, cols := runs.Samples.Dims()
	if cols != pred.mean.Len() {
		return 0, 0, errors.New("Chi square requires samples at the predicted locations")
	}
	var total float64
	for r := 0; r < numRuns; r++ {
		nees, err := pred.NEES(runs.Samples.RowView(r))
		if err != nil {
			return 0, 0, err
		}
		total += nees
	}
	dist := distuv.ChiSquared{K: float64(numRuns * cols)}
	return total / float64(numRuns), dist.Survival(total), nil
}
