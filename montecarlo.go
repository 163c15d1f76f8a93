package gogp

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SampleRuns stores samples drawn from a GP at fixed locations.
type SampleRuns struct {
	locations *mat.Dense
	// Samples holds one sample per row and one location per column.
	Samples *mat.Dense
}

// NewSampleRuns draws n samples of the GP at the provided locations with the GP's
// random source.
func NewSampleRuns(gp *GP, locations mat.Matrix, n int) (SampleRuns, error) {
	if n < 1 {
		return SampleRuns{}, fmt.Errorf("sample runs: need at least one sample, got %d", n)
	}
	rows, _ := locations.Dims()
	samples := mat.NewDense(n, rows, nil)
	for s := 0; s < n; s++ {
		sample, err := gp.DrawSample(locations, nil)
		if err != nil {
			return SampleRuns{}, err
		}
		samples.SetRow(s, sample.RawVector().Data)
	}
	return SampleRuns{mat.DenseCopyOf(locations), samples}, nil
}

// Len returns the number of samples.
func (sr SampleRuns) Len() int {
	n, _ := sr.Samples.Dims()
	return n
}

// Mean returns the empirical mean at every location.
func (sr SampleRuns) Mean() *mat.VecDense {
	_, cols := sr.Samples.Dims()
	mean := mat.NewVecDense(cols, nil)
	col := make([]float64, sr.Len())
	for j := 0; j < cols; j++ {
		mat.Col(col, j, sr.Samples)
		mean.SetVec(j, stat.Mean(col, nil))
	}
	return mean
}

// StdDev returns the empirical standard deviation at every location.
func (sr SampleRuns) StdDev() *mat.VecDense {
	_, cols := sr.Samples.Dims()
	dev := mat.NewVecDense(cols, nil)
	col := make([]float64, sr.Len())
	for j := 0; j < cols; j++ {
		mat.Col(col, j, sr.Samples)
		dev.SetVec(j, stat.StdDev(col, nil))
	}
	return dev
}

// Covariance returns the empirical covariance between the locations.
func (sr SampleRuns) Covariance() *mat.SymDense {
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, sr.Samples, nil)
	return &cov
}

// AsCSV is used as a CSV serializer: one line per location holding the location
// coordinates, every sample, then the mean and standard deviation. The first line is
// the header, built from the provided location headers.
func (sr SampleRuns) AsCSV(headers []string) string {
	rows, dims := sr.locations.Dims()
	lines := make([]string, rows+1)
	hdr := append([]string(nil), headers...)
	for s := 0; s < sr.Len(); s++ {
		hdr = append(hdr, fmt.Sprintf("sample-%d", s))
	}
	lines[0] = strings.Join(append(hdr, "mean", "stddev"), ",")

	mean, dev := sr.Mean(), sr.StdDev()
	for i := 0; i < rows; i++ {
		vals := make([]string, 0, dims+sr.Len()+2)
		for d := 0; d < dims; d++ {
			vals = append(vals, fmt.Sprintf("%f", sr.locations.At(i, d)))
		}
		for s := 0; s < sr.Len(); s++ {
			vals = append(vals, fmt.Sprintf("%f", sr.Samples.At(s, i)))
		}
		vals = append(vals, fmt.Sprintf("%f", mean.AtVec(i)), fmt.Sprintf("%f", dev.AtVec(i)))
		lines[i+1] = strings.Join(vals, ",")
	}
	return strings.Join(lines, "\n")
}
