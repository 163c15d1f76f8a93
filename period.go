package gogp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

// ErrFlatSignal is returned by EstimatePeriod when the values do not vary.
var ErrFlatSignal = errors.New("gogp: signal has no periodic content")

// EstimatePeriod returns the period of the strongest oscillation in the (possibly
// irregularly sampled) signal, in the units of times. The signal is resampled on
// gridPoints evenly spaced times, its mean removed and a Hamming window applied before
// taking its spectrum. The peak frequency is refined with a parabola through the
// neighboring bins.
func EstimatePeriod(times, values []float64, gridPoints int) (float64, error) {
	if len(times) != len(values) {
		return 0, sizeMismatch("period estimation values", len(times), len(values))
	}
	if len(times) < 4 {
		return 0, fmt.Errorf("period estimation needs at least 4 samples, got %d", len(times))
	}
	if gridPoints < 4 {
		return 0, fmt.Errorf("period estimation needs at least 4 grid points, got %d", gridPoints)
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return 0, fmt.Errorf("period estimation: times must be strictly increasing (index %d)", i)
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(times, values); err != nil {
		return 0, err
	}
	t0, t1 := times[0], times[len(times)-1]
	dt := (t1 - t0) / float64(gridPoints-1)
	seq := make([]float64, gridPoints)
	for i := range seq {
		seq[i] = pl.Predict(math.Min(t0+float64(i)*dt, t1))
	}
	floats.AddConst(-stat.Mean(seq, nil), seq)
	if floats.Norm(seq, math.Inf(1)) <= 1e-12*math.Max(1, floats.Norm(values, math.Inf(1))) {
		return 0, ErrFlatSignal
	}
	window.Hamming(seq)

	fft := fourier.NewFFT(gridPoints)
	coeffs := fft.Coefficients(nil, seq)
	mag := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mag[i] = cmplx.Abs(c)
	}
	peak := 1
	for k := 2; k < len(mag); k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
	}
	if mag[peak] == 0 {
		return 0, ErrFlatSignal
	}
	bin := float64(peak)
	if peak+1 < len(mag) {
		a, b, c := mag[peak-1], mag[peak], mag[peak+1]
		if den := a - 2*b + c; den != 0 {
			bin += 0.5 * (a - c) / den
		}
	}
	return float64(gridPoints) * dt / bin, nil
}

// ApplyPeriod sets the period length of cov. The kernel must implement Periodic.
func ApplyPeriod(cov CovarianceFunction, period float64) error {
	p, ok := cov.(Periodic)
	if !ok {
		return fmt.Errorf("gogp: %s has no period", cov.Name())
	}
	if !(period > 0) || math.IsInf(period, 1) {
		return fmt.Errorf("gogp: invalid period %g", period)
	}
	p.SetPeriod(period)
	return nil
}
