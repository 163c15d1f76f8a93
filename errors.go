package gogp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSizeMismatch is returned when a hyperparameter or extra parameter
	// vector does not have the length required by its covariance function.
	ErrSizeMismatch = errors.New("gogp: parameter vector size mismatch")
	// ErrNotPositiveDefinite is returned when a covariance matrix cannot be factorized.
	ErrNotPositiveDefinite = errors.New("gogp: matrix is not positive definite")
	// ErrNoTrainingData is returned by operations which require a fitted GP.
	ErrNoTrainingData = errors.New("gogp: no training data")
	// ErrUnknownKernel is returned when a covariance function name is not known.
	ErrUnknownKernel = errors.New("gogp: unknown covariance function")
)

// FactorizationError reports the pivot at which a factorization broke down.
type FactorizationError struct {
	Pivot int
	Value float64
}

func (e *FactorizationError) Error() string {
	return fmt.Sprintf("%s (pivot %d is %g)", ErrNotPositiveDefinite, e.Pivot, e.Value)
}

// Unwrap allows errors.Is(err, ErrNotPositiveDefinite).
func (e *FactorizationError) Unwrap() error {
	return ErrNotPositiveDefinite
}

// sizeMismatch wraps ErrSizeMismatch with the expected and actual lengths.
func sizeMismatch(what string, want, got int) error {
	return fmt.Errorf("%w: %s expects %d values, got %d", ErrSizeMismatch, what, want, got)
}

// DimensionAgreement defines how two matrices' dimensions should agree.
type DimensionAgreement uint8

const (
	dimErrMsg                    = "dimensions must agree: "
	rows2cols DimensionAgreement = iota + 1
	cols2rows
	cols2cols
	rows2rows
	rowsAndcols
)

// checkMatDims checks the matrix dimensions match provided a DimensionAgreement. Returns an error if not.
func checkMatDims(m1, m2 mat.Matrix, name1, name2 string, method DimensionAgreement) error {
	r1, c1 := m1.Dims()
	r2, c2 := m2.Dims()
	switch method {
	case rows2cols:
		if r1 != c2 {
			return fmt.Errorf("%s%s(%dx...) %s(...x%d)", dimErrMsg, name1, r1, name2, c2)
		}
	case cols2rows:
		if c1 != r2 {
			return fmt.Errorf("%s%s(...x%d) %s(%dx...)", dimErrMsg, name1, c1, name2, r2)
		}
	case cols2cols:
		if c1 != c2 {
			return fmt.Errorf("%s%s(...x%d) %s(...x%d)", dimErrMsg, name1, c1, name2, c2)
		}
	case rows2rows:
		if r1 != r2 {
			return fmt.Errorf("%s%s(%dx...) %s(%dx...)", dimErrMsg, name1, r1, name2, r2)
		}
	case rowsAndcols:
		if c1 != c2 || r1 != r2 {
			return fmt.Errorf("%s%s(%dx%d) %s(%dx%d)", dimErrMsg, name1, r1, c1, name2, r2, c2)
		}
	}
	return nil
}
