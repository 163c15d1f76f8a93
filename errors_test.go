package gogp

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCheckDims(t *testing.T) {
	i22 := ScaledIdentity(2, 1)
	i33 := ScaledIdentity(3, 1)
	methods := []DimensionAgreement{rows2cols, cols2rows, cols2cols, rows2rows, rowsAndcols}
	for _, meth := range methods {
		if err := checkMatDims(i22, i22, "i22", "i22", meth); err != nil {
			t.Fatalf("method %+v fails: %s", meth, err)
		}
		if err := checkMatDims(i22, i33, "i22", "i33", meth); err == nil {
			t.Fatalf("method %+v does not error when using i22 and i33 ", meth)
		}
	}
	if err := checkMatDims(mat.NewDense(2, 3, nil), mat.NewVecDense(2, nil), "a", "v", rows2rows); err != nil {
		t.Fatalf("rows2rows fails on a vector: %s", err)
	}
}

func TestErrorWrapping(t *testing.T) {
	if err := sizeMismatch("x", 2, 3); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("size mismatch does not wrap ErrSizeMismatch: %s", err)
	}
	var err error = &FactorizationError{Pivot: 2, Value: -1}
	if !errors.Is(err, ErrNotPositiveDefinite) {
		t.Fatal("factorization error does not wrap ErrNotPositiveDefinite")
	}
	var fe *FactorizationError
	if !errors.As(err, &fe) || fe.Pivot != 2 {
		t.Fatalf("could not recover the factorization error: %v", fe)
	}
}
