package gogp

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ScaledIdentity returns an identity matrix of the provided size scaled by s.
func ScaledIdentity(n int, s float64) *mat.DiagDense {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = s
	}
	return mat.NewDiagDense(n, vals)
}

// AsSymDense attempts return a SymDense from the provided matrix, which must be exactly symmetric.
func AsSymDense(m mat.Matrix) (*mat.SymDense, error) {
	r, c := m.Dims()
	if r != c {
		return nil, errors.New("matrix must be square")
	}
	vals := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(j, i) != m.At(i, j) {
				return nil, errors.New("matrix is not symmetric")
			}
			vals[i*c+j] = m.At(i, j)
		}
	}
	return mat.NewSymDense(r, vals), nil
}

// symmetrize returns (m+mᵀ)/2, removing the round-off asymmetry of products like A·B⁻¹·Aᵀ.
func symmetrize(m mat.Matrix) *mat.SymDense {
	r, _ := m.Dims()
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	return s
}

// addToDiagonal adds v to every diagonal element of s in place.
func addToDiagonal(s *mat.SymDense, v float64) {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		s.SetSym(i, i, s.At(i, i)+v)
	}
}
