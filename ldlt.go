package gogp

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// LDLT is the pivoted factorization P·A·Pᵀ = L·D·Lᵀ of a symmetric positive semidefinite
// matrix A, where L is unit lower triangular, D is diagonal and P moves the largest
// remaining diagonal element to the pivot at every step. It is stored as the complete
// pivoting Cholesky factor C = L·D^½ computed by LAPACK Dpstrf.
//
// The factorization stops at the numerical rank of A: the remaining elements of D are
// zero, and solves set the matching components to zero.
type LDLT struct {
	n    int
	rank int
	tol  float64   // pivots at or below tol are dropped
	c    []float64 // row major, the first rank columns of the lower part hold C
	perm []int     // row i of P·A·Pᵀ is row perm[i] of A
}

// dlamchE is the machine epsilon for float64.
const dlamchE = 1.0 / (1 << 53)

// negativePivotTol, relative to max|diag|, separates round-off from negative pivots.
var negativePivotTol = math.Sqrt(dlamchE)

// Factorize computes the factorization of a. It returns a *FactorizationError if a holds
// a NaN or infinite element, or if a pivot is truly negative, in which case the receiver
// must not be used.
func (f *LDLT) Factorize(a mat.Symmetric) error {
	n := a.SymmetricDim()
	data := make([]float64, n*n)
	diag := make([]float64, n)
	var maxDiag float64
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			v := a.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &FactorizationError{Pivot: i, Value: v}
			}
			data[i*n+j] = v
		}
		diag[i] = data[i*n+i]
		maxDiag = math.Max(maxDiag, math.Abs(diag[i]))
	}
	perm := make([]int, n)
	tol := float64(n) * dlamchE * maxDiag
	var rank int
	if n > 0 {
		sym := blas64.Symmetric{N: n, Stride: n, Data: data, Uplo: blas.Lower}
		_, rank, _ = lapack64.Pstrf(sym, perm, tol, make([]float64, 2*n))
	}
	if rank == 0 {
		for i := range perm {
			perm[i] = i
		}
	}
	// Dpstrf does not tell a rank deficient matrix from an indefinite one: the Schur
	// complement left after the last pivot must be zero up to round-off.
	for i := rank; i < n; i++ {
		s := diag[perm[i]]
		for k := 0; k < rank; k++ {
			s -= data[i*n+k] * data[i*n+k]
		}
		if s < -negativePivotTol*maxDiag {
			return &FactorizationError{Pivot: i, Value: s}
		}
	}
	f.n = n
	f.rank = rank
	f.tol = tol
	f.c = data
	f.perm = perm
	return nil
}

// Dims returns the dimensions of the factorized matrix.
func (f *LDLT) Dims() (r, c int) {
	return f.n, f.n
}

// Rank returns the numerical rank of the factorized matrix.
func (f *LDLT) Rank() int {
	return f.rank
}

// LogDet returns log|A| = Σ log dᵢ. Dropped pivots count as the rank threshold, which
// bounds them from above, so that LogDet stays finite on semidefinite matrices.
func (f *LDLT) LogDet() float64 {
	var det float64
	for k := 0; k < f.rank; k++ {
		det += 2 * math.Log(f.c[k*f.n+k])
	}
	if f.rank < f.n {
		det += float64(f.n-f.rank) * math.Log(f.tol)
	}
	return det
}

// solveInPlace overwrites b, indexed like A, with the solution of A·x = b. Components
// beyond the rank are zero.
func (f *LDLT) solveInPlace(b []float64) {
	n := f.n
	y := make([]float64, n)
	if f.rank > 0 {
		for i := 0; i < f.rank; i++ {
			y[i] = b[f.perm[i]]
		}
		c := blas64.Triangular{Uplo: blas.Lower, Diag: blas.NonUnit, N: f.rank, Stride: n, Data: f.c}
		v := blas64.Vector{N: f.rank, Inc: 1, Data: y}
		blas64.Trsv(blas.NoTrans, c, v)
		blas64.Trsv(blas.Trans, c, v)
	}
	for i := 0; i < n; i++ {
		b[f.perm[i]] = y[i]
	}
}

// SolveVecTo solves A·x = b and stores x in dst.
func (f *LDLT) SolveVecTo(dst *mat.VecDense, b mat.Vector) error {
	if b.Len() != f.n {
		return mat.ErrShape
	}
	x := make([]float64, f.n)
	for i := range x {
		x[i] = b.AtVec(i)
	}
	f.solveInPlace(x)
	if dst.IsEmpty() {
		dst.ReuseAsVec(f.n)
	} else if dst.Len() != f.n {
		return mat.ErrShape
	}
	for i, v := range x {
		dst.SetVec(i, v)
	}
	return nil
}

// SolveTo solves A·X = B and stores X in dst.
func (f *LDLT) SolveTo(dst *mat.Dense, b mat.Matrix) error {
	r, c := b.Dims()
	if r != f.n {
		return mat.ErrShape
	}
	if dst.IsEmpty() {
		dst.ReuseAs(r, c)
	} else if dr, dc := dst.Dims(); dr != r || dc != c {
		return mat.ErrShape
	}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			col[i] = b.At(i, j)
		}
		f.solveInPlace(col)
		for i := 0; i < r; i++ {
			dst.Set(i, j, col[i])
		}
	}
	return nil
}
