package gogp

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SquareDistance returns the matrix of pairwise squared Euclidean distances between
// the rows of a and the rows of b: out(i, j) = Σ_k (a(i, k) - b(j, k))².
// Both matrices must have the same number of columns (the input dimension).
func SquareDistance(a, b mat.Matrix) *mat.Dense {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ca != cb {
		panic(mat.ErrShape)
	}
	out := mat.NewDense(ra, rb, nil)
	for i := 0; i < ra; i++ {
		for j := 0; j < rb; j++ {
			var sum float64
			for k := 0; k < ca; k++ {
				δ := a.At(i, k) - b.At(j, k)
				sum += δ * δ
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// SelfSquareDistance returns SquareDistance(a, a) as a symmetric matrix.
func SelfSquareDistance(a mat.Matrix) *mat.SymDense {
	r, c := a.Dims()
	out := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			var sum float64
			for k := 0; k < c; k++ {
				δ := a.At(i, k) - a.At(j, k)
				sum += δ * δ
			}
			out.SetSym(i, j, sum)
		}
	}
	return out
}

// UniformRandomMatrix returns a rows×cols matrix of samples uniformly distributed in [0, 1).
// A nil source uses the global generator.
func UniformRandomMatrix(rows, cols int, src rand.Source) *mat.Dense {
	return randomMatrix(rows, cols, distuv.Uniform{Min: 0, Max: 1, Src: src})
}

// NormalRandomMatrix returns a rows×cols matrix of standard normal samples.
// A nil source uses the global generator.
func NormalRandomMatrix(rows, cols int, src rand.Source) *mat.Dense {
	return randomMatrix(rows, cols, distuv.Normal{Mu: 0, Sigma: 1, Src: src})
}

func randomMatrix(rows, cols int, dist distuv.Rander) *mat.Dense {
	vals := make([]float64, rows*cols)
	for i := range vals {
		vals[i] = dist.Rand()
	}
	return mat.NewDense(rows, cols, vals)
}

// NormalRandomVector returns a vector of n standard normal samples.
func NormalRandomVector(n int, src rand.Source) *mat.VecDense {
	return mat.NewVecDense(n, NormalRandomMatrix(n, 1, src).RawMatrix().Data)
}
