// Package gonumext collects small dense-matrix helpers that gonum/mat does
// not provide directly but that the model-reduction code reaches for
// repeatedly.
package gonumext

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Ones returns a (m by n) matrix filled with ones.
func Ones(m, n int) *mat.Dense {
	return Full(m, n, 1.)
}

// Full returns a (m by n) matrix filled with value.
func Full(m, n int, value float64) *mat.Dense {
	data := make([]float64, m*n)
	for index := range data {
		data[index] = value
	}
	return mat.NewDense(m, n, data)
}

// Eye returns the (m by n) identity-like matrix with ones on the main
// diagonal.
func Eye(m, n int) *mat.Dense {
	res := mat.NewDense(m, n, nil)
	for i := 0; i < m && i < n; i++ {
		res.Set(i, i, 1)
	}
	return res
}

// NaNOrInf checks if there are any NaN or Inf entries in matrix.
func NaNOrInf(matrix mat.Matrix) bool {
	m, n := matrix.Dims()
	for row := 0; row < m; row++ {
		for col := 0; col < n; col++ {
			if math.IsNaN(matrix.At(row, col)) || math.IsInf(matrix.At(row, col), 0) {
				return true
			}
		}
	}
	return false
}

// Symmetrize overwrites x with (x + x^T)/2. x must be square.
func Symmetrize(x *mat.Dense) {
	m, n := x.Dims()
	if m != n {
		panic("gonumext: symmetrize of non-square matrix")
	}
	for row := 0; row < m; row++ {
		for col := row + 1; col < n; col++ {
			v := (x.At(row, col) + x.At(col, row)) / 2
			x.Set(row, col, v)
			x.Set(col, row, v)
		}
	}
}

// SqrtPSD returns a factor Z with Z Z^T equal to the positive-semidefinite
// part of the symmetric matrix x. Negative eigenvalues, which show up through
// roundoff in Gramians of nearly unobservable or uncontrollable systems, are
// floored at zero.
func SqrtPSD(x *mat.Dense) (*mat.Dense, error) {
	n, _ := x.Dims()
	sym := mat.NewSymDense(n, nil)
	for row := 0; row < n; row++ {
		for col := row; col < n; col++ {
			sym.SetSym(row, col, (x.At(row, col)+x.At(col, row))/2)
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, errFactorization
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	z := mat.NewDense(n, n, nil)
	for col := 0; col < n; col++ {
		scale := 0.
		if vals[col] > 0 {
			scale = math.Sqrt(vals[col])
		}
		for row := 0; row < n; row++ {
			z.Set(row, col, vecs.At(row, col)*scale)
		}
	}
	return z, nil
}

// Orthonormalize returns an orthonormal basis for the column space of v,
// discarding directions below a relative singular-value cutoff.
func Orthonormalize(v *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(v, mat.SVDThinU); !ok {
		return nil, errFactorization
	}
	vals := svd.Values(nil)
	rank := 0
	for _, s := range vals {
		if s > 1e-13*vals[0] {
			rank++
		}
	}
	var u mat.Dense
	svd.UTo(&u)
	m, _ := u.Dims()
	res := mat.NewDense(m, rank, nil)
	res.Copy(u.Slice(0, m, 0, rank))
	return res, nil
}
