// Package lyapunov solves the dense continuous-time Lyapunov and algebraic
// Riccati equations the Gramian-based reduction methods are built on. Both
// solvers rest on the matrix sign function: for a stable A the iteration
//
// Z_{k+1} = (Z_k + Z_k^{-1}) / 2,  Z_0 = A,
//
// converges to sign(A) = -I, and carrying the right-hand side along yields
// the equation solution in the limit.
package lyapunov

import (
	"errors"
	"math"

	"github.com/prklVIP/pymor/gonumext"
	"gonum.org/v1/gonum/mat"
)

const (
	maxSignIterations = 100
	signTolerance     = 1e-12
)

var errDiverged = errors.New("lyapunov: sign iteration did not converge")

// Solve computes the solution of the continuous Lyapunov equation
//
// A X + X A^T + Q = 0
//
// for a stable A and symmetric Q. This is the controllability orientation:
// with Q = B B^T the solution is the controllability Gramian.
func Solve(a, q mat.Matrix) (*mat.Dense, error) {
	at := mat.DenseCopyOf(a.T())
	return signLyapunov(at, q)
}

// SolveDual computes the solution of the dual (observability) orientation
//
// A^T X + X A + Q = 0,
//
// which with Q = C^T C yields the observability Gramian.
func SolveDual(a, q mat.Matrix) (*mat.Dense, error) {
	return signLyapunov(mat.DenseCopyOf(a), q)
}

// signLyapunov runs the scaled sign iteration for A^T X + X A + Q = 0,
//
// Z_{k+1} = (Z_k/c + c Z_k^{-1}) / 2,
// Y_{k+1} = (Y_k/c + c Z_k^{-T} Y_k Z_k^{-1}) / 2,
//
// with the determinant-free norm scaling c = sqrt(|Z_k| / |Z_k^{-1}|).
// At convergence X = Y / 2.
func signLyapunov(z *mat.Dense, q mat.Matrix) (*mat.Dense, error) {
	n, nc := z.Dims()
	mq, nq := q.Dims()
	if n != nc || mq != n || nq != n {
		panic(errors.New("lyapunov: matrix dimensions don't match"))
	}

	y := mat.DenseCopyOf(q)
	identity := gonumext.Eye(n, n)

	for iteration := 0; iteration < maxSignIterations; iteration++ {
		var zinv mat.Dense
		if err := zinv.Solve(z, identity); err != nil {
			return nil, errors.New("lyapunov: singular iterate, matrix has eigenvalues on the imaginary axis")
		}

		c := math.Sqrt(mat.Norm(z, 2) / mat.Norm(&zinv, 2))

		var znext mat.Dense
		znext.Scale(1/(2*c), z)
		var tmp mat.Dense
		tmp.Scale(c/2, &zinv)
		znext.Add(&znext, &tmp)

		// Y update: Y/2c + c/2 Zinv^T Y Zinv
		var ynext, zy mat.Dense
		zy.Mul(zinv.T(), y)
		ynext.Mul(&zy, &zinv)
		ynext.Scale(c/2, &ynext)
		var yscaled mat.Dense
		yscaled.Scale(1/(2*c), y)
		ynext.Add(&ynext, &yscaled)

		var diff mat.Dense
		diff.Sub(&znext, z)
		done := mat.Norm(&diff, 2) <= signTolerance*mat.Norm(z, 2)

		z.Copy(&znext)
		y.Copy(&ynext)

		if gonumext.NaNOrInf(z) {
			return nil, errDiverged
		}
		if done {
			x := mat.DenseCopyOf(y)
			x.Scale(0.5, x)
			gonumext.Symmetrize(x)
			return x, nil
		}
	}
	return nil, errDiverged
}

// Residual returns the Frobenius norm of A X + X A^T + Q for a candidate
// solution X of the controllability-oriented equation.
func Residual(a, q, x mat.Matrix) float64 {
	var res, xa mat.Dense
	res.Mul(a, x)
	xa.Mul(x, a.T())
	res.Add(&res, &xa)
	res.Add(&res, q)
	return mat.Norm(&res, 2)
}
