package lyapunov

import (
	"errors"
	"math"

	"github.com/prklVIP/pymor/gonumext"
	"gonum.org/v1/gonum/mat"
)

const maxNewtonIterations = 20

// SolveCARE computes a symmetric solution of the continuous-time algebraic
// Riccati equation
//
// A^T X + X A - X G X + Q = 0
//
// through the sign function of the Hamiltonian matrix
//
// H = [ A  -G ]
//     [ -Q -A^T ],
//
// followed by Kleinman-Newton refinement where the closed loop A - G X is
// stable. G and Q must be symmetric; G may be indefinite, which covers the
// bounded-real equations where the quadratic term enters with reversed sign.
func SolveCARE(a, g, q mat.Matrix) (*mat.Dense, error) {
	n, nc := a.Dims()
	if n != nc {
		panic(errors.New("lyapunov: A must be square"))
	}

	// Assemble the Hamiltonian [A -G; -Q -A^T].
	var negG, negQ, negAT mat.Dense
	negG.Scale(-1, mat.DenseCopyOf(g))
	negQ.Scale(-1, mat.DenseCopyOf(q))
	negAT.Scale(-1, mat.DenseCopyOf(a.T()))
	var top, bottom mat.Dense
	top.Augment(a, &negG)
	bottom.Augment(&negQ, &negAT)
	hamiltonian := mat.NewDense(2*n, 2*n, nil)
	hamiltonian.Stack(&top, &bottom)

	sign, err := matrixSign(hamiltonian)
	if err != nil {
		return nil, err
	}

	// X solves the overdetermined system
	// [ S12    ]     [ S11 + I ]
	// [ S22 + I] X = -[ S21    ],
	// where S is sign(H) in n by n blocks.
	lhs := mat.NewDense(2*n, n, nil)
	rhs := mat.NewDense(2*n, n, nil)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			lhs.Set(row, col, sign.At(row, n+col))
			lhs.Set(n+row, col, sign.At(n+row, n+col))
			rhs.Set(row, col, -sign.At(row, col))
			rhs.Set(n+row, col, -sign.At(n+row, col))
		}
		lhs.Set(n+row, row, lhs.At(n+row, row)+1)
		rhs.Set(row, row, rhs.At(row, row)-1)
	}
	var x mat.Dense
	if err := x.Solve(lhs, rhs); err != nil {
		return nil, errors.New("lyapunov: Riccati sign extraction failed")
	}
	gonumext.Symmetrize(&x)

	return newtonRefine(a, g, q, &x)
}

// matrixSign runs the scaled sign iteration on z.
func matrixSign(z *mat.Dense) (*mat.Dense, error) {
	n, _ := z.Dims()
	identity := gonumext.Eye(n, n)
	s := mat.DenseCopyOf(z)

	for iteration := 0; iteration < maxSignIterations; iteration++ {
		var sinv mat.Dense
		if err := sinv.Solve(s, identity); err != nil {
			return nil, errors.New("lyapunov: Hamiltonian has eigenvalues on the imaginary axis")
		}
		c := math.Sqrt(mat.Norm(s, 2) / mat.Norm(&sinv, 2))
		if c <= 0 {
			return nil, errDiverged
		}

		var snext, tmp mat.Dense
		snext.Scale(1/(2*c), s)
		tmp.Scale(c/2, &sinv)
		snext.Add(&snext, &tmp)

		var diff mat.Dense
		diff.Sub(&snext, s)
		done := mat.Norm(&diff, 2) <= signTolerance*mat.Norm(s, 2)
		s.Copy(&snext)
		if gonumext.NaNOrInf(s) {
			return nil, errDiverged
		}
		if done {
			return s, nil
		}
	}
	return nil, errDiverged
}

// newtonRefine polishes a CARE solution with Kleinman-Newton steps,
//
// (A - G X_k)^T X_{k+1} + X_{k+1} (A - G X_k) + Q + X_k G X_k = 0,
//
// each step one Lyapunov solve. Refinement stops as soon as the closed loop
// turns unstable or the residual stops improving; the best iterate wins.
func newtonRefine(a, g, q mat.Matrix, x *mat.Dense) (*mat.Dense, error) {
	best := mat.DenseCopyOf(x)
	bestResidual := CARE(a, g, q, best)

	current := mat.DenseCopyOf(x)
	for iteration := 0; iteration < maxNewtonIterations; iteration++ {
		// Closed loop Ak = A - G X.
		var gx, ak mat.Dense
		gx.Mul(g, current)
		ak.Sub(a, &gx)
		if !denseStable(&ak) {
			break
		}

		// Right-hand side Q + X G X.
		var xgx mat.Dense
		xgx.Mul(current, &gx)
		var rhs mat.Dense
		rhs.Add(q, &xgx)

		next, err := SolveDual(&ak, &rhs)
		if err != nil {
			break
		}
		residual := CARE(a, g, q, next)
		current = next
		if residual >= bestResidual {
			break
		}
		best = mat.DenseCopyOf(next)
		bestResidual = residual
	}
	return best, nil
}

// CARE returns the Frobenius norm of the Riccati residual
// A^T X + X A - X G X + Q.
func CARE(a, g, q, x mat.Matrix) float64 {
	var res, xa, xgx, gx mat.Dense
	res.Mul(a.T(), x)
	xa.Mul(x, a)
	res.Add(&res, &xa)
	gx.Mul(g, x)
	xgx.Mul(x, &gx)
	res.Sub(&res, &xgx)
	res.Add(&res, q)
	return mat.Norm(&res, 2)
}

// denseStable reports whether all eigenvalues of a lie in the open left
// half-plane.
func denseStable(a *mat.Dense) bool {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return false
	}
	for _, v := range eig.Values(nil) {
		if real(v) >= 0 {
			return false
		}
	}
	return true
}
