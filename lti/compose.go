package lti

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// blockDiag returns the block-diagonal composition of the descriptor
// matrices of g1 and g2, or nil when both are identities.
func blockDiag(g1, g2 *Model) *mat.Dense {
	if g1.E == nil && g2.E == nil {
		return nil
	}
	n1, n2 := g1.Order(), g2.Order()
	e := mat.NewDense(n1+n2, n1+n2, nil)
	for i := 0; i < n1; i++ {
		if g1.E != nil {
			for j := 0; j < n1; j++ {
				e.Set(i, j, g1.E.At(i, j))
			}
		} else {
			e.Set(i, i, 1)
		}
	}
	for i := 0; i < n2; i++ {
		if g2.E != nil {
			for j := 0; j < n2; j++ {
				e.Set(n1+i, n1+j, g2.E.At(i, j))
			}
		} else {
			e.Set(n1+i, n1+i, 1)
		}
	}
	return e
}

// Series connects the output of g1 to the input of g2 and returns the
// composite system realizing g2(g1(u)).
func Series(g1, g2 *Model) *Model {
	if g1.Outputs() != g2.Inputs() {
		panic(errors.New("lti: series connection dimensions don't match"))
	}
	n1, n2 := g1.Order(), g2.Order()

	a := mat.NewDense(n1+n2, n1+n2, nil)
	a.Slice(0, n1, 0, n1).(*mat.Dense).Copy(g1.A)
	a.Slice(n1, n1+n2, n1, n1+n2).(*mat.Dense).Copy(g2.A)
	var b2c1 mat.Dense
	b2c1.Mul(g2.B, g1.C)
	a.Slice(n1, n1+n2, 0, n1).(*mat.Dense).Copy(&b2c1)

	b := mat.NewDense(n1+n2, g1.Inputs(), nil)
	b.Slice(0, n1, 0, g1.Inputs()).(*mat.Dense).Copy(g1.B)
	var b2d1 mat.Dense
	b2d1.Mul(g2.B, g1.D)
	b.Slice(n1, n1+n2, 0, g1.Inputs()).(*mat.Dense).Copy(&b2d1)

	c := mat.NewDense(g2.Outputs(), n1+n2, nil)
	var d2c1 mat.Dense
	d2c1.Mul(g2.D, g1.C)
	c.Slice(0, g2.Outputs(), 0, n1).(*mat.Dense).Copy(&d2c1)
	c.Slice(0, g2.Outputs(), n1, n1+n2).(*mat.Dense).Copy(g2.C)

	var d mat.Dense
	d.Mul(g2.D, g1.D)

	return New(a, b, c, &d, blockDiag(g1, g2))
}

// Parallel sums the outputs of g1 and g2 driven by the same input.
func Parallel(g1, g2 *Model) *Model {
	if g1.Inputs() != g2.Inputs() || g1.Outputs() != g2.Outputs() {
		panic(errors.New("lti: parallel connection dimensions don't match"))
	}
	n1, n2 := g1.Order(), g2.Order()

	a := mat.NewDense(n1+n2, n1+n2, nil)
	a.Slice(0, n1, 0, n1).(*mat.Dense).Copy(g1.A)
	a.Slice(n1, n1+n2, n1, n1+n2).(*mat.Dense).Copy(g2.A)

	b := mat.NewDense(n1+n2, g1.Inputs(), nil)
	b.Slice(0, n1, 0, g1.Inputs()).(*mat.Dense).Copy(g1.B)
	b.Slice(n1, n1+n2, 0, g1.Inputs()).(*mat.Dense).Copy(g2.B)

	c := mat.NewDense(g1.Outputs(), n1+n2, nil)
	c.Slice(0, g1.Outputs(), 0, n1).(*mat.Dense).Copy(g1.C)
	c.Slice(0, g1.Outputs(), n1, n1+n2).(*mat.Dense).Copy(g2.C)

	var d mat.Dense
	d.Add(g1.D, g2.D)

	return New(a, b, c, &d, blockDiag(g1, g2))
}

// Difference returns the error system g1 - g2, the workhorse of reduction
// quality measurement: its norms are the approximation errors.
func Difference(g1, g2 *Model) *Model {
	neg := g2.Copy()
	neg.C.Scale(-1, neg.C)
	neg.D.Scale(-1, neg.D)
	return Parallel(g1, neg)
}

// Feedback closes a negative feedback loop around g with the controller k,
//
// y = g(u - k(y)),
//
// and returns the closed-loop system. The loop must be well posed, that is
// I + Dg Dk invertible.
func Feedback(g, k *Model) (*Model, error) {
	if g.Outputs() != k.Inputs() || k.Outputs() != g.Inputs() {
		panic(errors.New("lti: feedback connection dimensions don't match"))
	}
	p := g.Outputs()
	n1, n2 := g.Order(), k.Order()

	// phi = (I + Dg Dk)^{-1}
	var loop mat.Dense
	loop.Mul(g.D, k.D)
	for i := 0; i < p; i++ {
		loop.Set(i, i, loop.At(i, i)+1)
	}
	var phi mat.Dense
	if err := phi.Solve(&loop, eye(p)); err != nil {
		return nil, errors.New("lti: feedback loop is not well posed")
	}

	// y = phi (Cg x1 - Dg Ck x2 + Dg u)
	cy := mat.NewDense(p, n1+n2, nil)
	var t mat.Dense
	t.Mul(&phi, g.C)
	cy.Slice(0, p, 0, n1).(*mat.Dense).Copy(&t)
	var dgck, tn mat.Dense
	dgck.Mul(g.D, k.C)
	tn.Mul(&phi, &dgck)
	tn.Scale(-1, &tn)
	cy.Slice(0, p, n1, n1+n2).(*mat.Dense).Copy(&tn)
	var dy mat.Dense
	dy.Mul(&phi, g.D)

	a := mat.NewDense(n1+n2, n1+n2, nil)
	b := mat.NewDense(n1+n2, g.Inputs(), nil)

	// x1' = Ag x1 + Bg u - Bg Ck x2 - Bg Dk y
	var bgdk mat.Dense
	bgdk.Mul(g.B, k.D)
	var row1 mat.Dense
	row1.Mul(&bgdk, cy)
	row1.Scale(-1, &row1)
	a.Slice(0, n1, 0, n1+n2).(*mat.Dense).Copy(&row1)
	top := a.Slice(0, n1, 0, n1).(*mat.Dense)
	top.Add(top, g.A)
	var bgck mat.Dense
	bgck.Mul(g.B, k.C)
	topRight := a.Slice(0, n1, n1, n1+n2).(*mat.Dense)
	topRight.Sub(topRight, &bgck)
	var b1 mat.Dense
	b1.Mul(&bgdk, &dy)
	b1.Scale(-1, &b1)
	b1.Add(&b1, g.B)
	b.Slice(0, n1, 0, g.Inputs()).(*mat.Dense).Copy(&b1)

	// x2' = Ak x2 + Bk y
	var row2 mat.Dense
	row2.Mul(k.B, cy)
	a.Slice(n1, n1+n2, 0, n1+n2).(*mat.Dense).Copy(&row2)
	bottom := a.Slice(n1, n1+n2, n1, n1+n2).(*mat.Dense)
	bottom.Add(bottom, k.A)
	var b2 mat.Dense
	b2.Mul(k.B, &dy)
	b.Slice(n1, n1+n2, 0, g.Inputs()).(*mat.Dense).Copy(&b2)

	return New(a, b, cy, &dy, blockDiag(g, k)), nil
}

func eye(n int) *mat.Dense {
	res := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		res.Set(i, i, 1)
	}
	return res
}
