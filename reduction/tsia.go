package reduction

import (
	"fmt"

	"github.com/prklVIP/pymor/lti"
)

// TSIA reduces the model with the two-sided iteration algorithm. The sweep
// is the Sylvester-equation fixed point
//
// A V Er^T + E V Ar^T + B Br^T = 0,  A^T W Er + E^T W Ar + C^T Cr = 0,
//
// solved column-wise in the eigenvector basis of the reduced pencil, which
// makes each sweep the same shifted-solve batch as an IRKA sweep with the
// mirrored reduced spectrum as shifts. TSIA converges on the reduced poles
// rather than on the shifts, and is seeded with a balanced truncation model
// instead of a shift spread.
func TSIA(m *lti.Model, r int, opts IRKAOptions) (*Result, error) {
	if r < 1 {
		return nil, errOrder
	}
	if r >= m.Order() {
		return &Result{ROM: m.Copy(), Converged: true}, nil
	}
	opts.defaults()

	// Seed with balanced truncation when possible, a shift spread when not.
	var units []tangent
	if seed, err := BalancedTruncation(m, r); err == nil {
		units, err = romTangents(seed.ROM, r)
		if err != nil {
			return nil, fmt.Errorf("reduction: TSIA seed: %w", err)
		}
	} else {
		var seedErr error
		units, seedErr = seedTangents(m, r, opts.Shifts)
		if seedErr != nil {
			return nil, seedErr
		}
	}

	var rom *lti.Model
	previous := expandShifts(units)
	converged := false
	iterations := 0

	for ; iterations < opts.MaxIter; iterations++ {
		v, err := tangentialBasis(m, units, false)
		if err != nil {
			return nil, fmt.Errorf("reduction: TSIA sweep %d: %w", iterations, err)
		}
		w, err := tangentialBasis(m, units, true)
		if err != nil {
			return nil, fmt.Errorf("reduction: TSIA sweep %d: %w", iterations, err)
		}
		rom = m.Project(v, w)

		units, err = romTangents(rom, r)
		if err != nil {
			return nil, fmt.Errorf("reduction: TSIA sweep %d: %w", iterations, err)
		}
		// The expanded shifts are the mirrored reduced poles, so the shift
		// displacement is exactly the pole displacement.
		current := expandShifts(units)
		if shiftChange(previous, current) < opts.Tol {
			converged = true
			iterations++
			break
		}
		previous = current
	}

	return &Result{
		ROM:        rom,
		Iterations: iterations,
		Converged:  converged,
		Shifts:     expandShifts(units),
	}, nil
}
