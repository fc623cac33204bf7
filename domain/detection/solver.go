package detection

import (
	"math"

	"radartools/domain/core"
)

// SolverTolerance is the absolute bracket width at which bisection stops.
// Tighter values risk never converging given float64 rounding in the
// forward functions.
const SolverTolerance = 1e-12

// maxBracketExpansions bounds the factorial bracket search. 171! overflows
// float64, so past this point the bounds are 0 and +Inf.
const maxBracketExpansions = 180

// Equation is a forward function assumed to be monotonic over the range the
// solver visits. Whether it increases or decreases is found empirically.
type Equation func(x float64) float64

// Solve returns x such that f(x) is within SolverTolerance (on x) of target,
// starting the bracket search from guess.
//
// The bracket grows by factorial steps (guess/i!, guess*i!) because the
// forward functions used here have derivatives that vanish over large
// ranges. f must be monotonic over the visited range; if it is not, the
// result is meaningless. ErrNoBracket is returned when no bracket is found
// before the bounds leave the float64 range or f returns NaN.
func Solve(f Equation, target, guess float64) (float64, error) {
	if math.IsNaN(target) || math.IsNaN(guess) || math.IsInf(guess, 0) {
		return 0, core.NewNoBracketError(target, guess)
	}

	boundA, boundB := guess, guess
	resultA := f(guess)
	resultB := resultA

	bracketed := false
	for i := 2; i <= maxBracketExpansions; i++ {
		boundA /= float64(i)
		boundB *= float64(i)
		resultA = f(boundA)
		resultB = f(boundB)
		if math.IsNaN(resultA) || math.IsNaN(resultB) || math.IsInf(boundB, 0) {
			break
		}
		if math.Min(resultA, resultB) <= target && target <= math.Max(resultA, resultB) {
			bracketed = true
			break
		}
	}
	if !bracketed {
		return 0, core.NewNoBracketError(target, guess)
	}

	increasing := resultA < resultB

	for math.Abs(boundA-boundB) > SolverTolerance {
		mid := 0.5 * (boundA + boundB)
		if mid == boundA || mid == boundB {
			// bounds are adjacent floats
			break
		}
		value := f(mid)
		if increasing {
			if value > target {
				boundB = mid
			} else {
				boundA = mid
			}
		} else {
			if value < target {
				boundB = mid
			} else {
				boundA = mid
			}
		}
	}

	return 0.5 * (boundA + boundB), nil
}
