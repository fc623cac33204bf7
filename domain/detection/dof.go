package detection

import (
	"strconv"

	"radartools/domain/core"
)

// DegreesOfFreedom selects the target return statistics: a chi-square
// fluctuating target with k degrees of freedom, or a non-fluctuating one.
type DegreesOfFreedom struct {
	k              int
	nonFluctuating bool
}

// NonFluctuating is the deterministic-cross-section (Marcum) target.
var NonFluctuating = DegreesOfFreedom{nonFluctuating: true}

// Finite returns k chi-square degrees of freedom; k must be at least 1.
func Finite(k int) (DegreesOfFreedom, error) {
	if k < 1 {
		return DegreesOfFreedom{}, core.ErrInvalidDegreesOfFreedom
	}
	return DegreesOfFreedom{k: k}, nil
}

// IsNonFluctuating reports whether this is the Marcum target
func (d DegreesOfFreedom) IsNonFluctuating() bool {
	return d.nonFluctuating
}

// K returns the degrees of freedom, and false for a non-fluctuating target.
func (d DegreesOfFreedom) K() (int, bool) {
	if d.nonFluctuating {
		return 0, false
	}
	return d.k, true
}

func (d DegreesOfFreedom) valid() bool {
	return d.nonFluctuating || d.k >= 1
}

func (d DegreesOfFreedom) String() string {
	if d.nonFluctuating {
		return "non-fluctuating"
	}
	return strconv.Itoa(d.k)
}
