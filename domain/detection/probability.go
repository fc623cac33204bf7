// Package detection computes radar detection statistics for a receiver that
// non-coherently integrates a number of pulses: the relation between
// detection threshold and probability of false alarm for noise alone, and
// between signal-to-noise ratio and probability of detection for a
// chi-square fluctuating or non-fluctuating target.
package detection

import (
	"math"
	"strconv"

	"radartools/domain/core"
)

// Probability is a float64 constrained to [0, 1]. The zero value is a valid
// probability of 0; any other value must come from NewProbability.
type Probability struct {
	value float64
}

// NewProbability validates v and wraps it. NaN is rejected along with
// values outside [0, 1].
func NewProbability(v float64) (Probability, error) {
	if math.IsNaN(v) || v < 0.0 || v > 1.0 {
		return Probability{}, core.NewDomainError(v)
	}
	return Probability{value: v}, nil
}

// MustProbability is NewProbability for constants known to be valid.
func MustProbability(v float64) Probability {
	p, err := NewProbability(v)
	if err != nil {
		panic(err)
	}
	return p
}

// Value returns the wrapped float64
func (p Probability) Value() float64 {
	return p.value
}

func (p Probability) String() string {
	return strconv.FormatFloat(p.value, 'g', -1, 64)
}
