package detection

import (
	"math"

	"gonum.org/v1/gonum/mathext"

	"radartools/domain/core"
)

// FalseAlarmProbability returns Pfa for a Gaussian-noise receiver that
// integrates n pulses against threshold thr: the regularized upper
// incomplete gamma function Q(n, thr).
func FalseAlarmProbability(n int, thr float64) (Probability, error) {
	if n < 1 {
		return Probability{}, core.ErrInvalidPulses
	}
	if math.IsNaN(thr) || thr < 0 {
		return Probability{}, core.ErrInvalidThreshold
	}
	return NewProbability(mathext.GammaIncRegComp(float64(n), thr))
}

// Threshold inverts FalseAlarmProbability for n pulses, searching from
// -ln(pfa). Pfa of 1 maps to a zero threshold and Pfa of 0 to +Inf.
func Threshold(n int, pfa Probability) (float64, error) {
	if n < 1 {
		return 0, core.ErrInvalidPulses
	}
	switch pfa.Value() {
	case 1:
		return 0, nil
	case 0:
		return math.Inf(1), nil
	}
	q := func(thr float64) float64 {
		return mathext.GammaIncRegComp(float64(n), thr)
	}
	return Solve(q, pfa.Value(), -math.Log(pfa.Value()))
}
