package detection

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mathext"

	"radartools/domain/core"
)

const (
	// seriesTolerance is the relative size of the latest term at which the
	// Mitchell-Walker sum stops.
	seriesTolerance = 1e-16

	// roundoffTolerance is how far above 1 a summed Pd may land from
	// rounding alone before it is treated as a domain error.
	roundoffTolerance = 1e-12

	// significantLogRange is how far below the largest signal weight, in
	// natural log units, a skipped leading term may be.
	significantLogRange = 230

	// maxSeriesMean is the largest x_bar whose term indices stay exact.
	maxSeriesMean = 1 << 52

	// maxSeriesTerms bounds a single series evaluation.
	maxSeriesTerms = 1 << 26

	// smallestNormal is the smallest positive normal float64. Below it
	// recursion factors lose precision.
	smallestNormal = 0x1p-1022
)

var logSmallestNormal = math.Log(smallestNormal)

// Signal is the signal side of a model: either the SNR or the Pd it yields.
type Signal struct {
	snr     float64
	pd      Probability
	givenPd bool
}

// GivenSNR fixes the average per-pulse signal-to-noise ratio (linear)
func GivenSNR(snr float64) Signal { return Signal{snr: snr} }

// GivenPd fixes the desired probability of detection
func GivenPd(pd Probability) Signal { return Signal{pd: pd, givenPd: true} }

// OperatingPoint is the noise side of a model: the detection threshold or
// the probability of false alarm it yields.
type OperatingPoint struct {
	thr      float64
	pfa      Probability
	givenPfa bool
}

// GivenThreshold fixes the detection threshold
func GivenThreshold(thr float64) OperatingPoint { return OperatingPoint{thr: thr} }

// GivenPfa fixes the probability of false alarm
func GivenPfa(pfa Probability) OperatingPoint { return OperatingPoint{pfa: pfa, givenPfa: true} }

// Model is a chi-square detection model for n non-coherently integrated
// pulses. Threshold, Pfa, SNR and Pd are all populated at construction and
// consistent with each other under the model's pulses and degrees of
// freedom. A Model is immutable and safe for concurrent use.
type Model struct {
	thr float64
	pfa Probability
	snr float64
	pd  Probability
	n   int
	dof DegreesOfFreedom
}

// NewModel builds a model from one signal quantity and one operating point,
// deriving the other member of each pair.
func NewModel(signal Signal, op OperatingPoint, n int, dof DegreesOfFreedom) (*Model, error) {
	if n < 1 {
		return nil, core.ErrInvalidPulses
	}
	if !dof.valid() {
		return nil, core.ErrInvalidDegreesOfFreedom
	}

	m := &Model{n: n, dof: dof}

	if op.givenPfa {
		thr, err := Threshold(n, op.pfa)
		if err != nil {
			return nil, fmt.Errorf("deriving threshold: %w", err)
		}
		m.thr, m.pfa = thr, op.pfa
	} else {
		if math.IsNaN(op.thr) || math.IsInf(op.thr, 0) || op.thr < 0 {
			return nil, core.ErrInvalidThreshold
		}
		pfa, err := FalseAlarmProbability(n, op.thr)
		if err != nil {
			return nil, fmt.Errorf("deriving pfa: %w", err)
		}
		m.thr, m.pfa = op.thr, pfa
	}

	if signal.givenPd {
		snr, err := m.RequiredSNR(signal.pd)
		if err != nil {
			return nil, fmt.Errorf("deriving snr: %w", err)
		}
		m.snr, m.pd = snr, signal.pd
	} else {
		pd, err := m.ProbabilityOfDetection(signal.snr)
		if err != nil {
			return nil, fmt.Errorf("deriving pd: %w", err)
		}
		m.snr, m.pd = signal.snr, pd
	}

	return m, nil
}

// FromSNRAndThreshold builds a model from SNR and detection threshold
func FromSNRAndThreshold(snr, thr float64, n int, dof DegreesOfFreedom) (*Model, error) {
	return NewModel(GivenSNR(snr), GivenThreshold(thr), n, dof)
}

// FromSNRAndPfa builds a model from SNR and probability of false alarm
func FromSNRAndPfa(snr float64, pfa Probability, n int, dof DegreesOfFreedom) (*Model, error) {
	return NewModel(GivenSNR(snr), GivenPfa(pfa), n, dof)
}

// FromPdAndThreshold builds a model from Pd and detection threshold
func FromPdAndThreshold(pd Probability, thr float64, n int, dof DegreesOfFreedom) (*Model, error) {
	return NewModel(GivenPd(pd), GivenThreshold(thr), n, dof)
}

// FromPdAndPfa builds a model from Pd and probability of false alarm
func FromPdAndPfa(pd, pfa Probability, n int, dof DegreesOfFreedom) (*Model, error) {
	return NewModel(GivenPd(pd), GivenPfa(pfa), n, dof)
}

// ProbabilityOfDetection evaluates Pd at snr for this model's threshold,
// pulses and degrees of freedom.
func (m *Model) ProbabilityOfDetection(snr float64) (Probability, error) {
	if math.IsNaN(snr) || math.IsInf(snr, 0) || snr < 0 {
		return Probability{}, core.ErrInvalidSNR
	}
	pd, err := m.mitchellWalker(snr)
	if err != nil {
		return Probability{}, err
	}
	if pd > 1 && pd <= 1+roundoffTolerance {
		pd = 1
	}
	return NewProbability(pd)
}

// RequiredSNR inverts ProbabilityOfDetection, searching from thr/n.
func (m *Model) RequiredSNR(pd Probability) (float64, error) {
	var seriesErr error
	f := func(snr float64) float64 {
		v, err := m.mitchellWalker(snr)
		if err != nil {
			if seriesErr == nil {
				seriesErr = err
			}
			return math.NaN()
		}
		return v
	}

	snr, err := Solve(f, pd.Value(), m.thr/float64(m.n))
	if err != nil {
		if seriesErr != nil {
			return 0, fmt.Errorf("%w: %w", err, seriesErr)
		}
		return 0, err
	}
	return snr, nil
}

// mitchellWalker sums the detection probability series following
// R. L. Mitchell and J. F. Walker, "Recursive Methods for Computing
// Detection Probabilities", IEEE Trans. AES-7 No. 4, 1971. Each term is
// built from the previous one: g tracks the Poisson lower tail of the
// threshold and a the Poisson (non-fluctuating) or negative binomial
// (chi-square) weight of the signal.
func (m *Model) mitchellWalker(snr float64) (float64, error) {
	xBar := snr * float64(m.n)
	if xBar > maxSeriesMean {
		return 0, fmt.Errorf("%w: x_bar %v beyond series range", core.ErrSeriesUnderflow, xBar)
	}
	if math.IsInf(m.thr, 1) {
		return 0, fmt.Errorf("%w: infinite threshold", core.ErrSeriesUnderflow)
	}

	// a(0, x_bar) below the normal range has lost its precision
	j0 := 0
	if m.logAmplitude(xBar, 0) < logSmallestNormal {
		j0 = m.firstSignificantTerm(xBar)
	}
	return m.seriesFrom(xBar, j0)
}

// seriesFrom sums the series from term j0 onward. Terms before j0 must be
// negligible; j0 is zero unless the leading amplitude leaves the normal
// float64 range.
func (m *Model) seriesFrom(xBar float64, j0 int) (float64, error) {
	thr := m.thr
	k, fluctuating := m.dof.K()
	kf := float64(k)

	var a, g, h float64
	if e := math.Exp(-thr); j0 == 0 && e >= smallestNormal {
		// g(N, t)
		g, h = e, e
		for i := 1; i <= m.n-1; i++ {
			h *= thr / float64(i)
			g += h
		}
	} else {
		// g(N+j0, t) and its last Poisson term, in log space
		last := m.n - 1 + j0
		g = mathext.GammaIncRegComp(float64(last+1), thr)
		h = poissonTerm(thr, last)
	}
	if j0 == 0 {
		if fluctuating {
			a = math.Pow(1+xBar/kf, -kf)
		} else {
			a = math.Exp(-xBar)
		}
	} else {
		a = math.Exp(m.logAmplitude(xBar, j0))
	}

	result := a * g
	if g >= 1 {
		return result + m.weightTail(xBar, j0), nil
	}
	mode := m.amplitudeMode(xBar)

	for j := j0; ; j++ {
		if j-j0 >= maxSeriesTerms {
			return 0, fmt.Errorf("%w: %d terms at thr %v, x_bar %v", core.ErrSeriesNotConverged, maxSeriesTerms, thr, xBar)
		}

		idx := m.n + j
		if h < smallestNormal {
			h = poissonTerm(thr, idx)
		} else {
			h *= thr / float64(idx)
		}
		prev := g
		g += h

		jf := float64(j)
		if a < smallestNormal {
			a = math.Exp(m.logAmplitude(xBar, j+1))
		} else if fluctuating {
			a *= xBar * (1 + jf/kf) / (1 + xBar/kf) / (1 + jf)
		} else {
			a *= xBar / (1 + jf)
		}

		term := a * g
		result += term

		if g >= 1 || (g == prev && float64(idx) > thr) {
			// g has stopped changing: every later term is g times its weight
			return result + g*m.weightTail(xBar, j+1), nil
		}
		if result == 0 {
			if a == 0 && float64(j+1) > mode {
				// Pd below the smallest float64
				return 0, nil
			}
			continue
		}
		// g <= 1, so the remaining weight bounds the remaining terms
		if term <= seriesTolerance*result && m.weightTail(xBar, j+1) <= seriesTolerance*result {
			return result, nil
		}
	}
}

// poissonTerm is e^-thr thr^i / i!, evaluated in log space.
func poissonTerm(thr float64, i int) float64 {
	if i == 0 {
		return math.Exp(-thr)
	}
	return math.Exp(logPoisson(float64(i), thr))
}

// weightTail is the total weight of the terms after j: a Poisson or
// negative binomial upper tail.
func (m *Model) weightTail(xBar float64, j int) float64 {
	jf := float64(j)
	k, fluctuating := m.dof.K()
	if !fluctuating {
		return mathext.GammaIncReg(jf+1, xBar)
	}
	kf := float64(k)
	return mathext.RegIncBeta(jf+1, kf, xBar/(kf+xBar))
}

// logAmplitude is ln a(j, x_bar): the Poisson or negative binomial weight
// of term j.
func (m *Model) logAmplitude(xBar float64, j int) float64 {
	k, fluctuating := m.dof.K()
	kf := float64(k)
	if j == 0 {
		if !fluctuating {
			return -xBar
		}
		return -kf * math.Log1p(xBar/kf)
	}

	if !fluctuating {
		return logPoisson(float64(j), xBar)
	}
	return logNegativeBinomial(float64(j), kf, xBar)
}

// amplitudeMode is where the signal weights peak; they increase up to it
// and decrease after.
func (m *Model) amplitudeMode(xBar float64) float64 {
	if k, fluctuating := m.dof.K(); fluctuating {
		return xBar * float64(k-1) / float64(k)
	}
	return xBar
}

// firstSignificantTerm returns the smallest j whose weight is within
// e^-significantLogRange of the weight at the mode, by binary search over
// [0, mode].
func (m *Model) firstSignificantTerm(xBar float64) int {
	hi := int(math.Floor(m.amplitudeMode(xBar)))
	cutoff := m.logAmplitude(xBar, hi) - significantLogRange

	lo := 0
	for lo < hi {
		mid := lo + (hi-lo)/2
		if m.logAmplitude(xBar, mid) >= cutoff {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// Threshold returns the detection threshold
func (m *Model) Threshold() float64 { return m.thr }

// Pfa returns the probability of false alarm
func (m *Model) Pfa() Probability { return m.pfa }

// SNR returns the average per-pulse signal-to-noise ratio (linear)
func (m *Model) SNR() float64 { return m.snr }

// Pd returns the probability of detection
func (m *Model) Pd() Probability { return m.pd }

// Pulses returns the number of non-coherently integrated pulses
func (m *Model) Pulses() int { return m.n }

// DegreesOfFreedom returns the chi-square degrees of freedom
func (m *Model) DegreesOfFreedom() DegreesOfFreedom { return m.dof }

func (m *Model) String() string {
	var b strings.Builder
	b.WriteString("ChiSquare\n")
	fmt.Fprintf(&b, "N = %d\n", m.n)
	fmt.Fprintf(&b, "DoF = %s\n", m.dof)
	fmt.Fprintf(&b, "Pfa = %s\n", m.pfa)
	fmt.Fprintf(&b, "Thr = %v\n", m.thr)
	fmt.Fprintf(&b, "SNR = %v\n", m.snr)
	fmt.Fprintf(&b, "Pd = %s\n", m.pd)
	return b.String()
}
