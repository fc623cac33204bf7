package detection

import "math"

// Log probability masses in the saddle-point form of C. Loader, "Fast and
// Accurate Computation of Binomial Probabilities", 2000. The naive
// j*ln(x) - x - lgamma(j+1) cancels terms of size x and loses about
// log10(x) digits; this form does not.

const halfLog2Pi = 0.91893853320467274178

// stirlingError is ln(n!) - ln(sqrt(2 pi n) (n/e)^n).
func stirlingError(n float64) float64 {
	const (
		s0 = 1.0 / 12
		s1 = 1.0 / 360
		s2 = 1.0 / 1260
		s3 = 1.0 / 1680
		s4 = 1.0 / 1188
	)
	if n <= 15 {
		lg, _ := math.Lgamma(n + 1)
		return lg - (n+0.5)*math.Log(n) + n - halfLog2Pi
	}
	nn := n * n
	switch {
	case n > 500:
		return (s0 - s1/nn) / n
	case n > 80:
		return (s0 - (s1-s2/nn)/nn) / n
	case n > 35:
		return (s0 - (s1-(s2-s3/nn)/nn)/nn) / n
	default:
		return (s0 - (s1-(s2-(s3-s4/nn)/nn)/nn)/nn) / n
	}
}

// deviance is x ln(x/mean) + mean - x, evaluated by series when x is
// close to mean.
func deviance(x, mean float64) float64 {
	if math.Abs(x-mean) < 0.1*(x+mean) {
		v := (x - mean) / (x + mean)
		s := (x - mean) * v
		ej := 2 * x * v
		v *= v
		for j := 1; j < 1000; j++ {
			ej *= v
			next := s + ej/float64(2*j+1)
			if next == s {
				return next
			}
			s = next
		}
		return s
	}
	return x*math.Log(x/mean) + mean - x
}

// logPoisson is ln(e^-mean mean^j / j!) for j >= 1.
func logPoisson(j, mean float64) float64 {
	return -stirlingError(j) - deviance(j, mean) - 0.5*math.Log(2*math.Pi*j)
}

// logNegativeBinomial is ln(C(j+k-1, j) p^k q^j) for j >= 1, with
// p = k/(k+mean) and q = mean/(k+mean).
func logNegativeBinomial(j, k, mean float64) float64 {
	n := j + k
	p := k / (k + mean)
	q := mean / (k + mean)
	lc := stirlingError(n) - stirlingError(k) - stirlingError(j) - deviance(k, n*p) - deviance(j, n*q)
	lf := math.Log(2*math.Pi) + math.Log(k) + math.Log1p(-k/n)
	return lc - 0.5*lf + math.Log(k/n)
}
