// Package target maps the standard target fluctuation models onto the
// chi-square detection model: the non-fluctuating (Marcum) target and the
// four Swerling cases, each fixing the degrees of freedom from the pulse
// count.
package target

import (
	"fmt"
	"strings"

	"radartools/domain/core"
	"radartools/domain/detection"
)

// Variant identifies a target fluctuation model
type Variant int

const (
	NonFluctuating Variant = iota
	Swerling1
	Swerling2
	Swerling3
	Swerling4
)

// Variants lists every variant in declaration order
var Variants = []Variant{NonFluctuating, Swerling1, Swerling2, Swerling3, Swerling4}

var variantNames = map[Variant]string{
	NonFluctuating: "marcum",
	Swerling1:      "swerling1",
	Swerling2:      "swerling2",
	Swerling3:      "swerling3",
	Swerling4:      "swerling4",
}

var variantAliases = map[string]Variant{
	"marcum":         NonFluctuating,
	"nonfluctuating": NonFluctuating,
	"swerling0":      NonFluctuating,
	"sw0":            NonFluctuating,
	"0":              NonFluctuating,
	"swerling1":      Swerling1,
	"sw1":            Swerling1,
	"1":              Swerling1,
	"swerling2":      Swerling2,
	"sw2":            Swerling2,
	"2":              Swerling2,
	"swerling3":      Swerling3,
	"sw3":            Swerling3,
	"3":              Swerling3,
	"swerling4":      Swerling4,
	"sw4":            Swerling4,
	"4":              Swerling4,
}

// ParseVariant resolves a variant name or alias, case-insensitively
func ParseVariant(s string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", " ", "", "-", "").Replace(key)
	if v, ok := variantAliases[key]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", core.ErrUnknownVariant, s)
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// MarshalText encodes the variant by name
func (v Variant) MarshalText() ([]byte, error) {
	if _, ok := variantNames[v]; !ok {
		return nil, fmt.Errorf("%w: %d", core.ErrUnknownVariant, int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText accepts any name ParseVariant accepts
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// DegreesOfFreedom returns the chi-square degrees of freedom for n pulses:
// Swerling 1 and 3 fluctuate scan to scan (1 and 2), Swerling 2 and 4 pulse
// to pulse (n and 2n).
func (v Variant) DegreesOfFreedom(n int) (detection.DegreesOfFreedom, error) {
	switch v {
	case NonFluctuating:
		return detection.NonFluctuating, nil
	case Swerling1:
		return detection.Finite(1)
	case Swerling2:
		return detection.Finite(n)
	case Swerling3:
		return detection.Finite(2)
	case Swerling4:
		return detection.Finite(2 * n)
	default:
		return detection.DegreesOfFreedom{}, fmt.Errorf("%w: %d", core.ErrUnknownVariant, int(v))
	}
}

// Target is a detection model for a named fluctuation variant
type Target struct {
	variant Variant
	model   *detection.Model
}

// New builds the chi-square model for variant with n pulses
func New(variant Variant, signal detection.Signal, op detection.OperatingPoint, n int) (*Target, error) {
	if n < 1 {
		return nil, core.ErrInvalidPulses
	}
	dof, err := variant.DegreesOfFreedom(n)
	if err != nil {
		return nil, err
	}
	model, err := detection.NewModel(signal, op, n, dof)
	if err != nil {
		return nil, err
	}
	return &Target{variant: variant, model: model}, nil
}

func FromSNRAndThreshold(variant Variant, snr, thr float64, n int) (*Target, error) {
	return New(variant, detection.GivenSNR(snr), detection.GivenThreshold(thr), n)
}

func FromSNRAndPfa(variant Variant, snr float64, pfa detection.Probability, n int) (*Target, error) {
	return New(variant, detection.GivenSNR(snr), detection.GivenPfa(pfa), n)
}

func FromPdAndThreshold(variant Variant, pd detection.Probability, thr float64, n int) (*Target, error) {
	return New(variant, detection.GivenPd(pd), detection.GivenThreshold(thr), n)
}

func FromPdAndPfa(variant Variant, pd, pfa detection.Probability, n int) (*Target, error) {
	return New(variant, detection.GivenPd(pd), detection.GivenPfa(pfa), n)
}

func (t *Target) Variant() Variant                             { return t.variant }
func (t *Target) Model() *detection.Model                      { return t.model }
func (t *Target) SNR() float64                                 { return t.model.SNR() }
func (t *Target) Pd() detection.Probability                    { return t.model.Pd() }
func (t *Target) Threshold() float64                           { return t.model.Threshold() }
func (t *Target) Pfa() detection.Probability                   { return t.model.Pfa() }
func (t *Target) Pulses() int                                  { return t.model.Pulses() }
func (t *Target) DegreesOfFreedom() detection.DegreesOfFreedom { return t.model.DegreesOfFreedom() }

func (t *Target) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", t.variant)
	fmt.Fprintf(&b, "N = %d\n", t.Pulses())
	fmt.Fprintf(&b, "DoF = %s\n", t.DegreesOfFreedom())
	fmt.Fprintf(&b, "Pfa = %s\n", t.Pfa())
	fmt.Fprintf(&b, "Thr = %v\n", t.Threshold())
	fmt.Fprintf(&b, "SNR = %v\n", t.SNR())
	fmt.Fprintf(&b, "Pd = %s\n", t.Pd())
	return b.String()
}
