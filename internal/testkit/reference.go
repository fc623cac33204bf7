// Package testkit holds published detection-statistics tables shared by
// the unit tests and the self-check service.
package testkit

// Tolerance is the absolute agreement required against the tables below
const Tolerance = 0.001

// ReferencePfa is the false-alarm probability every table is computed at
const ReferencePfa = 1e-6

// NoiseCase is a threshold for a pulse count at ReferencePfa
type NoiseCase struct {
	Pulses    int
	Threshold float64
}

// DetectionCase is a Pd for a variant, pulse count and linear SNR at ReferencePfa
type DetectionCase struct {
	Variant string
	Pulses  int
	SNR     float64
	Pd      float64
}

// NoiseThresholds are chi-square thresholds with 2n degrees of freedom
var NoiseThresholds = []NoiseCase{
	{Pulses: 1, Threshold: 13.81551055},
	{Pulses: 3, Threshold: 19.12916818},
	{Pulses: 10, Threshold: 32.71034051},
	{Pulses: 30, Threshold: 63.54818012},
	{Pulses: 100, Threshold: 154.9190459},
}

// MarcumDetections are non-fluctuating target Pd values
var MarcumDetections = []DetectionCase{
	{Variant: "marcum", Pulses: 1, SNR: 3.162278, Pd: .0045853516},
	{Variant: "marcum", Pulses: 1, SNR: 10., Pd: .24804931},
	{Variant: "marcum", Pulses: 1, SNR: 31.62278, Pd: .9972254},
	{Variant: "marcum", Pulses: 3, SNR: 3.162278, Pd: .088813157},
	{Variant: "marcum", Pulses: 3, SNR: 10., Pd: .97272573},
	{Variant: "marcum", Pulses: 10, SNR: 3.162278, Pd: .85331678},
	{Variant: "marcum", Pulses: 30, SNR: 3.162278, Pd: .99999943},
}

// RoundTripPulses and RoundTripSNRs span the grid for SNR -> Pd -> SNR checks
var (
	RoundTripPulses = []int{1, 3, 10, 30}
	RoundTripSNRs   = []float64{0.5, 1, 3.162278, 10, 31.62278}
)

// RoundTripPdRange keeps the inversion away from the flat tails where Pd
// carries too little information about SNR.
const (
	RoundTripPdMin = 0.01
	RoundTripPdMax = 0.999
)
