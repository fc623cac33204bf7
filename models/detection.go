package models

import (
	"time"

	"radartools/domain/core"
	"radartools/domain/sweep"
	"radartools/domain/target"
)

// EvaluateRequest asks for one detection model. Exactly one of SNR, SNRdB
// and Pd must be set; at most one of Threshold and Pfa.
type EvaluateRequest struct {
	Variant   string   `json:"variant,omitempty"`
	Pulses    int      `json:"pulses,omitempty"`
	SNR       *float64 `json:"snr,omitempty"`
	SNRdB     *float64 `json:"snr_db,omitempty"`
	Pd        *float64 `json:"pd,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Pfa       *float64 `json:"pfa,omitempty"`
}

// Evaluation is every quantity of a built model
type Evaluation struct {
	Variant          target.Variant `json:"variant"`
	Pulses           int            `json:"pulses"`
	DegreesOfFreedom string         `json:"degrees_of_freedom"`
	Threshold        float64        `json:"threshold"`
	Pfa              float64        `json:"pfa"`
	SNR              float64        `json:"snr"`
	SNRdB            *float64       `json:"snr_db,omitempty"`
	Pd               float64        `json:"pd"`
}

// ThresholdResult is a noise threshold lookup
type ThresholdResult struct {
	Pulses    int     `json:"pulses"`
	Pfa       float64 `json:"pfa"`
	Threshold float64 `json:"threshold"`
}

// CurveRequest asks for Pd-vs-SNR curves. Empty fields take configured defaults;
// no variants means all of them.
type CurveRequest struct {
	Variants []string    `json:"variants,omitempty"`
	Pulses   []int       `json:"pulses,omitempty"`
	Pfa      *float64    `json:"pfa,omitempty"`
	Grid     *sweep.Grid `json:"grid,omitempty"`
}

// RequiredSNRRequest asks for the SNR each variant and pulse count needs
// to reach every Pd target.
type RequiredSNRRequest struct {
	Variants  []string  `json:"variants,omitempty"`
	Pulses    []int     `json:"pulses,omitempty"`
	Pfa       *float64  `json:"pfa,omitempty"`
	PdTargets []float64 `json:"pd_targets"`
}

// ReferenceCheck is one published value compared against the computed one
type ReferenceCheck struct {
	Name     string  `json:"name"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	AbsError float64 `json:"abs_error"`
	Passed   bool    `json:"passed"`
}

// RoundTripSummary summarizes relative SNR error over SNR -> Pd -> SNR
type RoundTripSummary struct {
	Cases   int     `json:"cases"`
	Skipped int     `json:"skipped"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	P95     float64 `json:"p95"`
}

// SelfCheckReport is the outcome of a self-check run
type SelfCheckReport struct {
	ID         core.SelfCheckID `json:"id"`
	References []ReferenceCheck `json:"references"`
	RoundTrip  RoundTripSummary `json:"round_trip"`
	Passed     bool             `json:"passed"`
	CreatedAt  time.Time        `json:"created_at"`
	RuntimeMs  int64            `json:"runtime_ms"`
}
