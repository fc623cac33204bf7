// Package sweep holds the value types produced by curve sweeps and
// required-SNR tables.
package sweep

import (
	"strconv"
	"time"

	"radartools/domain/core"
	"radartools/domain/target"
)

// Point is one evaluation on a Pd-vs-SNR curve
type Point struct {
	SNRdB float64 `json:"snr_db"`
	SNR   float64 `json:"snr"`
	Pd    float64 `json:"pd"`
}

// Curve is Pd over an SNR grid for one variant and pulse count
type Curve struct {
	Variant   target.Variant `json:"variant"`
	Pulses    int            `json:"pulses"`
	Threshold float64        `json:"threshold"`
	Points    []Point        `json:"points"`
}

// Label names the curve for legends and sheet titles
func (c Curve) Label() string {
	return c.Variant.String() + " n=" + strconv.Itoa(c.Pulses)
}

// Grid is an inclusive SNR range in decibels
type Grid struct {
	MinDB  float64 `json:"min_db"`
	MaxDB  float64 `json:"max_db"`
	StepDB float64 `json:"step_db"`
}

// Values expands the grid; MaxDB is included when it lands on a step.
func (g Grid) Values() []float64 {
	if g.StepDB <= 0 || g.MaxDB < g.MinDB {
		return nil
	}
	steps := int((g.MaxDB-g.MinDB)/g.StepDB + 1e-9)
	values := make([]float64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		values = append(values, g.MinDB+float64(i)*g.StepDB)
	}
	return values
}

// Result is a completed curve sweep
type Result struct {
	ID          core.SweepID `json:"id"`
	Fingerprint core.Hash    `json:"fingerprint"`
	Pfa         float64      `json:"pfa"`
	Grid        Grid         `json:"grid"`
	Curves      []Curve      `json:"curves"`
	CreatedAt   time.Time    `json:"created_at"`
	RuntimeMs   int64        `json:"runtime_ms"`
}

// Row is the SNR needed by one variant and pulse count to reach Pd
type Row struct {
	Variant   target.Variant `json:"variant"`
	Pulses    int            `json:"pulses"`
	Pd        float64        `json:"pd"`
	Threshold float64        `json:"threshold"`
	SNR       float64        `json:"snr"`
	SNRdB     float64        `json:"snr_db"`
}

// Table is a completed required-SNR computation
type Table struct {
	ID          core.SweepID `json:"id"`
	Fingerprint core.Hash    `json:"fingerprint"`
	Pfa         float64      `json:"pfa"`
	Rows        []Row        `json:"rows"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Report bundles what the exporters write out
type Report struct {
	Curves *Result `json:"curves,omitempty"`
	Table  *Table  `json:"table,omitempty"`
}
