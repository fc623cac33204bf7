package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"radartools/domain/core"
	"radartools/domain/detection"
	"radartools/domain/target"
	"radartools/internal"
	"radartools/internal/errors"
	"radartools/internal/testkit"
	"radartools/models"
)

// RoundTripTolerance is the largest relative SNR error a passing self-check
// may show after SNR -> Pd -> SNR.
const RoundTripTolerance = 1e-6

// SelfCheckService verifies the detection math against published tables
// and the inversion round trip.
type SelfCheckService struct {
	logger *internal.Logger
}

// NewSelfCheckService creates a self-check service
func NewSelfCheckService(logger *internal.Logger) *SelfCheckService {
	return &SelfCheckService{logger: logger.With("SelfCheck")}
}

// Run evaluates every reference case and the round-trip grid
func (s *SelfCheckService) Run(ctx context.Context) (*models.SelfCheckReport, error) {
	start := time.Now()
	pfa := detection.MustProbability(testkit.ReferencePfa)

	report := &models.SelfCheckReport{
		ID:     core.NewSelfCheckID(),
		Passed: true,
	}

	for _, tc := range testkit.NoiseThresholds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		thr, err := detection.Threshold(tc.Pulses, pfa)
		if err != nil {
			return nil, errors.FromDomain(err, fmt.Sprintf("reference threshold n=%d", tc.Pulses))
		}
		addReference(report, fmt.Sprintf("threshold n=%d", tc.Pulses), tc.Threshold, thr)
	}

	for _, tc := range testkit.MarcumDetections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		variant, err := target.ParseVariant(tc.Variant)
		if err != nil {
			return nil, errors.FromDomain(err, "reference variant")
		}
		t, err := target.FromSNRAndPfa(variant, tc.SNR, pfa, tc.Pulses)
		if err != nil {
			return nil, errors.FromDomain(err, fmt.Sprintf("reference pd %s n=%d snr=%v", variant, tc.Pulses, tc.SNR))
		}
		addReference(report, fmt.Sprintf("pd %s n=%d snr=%v", variant, tc.Pulses, tc.SNR), tc.Pd, t.Pd().Value())
	}

	summary, err := s.roundTrip(ctx, pfa)
	if err != nil {
		return nil, err
	}
	report.RoundTrip = summary
	if summary.Cases == 0 || summary.Max > RoundTripTolerance {
		report.Passed = false
	}

	report.CreatedAt = time.Now()
	report.RuntimeMs = time.Since(start).Milliseconds()

	if report.Passed {
		s.logger.Info("self-check %s passed: %d references, %d round trips, max rel err %.3g",
			report.ID, len(report.References), summary.Cases, summary.Max)
	} else {
		s.logger.Warn("self-check %s FAILED: max rel err %.3g", report.ID, summary.Max)
	}
	return report, nil
}

func addReference(report *models.SelfCheckReport, name string, expected, actual float64) {
	absErr := math.Abs(actual - expected)
	passed := absErr <= testkit.Tolerance
	if !passed {
		report.Passed = false
	}
	report.References = append(report.References, models.ReferenceCheck{
		Name:     name,
		Expected: expected,
		Actual:   actual,
		AbsError: absErr,
		Passed:   passed,
	})
}

// roundTrip solves each forward Pd back to SNR and summarizes the relative
// error. Cases whose Pd falls outside the informative range are skipped.
func (s *SelfCheckService) roundTrip(ctx context.Context, pfa detection.Probability) (models.RoundTripSummary, error) {
	var summary models.RoundTripSummary
	var relErrs []float64

	for _, variant := range target.Variants {
		for _, n := range testkit.RoundTripPulses {
			for _, snr := range testkit.RoundTripSNRs {
				if err := ctx.Err(); err != nil {
					return summary, err
				}
				forward, err := target.FromSNRAndPfa(variant, snr, pfa, n)
				if err != nil {
					return summary, errors.FromDomain(err, fmt.Sprintf("round trip %s n=%d snr=%v", variant, n, snr))
				}
				pd := forward.Pd()
				if pd.Value() < testkit.RoundTripPdMin || pd.Value() > testkit.RoundTripPdMax {
					summary.Skipped++
					continue
				}

				inverse, err := target.FromPdAndThreshold(variant, pd, forward.Threshold(), n)
				if err != nil {
					return summary, errors.FromDomain(err, fmt.Sprintf("round trip %s n=%d pd=%v", variant, n, pd))
				}
				relErr := math.Abs(inverse.SNR()-snr) / snr
				s.logger.Trace("%s n=%d snr=%v pd=%v: rel err %.3g", variant, n, snr, pd, relErr)
				relErrs = append(relErrs, relErr)
			}
		}
	}

	summary.Cases = len(relErrs)
	if len(relErrs) == 0 {
		return summary, nil
	}

	var err error
	if summary.Max, err = stats.Max(relErrs); err != nil {
		return summary, errors.Wrap(err, "summarizing round trip")
	}
	if summary.Mean, err = stats.Mean(relErrs); err != nil {
		return summary, errors.Wrap(err, "summarizing round trip")
	}
	if summary.P95, err = stats.Percentile(relErrs, 95); err != nil {
		return summary, errors.Wrap(err, "summarizing round trip")
	}
	return summary, nil
}
