package app

import (
	"context"

	"radartools/domain/detection"
	"radartools/domain/target"
	"radartools/internal"
	"radartools/internal/config"
	"radartools/internal/errors"
	"radartools/models"
)

// DetectionService builds single detection models and looks up thresholds
type DetectionService struct {
	defaults config.DefaultsConfig
	logger   *internal.Logger
}

// NewDetectionService creates a detection service that fills omitted
// request fields from defaults.
func NewDetectionService(defaults config.DefaultsConfig, logger *internal.Logger) *DetectionService {
	return &DetectionService{
		defaults: defaults,
		logger:   logger.With("DetectionService"),
	}
}

// Evaluate builds the model a request describes and reports all of its quantities
func (s *DetectionService) Evaluate(ctx context.Context, req models.EvaluateRequest) (*models.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	variant, err := s.resolveVariant(req.Variant)
	if err != nil {
		return nil, err
	}
	pulses := req.Pulses
	if pulses == 0 {
		pulses = s.defaults.Pulses
	}

	signal, err := signalOf(req)
	if err != nil {
		return nil, err
	}
	op, err := operatingPointOf(req.Threshold, req.Pfa, s.defaults.Pfa)
	if err != nil {
		return nil, err
	}

	t, err := target.New(variant, signal, op, pulses)
	if err != nil {
		return nil, errors.FromDomain(err, "failed to evaluate detection model")
	}

	s.logger.Debug("evaluated %s n=%d: thr=%g pfa=%g snr=%g pd=%g",
		variant, pulses, t.Threshold(), t.Pfa().Value(), t.SNR(), t.Pd().Value())

	return evaluationOf(t), nil
}

// Threshold returns the noise threshold giving pfa over pulses. Zero
// pulses falls back to the configured default.
func (s *DetectionService) Threshold(ctx context.Context, pulses int, pfa float64) (*models.ThresholdResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pulses == 0 {
		pulses = s.defaults.Pulses
	}
	p, err := detection.NewProbability(pfa)
	if err != nil {
		return nil, errors.FromDomain(err, "invalid pfa")
	}
	thr, err := detection.Threshold(pulses, p)
	if err != nil {
		return nil, errors.FromDomain(err, "failed to compute threshold")
	}
	s.logger.Debug("threshold n=%d pfa=%g: %g", pulses, pfa, thr)
	return &models.ThresholdResult{Pulses: pulses, Pfa: pfa, Threshold: thr}, nil
}

func (s *DetectionService) resolveVariant(name string) (target.Variant, error) {
	if name == "" {
		return s.defaults.Variant, nil
	}
	v, err := target.ParseVariant(name)
	if err != nil {
		return 0, errors.FromDomain(err, "invalid variant")
	}
	return v, nil
}

func signalOf(req models.EvaluateRequest) (detection.Signal, error) {
	set := 0
	for _, p := range []*float64{req.SNR, req.SNRdB, req.Pd} {
		if p != nil {
			set++
		}
	}
	if set != 1 {
		return detection.Signal{}, errors.InvalidInput("exactly one of snr, snr_db or pd is required")
	}

	switch {
	case req.SNR != nil:
		return detection.GivenSNR(*req.SNR), nil
	case req.SNRdB != nil:
		return detection.GivenSNR(detection.FromDB(*req.SNRdB)), nil
	default:
		pd, err := detection.NewProbability(*req.Pd)
		if err != nil {
			return detection.Signal{}, errors.FromDomain(err, "invalid pd")
		}
		return detection.GivenPd(pd), nil
	}
}

func operatingPointOf(thr, pfa *float64, defaultPfa float64) (detection.OperatingPoint, error) {
	if thr != nil && pfa != nil {
		return detection.OperatingPoint{}, errors.InvalidInput("threshold and pfa are mutually exclusive")
	}
	if thr != nil {
		return detection.GivenThreshold(*thr), nil
	}

	v := defaultPfa
	if pfa != nil {
		v = *pfa
	}
	p, err := detection.NewProbability(v)
	if err != nil {
		return detection.OperatingPoint{}, errors.FromDomain(err, "invalid pfa")
	}
	return detection.GivenPfa(p), nil
}

func evaluationOf(t *target.Target) *models.Evaluation {
	eval := &models.Evaluation{
		Variant:          t.Variant(),
		Pulses:           t.Pulses(),
		DegreesOfFreedom: t.DegreesOfFreedom().String(),
		Threshold:        t.Threshold(),
		Pfa:              t.Pfa().Value(),
		SNR:              t.SNR(),
		Pd:               t.Pd().Value(),
	}
	// zero SNR has no decibel value
	if t.SNR() > 0 {
		db := detection.ToDB(t.SNR())
		eval.SNRdB = &db
	}
	return eval
}
