package ports

import (
	"context"

	"radartools/domain/sweep"
	"radartools/models"
)

// DetectionCalculator evaluates single detection models
type DetectionCalculator interface {
	Evaluate(ctx context.Context, req models.EvaluateRequest) (*models.Evaluation, error)
	Threshold(ctx context.Context, pulses int, pfa float64) (*models.ThresholdResult, error)
}

// SweepRunner computes curve sweeps and required-SNR tables
type SweepRunner interface {
	Curves(ctx context.Context, req models.CurveRequest) (*sweep.Result, error)
	RequiredSNR(ctx context.Context, req models.RequiredSNRRequest) (*sweep.Table, error)
}

// SelfChecker verifies the detection math against published tables
type SelfChecker interface {
	Run(ctx context.Context) (*models.SelfCheckReport, error)
}
