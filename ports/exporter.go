package ports

import (
	"context"

	"radartools/domain/sweep"
)

// SweepExporter writes a sweep report to a file
type SweepExporter interface {
	Export(ctx context.Context, report sweep.Report, path string) error
}

// CurveRenderer draws a sweep's curves as an image
type CurveRenderer interface {
	Render(result *sweep.Result) ([]byte, error)
}
