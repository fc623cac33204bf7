package container

import (
	"fmt"

	"radartools/adapters/api"
	"radartools/adapters/excel"
	"radartools/adapters/pdf"
	"radartools/adapters/plot"
	"radartools/app"
	"radartools/internal"
	"radartools/internal/config"
	"radartools/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Services
	Detection *app.DetectionService
	Sweeps    *app.SweepService
	SelfCheck *app.SelfCheckService

	// Exporters
	Workbook ports.SweepExporter
	Report   ports.SweepExporter
	Renderer ports.CurveRenderer
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	renderer := plot.NewCurveRenderer()

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Detection: app.NewDetectionService(cfg.Defaults, logger),
		Sweeps:    app.NewSweepService(cfg.Sweep, cfg.Defaults, logger),
		SelfCheck: app.NewSelfCheckService(logger),
		Workbook:  excel.NewWorkbookExporter(),
		Report:    pdf.NewReportExporter(renderer),
		Renderer:  renderer,
	}

	logger.Debug("container initialized: defaults n=%d pfa=%g variant=%s, %d sweep workers",
		cfg.Defaults.Pulses, cfg.Defaults.Pfa, cfg.Defaults.Variant, cfg.Sweep.Workers)
	return c, nil
}

// APIServer builds the HTTP server over the container's services
func (c *Container) APIServer() *api.Server {
	return api.NewServer(c.Detection, c.Sweeps, c.SelfCheck, c.Logger, c.Config.Server.RequestTimeout)
}
