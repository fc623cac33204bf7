package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"radartools/domain/core"
	"radartools/domain/detection"
	"radartools/domain/sweep"
	"radartools/domain/target"
	"radartools/internal"
	"radartools/internal/config"
	"radartools/internal/errors"
	"radartools/models"
)

// maxSweepPoints bounds the evaluations a single curve request may ask for
const maxSweepPoints = 200000

// SweepService computes Pd-vs-SNR curves and required-SNR tables across
// variants and pulse counts, one worker per (variant, pulses) pair.
type SweepService struct {
	cfg      config.SweepConfig
	defaults config.DefaultsConfig
	logger   *internal.Logger
}

// NewSweepService creates a sweep service
func NewSweepService(cfg config.SweepConfig, defaults config.DefaultsConfig, logger *internal.Logger) *SweepService {
	return &SweepService{
		cfg:      cfg,
		defaults: defaults,
		logger:   logger.With("SweepService"),
	}
}

type sweepJob struct {
	variant target.Variant
	pulses  int
}

// Curves evaluates Pd over the request's SNR grid for every variant and
// pulse count. Curves are ordered by variant, then by pulse count.
func (s *SweepService) Curves(ctx context.Context, req models.CurveRequest) (*sweep.Result, error) {
	start := time.Now()

	variants, pulses, pfa, err := s.resolveCommon(req.Variants, req.Pulses, req.Pfa)
	if err != nil {
		return nil, err
	}
	grid := s.defaultGrid()
	if req.Grid != nil {
		grid = *req.Grid
	}
	dbs := grid.Values()
	if len(dbs) == 0 {
		return nil, errors.InvalidInput("grid needs a positive step_db and max_db >= min_db")
	}
	if len(dbs)*len(variants)*len(pulses) > maxSweepPoints {
		return nil, errors.InvalidInput(fmt.Sprintf("sweep exceeds %d evaluations", maxSweepPoints))
	}

	thresholds, err := thresholdsFor(pulses, pfa)
	if err != nil {
		return nil, err
	}

	jobs := jobsFor(variants, pulses)
	curves := make([]sweep.Curve, len(jobs))
	err = s.run(ctx, len(jobs), func(ctx context.Context, i int) error {
		job := jobs[i]
		c, err := curveFor(ctx, job, thresholds[job.pulses], dbs)
		if err != nil {
			return err
		}
		curves[i] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	fingerprint := core.HashParams(map[string]interface{}{
		"kind":     "curves",
		"variants": variants,
		"pulses":   pulses,
		"pfa":      pfa.Value(),
		"grid":     grid,
	})
	result := &sweep.Result{
		ID:          core.NewSweepID(),
		Fingerprint: fingerprint,
		Pfa:         pfa.Value(),
		Grid:        grid,
		Curves:      curves,
		CreatedAt:   time.Now(),
		RuntimeMs:   time.Since(start).Milliseconds(),
	}

	s.logger.Info("sweep %s: %d curves x %d points in %dms", result.ID, len(curves), len(dbs), result.RuntimeMs)
	return result, nil
}

// RequiredSNR solves for the SNR each variant and pulse count needs to
// reach every Pd target. Rows are ordered by variant, pulse count, then
// target as given.
func (s *SweepService) RequiredSNR(ctx context.Context, req models.RequiredSNRRequest) (*sweep.Table, error) {
	variants, pulses, pfa, err := s.resolveCommon(req.Variants, req.Pulses, req.Pfa)
	if err != nil {
		return nil, err
	}
	if len(req.PdTargets) == 0 {
		return nil, errors.InvalidInput("at least one pd target is required")
	}
	targets := make([]detection.Probability, len(req.PdTargets))
	for i, v := range req.PdTargets {
		if !(v > pfa.Value() && v < 1) {
			return nil, errors.InvalidInput(fmt.Sprintf("pd target %v must lie strictly between pfa %v and 1", v, pfa.Value()))
		}
		targets[i] = detection.MustProbability(v)
	}

	thresholds, err := thresholdsFor(pulses, pfa)
	if err != nil {
		return nil, err
	}

	jobs := jobsFor(variants, pulses)
	rows := make([]sweep.Row, len(jobs)*len(targets))
	err = s.run(ctx, len(jobs), func(ctx context.Context, i int) error {
		job := jobs[i]
		thr := thresholds[job.pulses]
		for j, pd := range targets {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := target.New(job.variant, detection.GivenPd(pd), detection.GivenThreshold(thr), job.pulses)
			if err != nil {
				return errors.FromDomain(err, fmt.Sprintf("required snr for %s n=%d pd=%v", job.variant, job.pulses, pd))
			}
			rows[i*len(targets)+j] = sweep.Row{
				Variant:   job.variant,
				Pulses:    job.pulses,
				Pd:        pd.Value(),
				Threshold: thr,
				SNR:       t.SNR(),
				SNRdB:     detection.ToDB(t.SNR()),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fingerprint := core.HashParams(map[string]interface{}{
		"kind":       "required_snr",
		"variants":   variants,
		"pulses":     pulses,
		"pfa":        pfa.Value(),
		"pd_targets": req.PdTargets,
	})
	table := &sweep.Table{
		ID:          core.NewSweepID(),
		Fingerprint: fingerprint,
		Pfa:         pfa.Value(),
		Rows:        rows,
		CreatedAt:   time.Now(),
	}
	s.logger.Info("required snr %s: %d rows", table.ID, len(rows))
	return table, nil
}

// run calls fn for every index in [0, n) with at most cfg.Workers running.
// The first error cancels the rest.
func (s *SweepService) run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		i := i
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			return fn(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *SweepService) resolveCommon(names []string, pulses []int, pfa *float64) ([]target.Variant, []int, detection.Probability, error) {
	variants := target.Variants
	if len(names) > 0 {
		variants = make([]target.Variant, 0, len(names))
		for _, name := range names {
			v, err := target.ParseVariant(name)
			if err != nil {
				return nil, nil, detection.Probability{}, errors.FromDomain(err, "invalid variant")
			}
			variants = append(variants, v)
		}
		variants = dedupe(variants)
	}

	if len(pulses) == 0 {
		pulses = []int{s.defaults.Pulses}
	}
	for _, n := range pulses {
		if n < 1 {
			return nil, nil, detection.Probability{}, errors.FromDomain(core.ErrInvalidPulses, fmt.Sprintf("invalid pulses %d", n))
		}
	}
	pulses = dedupe(pulses)

	v := s.defaults.Pfa
	if pfa != nil {
		v = *pfa
	}
	if !(v > 0 && v < 1) {
		return nil, nil, detection.Probability{}, errors.InvalidInput(fmt.Sprintf("pfa %v must lie strictly between 0 and 1", v))
	}
	return variants, pulses, detection.MustProbability(v), nil
}

// dedupe drops repeats, keeping first occurrences in order
func dedupe[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *SweepService) defaultGrid() sweep.Grid {
	return sweep.Grid{MinDB: s.cfg.SNRMinDB, MaxDB: s.cfg.SNRMaxDB, StepDB: s.cfg.StepDB}
}

func jobsFor(variants []target.Variant, pulses []int) []sweepJob {
	jobs := make([]sweepJob, 0, len(variants)*len(pulses))
	for _, v := range variants {
		for _, n := range pulses {
			jobs = append(jobs, sweepJob{variant: v, pulses: n})
		}
	}
	return jobs
}

func thresholdsFor(pulses []int, pfa detection.Probability) (map[int]float64, error) {
	thresholds := make(map[int]float64, len(pulses))
	for _, n := range pulses {
		if _, ok := thresholds[n]; ok {
			continue
		}
		thr, err := detection.Threshold(n, pfa)
		if err != nil {
			return nil, errors.FromDomain(err, fmt.Sprintf("threshold for n=%d", n))
		}
		thresholds[n] = thr
	}
	return thresholds, nil
}

func curveFor(ctx context.Context, job sweepJob, thr float64, dbs []float64) (sweep.Curve, error) {
	t, err := target.New(job.variant, detection.GivenSNR(0), detection.GivenThreshold(thr), job.pulses)
	if err != nil {
		return sweep.Curve{}, errors.FromDomain(err, fmt.Sprintf("curve %s n=%d", job.variant, job.pulses))
	}
	model := t.Model()

	points := make([]sweep.Point, len(dbs))
	for i, db := range dbs {
		if err := ctx.Err(); err != nil {
			return sweep.Curve{}, err
		}
		snr := detection.FromDB(db)
		pd, err := model.ProbabilityOfDetection(snr)
		if err != nil {
			return sweep.Curve{}, errors.FromDomain(err, fmt.Sprintf("curve %s n=%d at %v dB", job.variant, job.pulses, db))
		}
		points[i] = sweep.Point{SNRdB: db, SNR: snr, Pd: pd.Value()}
	}

	return sweep.Curve{
		Variant:   job.variant,
		Pulses:    job.pulses,
		Threshold: thr,
		Points:    points,
	}, nil
}

