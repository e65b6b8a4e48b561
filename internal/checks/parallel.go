package checks

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/hovergrid/preflight/pkg/config"
	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Experiment measures whether a batch of sleep tasks actually overlaps when
// run concurrently. The tasks do nothing real; the point is to compare the
// concurrent wall clock against what a sequential host would take.
type Experiment struct {
	cfg   config.ParallelConfig
	sleep func(ctx context.Context, d time.Duration) error
}

func NewExperiment(cfg config.ParallelConfig) *Experiment {
	return &Experiment{
		cfg:   cfg,
		sleep: sleepCtx,
	}
}

// WithSleeper swaps the sleep implementation, for tests.
func (e *Experiment) WithSleeper(fn func(ctx context.Context, d time.Duration) error) *Experiment {
	e.sleep = fn
	return e
}

// Report summarizes one experiment run.
type Report struct {
	Tasks           int
	Durations       []time.Duration
	SequentialTotal time.Duration
	ConcurrentWall  time.Duration
	Speedup         float64
	RanInParallel   bool
}

func (r Report) String() string {
	return fmt.Sprintf("%d tasks, sequential total %s, concurrent wall %s, speedup %.2fx",
		r.Tasks, r.SequentialTotal.Round(time.Millisecond), r.ConcurrentWall.Round(time.Millisecond), r.Speedup)
}

// Run draws a random duration per task inside the configured band, runs all
// tasks concurrently, and compares the wall clock to the sum of durations
// (the sequential baseline).
func (e *Experiment) Run(ctx context.Context) (Report, error) {
	cfg := e.cfg
	if cfg.Tasks <= 0 {
		return Report{}, pkgerrors.New(pkgerrors.CodeConfig, "parallel task count must be positive")
	}
	if cfg.MinSleep <= 0 || cfg.MaxSleep < cfg.MinSleep {
		return Report{}, pkgerrors.New(pkgerrors.CodeConfig, "parallel sleep band is invalid")
	}

	durations := make([]time.Duration, cfg.Tasks)
	var total time.Duration
	for i := range durations {
		durations[i] = randomDuration(cfg.MinSleep, cfg.MaxSleep)
		total += durations[i]
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range durations {
		d := d
		g.Go(func() error {
			return e.sleep(gctx, d)
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("parallel batch: %w", err)
	}
	wall := time.Since(start)

	report := Report{
		Tasks:           cfg.Tasks,
		Durations:       durations,
		SequentialTotal: total,
		ConcurrentWall:  wall,
	}
	if wall > 0 {
		report.Speedup = float64(total) / float64(wall)
	}
	// With one task there is nothing to overlap.
	report.RanInParallel = cfg.Tasks > 1 && wall < total

	return report, nil
}

func randomDuration(min, max time.Duration) time.Duration {
	if max == min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ParallelSuite wraps the experiment as a single check.
func ParallelSuite(cfg config.ParallelConfig) Suite {
	experiment := NewExperiment(cfg)
	return parallelSuite(experiment)
}

func parallelSuite(experiment *Experiment) Suite {
	return Suite{
		Name: "parallel",
		Checks: []Check{
			{
				Name: "speedup",
				Run: func(ctx context.Context) (string, error) {
					report, err := experiment.Run(ctx)
					if err != nil {
						return "", err
					}
					if report.Tasks > 1 && !report.RanInParallel {
						return "", fmt.Errorf("tasks ran sequentially: %s", report)
					}
					return report.String(), nil
				},
			},
		},
	}
}
