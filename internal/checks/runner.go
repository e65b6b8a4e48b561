package checks

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"github.com/hovergrid/preflight/pkg/logger"
	"github.com/hovergrid/preflight/pkg/metrics"
	"github.com/hovergrid/preflight/pkg/sentry"
	"go.uber.org/multierr"
)

// Runner executes suites, logs each check, records metrics, and forwards
// failures to Sentry.
type Runner struct {
	logg     *logger.Logger
	metrics  *metrics.CheckMetrics
	reporter *sentry.Reporter
	out      io.Writer
}

func NewRunner(logg *logger.Logger, m *metrics.CheckMetrics, reporter *sentry.Reporter) *Runner {
	return &Runner{
		logg:     logg,
		metrics:  m,
		reporter: reporter,
		out:      os.Stdout,
	}
}

// WithOutput redirects the summary table, mainly for tests.
func (r *Runner) WithOutput(out io.Writer) *Runner {
	r.out = out
	return r
}

// RunSuite executes every check in the suite. A setup failure fails every
// check in the suite without running it; teardown failures are appended as a
// synthetic result so they cannot pass silently.
func (r *Runner) RunSuite(ctx context.Context, suite Suite) []Result {
	ctx = r.logg.WithSuite(ctx, suite.Name)

	if suite.Setup != nil {
		if err := suite.Setup(ctx); err != nil {
			r.logg.Error(ctx, "suite setup failed", err)
			results := make([]Result, 0, len(suite.Checks))
			for _, check := range suite.Checks {
				results = append(results, r.record(ctx, suite.Name, Result{
					Suite:  suite.Name,
					Name:   check.Name,
					Status: StatusFailed,
					Err:    fmt.Errorf("suite setup failed: %w", err),
				}))
			}
			return results
		}
	}

	results := make([]Result, 0, len(suite.Checks)+1)
	for _, check := range suite.Checks {
		results = append(results, r.runCheck(ctx, suite.Name, check))
	}

	if suite.Teardown != nil {
		if err := suite.Teardown(ctx); err != nil {
			results = append(results, r.record(ctx, suite.Name, Result{
				Suite:  suite.Name,
				Name:   "teardown",
				Status: StatusFailed,
				Err:    err,
			}))
		}
	}

	return results
}

func (r *Runner) runCheck(ctx context.Context, suiteName string, check Check) Result {
	ctx = r.logg.WithCheck(ctx, check.Name)

	if check.Skip != nil {
		if skip, reason := check.Skip(); skip {
			r.logg.Info(ctx, "check skipped: "+reason)
			return Result{Suite: suiteName, Name: check.Name, Status: StatusSkipped, Detail: reason}
		}
	}

	start := time.Now()
	detail, err := check.Run(ctx)
	elapsed := time.Since(start)

	result := Result{
		Suite:    suiteName,
		Name:     check.Name,
		Duration: elapsed,
		Detail:   detail,
		Err:      err,
	}
	if err != nil {
		result.Status = StatusFailed
	} else {
		result.Status = StatusPassed
	}

	return r.record(ctx, suiteName, result)
}

func (r *Runner) record(ctx context.Context, suiteName string, result Result) Result {
	r.metrics.ObserveDuration(suiteName, result.Name, result.Duration)

	switch result.Status {
	case StatusPassed:
		r.metrics.IncPassed(suiteName, result.Name)
		r.logg.Info(ctx, "check passed")
	case StatusFailed:
		r.metrics.IncFailed(suiteName, result.Name)
		r.logg.Error(ctx, "check failed", result.Err)
		r.reporter.CaptureError(result.Err, map[string]string{
			"suite": suiteName,
			"check": result.Name,
			"code":  string(pkgerrors.Classify(result.Err)),
		})
	}
	return result
}

// Summarize prints a one-line-per-check table and a final verdict.
func (r *Runner) Summarize(results []Result) {
	var passed, failed, skipped int

	for _, res := range results {
		switch res.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}

		line := fmt.Sprintf("%-7s %-12s %-24s %s", res.Status, res.Suite, res.Name, res.Duration.Round(time.Millisecond))
		if res.Detail != "" {
			line += "  " + res.Detail
		}
		if res.Err != nil {
			line += "  error=" + res.Err.Error()
		}
		fmt.Fprintln(r.out, line)
	}

	fmt.Fprintf(r.out, "\n%d passed, %d failed, %d skipped\n", passed, failed, skipped)
}

// ExitCode maps results onto the process exit code contract: 0 iff every
// executed check passed.
func ExitCode(results []Result) int {
	for _, res := range results {
		if res.Failed() {
			return 1
		}
	}
	return 0
}

// CombinedErr folds every failure into one error, nil when all passed.
func CombinedErr(results []Result) error {
	var errs error
	for _, res := range results {
		if res.Failed() && res.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s/%s: %w", res.Suite, res.Name, res.Err))
		}
	}
	return errs
}
