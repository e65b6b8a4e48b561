package checks

import (
	"context"
	"time"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Check is one named probe. Run returns a human-readable detail line and an
// error when the probe failed. Skip, when set, short-circuits the check with
// a reason before Run is attempted.
type Check struct {
	Name string
	Skip func() (bool, string)
	Run  func(ctx context.Context) (string, error)
}

// Suite groups checks that share setup and teardown.
type Suite struct {
	Name     string
	Setup    func(ctx context.Context) error
	Teardown func(ctx context.Context) error
	Checks   []Check
}

// Result records how one check went.
type Result struct {
	Suite    string
	Name     string
	Status   Status
	Duration time.Duration
	Detail   string
	Err      error
}

// Failed reports whether this result should fail the run.
func (r Result) Failed() bool {
	return r.Status == StatusFailed
}
