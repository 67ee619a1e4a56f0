// Package runner executes test commands and parses their verbose
// output into structured reports.
//
// The default command is `go test -v`; targets select a package and
// optionally a -run pattern. Parsing is separate from execution, so
// output captured elsewhere feeds through ParseGoTest the same way.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// Target selects what to run.
type Target struct {
	// Dir is the working directory, empty for the current one.
	Dir string

	// Package is the package pattern, default "./...".
	Package string

	// Run restricts tests to a -run regular expression.
	Run string
}

// Result is one completed run.
type Result struct {
	// ID uniquely identifies the run.
	ID string

	// Target is what was run.
	Target Target

	// Report is the parsed test output.
	Report *Report

	// Raw is the combined command output.
	Raw string

	// Duration is the wall clock run time.
	Duration time.Duration
}

// Runner executes test targets.
type Runner struct {
	command []string
	timeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithCommand overrides the test command, default ["go", "test", "-v"].
func WithCommand(argv ...string) Option {
	return func(r *Runner) {
		if len(argv) > 0 {
			r.command = argv
		}
	}
}

// WithTimeout sets the timeout applied when the caller's context has
// no deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New returns a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		command: []string{"go", "test", "-v"},
		timeout: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the target and parses its output. A non-zero exit
// from failing tests is not an error; the failure shows up in the
// report. Errors are reserved for the command not running at all or
// the context ending.
func (r *Runner) Run(ctx context.Context, target Target) (*Result, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	argv := append([]string(nil), r.command...)
	if target.Run != "" {
		argv = append(argv, "-run", target.Run)
	}
	pkg := target.Package
	if pkg == "" {
		pkg = "./..."
	}
	argv = append(argv, pkg)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = target.Dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", argv[0], err)
		}
	}

	raw := out.String()
	return &Result{
		ID:       uuid.NewString(),
		Target:   target,
		Report:   ParseGoTest(raw),
		Raw:      raw,
		Duration: elapsed,
	}, nil
}
