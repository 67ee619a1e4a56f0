package runner

import (
	"bufio"
	"strconv"
	"strings"
	"time"
)

// TestStatus is the outcome of one test.
type TestStatus int

const (
	// StatusPass indicates the test passed.
	StatusPass TestStatus = iota
	// StatusFail indicates the test failed.
	StatusFail
	// StatusSkip indicates the test was skipped.
	StatusSkip
)

// String returns the status name.
func (s TestStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// TestResult is one test or subtest from a verbose run.
type TestResult struct {
	// Name is the full test name, subtests slash separated.
	Name string

	// Status is the outcome.
	Status TestStatus

	// Elapsed is the reported duration.
	Elapsed time.Duration

	// Output holds the log and failure lines the test printed.
	Output []string
}

// Report is the parsed form of one `go test -v` run.
type Report struct {
	// Tests holds every result in completion order.
	Tests []TestResult

	// Passed, Failed, and Skipped count outcomes.
	Passed  int
	Failed  int
	Skipped int

	// BuildFailed is set when the package did not compile.
	BuildFailed bool

	// Ok reports overall success.
	Ok bool
}

// Failures returns only the failed tests.
func (r *Report) Failures() []TestResult {
	var out []TestResult
	for _, t := range r.Tests {
		if t.Status == StatusFail {
			out = append(out, t)
		}
	}
	return out
}

// ParseGoTest parses verbose `go test` output. The parser tolerates
// interleaved log lines and nested subtests; lines printed while a
// test runs are attached to that test.
func ParseGoTest(output string) *Report {
	report := &Report{Ok: true}
	running := make(map[string][]string)
	var current string

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimLeft(line, " \t")

		switch {
		case strings.HasPrefix(trimmed, "=== RUN "):
			name := strings.TrimSpace(trimmed[len("=== RUN "):])
			running[name] = nil
			current = name

		case strings.HasPrefix(trimmed, "=== PAUSE "):
			current = ""

		case strings.HasPrefix(trimmed, "=== CONT "):
			current = strings.TrimSpace(trimmed[len("=== CONT "):])

		case strings.HasPrefix(trimmed, "--- PASS: "):
			report.finish(running, trimmed[len("--- PASS: "):], StatusPass)
		case strings.HasPrefix(trimmed, "--- FAIL: "):
			report.finish(running, trimmed[len("--- FAIL: "):], StatusFail)
		case strings.HasPrefix(trimmed, "--- SKIP: "):
			report.finish(running, trimmed[len("--- SKIP: "):], StatusSkip)

		case strings.HasPrefix(line, "FAIL"):
			report.Ok = false
			if strings.Contains(line, "[build failed]") {
				report.BuildFailed = true
			}
		case line == "PASS" || strings.HasPrefix(line, "ok "):
			// Package level summary, nothing to record.

		default:
			if current != "" {
				if _, ok := running[current]; ok {
					running[current] = append(running[current], line)
				}
			}
		}
	}

	if report.Failed > 0 {
		report.Ok = false
	}
	return report
}

// finish records a terminated test given the `Name (1.23s)` tail of
// its result line.
func (r *Report) finish(running map[string][]string, tail string, status TestStatus) {
	name := tail
	var elapsed time.Duration
	if i := strings.LastIndex(tail, " ("); i >= 0 && strings.HasSuffix(tail, ")") {
		name = tail[:i]
		elapsed = parseElapsed(tail[i+2 : len(tail)-1])
	}
	name = strings.TrimSpace(name)

	r.Tests = append(r.Tests, TestResult{
		Name:    name,
		Status:  status,
		Elapsed: elapsed,
		Output:  running[name],
	})
	delete(running, name)

	switch status {
	case StatusPass:
		r.Passed++
	case StatusFail:
		r.Failed++
	case StatusSkip:
		r.Skipped++
	}
}

func parseElapsed(s string) time.Duration {
	s = strings.TrimSuffix(s, "s")
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
