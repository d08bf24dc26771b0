// Package types contains shared types used across the es-acceptor testing shim.
package types

import (
	"fmt"
	"time"
)

// TestStatus represents the possible states of a test execution
type TestStatus string

const (
	TestStatusPass  TestStatus = "pass"
	TestStatusFail  TestStatus = "fail"
	TestStatusSkip  TestStatus = "skip"
	TestStatusError TestStatus = "error"
)

// RunResult captures the outcome of a single suite execution pass.
// The engine owns per-test granularity; this layer only sees the exit code.
type RunResult struct {
	RunID    string
	Status   TestStatus
	ExitCode int
	TimedOut bool
	Duration time.Duration
	Stable   int // identifiers in the stable partition
	Flakey   int // identifiers in the flakey partition
	Error    error
	Stdout   string
	Stderr   string
}

func (r *RunResult) String() string {
	if r == nil {
		return "no result"
	}
	return fmt.Sprintf("run %s: %s (exit=%d, stable=%d, flakey=%d, duration=%.1fs)",
		r.RunID, r.Status, r.ExitCode, r.Stable, r.Flakey, r.Duration.Seconds())
}

// ScenarioResult captures the outcome of a single declarative scenario check.
type ScenarioResult struct {
	Name     string
	Status   TestStatus
	Error    error
	Duration time.Duration
}
