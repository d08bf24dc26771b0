// Package runner invokes the external test-execution engine for one batch of
// partitioned test lists and reduces its exit status to pass/fail. The
// engine's own log output is never parsed here.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/cryptoserver-infra/es-acceptor/types"
)

// Engine invocation constants
const (
	// DefaultSuiteTimeout bounds a single engine invocation
	DefaultSuiteTimeout = 1000 * time.Second

	// DefaultTestRoot is the engine-side prefix for test list paths
	DefaultTestRoot = "tests/root/cryptoserver/"

	// DefaultLogDir is where the engine writes its section logs
	DefaultLogDir = "logs/"

	// Engine flags
	RootFlag        = "-root"
	LogSectionsFlag = "-log_sections=all"
	LogDirFlag      = "-logdir="
)

// ErrExecutionFailed is the single user-visible failure for a nonzero engine
// exit. Finer-grained diagnosis lives in the engine's log directory.
var ErrExecutionFailed = errors.New("execution failed")

// SuiteRunner runs the external engine against a stable and a flakey test
// list and reports the aggregate outcome.
type SuiteRunner interface {
	RunSuite(ctx context.Context, stableList string, flakeyList string) (*types.RunResult, error)
}

// Config holds configuration for creating a new suite runner.
type Config struct {
	ExecutorPath string        // engine entry script, e.g. ./ESTest.pl
	TestRoot     string        // engine-side prefix for list paths
	WorkDir      string        // directory the wrapper script is generated in
	LogDir       string        // engine log directory
	SuiteTimeout time.Duration // max duration for one engine invocation
	Debug        bool          // retain the generated wrapper script
	Log          log.Logger
}

type suiteRunner struct {
	cfg    Config
	tracer trace.Tracer
}

// NewSuiteRunner creates a new suite runner instance.
func NewSuiteRunner(cfg Config) (SuiteRunner, error) {
	if cfg.ExecutorPath == "" {
		return nil, fmt.Errorf("executor path is required")
	}
	if cfg.WorkDir == "" {
		return nil, fmt.Errorf("work directory is required")
	}
	if cfg.TestRoot == "" {
		cfg.TestRoot = DefaultTestRoot
	}
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir
	}
	if cfg.SuiteTimeout <= 0 {
		cfg.SuiteTimeout = DefaultSuiteTimeout
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	cfg.Log.Debug("NewSuiteRunner()", "executor", cfg.ExecutorPath, "workDir", cfg.WorkDir,
		"testRoot", cfg.TestRoot, "suiteTimeout", cfg.SuiteTimeout, "debug", cfg.Debug)

	return &suiteRunner{
		cfg:    cfg,
		tracer: otel.Tracer("suite runner"),
	}, nil
}

// RunSuite implements the SuiteRunner interface. One invocation is one-shot:
// it generates the wrapper script, runs the engine bounded by the suite
// timeout, and reports success only for a zero exit code.
func (r *suiteRunner) RunSuite(ctx context.Context, stableList string, flakeyList string) (*types.RunResult, error) {
	ctx, span := r.tracer.Start(ctx, "run suite")
	defer span.End()

	args := r.engineArgs(stableList, flakeyList)
	script, err := newWrapperScript(r.cfg.WorkDir, r.cfg.ExecutorPath, args)
	if err != nil {
		return nil, err
	}
	defer script.Remove(r.cfg.Debug, r.cfg.Log)

	r.cfg.Log.Info("Running test suite", "script", script.Path, "args", args)

	return r.runScript(ctx, script.Path)
}

// engineArgs builds the engine ARGV: fixed flags plus both partition paths,
// each re-rooted under the engine test root. Stable comes first so reliable
// tests run before flakey ones.
func (r *suiteRunner) engineArgs(stableList string, flakeyList string) []string {
	return []string{
		RootFlag,
		LogSectionsFlag,
		LogDirFlag + r.cfg.LogDir,
		r.enginePath(stableList),
		r.enginePath(flakeyList),
	}
}

// enginePath strips any directory components and prefixes the engine root.
func (r *suiteRunner) enginePath(listPath string) string {
	return r.cfg.TestRoot + filepath.Base(listPath)
}

// runScript runs an already generated script as a child process, bounded by
// the suite timeout, and translates the exit status into a RunResult.
func (r *suiteRunner) runScript(ctx context.Context, scriptPath string) (*types.RunResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.SuiteTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, scriptPath)
	cmd.Dir = r.cfg.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := &types.RunResult{
		Duration: time.Since(start),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	// Check for timeout first; the process has already been killed by the
	// context at this point.
	if ctx.Err() == context.DeadlineExceeded {
		result.Status = types.TestStatusFail
		result.TimedOut = true
		result.ExitCode = -1
		result.Error = fmt.Errorf("suite timed out after %v", r.cfg.SuiteTimeout)
		r.cfg.Log.Error("Suite run timed out", "timeout", r.cfg.SuiteTimeout)
		return result, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The engine never started; that's an operational problem, not a
			// test failure.
			return nil, fmt.Errorf("invoking test engine: %w", err)
		}
		result.ExitCode = exitErr.ExitCode()
		result.Status = types.TestStatusFail
		result.Error = ErrExecutionFailed
		r.cfg.Log.Warn("Suite run failed", "exitCode", result.ExitCode)
		return result, nil
	}

	result.ExitCode = 0
	result.Status = types.TestStatusPass
	r.cfg.Log.Info("Suite run passed", "duration", result.Duration)
	return result, nil
}
