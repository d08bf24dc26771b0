// Package acceptor orchestrates one collection/execution pass: discover the
// test list, triage it into stable and flakey partitions, hand both to the
// external engine, and reduce the outcome to a single pass/fail.
package acceptor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cryptoserver-infra/es-acceptor/logging"
	"github.com/cryptoserver-infra/es-acceptor/metrics"
	"github.com/cryptoserver-infra/es-acceptor/registry"
	"github.com/cryptoserver-infra/es-acceptor/runner"
	"github.com/cryptoserver-infra/es-acceptor/triage"
	"github.com/cryptoserver-infra/es-acceptor/types"
)

// Acceptor runs triaged batches against the external test engine.
// Concurrent invocations against the same test directory are unsupported;
// callers must serialize runs themselves.
type Acceptor struct {
	ctx       context.Context
	config    *Config
	version   string
	splitter  *triage.Splitter
	runner    runner.SuiteRunner
	scheduler RunScheduler

	result          *types.RunResult
	scenarioResults []*types.ScenarioResult

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*Acceptor, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating acceptor with config",
		"testDir", config.TestDir,
		"executor", config.ExecutorPath,
		"greenMode", config.GreenMode,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	classifier := triage.NewHTTPClassifier(config.ClassifierURL, config.ClassifierTimeout, config.Log)

	splitter, err := triage.NewSplitter(triage.Config{
		WorkDir:    config.TestDir,
		ListPrefix: config.ListPrefix,
		GreenMode:  config.GreenMode,
		Debug:      config.Debug,
		Classifier: classifier,
		Log:        config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create splitter: %w", err)
	}

	suiteRunner, err := runner.NewSuiteRunner(runner.Config{
		ExecutorPath: config.ExecutorPath,
		TestRoot:     config.TestRoot,
		WorkDir:      config.TestDir,
		LogDir:       config.LogDir,
		SuiteTimeout: config.SuiteTimeout,
		Debug:        config.Debug,
		Log:          config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create suite runner: %w", err)
	}

	a := &Acceptor{
		ctx:              ctx,
		config:           config,
		version:          version,
		splitter:         splitter,
		runner:           suiteRunner,
		scheduler:        NewDefaultRunScheduler(config.RunInterval, config.RunOnce, config.Log),
		shutdownCallback: shutdownCallback,
	}
	a.scheduler.RegisterCallback(a.runPass)

	config.Log.Info("acceptor.New: created splitter and suite runner")
	return a, nil
}

// Start runs passes at the configured interval, or once.
func (a *Acceptor) Start(ctx context.Context) error {
	a.ctx = ctx

	if a.config.RunOnce {
		a.config.Log.Info("Starting es-acceptor in run-once mode")
	} else {
		a.config.Log.Info("Starting es-acceptor in continuous mode", "interval", a.config.RunInterval)
	}

	err := a.scheduler.Start(ctx)
	if err != nil {
		// Operational problem, not a test failure
		a.config.Log.Error("Runtime error running pass", "error", err)
		return err
	}

	if a.config.RunOnce {
		a.config.Log.Info("Pass completed, exiting (run-once mode)")

		if status := a.overallStatus(); status == types.TestStatusFail {
			a.config.Log.Warn("Run-once pass completed with failures")
			return NewExecutionFailureError("execution failed")
		}

		// Only needed when we're in run-once mode and the pass succeeded
		go func() {
			a.shutdownCallback(nil)
		}()
	}

	return nil
}

// Stop stops the es-acceptor service.
func (a *Acceptor) Stop(ctx context.Context) error {
	a.config.Log.Info("Stopping es-acceptor")
	return a.scheduler.Stop()
}

// Stopped returns true if the es-acceptor service is stopped.
func (a *Acceptor) Stopped() bool {
	return a.scheduler.Stopped()
}

// WaitForShutdown blocks until all goroutines have terminated.
func (a *Acceptor) WaitForShutdown(ctx context.Context) error {
	return a.scheduler.WaitForShutdown(ctx)
}

// Result returns the outcome of the most recent pass.
func (a *Acceptor) Result() *types.RunResult {
	return a.result
}

// runPass performs a single collection/execution pass. All ephemeral
// resources created here (partition files, wrapper script) are torn down
// before it returns, unless debug mode retains them. The returned error
// covers operational failures only; test failures land in a.result.
func (a *Acceptor) runPass() error {
	a.config.Log.Info("Running test collection pass...")
	runID := uuid.New().String()

	listPath, err := discoverListFile(a.config.TestDir, a.config.ListPrefix)
	if err != nil {
		return NewRuntimeError(err)
	}
	a.config.Log.Info("Found test list file", "path", listPath)

	// Scenario specs are an optional second discovery source
	a.scenarioResults = nil
	if specPath, ok := discoverSpecFile(a.config.TestDir, a.config.ScenarioPrefix); ok {
		reg, err := registry.NewRegistry(registry.Config{
			Log:      a.config.Log,
			SpecFile: specPath,
		})
		if err != nil {
			return NewRuntimeError(err)
		}
		a.scenarioResults = reg.EvaluateAll(nil)
	}

	partition, err := a.splitter.Split(a.ctx, listPath)
	if err != nil {
		return NewRuntimeError(err)
	}
	defer partition.Cleanup()

	result, err := a.runner.RunSuite(a.ctx, partition.StablePath, partition.FlakeyPath)
	if err != nil {
		return NewRuntimeError(err)
	}
	result.RunID = runID
	result.Stable = len(partition.Stable)
	result.Flakey = len(partition.Flakey)
	a.result = result

	a.saveRunOutput(result)
	a.printResultsTable(runID)
	fmt.Println(a.result.String())

	metrics.RecordRun(runID, string(a.overallStatus()), result.Stable, result.Flakey, result.Duration)
	a.config.Log.Info("Pass completed", "run_id", runID, "status", a.overallStatus())
	return nil
}

// overallStatus folds scenario failures into the suite result.
func (a *Acceptor) overallStatus() types.TestStatus {
	if a.result == nil {
		return types.TestStatusError
	}
	status := a.result.Status
	for _, sr := range a.scenarioResults {
		if sr.Status == types.TestStatusFail {
			status = types.TestStatusFail
		}
	}
	return status
}

// saveRunOutput persists the captured engine output under the log directory.
// Failures here are logged and swallowed; losing a log copy must not fail a
// pass that otherwise succeeded.
func (a *Acceptor) saveRunOutput(result *types.RunResult) {
	fileLogger, err := logging.NewFileLogger(a.config.LogDir, result.RunID)
	if err != nil {
		a.config.Log.Warn("Failed to create run log directory", "err", err)
		return
	}
	if err := fileLogger.SaveSuiteOutput(result.Stdout, result.Stderr); err != nil {
		a.config.Log.Warn("Failed to save suite output", "err", err)
	}
	if err := fileLogger.SaveSummary(result.String()); err != nil {
		a.config.Log.Warn("Failed to save run summary", "err", err)
	}
}

// printResultsTable prints the outcome of the pass to the console.
func (a *Acceptor) printResultsTable(runID string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("ESTest Acceptance Results (%s)", formatDuration(a.result.Duration)))

	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Tests", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "ID", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, sr := range a.scenarioResults {
		errMsg := ""
		if sr.Error != nil {
			errMsg = sr.Error.Error()
		}
		t.AppendRow(table.Row{
			"Scenario",
			sr.Name,
			formatDuration(sr.Duration),
			"1",
			getResultString(sr.Status),
			errMsg,
		})
	}
	if len(a.scenarioResults) > 0 {
		t.AppendSeparator()
	}

	errMsg := ""
	if a.result.Error != nil {
		errMsg = a.result.Error.Error()
	}
	t.AppendRow(table.Row{
		"Suite",
		fmt.Sprintf("stable batch (%d) + flakey batch (%d)", a.result.Stable, a.result.Flakey),
		formatDuration(a.result.Duration),
		a.result.Stable + a.result.Flakey,
		getResultString(a.result.Status),
		errMsg,
	})

	if a.overallStatus() == types.TestStatusPass {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		runID,
		formatDuration(a.result.Duration),
		a.result.Stable + a.result.Flakey,
		getResultString(a.overallStatus()),
		"",
	})

	t.Render()
}

// discoverListFile finds the test-list source: a file in dir whose name
// starts with prefix and ends in ".list". The first match in lexical order
// wins so repeated discovery is deterministic.
func discoverListFile(dir string, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading test directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".list") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no test list matching %s*.list in %s", prefix, dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// discoverSpecFile finds an optional scenario spec file by prefix.
func discoverSpecFile(dir string, prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), true
}

// getResultString returns a short string representing the result
func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// formatDuration formats a duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
