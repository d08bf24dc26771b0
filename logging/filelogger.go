// Package logging persists captured engine output per run. The engine writes
// its own section logs; this logger only keeps what the subprocess printed on
// stdout/stderr so a failed batch can be inspected after the fact.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/acarl005/stripansi"
	"github.com/google/uuid"
)

const (
	// Output file names inside a run directory
	StdoutLogFile  = "estest_stdout.log"
	StderrLogFile  = "estest_stderr.log"
	SummaryLogFile = "summary.log"
)

// FileLogger stores output for a single run under <baseDir>/testrun-<runID>.
type FileLogger struct {
	baseDir string
	runID   string
}

// NewFileLogger creates a logger for a new run. An empty runID gets a fresh
// UUID so concurrent runs cannot collide on the directory name.
func NewFileLogger(baseDir string, runID string) (*FileLogger, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if runID == "" {
		runID = uuid.New().String()
	}

	l := &FileLogger{
		baseDir: baseDir,
		runID:   runID,
	}
	if err := os.MkdirAll(l.RunDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating run log directory: %w", err)
	}
	return l, nil
}

// GetRunID returns the run identifier this logger belongs to.
func (l *FileLogger) GetRunID() string {
	return l.runID
}

// RunDir returns the directory all files for this run land in.
func (l *FileLogger) RunDir() string {
	return filepath.Join(l.baseDir, "testrun-"+l.runID)
}

// SaveSuiteOutput persists the engine's captured stdout and stderr, stripped
// of ANSI escape sequences.
func (l *FileLogger) SaveSuiteOutput(stdout string, stderr string) error {
	if err := l.writeFile(StdoutLogFile, stdout); err != nil {
		return err
	}
	return l.writeFile(StderrLogFile, stderr)
}

// SaveSummary persists a human-readable summary line for the run.
func (l *FileLogger) SaveSummary(summary string) error {
	return l.writeFile(SummaryLogFile, summary+"\n")
}

func (l *FileLogger) writeFile(name string, contents string) error {
	path := filepath.Join(l.RunDir(), name)
	if err := os.WriteFile(path, []byte(stripansi.Strip(contents)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
