// Package triage splits a newline-delimited test list into stable and flakey
// partitions so the execution engine can front-load reliable tests.
package triage

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/cryptoserver-infra/es-acceptor/metrics"
)

// Config holds configuration for creating a new splitter.
type Config struct {
	WorkDir    string // directory the partition files are created in
	ListPrefix string // filename prefix for generated partition files
	GreenMode  bool   // when false, triage is bypassed and everything is stable
	Debug      bool   // retain partition files for inspection
	Classifier Classifier
	Log        log.Logger
}

// Splitter partitions a test list file into a stable and a flakey list.
type Splitter struct {
	cfg    Config
	tracer trace.Tracer
}

// Partition holds the two generated list files for one collection pass.
// The pass that created it owns cleanup; Cleanup is a no-op in debug mode.
type Partition struct {
	StablePath string
	FlakeyPath string
	Stable     []string
	Flakey     []string

	debug bool
	log   log.Logger
}

// NewSplitter creates a new splitter instance.
func NewSplitter(cfg Config) (*Splitter, error) {
	if cfg.WorkDir == "" {
		return nil, errors.New("work directory is required")
	}
	if cfg.ListPrefix == "" {
		return nil, errors.New("list filename prefix is required")
	}
	if cfg.GreenMode && cfg.Classifier == nil {
		return nil, errors.New("classifier is required in green mode")
	}
	if cfg.Classifier == nil {
		cfg.Classifier = StaticClassifier(VerdictStable)
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	return &Splitter{
		cfg:    cfg,
		tracer: otel.Tracer("test triage"),
	}, nil
}

// Split reads the test list at listPath and writes each non-comment line to
// either the stable or the flakey partition file, preserving input order
// within each partition. A missing or unreadable input file is fatal;
// classification failures are not (the classifier fails open to stable).
func (s *Splitter) Split(ctx context.Context, listPath string) (*Partition, error) {
	ctx, span := s.tracer.Start(ctx, "split test list")
	defer span.End()

	s.cfg.Log.Debug("Starting to split into stable and flakey tests", "list", listPath)

	in, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("opening test list %s: %w", listPath, err)
	}
	defer in.Close()

	stableFile, err := os.CreateTemp(s.cfg.WorkDir, s.partitionPattern("stable"))
	if err != nil {
		return nil, fmt.Errorf("creating stable partition file: %w", err)
	}
	flakeyFile, err := os.CreateTemp(s.cfg.WorkDir, s.partitionPattern("flakey"))
	if err != nil {
		_ = stableFile.Close()
		_ = os.Remove(stableFile.Name())
		return nil, fmt.Errorf("creating flakey partition file: %w", err)
	}

	p := &Partition{
		StablePath: stableFile.Name(),
		FlakeyPath: flakeyFile.Name(),
		debug:      s.cfg.Debug,
		log:        s.cfg.Log,
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			// skip comments
			continue
		}

		verdict := VerdictStable
		if s.cfg.GreenMode {
			verdict = s.cfg.Classifier.Classify(ctx, trimmed)
		}
		metrics.RecordClassification(string(verdict))

		out := stableFile
		if verdict == VerdictFlakey {
			out = flakeyFile
			p.Flakey = append(p.Flakey, line)
		} else {
			p.Stable = append(p.Stable, line)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			_ = stableFile.Close()
			_ = flakeyFile.Close()
			p.Cleanup()
			return nil, fmt.Errorf("writing partition file: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = stableFile.Close()
		_ = flakeyFile.Close()
		p.Cleanup()
		return nil, fmt.Errorf("reading test list %s: %w", listPath, err)
	}

	if err := stableFile.Close(); err != nil {
		return nil, fmt.Errorf("closing stable partition file: %w", err)
	}
	if err := flakeyFile.Close(); err != nil {
		return nil, fmt.Errorf("closing flakey partition file: %w", err)
	}

	s.cfg.Log.Debug("Finished splitting test list",
		"stable", p.StablePath,
		"flakey", p.FlakeyPath,
		"stableCount", len(p.Stable),
		"flakeyCount", len(p.Flakey))

	return p, nil
}

// partitionPattern builds an os.CreateTemp pattern like
// "stable_crypto_tests_*.list". The class comes first so generated partitions
// never match the discovery prefix of the source list.
func (s *Splitter) partitionPattern(class string) string {
	return fmt.Sprintf("%s_%s_*.list", class, s.cfg.ListPrefix)
}

// Cleanup removes the partition files unless debug mode retains them.
func (p *Partition) Cleanup() {
	if p.debug {
		p.log.Debug("Debug enabled, keeping partition files",
			"stable", p.StablePath, "flakey", p.FlakeyPath)
		return
	}
	if err := os.Remove(p.StablePath); err != nil && !os.IsNotExist(err) {
		p.log.Warn("Failed to remove stable partition file", "path", p.StablePath, "err", err)
	}
	if err := os.Remove(p.FlakeyPath); err != nil && !os.IsNotExist(err) {
		p.log.Warn("Failed to remove flakey partition file", "path", p.FlakeyPath, "err", err)
	}
}
