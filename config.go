package acceptor

import (
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/cryptoserver-infra/es-acceptor/flags"
)

// Config holds the application configuration
type Config struct {
	TestDir           string        // Directory test list and scenario files are discovered in
	ExecutorPath      string        // Entry script of the external test engine
	TestRoot          string        // Engine-side prefix for generated list paths
	ListPrefix        string        // Filename prefix recognizing the test-list source
	ScenarioPrefix    string        // Filename prefix recognizing scenario spec files
	SuiteTimeout      time.Duration // Max duration for one engine invocation
	ClassifierURL     string        // Endpoint for stable/flakey classification
	ClassifierTimeout time.Duration // Timeout for one classification lookup
	GreenMode         bool          // Enables stable/flakey triage
	Debug             bool          // Retain ephemeral artifacts for inspection
	LogDir            string        // Directory for engine logs and captured output
	RunInterval       time.Duration // Interval between runs
	RunOnce           bool          // Indicates if the service should exit after one run
	Log               log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, errors.Wrap(err, "missing required flags")
	}

	testDir := ctx.String(flags.TestDir.Name)
	if testDir == "" {
		return nil, errors.New("test directory is required")
	}
	absTestDir, err := filepath.Abs(testDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve absolute path for test directory '%s'", testDir)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	logDir := ctx.String(flags.LogDir.Name)
	if logDir == "" {
		logDir = "logs"
	}

	cfg := &Config{
		TestDir:           absTestDir,
		ExecutorPath:      ctx.String(flags.ExecutorPath.Name),
		TestRoot:          ctx.String(flags.TestRoot.Name),
		ListPrefix:        ctx.String(flags.ListPrefix.Name),
		ScenarioPrefix:    ctx.String(flags.ScenarioPrefix.Name),
		SuiteTimeout:      ctx.Duration(flags.SuiteTimeout.Name),
		ClassifierURL:     ctx.String(flags.ClassifierURL.Name),
		ClassifierTimeout: ctx.Duration(flags.ClassifierTimeout.Name),
		GreenMode:         ctx.Bool(flags.GreenMode.Name),
		Debug:             ctx.Bool(flags.Debug.Name),
		LogDir:            logDir,
		RunInterval:       runInterval,
		RunOnce:           runOnce,
		Log:               logger,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants that the flag layer cannot.
func (c *Config) Validate() error {
	if c.ExecutorPath == "" {
		return errors.New("executor path is required")
	}
	if c.ListPrefix == "" {
		return errors.New("test list filename prefix is required")
	}
	if c.SuiteTimeout <= 0 {
		return errors.Errorf("suite timeout must be positive, got %s", c.SuiteTimeout)
	}
	if c.GreenMode && c.ClassifierURL == "" {
		return errors.New("classifier URL is required in green mode")
	}
	if c.GreenMode && c.ClassifierTimeout <= 0 {
		return errors.Errorf("classifier timeout must be positive, got %s", c.ClassifierTimeout)
	}
	return nil
}
