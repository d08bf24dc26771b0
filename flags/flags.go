package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "ES_ACCEPTOR"

// prefixEnvVars adds the application prefix to an environment variable name.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	TestDir = &cli.StringFlag{
		Name:     "testdir",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("TESTDIR"),
		Usage:    "Path to the directory from which to discover test list and scenario files",
	}
	ExecutorPath = &cli.StringFlag{
		Name:    "executor",
		Value:   "./ESTest.pl",
		EnvVars: prefixEnvVars("EXECUTOR"),
		Usage:   "Path to the external test engine's entry script",
	}
	TestRoot = &cli.StringFlag{
		Name:    "test-root",
		Value:   "tests/root/cryptoserver/",
		EnvVars: prefixEnvVars("TEST_ROOT"),
		Usage:   "Engine-side path prefix for generated test list files",
	}
	ListPrefix = &cli.StringFlag{
		Name:    "list-prefix",
		Value:   "crypto_tests",
		EnvVars: prefixEnvVars("LIST_PREFIX"),
		Usage:   "Filename prefix used to recognize the test-list discovery source",
	}
	ScenarioPrefix = &cli.StringFlag{
		Name:    "scenario-prefix",
		Value:   "crypto_scenarios",
		EnvVars: prefixEnvVars("SCENARIO_PREFIX"),
		Usage:   "Filename prefix used to recognize scenario spec files",
	}
	SuiteTimeout = &cli.DurationFlag{
		Name:    "suite-timeout",
		Value:   1000 * time.Second,
		EnvVars: prefixEnvVars("SUITE_TIMEOUT"),
		Usage:   "Maximum duration for one engine invocation",
	}
	ClassifierURL = &cli.StringFlag{
		Name:    "classifier-url",
		Value:   "http://localhost:8000/",
		EnvVars: prefixEnvVars("CLASSIFIER_URL"),
		Usage:   "Endpoint for per-identifier stable/flakey classification",
	}
	ClassifierTimeout = &cli.DurationFlag{
		Name:    "classifier-timeout",
		Value:   5 * time.Second,
		EnvVars: prefixEnvVars("CLASSIFIER_TIMEOUT"),
		Usage:   "Timeout for a single classification lookup",
	}
	GreenMode = &cli.BoolFlag{
		Name:    "green-mode",
		Value:   true,
		EnvVars: prefixEnvVars("GREEN_MODE"),
		Usage:   "Enable stable/flakey triage; when disabled all tests run as one batch",
	}
	Debug = &cli.BoolFlag{
		Name:    "debug",
		Value:   false,
		EnvVars: prefixEnvVars("DEBUG"),
		Usage:   "Retain generated temp files (partitions, wrapper script) for inspection",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs/",
		EnvVars: prefixEnvVars("LOGDIR"),
		Usage:   "Directory for engine logs and captured run output",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "The lowest log level that will be output",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
)

var requiredFlags = []cli.Flag{
	TestDir,
}

var optionalFlags = []cli.Flag{
	ExecutorPath,
	TestRoot,
	ListPrefix,
	ScenarioPrefix,
	SuiteTimeout,
	ClassifierURL,
	ClassifierTimeout,
	GreenMode,
	Debug,
	LogDir,
	LogLevel,
	RunInterval,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
