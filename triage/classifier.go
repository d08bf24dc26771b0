package triage

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// Verdict is the classification of a single test identifier.
type Verdict string

const (
	VerdictStable Verdict = "stable"
	VerdictFlakey Verdict = "flakey"
)

// FlakeySentinel is the only response body that marks a test flakey.
// The comparison is case-sensitive; anything else means stable.
const FlakeySentinel = "FALSE"

// DefaultClassifierTimeout bounds a single classification lookup so a hung
// classifier cannot stall collection.
const DefaultClassifierTimeout = 5 * time.Second

// maxResponseBody caps how much of the classifier response we read.
const maxResponseBody = 1024

// Classifier decides whether a test identifier is stable or flakey.
type Classifier interface {
	Classify(ctx context.Context, testName string) Verdict
}

// HTTPClassifier consults an external endpoint per identifier. The endpoint is
// treated as an unreliable oracle: any transport error, timeout, non-2xx
// status or unrecognized body fails open to stable, and no retries are
// attempted. Inability to consult the classifier must never block execution.
type HTTPClassifier struct {
	url    string
	client *http.Client
	log    log.Logger
}

// NewHTTPClassifier creates a classifier against the given endpoint.
// A non-positive timeout falls back to DefaultClassifierTimeout.
func NewHTTPClassifier(url string, timeout time.Duration, logger log.Logger) *HTTPClassifier {
	if timeout <= 0 {
		timeout = DefaultClassifierTimeout
	}
	if logger == nil {
		logger = log.New()
	}
	return &HTTPClassifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    logger,
	}
}

// Classify implements the Classifier interface.
func (c *HTTPClassifier) Classify(ctx context.Context, testName string) Verdict {
	c.log.Debug("Checking status", "test", testName, "url", c.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		c.log.Warn("Failed to build classifier request, assuming test is stable",
			"test", testName, "err", err)
		return VerdictStable
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("Failed to check classifier, assuming test is stable",
			"test", testName, "url", c.url, "err", err)
		return VerdictStable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		c.log.Warn("Failed to read classifier response, assuming test is stable",
			"test", testName, "err", err)
		return VerdictStable
	}

	if resp.StatusCode == http.StatusOK && string(body) == FlakeySentinel {
		return VerdictFlakey
	}
	return VerdictStable
}

// StaticClassifier returns the same verdict for every identifier. It backs the
// green-mode bypass and test fakes.
type StaticClassifier Verdict

// Classify implements the Classifier interface.
func (s StaticClassifier) Classify(ctx context.Context, testName string) Verdict {
	return Verdict(s)
}
