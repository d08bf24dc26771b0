// Package registry loads declarative scenario specification files. Each named
// scenario is a set of key/value assertions evaluated as simple equality
// checks against an observed environment document.
package registry

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/cryptoserver-infra/es-acceptor/types"
)

// SpecFile is the on-disk shape of a scenario specification.
type SpecFile struct {
	// Environment holds the observed values assertions are checked against.
	Environment map[string]string   `yaml:"environment"`
	Scenarios   map[string]Scenario `yaml:"scenarios"`
}

// Scenario is one named set of equality assertions.
type Scenario struct {
	Description string            `yaml:"description,omitempty"`
	Assertions  map[string]string `yaml:"assertions"`
}

// Registry manages scenario specs loaded from a file.
type Registry struct {
	config Config
	spec   *SpecFile
	mu     sync.RWMutex
}

// Config contains registry configuration.
type Config struct {
	Log      log.Logger
	SpecFile string
}

// NewRegistry creates a new registry instance and loads the spec file.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.SpecFile == "" {
		return nil, fmt.Errorf("scenario spec file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{config: cfg}
	if err := r.load(cfg.SpecFile); err != nil {
		return nil, fmt.Errorf("failed to load scenario spec: %w", err)
	}

	cfg.Log.Debug("Scenario registry loaded", "len(scenarios)", len(r.spec.Scenarios))
	return r, nil
}

func (r *Registry) load(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading spec file: %w", err)
	}

	var spec SpecFile
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("parsing spec file: %w", err)
	}

	for name, scenario := range spec.Scenarios {
		if len(scenario.Assertions) == 0 {
			return fmt.Errorf("scenario %s has no assertions", name)
		}
	}

	r.spec = &spec
	return nil
}

// Names returns all scenario names in deterministic order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.spec.Scenarios))
	for name := range r.spec.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EvaluateAll checks every scenario against the spec's environment document,
// overlaid with any caller-provided observed values. Results come back in
// scenario-name order.
func (r *Registry) EvaluateAll(observed map[string]string) []*types.ScenarioResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make(map[string]string, len(r.spec.Environment)+len(observed))
	for k, v := range r.spec.Environment {
		values[k] = v
	}
	for k, v := range observed {
		values[k] = v
	}

	var results []*types.ScenarioResult
	for _, name := range r.namesLocked() {
		scenario := r.spec.Scenarios[name]
		start := time.Now()
		err := scenario.Evaluate(values)

		result := &types.ScenarioResult{
			Name:     name,
			Status:   types.TestStatusPass,
			Duration: time.Since(start),
		}
		if err != nil {
			result.Status = types.TestStatusFail
			result.Error = err
		}
		results = append(results, result)
	}
	return results
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.spec.Scenarios))
	for name := range r.spec.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate runs the scenario's equality checks against the observed values.
// A missing key fails the same way a mismatched value does.
func (s Scenario) Evaluate(observed map[string]string) error {
	keys := make([]string, 0, len(s.Assertions))
	for k := range s.Assertions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expected := s.Assertions[key]
		actual, ok := observed[key]
		if !ok {
			return fmt.Errorf("assertion failed: %s is not set (expected %q)", key, expected)
		}
		if actual != expected {
			return fmt.Errorf("assertion failed: %s = %q, expected %q", key, actual, expected)
		}
	}
	return nil
}
