// Package config loads, validates and converts latbench run configurations.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/latbench/internal/bench"
	"github.com/wesleyorama2/latbench/internal/trace"
)

// DefaultBaseURL is the API Management instance the default table targets.
const DefaultBaseURL = "https://perftest-api-czg2m6zlvmmwc.azure-api.net/api/latency/"

// Defaults applied to any field a configuration file leaves out.
const (
	DefaultWarmupRounds       = 20
	DefaultTestingRounds      = 550
	DefaultExcludeMaxOutliers = 50
	DefaultMockedClientID     = "66372705"
	DefaultBackendClientID    = "99999999"
	DefaultTimeout            = 30 * time.Second
	DefaultOutputFormat       = "csv"
	DefaultOutputPath         = "results.csv"
	DefaultLogLevel           = "info"
)

// OutputFormats lists the accepted result file formats
var OutputFormats = []string{"csv", "json", "yaml", "text"}

// Config represents a latbench configuration file
type Config struct {
	Name               string           `json:"name,omitempty" yaml:"name,omitempty"`
	BaseURL            string           `json:"baseUrl" yaml:"baseUrl"`
	Timeout            Duration         `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	InsecureSkipVerify bool             `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
	WarmupRounds       int              `json:"warmupRounds" yaml:"warmupRounds"`
	TestingRounds      int              `json:"testingRounds" yaml:"testingRounds"`
	ExcludeMaxOutliers int              `json:"excludeMaxOutliers" yaml:"excludeMaxOutliers"`
	ClientHeader       string           `json:"clientHeader" yaml:"clientHeader"`
	Identities         Identities       `json:"identities" yaml:"identities"`
	Endpoints          []EndpointConfig `json:"endpoints" yaml:"endpoints"`
	Trace              TraceConfig      `json:"trace,omitempty" yaml:"trace,omitempty"`
	Output             OutputConfig     `json:"output" yaml:"output"`
	Logging            LoggingConfig    `json:"logging" yaml:"logging"`
}

// Identities holds the client id sent for each identity
type Identities struct {
	Mocked  string `json:"mocked" yaml:"mocked"`
	Backend string `json:"backend" yaml:"backend"`
}

// EndpointConfig is one named path. Identities restricts which identities
// measure it; empty means both.
type EndpointConfig struct {
	Name       string   `json:"name" yaml:"name"`
	Path       string   `json:"path" yaml:"path"`
	Identities []string `json:"identities,omitempty" yaml:"identities,omitempty,flow"`
}

func (e EndpointConfig) identities() ([]bench.Identity, error) {
	ids := make([]bench.Identity, 0, len(e.Identities))
	for _, name := range e.Identities {
		id, err := bench.ParseIdentity(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// TraceConfig enables a dependent trace call after every sampled call
type TraceConfig struct {
	Enabled  bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	IDHeader string `json:"idHeader,omitempty" yaml:"idHeader,omitempty"`
	IDPath   string `json:"idPath,omitempty" yaml:"idPath,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	KeepBody bool   `json:"keepBody,omitempty" yaml:"keepBody,omitempty"`
}

// OutputConfig selects where results are written
type OutputConfig struct {
	Format string `json:"format" yaml:"format"`
	Path   string `json:"path" yaml:"path"`
}

// LoggingConfig controls the structured log on stderr
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Base returns a configuration holding every default except the target and
// its endpoints.
func Base() *Config {
	return &Config{
		Timeout:            Duration(DefaultTimeout),
		WarmupRounds:       DefaultWarmupRounds,
		TestingRounds:      DefaultTestingRounds,
		ExcludeMaxOutliers: DefaultExcludeMaxOutliers,
		ClientHeader:       bench.DefaultClientHeader,
		Identities: Identities{
			Mocked:  DefaultMockedClientID,
			Backend: DefaultBackendClientID,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
			Path:   DefaultOutputPath,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

// Default returns the built-in latency test against DefaultBaseURL.
func Default() *Config {
	cfg := Base()
	cfg.Name = "apim-latency"
	cfg.BaseURL = DefaultBaseURL
	cfg.Endpoints = []EndpointConfig{
		{Name: "Only Mock", Path: "normal/mock", Identities: []string{"mocked"}},
		{Name: "Only Backend", Path: "normal/backend", Identities: []string{"backend"}},
		{Name: "Mock if found 100 CSV", Path: "mockiffound/100/csv"},
		{Name: "Mock if found 370 CSV", Path: "mockiffound/370/csv"},
		{Name: "Mock if found 100 Json", Path: "mockiffound/100/json"},
		{Name: "Mock if found 370 Json", Path: "mockiffound/370/json"},
		{Name: "Mock if found 100 policy fragment", Path: "mockiffound/100/fragment"},
		{Name: "Mock if found 370 policy fragment", Path: "mockiffound/370/fragment"},
		{Name: "Mock if found 1000 policy fragment", Path: "mockiffound/1000/fragment"},
	}
	return cfg
}

// Load reads a configuration file. The document is checked against the
// schema, but semantic validation is left to Validate so callers can apply
// overrides first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes data as YAML or JSON, chosen by the extension of path.
func Parse(data []byte, path string) (*Config, error) {
	var raw interface{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .yaml, .yml or .json)", ext)
	}

	doc, err := toJSONDocument(raw)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	cfg := Base()
	if err := json.Unmarshal(normalized, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// RunConfig converts the configuration for the orchestrator.
func (c *Config) RunConfig() (bench.RunConfig, error) {
	endpoints := make([]bench.Endpoint, 0, len(c.Endpoints))
	for _, ep := range c.Endpoints {
		ids, err := ep.identities()
		if err != nil {
			return bench.RunConfig{}, fmt.Errorf("endpoint %q: %w", ep.Name, err)
		}
		endpoints = append(endpoints, bench.Endpoint{Name: ep.Name, Path: ep.Path, Identities: ids})
	}

	return bench.RunConfig{
		BaseURL:            c.BaseURL,
		WarmupRounds:       c.WarmupRounds,
		TestingRounds:      c.TestingRounds,
		ExcludeMaxOutliers: c.ExcludeMaxOutliers,
		Endpoints:          endpoints,
		ClientHeader:       c.ClientHeader,
		ClientIDs: map[bench.Identity]string{
			bench.Mocked:  c.Identities.Mocked,
			bench.Backend: c.Identities.Backend,
		},
		Timeout: c.Timeout.Std(),
	}, nil
}

// TracerConfig returns the tracer configuration, or false when tracing is off.
func (c *Config) TracerConfig() (trace.Config, bool) {
	if !c.Trace.Enabled {
		return trace.Config{}, false
	}
	return trace.Config{
		BaseURL:  c.BaseURL,
		IDHeader: c.Trace.IDHeader,
		IDPath:   c.Trace.IDPath,
		Path:     c.Trace.Path,
		KeepBody: c.Trace.KeepBody,
	}, true
}
