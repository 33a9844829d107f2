package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/latbench/internal/bench"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 20, cfg.WarmupRounds)
	assert.Equal(t, 550, cfg.TestingRounds)
	assert.Equal(t, 50, cfg.ExcludeMaxOutliers)
	assert.Equal(t, "X-Client-Id", cfg.ClientHeader)
	assert.Equal(t, "66372705", cfg.Identities.Mocked)
	assert.Equal(t, "99999999", cfg.Identities.Backend)
	require.Len(t, cfg.Endpoints, 9)
	assert.Equal(t, "Only Mock", cfg.Endpoints[0].Name)
	assert.Equal(t, "mockiffound/1000/fragment", cfg.Endpoints[8].Path)
}

func TestDefault_RunConfig(t *testing.T) {
	rc, err := Default().RunConfig()
	require.NoError(t, err)

	assert.Equal(t, []bench.Identity{bench.Mocked}, rc.Endpoints[0].AllowedIdentities())
	assert.Equal(t, []bench.Identity{bench.Backend}, rc.Endpoints[1].AllowedIdentities())
	assert.Equal(t, []bench.Identity{bench.Mocked, bench.Backend}, rc.Endpoints[2].AllowedIdentities())
	assert.Equal(t, "66372705", rc.ClientIdentity(bench.Mocked).ClientID)
	assert.Equal(t, "99999999", rc.ClientIdentity(bench.Backend).ClientID)
	assert.Equal(t, 30*time.Second, rc.Timeout)

	// 7 shared endpoints measured twice, two restricted ones once
	pairs := 0
	for _, ep := range rc.Endpoints {
		pairs += len(ep.AllowedIdentities())
	}
	assert.Equal(t, 16, pairs)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "bench.yaml", `
name: staging
baseUrl: http://localhost:8080/api/
timeout: 5s
warmupRounds: 2
testingRounds: 10
excludeMaxOutliers: 1
identities:
  mocked: "111"
endpoints:
  - name: Mock only
    path: normal/mock
    identities: [mock]
  - name: Both
    path: both
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "staging", cfg.Name)
	assert.Equal(t, 5*time.Second, cfg.Timeout.Std())
	assert.Equal(t, 10, cfg.TestingRounds)
	assert.Equal(t, "111", cfg.Identities.Mocked)
	assert.Equal(t, DefaultBackendClientID, cfg.Identities.Backend, "unset fields keep their defaults")
	assert.Equal(t, bench.DefaultClientHeader, cfg.ClientHeader)
	assert.Equal(t, "csv", cfg.Output.Format)

	rc, err := cfg.RunConfig()
	require.NoError(t, err)
	assert.Equal(t, []bench.Identity{bench.Mocked}, rc.Endpoints[0].Identities)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "bench.json", `{
  "baseUrl": "https://example.com/",
  "timeout": 12,
  "testingRounds": 3,
  "excludeMaxOutliers": 0,
  "endpoints": [{"name": "a", "path": "a", "identities": ["backend"]}],
  "output": {"format": "json", "path": "out.json"}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 12*time.Second, cfg.Timeout.Std())
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "out.json", cfg.Output.Path)
	assert.Equal(t, DefaultWarmupRounds, cfg.WarmupRounds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse([]byte("baseUrl = 1"), "bench.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("endpoints: [\n"), "bench.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")

	_, err = Parse([]byte("{"), "bench.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON")
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "negative warmup",
			doc:   `{"warmupRounds": -1, "endpoints": [{"name": "a", "path": "a"}]}`,
			field: "warmupRounds",
		},
		{
			name:  "zero testing rounds",
			doc:   `{"testingRounds": 0, "endpoints": [{"name": "a", "path": "a"}]}`,
			field: "testingRounds",
		},
		{
			name:  "unknown identity",
			doc:   `{"endpoints": [{"name": "a", "path": "a", "identities": ["prod"]}]}`,
			field: "endpoints[0].identities[0]",
		},
		{
			name:  "endpoint without path",
			doc:   `{"endpoints": [{"name": "a"}]}`,
			field: "endpoints[0]",
		},
		{
			name:  "unknown output format",
			doc:   `{"endpoints": [{"name": "a", "path": "a"}], "output": {"format": "xml"}}`,
			field: "output.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "bench.json")
			require.Error(t, err)

			var verrs *ValidationErrors
			require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)

			var fields []string
			for _, e := range verrs.Errors {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`{"endpoints": [{"name": "a", "path": "a"}], "concurrency": 4}`), "bench.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency")
}

func TestParse_DoesNotValidateSemantics(t *testing.T) {
	// excludeMaxOutliers >= testingRounds is only caught by Validate so that
	// flag overrides can still fix it.
	cfg, err := Parse([]byte(`{"testingRounds": 5, "excludeMaxOutliers": 5, "endpoints": [{"name": "a", "path": "a"}]}`), "bench.json")
	require.NoError(t, err)

	require.Error(t, cfg.Validate())
	cfg.ExcludeMaxOutliers = 4
	cfg.BaseURL = "http://localhost/"
	assert.NoError(t, cfg.Validate())
}

func TestMarshal_RoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	cfg, err := Parse(data, "latbench.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Default(), cfg)
}

func TestTracerConfig(t *testing.T) {
	cfg := Default()
	_, ok := cfg.TracerConfig()
	assert.False(t, ok)

	cfg.Trace = TraceConfig{Enabled: true, IDHeader: "X-Trace-Id", Path: "trace/{{traceId}}", KeepBody: true}
	tc, ok := cfg.TracerConfig()
	require.True(t, ok)
	assert.Equal(t, DefaultBaseURL, tc.BaseURL)
	assert.Equal(t, "X-Trace-Id", tc.IDHeader)
	assert.Equal(t, "trace/{{traceId}}", tc.Path)
	assert.True(t, tc.KeepBody)
}
