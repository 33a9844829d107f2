package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/latbench/internal/bench"
)

func testReport() *Report {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cfg := bench.RunConfig{BaseURL: "https://host/api/", WarmupRounds: 20, TestingRounds: 550, ExcludeMaxOutliers: 50}
	return NewReport("run-1", "apim", cfg, started, started.Add(time.Minute), sampleResults())
}

func TestNewReport_GeneratesRunID(t *testing.T) {
	r := NewReport("", "", bench.RunConfig{}, time.Now(), time.Now(), nil)
	_, err := uuid.Parse(r.RunID)
	assert.NoError(t, err)
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"csv", "json", "yaml", "text"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(name), f)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, testReport()))

	want := "Name,Mocked,Count,Min,Max,Avg\n" +
		"Only Mock,True,3,10,30,20.00\n" +
		"Mock if found 100 CSV,False,3,1,2,1.33\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_CSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	report := testReport()
	report.Results = nil
	require.NoError(t, Write(&buf, FormatCSV, report))
	assert.Equal(t, "Name,Mocked,Count,Min,Max,Avg\n", buf.String())
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, testReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["runId"])
	assert.Equal(t, "https://host/api/", decoded["baseUrl"])

	results := decoded["results"].([]interface{})
	require.Len(t, results, 2)
	first := results[0].(map[string]interface{})
	assert.Equal(t, "Only Mock", first["endpoint"])
	assert.Equal(t, "mocked", first["identity"])
	assert.Equal(t, float64(3), first["count"])
	assert.Equal(t, float64(20), first["percentiles"].(map[string]interface{})["p50"])
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, testReport()))

	var decoded struct {
		RunID    string `yaml:"runId"`
		Settings Settings
		Results  []map[string]interface{} `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "backend", decoded.Results[1]["identity"])
	assert.Equal(t, 1, decoded.Results[1]["min"])
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, testReport()))
	assert.Contains(t, buf.String(), "Only Mock")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, OutputFormat("xml"), testReport())
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, WriteFile(path, FormatCSV, testReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Name,Mocked,Count,Min,Max,Avg\n"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteFile_FailureLeavesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	err := WriteFile(path, OutputFormat("xml"), testReport())
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "results.csv")
	assert.Error(t, WriteFile(path, FormatCSV, testReport()))
}
