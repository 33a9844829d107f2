package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the available result file formats
type OutputFormat string

const (
	// FormatCSV is the Name,Mocked,Count,Min,Max,Avg table
	FormatCSV OutputFormat = "csv"
	// FormatJSON outputs the full report as JSON
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs the full report as YAML
	FormatYAML OutputFormat = "yaml"
	// FormatText outputs the summary table without colors
	FormatText OutputFormat = "text"
)

// csvHeader is the header row of CSV result files
var csvHeader = []string{"Name", "Mocked", "Count", "Min", "Max", "Avg"}

// ParseFormat validates a format name
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatCSV, FormatJSON, FormatYAML, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Write encodes report to w in the given format.
func Write(w io.Writer, format OutputFormat, report *Report) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, report)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		_, err := io.WriteString(w, renderTable(report.Results, NoColorScheme()))
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range report.Results {
		record := []string{
			r.Endpoint,
			mockedLabel(r.Identity.IsMocked()),
			strconv.Itoa(r.Count),
			strconv.FormatInt(int64(r.Min), 10),
			strconv.FormatInt(int64(r.Max), 10),
			strconv.FormatFloat(r.RoundedAverage(), 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// mockedLabel renders the Mocked column as True/False, as earlier result
// files did.
func mockedLabel(mocked bool) string {
	if mocked {
		return "True"
	}
	return "False"
}

// WriteFile writes report to path. The file is written to a temporary name
// first and renamed into place, so path either holds a complete report or
// is left untouched.
func WriteFile(path string, format OutputFormat, report *Report) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, report); err != nil {
		return fmt.Errorf("encoding %s report: %w", format, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
