package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wesleyorama2/latbench/internal/bench"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the whole configuration and reports every problem, not
// just the first.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.BaseURL == "" {
		errs.Add("baseUrl", "base URL is required")
	} else if u, err := url.Parse(c.BaseURL); err != nil {
		errs.Add("baseUrl", err.Error())
	} else if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		errs.Add("baseUrl", fmt.Sprintf("must be an absolute http(s) URL, got %q", c.BaseURL))
	}

	if c.Timeout < 0 {
		errs.Add("timeout", "cannot be negative")
	}

	if c.WarmupRounds < 0 {
		errs.Add("warmupRounds", "cannot be negative")
	}
	if c.TestingRounds < 1 {
		errs.Add("testingRounds", "must be at least 1")
	}
	if c.ExcludeMaxOutliers < 0 {
		errs.Add("excludeMaxOutliers", "cannot be negative")
	} else if c.TestingRounds >= 1 && c.ExcludeMaxOutliers >= c.TestingRounds {
		errs.Add("excludeMaxOutliers", fmt.Sprintf("must be less than testingRounds (%d), got %d",
			c.TestingRounds, c.ExcludeMaxOutliers))
	}

	if strings.TrimSpace(c.ClientHeader) == "" {
		errs.Add("clientHeader", "client header name is required")
	}

	if len(c.Endpoints) == 0 {
		errs.Add("endpoints", "at least one endpoint is required")
	}

	used := make(map[bench.Identity]bool)
	names := make(map[string]int)
	for i, ep := range c.Endpoints {
		prefix := fmt.Sprintf("endpoints[%d]", i)

		if ep.Name == "" {
			errs.Add(prefix+".name", "name is required")
		} else if first, dup := names[ep.Name]; dup {
			errs.Add(prefix+".name", fmt.Sprintf("duplicate name %q (also endpoints[%d])", ep.Name, first))
		} else {
			names[ep.Name] = i
		}

		if strings.TrimSpace(ep.Path) == "" {
			errs.Add(prefix+".path", "path is required")
		}

		ids, err := ep.identities()
		if err != nil {
			errs.Add(prefix+".identities", err.Error())
			continue
		}
		for _, id := range (bench.Endpoint{Identities: ids}).AllowedIdentities() {
			used[id] = true
		}
	}

	if used[bench.Mocked] && c.Identities.Mocked == "" {
		errs.Add("identities.mocked", "client id is required when an endpoint is measured mocked")
	}
	if used[bench.Backend] && c.Identities.Backend == "" {
		errs.Add("identities.backend", "client id is required when an endpoint is measured against the backend")
	}

	if c.Trace.Enabled {
		if c.Trace.IDHeader == "" && c.Trace.IDPath == "" {
			errs.Add("trace", "idHeader or idPath is required when tracing is enabled")
		}
		if c.Trace.Path == "" {
			errs.Add("trace.path", "path is required when tracing is enabled")
		}
	}

	if c.Output.Format == "" {
		errs.Add("output.format", "output format is required")
	} else if !stringInSlice(c.Output.Format, OutputFormats) {
		errs.Add("output.format", fmt.Sprintf("invalid format '%s', must be one of: %s",
			c.Output.Format, strings.Join(OutputFormats, ", ")))
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		errs.Add("output.path", "output path is required, use - for stdout")
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs.Add("logging.level", fmt.Sprintf("unknown log level %q", c.Logging.Level))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// pointerToField turns a JSON pointer such as /endpoints/0/name into
// endpoints[0].name.
func pointerToField(pointer string) string {
	var sb strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if part == "" {
			continue
		}
		if _, err := strconv.Atoi(part); err == nil {
			sb.WriteString("[" + part + "]")
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(part)
	}
	return sb.String()
}

// stringInSlice checks if a string is in a slice
func stringInSlice(str string, slice []string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
