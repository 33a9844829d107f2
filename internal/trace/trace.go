// Package trace follows each sampled call with a dependent call that fetches
// the server-side trace of the sampled request.
package trace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/wesleyorama2/latbench/internal/bench"
	lhttp "github.com/wesleyorama2/latbench/internal/http"
)

// Placeholder is replaced by the trace id in Config.Path
const Placeholder = "{{traceId}}"

// ErrTraceIDNotFound is returned when a sampled response carries no trace id
var ErrTraceIDNotFound = errors.New("trace id not found")

// Config describes where the trace id lives and where traces are fetched.
type Config struct {
	BaseURL string

	// IDHeader names a response header holding the trace id. It is checked
	// before IDPath.
	IDHeader string
	// IDPath is a JSONPath into the response body, e.g. $.traceId
	IDPath string

	// Path is resolved against BaseURL after substituting Placeholder
	Path string

	// KeepBody stores the trace response body in each record
	KeepBody bool
}

// Tracer implements bench.Follower
type Tracer struct {
	cfg Config
}

// New creates a Tracer, rejecting configurations that cannot locate an id
// or a trace.
func New(cfg Config) (*Tracer, error) {
	if cfg.IDHeader == "" && cfg.IDPath == "" {
		return nil, errors.New("trace requires idHeader or idPath")
	}
	if cfg.Path == "" {
		return nil, errors.New("trace requires a path")
	}
	if _, err := lhttp.ResolveURL(cfg.BaseURL, strings.ReplaceAll(cfg.Path, Placeholder, "x")); err != nil {
		return nil, fmt.Errorf("invalid trace path: %w", err)
	}
	return &Tracer{cfg: cfg}, nil
}

// ExtractID finds the trace id of a sampled response
func (t *Tracer) ExtractID(obs *bench.Observation) (string, error) {
	if t.cfg.IDHeader != "" {
		if id := obs.Header.Get(t.cfg.IDHeader); id != "" {
			return id, nil
		}
	}
	if t.cfg.IDPath != "" {
		id, err := extract(obs.Body, t.cfg.IDPath)
		if err == nil && id != "" {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTraceIDNotFound, err)
		}
	}
	return "", ErrTraceIDNotFound
}

// URL returns the trace URL for id
func (t *Tracer) URL(id string) (string, error) {
	path := strings.ReplaceAll(t.cfg.Path, Placeholder, url.PathEscape(id))
	return lhttp.ResolveURL(t.cfg.BaseURL, path)
}

// Follow fetches the trace of obs with the caller that produced it, so the
// trace request carries the same identity.
func (t *Tracer) Follow(ctx context.Context, caller bench.Caller, obs *bench.Observation) (bench.TraceRecord, error) {
	id, err := t.ExtractID(obs)
	if err != nil {
		return bench.TraceRecord{}, err
	}

	target, err := t.URL(id)
	if err != nil {
		return bench.TraceRecord{}, err
	}

	traceObs, err := caller.Call(ctx, target)
	if err != nil {
		return bench.TraceRecord{}, fmt.Errorf("fetching trace %s: %w", id, err)
	}

	record := bench.TraceRecord{
		ID:     id,
		URL:    target,
		Millis: int64(traceObs.Sample()),
	}
	if t.cfg.KeepBody {
		record.Body = string(traceObs.Body)
	}
	return record, nil
}

var _ bench.Follower = (*Tracer)(nil)
