package bench

import (
	"math"
	"time"
)

// Endpoint is a named path measured relative to the run's base URL.
type Endpoint struct {
	Name string
	Path string

	// Identities restricts which identities measure this endpoint.
	// Empty means every identity.
	Identities []Identity
}

// Allows reports whether the endpoint is measured under id
func (e Endpoint) Allows(id Identity) bool {
	if len(e.Identities) == 0 {
		return true
	}
	for _, allowed := range e.Identities {
		if allowed == id {
			return true
		}
	}
	return false
}

// AllowedIdentities returns the identities measuring e, in measurement order.
func (e Endpoint) AllowedIdentities() []Identity {
	var ids []Identity
	for _, id := range Identities {
		if e.Allows(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Sample is one call's latency in whole milliseconds.
type Sample int64

// SampleSet holds the samples of one endpoint/identity pair in call order.
type SampleSet []Sample

// Percentiles are read from an HDR histogram of the retained samples.
type Percentiles struct {
	P50 Sample `json:"p50" yaml:"p50"`
	P90 Sample `json:"p90" yaml:"p90"`
	P99 Sample `json:"p99" yaml:"p99"`
}

// Stats summarises a trimmed SampleSet.
type Stats struct {
	Count       int         `json:"count" yaml:"count"`
	Excluded    int         `json:"excluded" yaml:"excluded"`
	Min         Sample      `json:"min" yaml:"min"`
	Max         Sample      `json:"max" yaml:"max"`
	Sum         int64       `json:"sum" yaml:"sum"`
	Average     float64     `json:"average" yaml:"average"`
	Percentiles Percentiles `json:"percentiles" yaml:"percentiles"`
}

// RoundedAverage returns Average rounded half away from zero to two decimals.
func (s Stats) RoundedAverage() float64 {
	return math.Round(s.Average*100) / 100
}

// AggregateResult is the measurement of one endpoint under one identity.
type AggregateResult struct {
	Endpoint string   `json:"endpoint" yaml:"endpoint"`
	Path     string   `json:"path" yaml:"path"`
	Identity Identity `json:"identity" yaml:"identity"`
	Stats    `yaml:",inline"`

	Traces []TraceRecord `json:"traces,omitempty" yaml:"traces,omitempty"`
}

// TraceRecord is the dependent trace call issued after a sampled call.
type TraceRecord struct {
	ID     string `json:"id" yaml:"id"`
	URL    string `json:"url" yaml:"url"`
	Millis int64  `json:"millis" yaml:"millis"`
	Body   string `json:"body,omitempty" yaml:"body,omitempty"`
}

// RunConfig is everything a run needs. It is not modified by a run.
type RunConfig struct {
	BaseURL            string
	WarmupRounds       int
	TestingRounds      int
	ExcludeMaxOutliers int
	Endpoints          []Endpoint

	// ClientHeader carries the identity's client id, X-Client-Id by default
	ClientHeader string
	ClientIDs    map[Identity]string

	// Timeout bounds every single call
	Timeout time.Duration
}

// ClientIdentity returns id paired with its configured client id
func (c RunConfig) ClientIdentity(id Identity) ClientIdentity {
	return ClientIdentity{Identity: id, ClientID: c.ClientIDs[id]}
}

// Phase names the step of a measurement a failure happened in.
type Phase string

const (
	PhaseWarmup      Phase = "warmup"
	PhaseSampling    Phase = "sampling"
	PhaseTrace       Phase = "trace"
	PhaseAggregation Phase = "aggregation"
)
