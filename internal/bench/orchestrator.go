package bench

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	lhttp "github.com/wesleyorama2/latbench/internal/http"
)

// Observer is notified as a run progresses. Calls arrive from the run's own
// goroutine, one at a time.
type Observer interface {
	TestStarted(endpoint Endpoint, id Identity, target string)
	PhaseStarted(phase Phase, rounds int)
	CallCompleted(phase Phase, sample Sample)
	PhaseFinished(phase Phase)
	ResultReady(result AggregateResult)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) TestStarted(Endpoint, Identity, string) {}
func (NopObserver) PhaseStarted(Phase, int)                {}
func (NopObserver) CallCompleted(Phase, Sample)            {}
func (NopObserver) PhaseFinished(Phase)                    {}
func (NopObserver) ResultReady(AggregateResult)            {}

// Follower issues the dependent trace call for a sampled observation.
type Follower interface {
	Follow(ctx context.Context, caller Caller, obs *Observation) (TraceRecord, error)
}

// Orchestrator measures every endpoint under every allowed identity, one
// call at a time.
type Orchestrator struct {
	newCaller CallerFactory
	observer  Observer
	follower  Follower
	logger    zerolog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithCallerFactory replaces the HTTP caller, mostly for tests.
func WithCallerFactory(f CallerFactory) Option {
	return func(o *Orchestrator) {
		o.newCaller = f
	}
}

// WithObserver sets the progress observer
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observer = obs
	}
}

// WithFollower enables trace calls after every sampled call
func WithFollower(f Follower) Option {
	return func(o *Orchestrator) {
		o.follower = f
	}
}

// WithLogger sets the structured logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator with the given options
func NewOrchestrator(options ...Option) *Orchestrator {
	o := &Orchestrator{
		newCaller: DefaultCallerFactory,
		observer:  NopObserver{},
		logger:    zerolog.Nop(),
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// Run measures cfg's endpoints in declaration order, mocked before backend,
// and returns one result per measured pair in that order. The first failure
// aborts the whole run: no results are returned alongside an error.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) ([]AggregateResult, error) {
	if err := validateRun(cfg); err != nil {
		return nil, err
	}

	callers := make(map[Identity]Caller)
	defer func() {
		for id, c := range callers {
			if closer, ok := c.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					o.logger.Warn().Err(err).Stringer("identity", id).Msg("error closing client")
				}
			}
		}
	}()

	results := make([]AggregateResult, 0, len(cfg.Endpoints)*len(Identities))
	for _, endpoint := range cfg.Endpoints {
		target, err := lhttp.ResolveURL(cfg.BaseURL, endpoint.Path)
		if err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", endpoint.Name, err)
		}

		for _, id := range endpoint.AllowedIdentities() {
			caller, ok := callers[id]
			if !ok {
				caller, err = o.newCaller(cfg, cfg.ClientIdentity(id))
				if err != nil {
					return nil, fmt.Errorf("creating client for %s: %w", id, err)
				}
				callers[id] = caller
			}

			result, err := o.measure(ctx, cfg, caller, endpoint, id, target)
			if err != nil {
				o.logger.Error().Err(err).Str("endpoint", endpoint.Name).Stringer("identity", id).Msg("measurement failed, aborting run")
				return nil, err
			}
			results = append(results, result)
			o.observer.ResultReady(result)
		}
	}

	return results, nil
}

// measure runs warmup, sampling and aggregation for one endpoint/identity pair.
func (o *Orchestrator) measure(ctx context.Context, cfg RunConfig, caller Caller, endpoint Endpoint, id Identity, target string) (AggregateResult, error) {
	logger := o.logger.With().Str("endpoint", endpoint.Name).Stringer("identity", id).Str("url", target).Logger()
	fail := func(phase Phase, err error) (AggregateResult, error) {
		return AggregateResult{}, &RunError{Endpoint: endpoint.Name, Identity: id, Phase: phase, Err: err}
	}

	o.observer.TestStarted(endpoint, id, target)
	logger.Debug().Int("rounds", cfg.WarmupRounds).Msg("warming up")

	o.observer.PhaseStarted(PhaseWarmup, cfg.WarmupRounds)
	err := RunWarmup(ctx, caller, target, cfg.WarmupRounds, func(s Sample) {
		o.observer.CallCompleted(PhaseWarmup, s)
	})
	o.observer.PhaseFinished(PhaseWarmup)
	if err != nil {
		return fail(PhaseWarmup, err)
	}

	var traces []TraceRecord
	var each func(*Observation) error
	if o.follower != nil {
		each = func(obs *Observation) error {
			record, err := o.follower.Follow(ctx, caller, obs)
			if err != nil {
				return &phaseError{phase: PhaseTrace, err: err}
			}
			traces = append(traces, record)
			return nil
		}
	}

	logger.Debug().Int("rounds", cfg.TestingRounds).Msg("sampling")
	o.observer.PhaseStarted(PhaseSampling, cfg.TestingRounds)
	samples, err := RunSampling(ctx, caller, target, cfg.TestingRounds, func(obs *Observation) error {
		o.observer.CallCompleted(PhaseSampling, obs.Sample())
		logger.Trace().
			Int64("ms", int64(obs.Sample())).
			Dur("ttfb", obs.Timing.TimeToFirstByte).
			Bool("reused", obs.Timing.ReusedConn).
			Msg("call")
		if each != nil {
			return each(obs)
		}
		return nil
	})
	o.observer.PhaseFinished(PhaseSampling)
	if err != nil {
		var pe *phaseError
		if errors.As(err, &pe) {
			return fail(pe.phase, pe.err)
		}
		return fail(PhaseSampling, err)
	}

	stats, err := Aggregate(samples, cfg.ExcludeMaxOutliers)
	if err != nil {
		return fail(PhaseAggregation, err)
	}

	logger.Info().
		Int("count", stats.Count).
		Int64("min", int64(stats.Min)).
		Int64("max", int64(stats.Max)).
		Float64("avg", stats.RoundedAverage()).
		Msg("measured")

	return AggregateResult{
		Endpoint: endpoint.Name,
		Path:     endpoint.Path,
		Identity: id,
		Stats:    stats,
		Traces:   traces,
	}, nil
}

// validateRun rejects configurations that would fail only after network
// calls had already been made.
func validateRun(cfg RunConfig) error {
	if cfg.WarmupRounds < 0 {
		return fmt.Errorf("warmup rounds cannot be negative: %d", cfg.WarmupRounds)
	}
	if cfg.TestingRounds < 1 {
		return fmt.Errorf("testing rounds must be at least 1: %d", cfg.TestingRounds)
	}
	if err := CheckSampleBudget(cfg.TestingRounds, cfg.ExcludeMaxOutliers); err != nil {
		return err
	}
	if len(cfg.Endpoints) == 0 {
		return errors.New("no endpoints configured")
	}

	seen := make(map[string]bool, len(cfg.Endpoints))
	for _, endpoint := range cfg.Endpoints {
		if seen[endpoint.Name] {
			return fmt.Errorf("duplicate endpoint name %q", endpoint.Name)
		}
		seen[endpoint.Name] = true

		if _, err := lhttp.ResolveURL(cfg.BaseURL, endpoint.Path); err != nil {
			return fmt.Errorf("endpoint %q: %w", endpoint.Name, err)
		}
		if len(endpoint.AllowedIdentities()) == 0 {
			return fmt.Errorf("endpoint %q allows no identity", endpoint.Name)
		}
	}
	return nil
}

// phaseError carries a failure out of the sampling loop that belongs to
// another phase.
type phaseError struct {
	phase Phase
	err   error
}

func (e *phaseError) Error() string { return e.err.Error() }
func (e *phaseError) Unwrap() error { return e.err }
