package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/wesleyorama2/latbench/internal/bench"
)

// Report is a completed run as written to a result file.
type Report struct {
	RunID      string                  `json:"runId" yaml:"runId"`
	Name       string                  `json:"name,omitempty" yaml:"name,omitempty"`
	BaseURL    string                  `json:"baseUrl" yaml:"baseUrl"`
	StartedAt  time.Time               `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time               `json:"finishedAt" yaml:"finishedAt"`
	Settings   Settings                `json:"settings" yaml:"settings"`
	Results    []bench.AggregateResult `json:"results" yaml:"results"`
}

// Settings records the round counts a report was measured with.
type Settings struct {
	WarmupRounds       int `json:"warmupRounds" yaml:"warmupRounds"`
	TestingRounds      int `json:"testingRounds" yaml:"testingRounds"`
	ExcludeMaxOutliers int `json:"excludeMaxOutliers" yaml:"excludeMaxOutliers"`
}

// NewReport creates a report for a run. An empty runID gets a fresh one.
func NewReport(runID, name string, cfg bench.RunConfig, started, finished time.Time, results []bench.AggregateResult) *Report {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Report{
		RunID:      runID,
		Name:       name,
		BaseURL:    cfg.BaseURL,
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		Settings: Settings{
			WarmupRounds:       cfg.WarmupRounds,
			TestingRounds:      cfg.TestingRounds,
			ExcludeMaxOutliers: cfg.ExcludeMaxOutliers,
		},
		Results: results,
	}
}
