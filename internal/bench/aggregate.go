package bench

import (
	"fmt"
	"sort"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// histogramMax is the largest latency tracked exactly by the percentile
// histogram, one hour in milliseconds. Larger samples are clamped.
const histogramMax = int64(3600 * 1000)

// CheckSampleBudget fails when excluding outliers from testingRounds samples
// would leave nothing to aggregate.
func CheckSampleBudget(testingRounds, exclude int) error {
	if exclude < 0 {
		return fmt.Errorf("outlier exclusion count cannot be negative: %d", exclude)
	}
	if testingRounds-exclude < 1 {
		return &InsufficientSamplesError{Samples: testingRounds, Excluded: exclude}
	}
	return nil
}

// Aggregate drops the exclude largest samples and summarises the rest.
// Only the slow tail is trimmed. samples is not modified.
func Aggregate(samples SampleSet, exclude int) (Stats, error) {
	if err := CheckSampleBudget(len(samples), exclude); err != nil {
		return Stats{}, err
	}

	sorted := make(SampleSet, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i] > sorted[j]
	})
	retained := sorted[exclude:]

	stats := Stats{
		Count:    len(retained),
		Excluded: exclude,
		Max:      retained[0],
		Min:      retained[len(retained)-1],
	}

	hist := hdrhistogram.New(1, histogramMax, 3)
	for _, s := range retained {
		stats.Sum += int64(s)

		v := int64(s)
		if v > histogramMax {
			v = histogramMax
		}
		if v < 0 {
			v = 0
		}
		if err := hist.RecordValue(v); err != nil {
			return Stats{}, fmt.Errorf("recording sample %d in histogram: %w", s, err)
		}
	}
	stats.Average = float64(stats.Sum) / float64(stats.Count)
	stats.Percentiles = Percentiles{
		P50: stats.clamp(hist.ValueAtQuantile(50)),
		P90: stats.clamp(hist.ValueAtQuantile(90)),
		P99: stats.clamp(hist.ValueAtQuantile(99)),
	}

	return stats, nil
}

// clamp keeps histogram bucket values inside the observed range; above 2048ms
// a bucket's upper bound can exceed the largest sample recorded in it.
func (s Stats) clamp(v int64) Sample {
	if Sample(v) > s.Max {
		return s.Max
	}
	if Sample(v) < s.Min {
		return s.Min
	}
	return Sample(v)
}
