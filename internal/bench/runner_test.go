package bench

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWarmup_ZeroRounds(t *testing.T) {
	caller := &fakeCaller{failOn: 1, failErr: errBoom}

	err := RunWarmup(context.Background(), caller, "http://test/a", 0, nil)

	require.NoError(t, err)
	assert.Empty(t, caller.targets)
}

func TestRunWarmup_CallsEveryRound(t *testing.T) {
	caller := &fakeCaller{}
	var progressed int

	err := RunWarmup(context.Background(), caller, "http://test/a", 5, func(Sample) { progressed++ })

	require.NoError(t, err)
	assert.Len(t, caller.targets, 5)
	assert.Equal(t, 5, progressed)
}

func TestRunWarmup_StopsAtFirstFailure(t *testing.T) {
	caller := &fakeCaller{failOn: 3, failErr: errBoom}

	err := RunWarmup(context.Background(), caller, "http://test/a", 10, nil)

	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, caller.targets, 3)
}

func TestRunSampling_KeepsCallOrder(t *testing.T) {
	caller := &fakeCaller{latencies: []time.Duration{
		30 * time.Millisecond,
		10*time.Millisecond + 900*time.Microsecond,
		20 * time.Millisecond,
	}}

	samples, err := RunSampling(context.Background(), caller, "http://test/a", 3, nil)

	require.NoError(t, err)
	assert.Equal(t, SampleSet{30, 10, 20}, samples)
}

func TestRunSampling_DropsPartialSetOnFailure(t *testing.T) {
	caller := &fakeCaller{failOn: 4, failErr: statusErr(500)}

	samples, err := RunSampling(context.Background(), caller, "http://test/a", 10, nil)

	require.Error(t, err)
	assert.Nil(t, samples)
	assert.Len(t, caller.targets, 4)
}

func TestRunSampling_HookFailureAborts(t *testing.T) {
	caller := &fakeCaller{}
	var seen int

	samples, err := RunSampling(context.Background(), caller, "http://test/a", 5, func(*Observation) error {
		seen++
		if seen == 2 {
			return errBoom
		}
		return nil
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, samples)
	assert.Len(t, caller.targets, 2)
}

func TestRunSampling_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	caller := &fakeCaller{}

	_, err := RunSampling(ctx, caller, "http://test/a", 3, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, caller.targets)
}
