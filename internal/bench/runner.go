package bench

import (
	"context"
)

// RunWarmup calls target rounds times, discarding every result. The first
// failure is returned as is. Zero rounds make no call.
func RunWarmup(ctx context.Context, caller Caller, target string, rounds int, progress func(Sample)) error {
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		obs, err := caller.Call(ctx, target)
		if err != nil {
			return err
		}
		if progress != nil {
			progress(obs.Sample())
		}
	}
	return nil
}

// RunSampling calls target rounds times and returns the samples in call
// order. each, when set, sees every observation after it is recorded and may
// fail the run. On failure the partial set is dropped and nil is returned.
func RunSampling(ctx context.Context, caller Caller, target string, rounds int, each func(*Observation) error) (SampleSet, error) {
	samples := make(SampleSet, 0, rounds)
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obs, err := caller.Call(ctx, target)
		if err != nil {
			return nil, err
		}
		samples = append(samples, obs.Sample())
		if each != nil {
			if err := each(obs); err != nil {
				return nil, err
			}
		}
	}
	return samples, nil
}
