package bench

import (
	"errors"
	"fmt"
)

// ErrInsufficientSamples is matched by every *InsufficientSamplesError.
var ErrInsufficientSamples = errors.New("insufficient samples")

// InsufficientSamplesError reports that excluding outliers would leave
// nothing to aggregate.
type InsufficientSamplesError struct {
	Samples  int
	Excluded int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient samples: %d samples with %d outliers excluded leaves none to aggregate",
		e.Samples, e.Excluded)
}

func (e *InsufficientSamplesError) Is(target error) bool {
	return target == ErrInsufficientSamples
}

// RunError locates a failure within a run.
type RunError struct {
	Endpoint string
	Identity Identity
	Phase    Phase
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s (%s) failed during %s: %v", e.Endpoint, e.Identity, e.Phase, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
