package bench

import (
	"context"
	"errors"
	"time"

	lhttp "github.com/wesleyorama2/latbench/internal/http"
)

// fakeCaller returns latencies from a script and can fail on a given call.
type fakeCaller struct {
	id         ClientIdentity
	latencies  []time.Duration
	failOn     int // 1-based call number, 0 never
	failErr    error
	failTarget string // every call to this target fails with failErr
	body       []byte

	targets []string
	closed  bool
}

func (f *fakeCaller) Call(ctx context.Context, target string) (*Observation, error) {
	f.targets = append(f.targets, target)
	n := len(f.targets)
	if (f.failOn != 0 && n == f.failOn) || (f.failTarget != "" && target == f.failTarget) {
		return nil, f.failErr
	}

	elapsed := time.Millisecond
	if len(f.latencies) > 0 {
		elapsed = f.latencies[(n-1)%len(f.latencies)]
	}
	return &Observation{Elapsed: elapsed, Body: f.body}, nil
}

func (f *fakeCaller) Close() error {
	f.closed = true
	return nil
}

// fakeFactory hands out one fakeCaller per identity and remembers them.
type fakeFactory struct {
	callers map[Identity]*fakeCaller
	setup   func(*fakeCaller)
}

func newFakeFactory(setup func(*fakeCaller)) *fakeFactory {
	return &fakeFactory{callers: make(map[Identity]*fakeCaller), setup: setup}
}

func (f *fakeFactory) New(cfg RunConfig, id ClientIdentity) (Caller, error) {
	c := &fakeCaller{id: id}
	if f.setup != nil {
		f.setup(c)
	}
	f.callers[id.Identity] = c
	return c, nil
}

func (f *fakeFactory) calls(id Identity) int {
	if c, ok := f.callers[id]; ok {
		return len(c.targets)
	}
	return 0
}

var errBoom = errors.New("boom")

func statusErr(code int) error {
	return &lhttp.UnexpectedStatusError{URL: "http://test", StatusCode: code}
}
