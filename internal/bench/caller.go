package bench

import (
	"context"
	"io"
	"net/http"
	"time"

	lhttp "github.com/wesleyorama2/latbench/internal/http"
)

// DefaultClientHeader carries the client id when none is configured
const DefaultClientHeader = "X-Client-Id"

// Caller issues a single timed GET. Implementations fail with
// *http.TransportError or *http.UnexpectedStatusError.
type Caller interface {
	Call(ctx context.Context, target string) (*Observation, error)
}

// CallerFactory creates the caller used for every call made as id.
type CallerFactory func(cfg RunConfig, id ClientIdentity) (Caller, error)

// Observation is the outcome of one successful call.
type Observation struct {
	Elapsed time.Duration
	Body    []byte
	Header  http.Header
	Timing  lhttp.TimingInfo
}

// Sample converts the elapsed time to whole milliseconds, rounded down.
func (o *Observation) Sample() Sample {
	return Sample(lhttp.Millis(o.Elapsed))
}

// HTTPCaller is the Caller backed by a pooled HTTP client that sends the
// identity's client header with every call.
type HTTPCaller struct {
	client *lhttp.Client
}

// NewHTTPCaller creates an HTTPCaller for id.
func NewHTTPCaller(header string, id ClientIdentity, timeout time.Duration, options ...lhttp.ClientOption) *HTTPCaller {
	if header == "" {
		header = DefaultClientHeader
	}
	opts := []lhttp.ClientOption{lhttp.WithHeader(header, id.ClientID)}
	if timeout > 0 {
		opts = append(opts, lhttp.WithTimeout(timeout))
	}
	opts = append(opts, options...)

	return &HTTPCaller{client: lhttp.NewClient(opts...)}
}

// DefaultCallerFactory builds an HTTPCaller from the run configuration.
func DefaultCallerFactory(cfg RunConfig, id ClientIdentity) (Caller, error) {
	return NewHTTPCaller(cfg.ClientHeader, id, cfg.Timeout), nil
}

// Call implements Caller.
func (c *HTTPCaller) Call(ctx context.Context, target string) (*Observation, error) {
	resp, err := c.client.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	return &Observation{
		Elapsed: resp.Timing.TotalTime,
		Body:    resp.Body(),
		Header:  resp.Headers,
		Timing:  resp.Timing,
	}, nil
}

// Close releases the caller's pooled connections.
func (c *HTTPCaller) Close() error {
	return c.client.Close()
}

var _ io.Closer = (*HTTPCaller)(nil)
