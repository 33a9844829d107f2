package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// TimingInfo stores timing information for one HTTP call
type TimingInfo struct {
	// StartTime is when the request was dispatched
	StartTime time.Time

	DNSLookupTime    time.Duration
	TCPConnectTime   time.Duration
	TLSHandshakeTime time.Duration

	// TimeToFirstByte is measured from the end of the last connection phase
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the response body
	ContentTransferTime time.Duration

	// TotalTime spans dispatch to the last byte of the body
	TotalTime time.Duration

	// ReusedConn reports whether a pooled connection served the call
	ReusedConn bool
}

// Response represents a fully read HTTP response
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Timing     TimingInfo

	body []byte
}

// Body returns the buffered response body
func (r *Response) Body() []byte {
	return r.body
}

// BodyAsJSON unmarshals the response body into v
func (r *Response) BodyAsJSON(v interface{}) error {
	return json.Unmarshal(r.body, v)
}

// GetHeader returns the value of the specified header
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ElapsedMillis returns TotalTime in whole milliseconds, rounded down.
func (r *Response) ElapsedMillis() int64 {
	return Millis(r.Timing.TotalTime)
}

// Millis truncates d to whole milliseconds and clamps negatives to zero.
func Millis(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
