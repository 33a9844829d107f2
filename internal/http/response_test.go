package http

import (
	"testing"
	"time"
)

func TestMillisRoundsDown(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int64
	}{
		{in: 0, want: 0},
		{in: 999 * time.Microsecond, want: 0},
		{in: time.Millisecond, want: 1},
		{in: 10*time.Millisecond + 999*time.Microsecond, want: 10},
		{in: -5 * time.Millisecond, want: 0},
	}

	for _, tt := range tests {
		if got := Millis(tt.in); got != tt.want {
			t.Errorf("Millis(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestResponse_ElapsedMillis(t *testing.T) {
	resp := &Response{
		StatusCode: 200,
		Timing: TimingInfo{
			TimeToFirstByte: 40 * time.Millisecond,
			TotalTime:       150*time.Millisecond + 700*time.Microsecond,
		},
	}

	if resp.ElapsedMillis() != 150 {
		t.Errorf("Expected 150ms, got %dms", resp.ElapsedMillis())
	}
	if !resp.IsSuccess() {
		t.Error("Expected 200 to be success")
	}
}

func TestResponse_BodyAsJSON(t *testing.T) {
	resp := &Response{body: []byte(`{"traceId":"abc"}`)}

	var v struct {
		TraceID string `json:"traceId"`
	}
	if err := resp.BodyAsJSON(&v); err != nil {
		t.Fatalf("BodyAsJSON() error = %v", err)
	}
	if v.TraceID != "abc" {
		t.Errorf("Expected traceId abc, got %q", v.TraceID)
	}
}
