package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

func TestObserveRequest(t *testing.T) {
	c := New()
	c.ObserveRequest("GET", "centers", 200, 20*time.Millisecond)
	c.ObserveRequest("GET", "centers", 200, 30*time.Millisecond)
	c.ObserveRequest("DELETE", "listings", 0, time.Second)

	if got := testutil.ToFloat64(c.requests.WithLabelValues("GET", "centers", "200")); got != 2 {
		t.Fatalf("requests{GET,centers,200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues("DELETE", "listings", "0")); got != 1 {
		t.Fatalf("requests{DELETE,listings,0} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.latency); got != 2 {
		t.Fatalf("latency series = %d, want 2", got)
	}
}

func TestObserveThunk(t *testing.T) {
	c := New()
	c.ObserveThunk("listings", "create", "invalid")
	c.ObserveThunk("listings", "create", "invalid")
	c.ObserveThunk("listings", "create", "ok")

	if got := testutil.ToFloat64(c.outcomes.WithLabelValues("listings", "create", "invalid")); got != 2 {
		t.Fatalf("outcomes{invalid} = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(c.outcomes); got != 2 {
		t.Fatalf("outcome series = %d, want 2", got)
	}
}

func TestSetBreakerState(t *testing.T) {
	c := New()
	tests := []struct {
		state gobreaker.State
		want  float64
	}{
		{gobreaker.StateOpen, 2},
		{gobreaker.StateHalfOpen, 1},
		{gobreaker.StateClosed, 0},
	}
	for _, tt := range tests {
		c.SetBreakerState("api", tt.state)
		if got := testutil.ToFloat64(c.breaker.WithLabelValues("api")); got != tt.want {
			t.Fatalf("breaker_state after %v = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestHandler_ExposesNames(t *testing.T) {
	c := New()
	c.ObserveRequest("GET", "centers", 200, time.Millisecond)
	c.ObserveThunk("centers", "list", "ok")
	c.SetBreakerState("api", gobreaker.StateClosed)

	rec := httptest.NewRecorder()
	c.Handler(zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{
		"foodbridge_gateway_requests_total",
		"foodbridge_gateway_request_seconds",
		"foodbridge_thunk_outcomes_total",
		"foodbridge_breaker_state",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics body missing %s:\n%s", name, body)
		}
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	c := New()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.serve(ctx, ln, zerolog.Nop()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop after cancel")
	}
}
