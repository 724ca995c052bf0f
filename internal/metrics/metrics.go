// Package metrics exposes Prometheus collectors for the gateway, the sync
// thunks and the circuit breaker, registered on a private registry.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const namespace = "foodbridge"

// Collector implements foodbridge.Observer and thunks.Observer.
type Collector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	breaker  *prometheus.GaugeVec
}

// New registers every collector on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "REST round-trips by method, resource and status code (0 = no response).",
		}, []string{"method", "resource", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_seconds",
			Help:      "REST round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "thunk",
			Name:      "outcomes_total",
			Help:      "Sync thunk completions by entity kind, operation and outcome.",
		}, []string{"kind", "op", "outcome"}),
		breaker: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
	}
	c.registry.MustRegister(c.requests, c.latency, c.outcomes, c.breaker)
	return c
}

// Registry returns the registry the collectors live on.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveRequest records one gateway round-trip.
func (c *Collector) ObserveRequest(method, resource string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, resource, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}

// ObserveThunk records one thunk completion.
func (c *Collector) ObserveThunk(kind, op, outcome string) {
	c.outcomes.WithLabelValues(kind, op, outcome).Inc()
}

// SetBreakerState publishes the breaker's current state.
func (c *Collector) SetBreakerState(name string, state gobreaker.State) {
	var v float64
	switch state {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	c.breaker.WithLabelValues(name).Set(v)
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler(log zerolog.Logger) http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorLog:      errorLogger{log},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Serve listens on addr and serves /metrics until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen metrics: %w", err)
	}
	return c.serve(ctx, ln, log)
}

func (c *Collector) serve(ctx context.Context, ln net.Listener, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler(log))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Str("event", "metrics_shutdown").Msg("")
		}
	}()

	log.Info().Str("event", "metrics_listen").Str("addr", ln.Addr().String()).Msg("serving metrics")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}

// errorLogger implements promhttp.Logger.
type errorLogger struct{ log zerolog.Logger }

func (l errorLogger) Println(v ...interface{}) {
	l.log.Error().Msg(fmt.Sprint(v...))
}
