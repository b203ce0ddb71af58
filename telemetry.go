package datasets

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/prethora/xprim-datasets")

// Outcome labels for request metrics.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeStatus   = "status"
	outcomeTimeout  = "timeout"
	outcomeNetwork  = "network"
)

// metrics records per-request counters and latency. A nil *metrics is valid
// and records nothing.
type metrics struct {
	// requests counts dataset host requests by layout and outcome.
	requests *prometheus.CounterVec

	// duration tracks request latency by layout.
	duration *prometheus.HistogramVec
}

// newMetrics registers the resolver's collectors with reg. Collectors already
// registered by another resolver on the same registry are reused.
// Returns nil if reg is nil.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datasets_host_requests_total",
		Help: "Total dataset host requests by layout and outcome",
	}, []string{"layout", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "datasets_host_request_duration_seconds",
		Help:    "Dataset host request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 11), // 10ms to ~10s
	}, []string{"layout"})

	m := &metrics{}
	var err error
	if m.requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, returning the collector already registered under
// the same descriptors if there is one of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("registering metrics: %w", err)
	}
	return c, nil
}

func (m *metrics) observe(layout Layout, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(layout.String(), outcome).Inc()
	m.duration.WithLabelValues(layout.String()).Observe(elapsed.Seconds())
}
