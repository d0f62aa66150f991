// Package metrics instruments outgoing service requests with Prometheus
// collectors.
package metrics

import (
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const (
	Namespace = "sessionless"
	subsystem = "client"
)

// InstrumentTransport wraps next so that every round trip is counted by
// method and status code and its latency observed. The collectors are
// registered with reg.
func InstrumentTransport(next http.RoundTripper, reg prometheus.Registerer) (http.RoundTripper, error) {
	if next == nil {
		next = http.DefaultTransport
	}

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "requests_total",
			Namespace: Namespace,
			Subsystem: subsystem,
			Help:      "Requests sent to services, by method and status code.",
		},
		[]string{"method", "code"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_duration_seconds",
			Namespace: Namespace,
			Subsystem: subsystem,
			Help:      "Latency of requests sent to services.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	for _, c := range []prometheus.Collector{requests, duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return promhttp.InstrumentRoundTripperCounter(requests,
		promhttp.InstrumentRoundTripperDuration(duration, next),
	), nil
}

// Dump writes every metric family gathered from g in the text exposition
// format.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric family %q: %w", mf.GetName(), err)
		}
	}
	return nil
}
