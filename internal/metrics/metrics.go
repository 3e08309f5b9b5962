// Package metrics provides Prometheus metrics for the kvctl API client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes used as the "outcome" label.
const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
	OutcomeEnvelopeError  = "envelope_error"
	OutcomeClientError    = "client_error"
)

// Client holds the collectors recorded by the API client.
// A nil *Client is valid and records nothing.
type Client struct {
	// RequestsTotal counts API calls by operation and outcome.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures API call duration in seconds by operation.
	RequestDuration *prometheus.HistogramVec
}

// NewClient creates the client collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to keep them isolated.
func NewClient(reg prometheus.Registerer) (*Client, error) {
	c := &Client{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kvctl_client_requests_total",
				Help: "Total number of controller API calls",
			},
			[]string{"operation", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "kvctl_client_request_duration_seconds",
				Help: "Controller API call duration in seconds",
				// 1ms to 10s
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
	}

	for _, collector := range []prometheus.Collector{c.RequestsTotal, c.RequestDuration} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MustNewClient is like NewClient but panics on registration errors.
func MustNewClient(reg prometheus.Registerer) *Client {
	c, err := NewClient(reg)
	if err != nil {
		panic("failed to register client metrics: " + err.Error())
	}
	return c
}

// Observe records one finished call.
func (c *Client) Observe(operation, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(operation, outcome).Inc()
	c.RequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
