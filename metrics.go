package bodyparse

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels recorded by Metrics.
const (
	OutcomeOK                  = "ok"
	OutcomeUnsupportedType     = "unsupported_media_type"
	OutcomeUnsupportedEncoding = "unsupported_encoding"
	OutcomeTooLarge            = "too_large"
	OutcomeMalformed           = "malformed"
	OutcomeTransport           = "transport"
	OutcomeError               = "error"
)

// Metrics counts parse outcomes on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal *prometheus.CounterVec
	bodyBytes     *prometheus.HistogramVec
}

// NewMetrics creates and registers the bodyparse metric families.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bodyparse_requests_total",
			Help: "Total number of request bodies parsed, by strategy kind and outcome.",
		}, []string{"kind", "outcome"}),

		bodyBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bodyparse_body_bytes",
			Help:    "Size of successfully parsed request bodies after decompression.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}, []string{"kind"}),
	}

	reg.MustRegister(m.requestsTotal, m.bodyBytes)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe records one parse. kind is empty when dispatch failed.
func (m *Metrics) Observe(kind Kind, size int, err error) {
	if kind == "" {
		kind = "none"
	}

	outcome := outcomeOf(err)
	m.requestsTotal.WithLabelValues(string(kind), outcome).Inc()

	if err == nil {
		m.bodyBytes.WithLabelValues(string(kind)).Observe(float64(size))
	}
}

func outcomeOf(err error) string {
	var (
		mediaErr     *UnsupportedMediaTypeError
		encErr       *UnsupportedEncodingError
		charsetErr   *UnsupportedCharsetError
		tooLargeErr  *EntityTooLargeError
		malformedErr *MalformedBodyError
		lengthErr    *LengthMismatchError
		transportErr *TransportError
	)

	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &mediaErr):
		return OutcomeUnsupportedType
	case errors.As(err, &encErr), errors.As(err, &charsetErr):
		return OutcomeUnsupportedEncoding
	case errors.As(err, &tooLargeErr):
		return OutcomeTooLarge
	case errors.As(err, &malformedErr), errors.As(err, &lengthErr):
		return OutcomeMalformed
	case errors.As(err, &transportErr):
		return OutcomeTransport
	default:
		return OutcomeError
	}
}
