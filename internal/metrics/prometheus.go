// SPDX-License-Identifier: EPL-2.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of the conversion service.
type Metrics struct {
	// Conversion metrics
	Conversions         *prometheus.CounterVec
	ConversionDuration  *prometheus.HistogramVec
	ConversionsInFlight prometheus.Gauge
	UploadSize          prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audconv_conversions_total",
			Help: "Total number of conversions by target and outcome",
		}, []string{"target", "outcome"}),
		ConversionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "audconv_conversion_duration_seconds",
			Help:    "Time spent converting one input",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		}, []string{"target"}),
		ConversionsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "audconv_conversions_in_flight",
			Help: "Current number of running conversions",
		}),
		UploadSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "audconv_upload_size_bytes",
			Help:    "Size of uploaded audio files in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audconv_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "audconv_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audconv_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// ObserveConversion records a finished conversion.
func (m *Metrics) ObserveConversion(target, outcome string, elapsed time.Duration) {
	m.Conversions.WithLabelValues(target, outcome).Inc()
	m.ConversionDuration.WithLabelValues(target).Observe(elapsed.Seconds())
}

// ConversionStarted marks a conversion as running and returns the func
// that marks it done.
func (m *Metrics) ConversionStarted() func() {
	m.ConversionsInFlight.Inc()

	return m.ConversionsInFlight.Dec
}

func (m *Metrics) RecordUpload(sizeBytes int) {
	m.UploadSize.Observe(float64(sizeBytes))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
