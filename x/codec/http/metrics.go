package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/compose-network/multicodec/metrics"
)

// Operation label values.
const (
	opAddPrefix    = "add_prefix"
	opInspect      = "inspect"
	opRemovePrefix = "remove_prefix"
	opEncode       = "encode"
	opDecode       = "decode"
)

// Outcome label values.
const (
	outcomeOK           = "ok"
	outcomeUnknownCodec = "unknown_codec"
	outcomeMalformed    = "malformed"
	outcomeError        = "error"
)

// Metrics holds framing API metrics
type Metrics struct {
	FramesTotal        *prometheus.CounterVec
	PayloadSizeBytes   *prometheus.HistogramVec
	ProcessingDuration *prometheus.HistogramVec
}

// NewMetrics creates framing metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	cr := metrics.NewComponentRegistryWith(reg, "multicodec", "frames")

	return &Metrics{
		FramesTotal: cr.NewCounterVec(prometheus.CounterOpts{
			Name: "total",
			Help: "Framing operations by operation, codec and outcome",
		}, []string{"operation", "codec", "outcome"}),

		PayloadSizeBytes: cr.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payload_size_bytes",
			Help:    "Size of payloads handled, excluding the codec prefix",
			Buckets: metrics.SizeBuckets,
		}, []string{"operation"}),

		ProcessingDuration: cr.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "processing_duration_seconds",
			Help:    "Time spent framing or unframing a request body",
			Buckets: metrics.DurationBuckets,
		}, []string{"operation"}),
	}
}

// RecordFrame records one framing operation. A nil receiver is a no-op.
func (m *Metrics) RecordFrame(operation, codecName, outcome string, payloadLen int, took time.Duration) {
	if m == nil {
		return
	}
	m.FramesTotal.WithLabelValues(operation, codecName, outcome).Inc()
	m.ProcessingDuration.WithLabelValues(operation).Observe(took.Seconds())
	if outcome == outcomeOK {
		m.PayloadSizeBytes.WithLabelValues(operation).Observe(float64(payloadLen))
	}
}
