package blocksync

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "blocksync"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Estimated number of blocks the session has to download.
	SessionBlocks metrics.Gauge
	// Number of blocks still missing, as last reported by the peer.
	BlocksRemaining metrics.Gauge
	// Estimated percentage of the chain downloaded.
	DownloadPercent metrics.Gauge
	// Number of completed download sessions.
	SessionsCompleted metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		SessionBlocks: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "session_blocks",
			Help:      "Estimated number of blocks the session has to download.",
		}, labels).With(labelsAndValues...),
		BlocksRemaining: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "blocks_remaining",
			Help:      "Number of blocks still missing, as last reported by the peer.",
		}, labels).With(labelsAndValues...),
		DownloadPercent: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "download_percent",
			Help:      "Estimated percentage of the chain downloaded.",
		}, labels).With(labelsAndValues...),
		SessionsCompleted: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "sessions_completed_total",
			Help:      "Number of completed download sessions.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		SessionBlocks:     discard.NewGauge(),
		BlocksRemaining:   discard.NewGauge(),
		DownloadPercent:   discard.NewGauge(),
		SessionsCompleted: discard.NewCounter(),
	}
}

// MetricsListener records session notifications in Metrics.
type MetricsListener struct {
	metrics *Metrics
}

var _ Listener = (*MetricsListener)(nil)

func NewMetricsListener(m *Metrics) *MetricsListener {
	return &MetricsListener{metrics: m}
}

func (ml *MetricsListener) OnDownloadStart(blocks int64) {
	ml.metrics.SessionBlocks.Set(float64(blocks))
}

func (ml *MetricsListener) OnProgress(percent float64) {
	ml.metrics.DownloadPercent.Set(percent)
}

func (ml *MetricsListener) OnDownloadComplete() {
	ml.metrics.DownloadPercent.Set(100)
	ml.metrics.SessionsCompleted.Add(1)
}
