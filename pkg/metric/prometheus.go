package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eth-easl/memanomaly/pkg/common"
)

const metricsNamespace = "memanomaly"

// MonitorMetrics keeps Prometheus metrics of one experiment in a private registry.
type MonitorMetrics struct {
	registry *prometheus.Registry

	trials   *prometheus.CounterVec
	netPages *prometheus.HistogramVec
	polls    prometheus.Histogram
	outcomes *prometheus.CounterVec
}

func NewMonitorMetrics(runID string) *MonitorMetrics {
	labels := prometheus.Labels{"run_id": runID}

	m := &MonitorMetrics{
		registry: prometheus.NewRegistry(),
		trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "trials_total",
			Help:        "Number of completed trials.",
			ConstLabels: labels,
		}, []string{"phase", "distribution"}),
		netPages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "worker_peak_data_pages",
			Help:        "Peak data+stack pages of a worker net of the monitor baseline.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(16, 2, 16),
		}, []string{"distribution"}),
		polls: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "worker_polls",
			Help:        "Number of statm polls taken while a worker was alive.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 12),
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "classification_outcomes_total",
			Help:        "Classification outcomes with D1 as the positive class.",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(m.trials, m.netPages, m.polls, m.outcomes)
	return m
}

func (m *MonitorMetrics) ObserveTrial(record TrialRecord) {
	m.trials.WithLabelValues(record.Phase, record.Distribution).Inc()
	m.netPages.WithLabelValues(record.Distribution).Observe(float64(record.NetPages))
	m.polls.Observe(float64(record.Polls))
}

func (m *MonitorMetrics) ObserveOutcome(actual, predicted bool) {
	var outcome string
	switch {
	case actual && predicted:
		outcome = "true_positive"
	case actual && !predicted:
		outcome = "false_negative"
	case !actual && predicted:
		outcome = "false_positive"
	default:
		outcome = "true_negative"
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *MonitorMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteToTextfile dumps the registry in the node exporter textfile format.
func (m *MonitorMetrics) WriteToTextfile(path string) error {
	if err := common.EnsureParentDirectory(path); err != nil {
		return common.NewError(common.SinkError, err, "cannot create directory for %s", path)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return common.NewError(common.SinkError, err, "cannot write metrics to %s", path)
	}
	return nil
}
