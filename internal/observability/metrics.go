// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Alias1177/bullbear/models"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	EvaluationsTotal   prometheus.Counter
	EvaluationErrors   prometheus.Counter
	EvaluationDuration prometheus.Histogram

	Confidence      prometheus.Gauge
	ATHDrawdown     prometheus.Gauge
	StablecoinRatio prometheus.Gauge
	MarketState     *prometheus.GaugeVec
}

// NewMetrics creates a Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bullbear"
	}

	return &Metrics{
		EvaluationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of completed market state evaluations.",
		}),
		EvaluationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluation_errors_total",
			Help:      "Number of evaluations that failed on unavailable data.",
		}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time of one evaluation including provider calls.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		Confidence: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "confidence",
			Help:      "Confidence of the latest classification, 0 to 1.",
		}),
		ATHDrawdown: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ath_drawdown_percent",
			Help:      "Drawdown from the all-time high, percent.",
		}),
		StablecoinRatio: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stablecoin_ratio_percent",
			Help:      "Stablecoin share of total market cap, percent.",
		}),
		MarketState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "market_state",
			Help:      "1 for the currently classified state, 0 for the others.",
		}, []string{"state"}),
	}
}

// ObserveEvaluation records one successful evaluation.
func (m *Metrics) ObserveEvaluation(res *models.EvaluationResult, elapsed time.Duration) {
	m.EvaluationsTotal.Inc()
	m.EvaluationDuration.Observe(elapsed.Seconds())
	m.Confidence.Set(res.Confidence)
	m.ATHDrawdown.Set(res.Validation.ATHDrawdown)
	m.StablecoinRatio.Set(res.Metadata["stablecoin_ratio"])

	for _, state := range []models.MarketState{
		models.StateBullOffensive, models.StateBullDefensive,
		models.StateBearOffensive, models.StateBearDefensive,
	} {
		var v float64
		if state == res.State {
			v = 1
		}
		m.MarketState.WithLabelValues(string(state)).Set(v)
	}
}

// ObserveError records one failed evaluation.
func (m *Metrics) ObserveError() {
	m.EvaluationErrors.Inc()
}
