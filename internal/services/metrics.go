package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scoring task outcomes.
const (
	OutcomeScored    = "scored"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
	OutcomeCoalesced = "coalesced"
)

// AI gateway operations.
const (
	OpReply = "reply"
	OpTitle = "title"
	OpScore = "score"
)

// Metrics is safe to use as a nil pointer; every method becomes a no-op.
type Metrics struct {
	scoringTasks *prometheus.CounterVec
	aiRequests   *prometheus.CounterVec
	queueDepth   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		scoringTasks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careercoach",
			Name:      "scoring_tasks_total",
			Help:      "Document scoring tasks by outcome.",
		}, []string{"outcome"}),
		aiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careercoach",
			Name:      "ai_requests_total",
			Help:      "Calls to the generative AI gateway by operation and outcome.",
		}, []string{"operation", "outcome"}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "careercoach",
			Name:      "scoring_queue_depth",
			Help:      "Documents waiting in the scoring queue.",
		}),
	}
}

func (m *Metrics) ScoringTask(outcome string) {
	if m == nil {
		return
	}
	m.scoringTasks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AIRequest(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.aiRequests.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
