package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/export"
)

// Metrics holds the Prometheus collectors of the engine.
type Metrics struct {
	registry *prometheus.Registry

	NodeVisits          *prometheus.CounterVec
	Answers             *prometheus.CounterVec
	RejectedTransitions *prometheus.CounterVec
	CompletionChanges   *prometheus.CounterVec
	TaskDuration        *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_node_visits_total",
				Help: "Total number of node entries",
			},
			[]string{"section", "kind"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_answers_total",
				Help: "Total number of submitted answers",
			},
			[]string{"section", "overwrite"},
		),
		RejectedTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_transitions_rejected_total",
				Help: "Total number of events dropped by a failed precondition",
			},
			[]string{"section", "event"},
		),
		CompletionChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_completion_changes_total",
				Help: "Total number of section completion flips",
			},
			[]string{"section", "completed"},
		),
		TaskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mentor_task_duration_seconds",
				Help:    "Duration of export and import tasks",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "outcome"},
		),
	}
	m.registry.MustRegister(m.NodeVisits, m.Answers, m.RejectedTransitions, m.CompletionChanges, m.TaskDuration)
	return m
}

// Registry exposes the registry, e.g. to add process collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.SectionID, string(e.NodeKind)).Inc()
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			m.Answers.WithLabelValues(e.SectionID, strconv.FormatBool(e.Overwrite)).Inc()
		},
		OnCompletion: func(_ context.Context, e *domain.CompletionEvent) {
			m.CompletionChanges.WithLabelValues(e.SectionID, strconv.FormatBool(e.Completed)).Inc()
		},
		OnTransitionRejected: func(_ context.Context, e *domain.RejectedEvent) {
			m.RejectedTransitions.WithLabelValues(e.SectionID, string(e.Event)).Inc()
		},
	}
}

// ObserveTask records a finished export or import. It satisfies export.Observer.
func (m *Metrics) ObserveTask(kind export.Kind, elapsed time.Duration, err error) {
	outcome := "success"
	switch {
	case export.IsCancelled(err):
		outcome = "cancelled"
	case err != nil:
		outcome = "error"
	}
	m.TaskDuration.WithLabelValues(string(kind), outcome).Observe(elapsed.Seconds())
}
