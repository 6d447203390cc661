// Package metrics provides Prometheus metrics for persistence and reminders.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the task planner's collectors. A nil *Metrics records
// nothing.
//
// Metrics:
//   - tp_reminders_total{outcome} - reminder operations by outcome
//   - tp_store_persist_failures_total - failed blob writes
//   - tp_store_load_fallbacks_total{reason} - loads that fell back to an empty list
//   - tp_tasks - number of tasks after the last load or save
type Metrics struct {
	RemindersTotal       *prometheus.CounterVec
	PersistFailuresTotal prometheus.Counter
	LoadFallbacksTotal   *prometheus.CounterVec
	Tasks                prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RemindersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tp",
				Name:      "reminders_total",
				Help:      "Total number of reminder operations by outcome",
			},
			[]string{"outcome"},
		),
		PersistFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tp",
				Subsystem: "store",
				Name:      "persist_failures_total",
				Help:      "Total number of failed task list writes",
			},
		),
		LoadFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tp",
				Subsystem: "store",
				Name:      "load_fallbacks_total",
				Help:      "Total number of loads that returned an empty list",
			},
			[]string{"reason"}, // "missing", "read_error", "corrupt"
		),
		Tasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tp",
				Name:      "tasks",
				Help:      "Number of tasks in the list",
			},
		),
	}
}

// RecordReminder counts a reminder outcome.
func (m *Metrics) RecordReminder(outcome string) {
	if m == nil {
		return
	}
	m.RemindersTotal.WithLabelValues(outcome).Inc()
}

// RecordPersistFailure counts a failed write.
func (m *Metrics) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.PersistFailuresTotal.Inc()
}

// RecordLoadFallback counts a load that recovered with an empty list.
func (m *Metrics) RecordLoadFallback(reason string) {
	if m == nil {
		return
	}
	m.LoadFallbacksTotal.WithLabelValues(reason).Inc()
}

// SetTasks records the list size.
func (m *Metrics) SetTasks(n int) {
	if m == nil {
		return
	}
	m.Tasks.Set(float64(n))
}
