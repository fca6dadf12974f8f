// Package metrics exposes prometheus collectors for the ledger.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expense_manager"

// Metrics groups the application's collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	mutations       *prometheus.CounterVec
	persistFailures prometheus.Counter
	notifications   *prometheus.CounterVec
	checkErrors     prometheus.Counter
	balance         prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Account mutations by operation.",
		}, []string{"operation"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Snapshot writes that failed.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Reminder notifications emitted by kind.",
		}, []string{"kind"}),
		checkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_check_errors_total",
			Help:      "Reminder poll iterations that failed.",
		}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balance",
			Help:      "Balance observed by the last reminder poll.",
		}),
	}
	m.registry.MustRegister(m.mutations, m.persistFailures, m.notifications, m.checkErrors, m.balance)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the collectors in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Mutation counts one account mutation.
func (m *Metrics) Mutation(operation string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation).Inc()
}

// PersistFailure counts one failed snapshot write.
func (m *Metrics) PersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// Notification counts one emitted notification.
func (m *Metrics) Notification(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

// InitNotificationKinds exposes a zero count for each kind before any
// notification of that kind is emitted.
func (m *Metrics) InitNotificationKinds(kinds ...string) {
	if m == nil {
		return
	}
	for _, kind := range kinds {
		m.notifications.WithLabelValues(kind)
	}
}

// CheckError counts one failed reminder iteration.
func (m *Metrics) CheckError() {
	if m == nil {
		return
	}
	m.checkErrors.Inc()
}

// ObserveBalance records the latest polled balance.
func (m *Metrics) ObserveBalance(balance float64) {
	if m == nil {
		return
	}
	m.balance.Set(balance)
}
