// Package metrics exposes Prometheus collectors for the turn executor.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and embedded skills never collide
// with the global one.
type Metrics struct {
	Registry *prometheus.Registry

	TurnsTotal          *prometheus.CounterVec
	TurnDuration        *prometheus.HistogramVec
	PersistenceFailures *prometheus.CounterVec
	LegacyStorageAccess *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_turns_total",
				Help: "Turns handled, by outcome and resolution rule",
			},
			[]string{"outcome", "rule"}, // handled | unresolved | failed
		),
		TurnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cadence_turn_duration_seconds",
				Help:    "Turn duration in seconds, by action",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		PersistenceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_persistence_failures_total",
				Help: "Absorbed attribute persistence failures",
			},
			[]string{"op"}, // read | write
		),
		LegacyStorageAccess: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_legacy_storage_access_total",
				Help: "Accesses through the deprecated raw user storage",
			},
			[]string{"op"}, // get | set
		),
	}

	m.Registry.MustRegister(
		m.TurnsTotal, m.TurnDuration, m.PersistenceFailures, m.LegacyStorageAccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns turn hooks that record into m.
func (m *Metrics) Hooks() domain.TurnHooks {
	return domain.TurnHooks{
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			m.TurnsTotal.WithLabelValues(string(e.Outcome), e.Rule).Inc()
			if e.Action != "" {
				m.TurnDuration.WithLabelValues(e.Action).Observe(e.Duration.Seconds())
			}
		},
		OnPersistenceError: func(ctx context.Context, e *domain.PersistenceEvent) {
			m.PersistenceFailures.WithLabelValues(string(e.Op)).Inc()
		},
		OnDeprecatedStorage: func(e *domain.StorageEvent) {
			m.LegacyStorageAccess.WithLabelValues(e.Op).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
