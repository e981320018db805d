// Package metrics exposes Prometheus instrumentation for registration flows.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registration, rule resolution and the outbox.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Registration outcomes: "created", "no_tickets", "invalid_price", "invalid", "error"
	Registrations *prometheus.CounterVec

	RegistrationLatency prometheus.Histogram

	// Resolution results: "resolved", "no_birth_date", "unassigned", "inactive", "unsupported_mode", "invalid_rule", "no_match"
	AgeCategoryResolutions *prometheus.CounterVec

	RuleCacheLookups *prometheus.CounterVec

	PostCommitFailures *prometheus.CounterVec

	OutboxPublished *prometheus.CounterVec
}

// New registers every metric with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_attendees_total",
			Help: "Attendee registration attempts by outcome",
		}, []string{"outcome"}),

		RegistrationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "registration_attendee_duration_seconds",
			Help:    "Duration of the attendee registration transaction",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		AgeCategoryResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_age_category_resolutions_total",
			Help: "Age category resolutions by result",
		}, []string{"result"}),

		RuleCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_rule_cache_lookups_total",
			Help: "Assigned rule cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		PostCommitFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_post_commit_failures_total",
			Help: "Post-commit hooks that failed after a registration committed",
		}, []string{"hook"}),

		OutboxPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_outbox_published_total",
			Help: "Outbox entries handed to the broker by result",
		}, []string{"result"}),
	}
}

// IncrementRegistration records a registration outcome.
func (m *Metrics) IncrementRegistration(outcome string) {
	if m != nil {
		m.Registrations.WithLabelValues(outcome).Inc()
	}
}

// ObserveRegistrationLatency records the duration of one registration.
func (m *Metrics) ObserveRegistrationLatency(d time.Duration) {
	if m != nil {
		m.RegistrationLatency.Observe(d.Seconds())
	}
}

// IncrementResolution records an age category resolution result.
func (m *Metrics) IncrementResolution(result string) {
	if m != nil {
		m.AgeCategoryResolutions.WithLabelValues(result).Inc()
	}
}

// IncrementCacheLookup records a rule cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.RuleCacheLookups.WithLabelValues(result).Inc()
	}
}

// IncrementPostCommitFailure records a failed post-commit hook.
func (m *Metrics) IncrementPostCommitFailure(hook string) {
	if m != nil {
		m.PostCommitFailures.WithLabelValues(hook).Inc()
	}
}

// AddOutboxPublished records relayed outbox entries.
func (m *Metrics) AddOutboxPublished(result string, n int) {
	if m != nil {
		m.OutboxPublished.WithLabelValues(result).Add(float64(n))
	}
}
