package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks account registrations and administrative access decisions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registrations *prometheus.CounterVec
	AdminDecision *prometheus.CounterVec
}

// New registers the account collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eanft_account_registrations_total",
			Help: "Account registrations by outcome (created, updated)",
		}, []string{"outcome"}),
		AdminDecision: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eanft_admin_authorization_total",
			Help: "Administrative access decisions (allowed, denied)",
		}, []string{"decision"}),
	}
}

func (m *Metrics) IncrementRegistration(created bool) {
	if m == nil {
		return
	}
	outcome := "updated"
	if created {
		outcome = "created"
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementAdminDecision(allowed bool) {
	if m == nil {
		return
	}
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	m.AdminDecision.WithLabelValues(decision).Inc()
}
