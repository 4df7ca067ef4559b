package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes recorded by Metrics
const (
	outcomeSuccess    = "success"
	outcomeInvalid    = "invalid_credentials"
	outcomeRejected   = "rejected"
	outcomeValidation = "validation_error"
	outcomeError      = "error"
)

// Metrics are the mock API's Prometheus collectors
type Metrics struct {
	LoginAttempts *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	Logouts       prometheus.Counter
}

// NewMetrics creates and registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusmock",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusmock",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		Logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campusmock",
			Name:      "logouts_total",
			Help:      "Tokens revoked through /api/logout.",
		}),
	}
	reg.MustRegister(m.LoginAttempts, m.Registrations, m.Logouts)
	return m
}
