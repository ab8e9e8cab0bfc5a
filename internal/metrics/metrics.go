// Package metrics collects and exposes Prometheus metrics for the auth flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handoff outcome labels.
const (
	HandoffSuccess      = "success"
	HandoffNoToken      = "no_token"
	HandoffInvalidToken = "invalid_token"
)

// Session read result labels.
const (
	SessionReadOK              = "ok"
	SessionReadUnauthenticated = "unauthenticated"
	SessionReadError           = "error"
)

// Collector records auth-flow outcomes.
type Collector struct {
	handoffs     *prometheus.CounterVec
	sessionReads *prometheus.CounterVec
	logouts      prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		handoffs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skydeck_handoff_total",
			Help: "Login handoff attempts by terminal outcome.",
		}, []string{"outcome"}),
		sessionReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skydeck_session_reads_total",
			Help: "Session credential validations by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skydeck_logout_total",
			Help: "Completed logout requests.",
		}),
	}

	reg.MustRegister(c.handoffs, c.sessionReads, c.logouts)

	return c
}

// RecordHandoff records a handoff terminal outcome.
func (c *Collector) RecordHandoff(outcome string) {
	c.handoffs.WithLabelValues(outcome).Inc()
}

// RecordSessionRead records the result of a session credential validation.
func (c *Collector) RecordSessionRead(result string) {
	c.sessionReads.WithLabelValues(result).Inc()
}

// RecordLogout records a completed logout.
func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

// Handler returns the HTTP handler serving the registry in exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
