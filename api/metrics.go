/*
metrics.go - Prometheus counters for wallet activity

PURPOSE:
  Counts earn/spend traffic on the API surface so a local dashboard can
  watch the motivational loop work (and so rejected spends are visible
  without log spelunking).

SEE ALSO:
  - handlers.go: Increment sites
  - server.go: /metrics endpoint
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the wallet activity counters.
type Metrics struct {
	EarnedMinutes   prometheus.Counter
	SpentMinutes    prometheus.Counter
	SpendRejections prometheus.Counter
	UrgentSpends    prometheus.Counter
}

// NewMetrics creates and registers the counters on the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EarnedMinutes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timewallet_earned_minutes_total",
			Help: "Minutes credited to the wallet via the API.",
		}),
		SpentMinutes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timewallet_spent_minutes_total",
			Help: "Minutes debited from the wallet via the API.",
		}),
		SpendRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timewallet_spend_rejections_total",
			Help: "Spend attempts rejected for insufficient balance.",
		}),
		UrgentSpends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timewallet_urgent_spends_total",
			Help: "Emergency spends that bypassed the balance check.",
		}),
	}
	reg.MustRegister(m.EarnedMinutes, m.SpentMinutes, m.SpendRejections, m.UrgentSpends)
	return m
}
