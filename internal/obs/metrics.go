package obs

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	TransitionsTotal   *prometheus.CounterVec // op=create|claim|confirm|delete, result=success|invalid|forbidden|conflict|not_found|error
	NotificationsTotal *prometheus.CounterVec // event, result=delivered|dropped|failed
	EventsDroppedTotal prometheus.Counter     // dispatcher queue full
	WSConnections      prometheus.Gauge
}

// NewMetrics registers the collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodbridge_listing_transitions_total",
				Help: "Listing state machine operations by result",
			},
			[]string{"op", "result"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodbridge_notifications_total",
				Help: "Real-time notification attempts by event and result",
			},
			[]string{"event", "result"},
		),
		EventsDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodbridge_events_dropped_total",
			Help: "Events discarded because the dispatcher queue was full",
		}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foodbridge_ws_connections",
			Help: "Number of open websocket connections",
		}),
	}

	reg.MustRegister(
		m.TransitionsTotal,
		m.NotificationsTotal,
		m.EventsDroppedTotal,
		m.WSConnections,
	)

	return m
}
