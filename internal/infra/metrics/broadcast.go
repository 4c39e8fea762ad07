package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		broadcastsCreatedTotal,
		broadcastDeliveriesTotal,
		broadcastFanoutSeconds,
		segmentSize,
		wizardTransitionsTotal,
	)
}

var (
	broadcastsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcasts_created_total",
			Help: "Broadcasts confirmed through the wizard, by schedule type.",
		},
		[]string{"type"}, // immediate | scheduled | recurring
	)

	broadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Per-recipient delivery outcomes during fan-out.",
		},
		[]string{"result"}, // sent | blocked | rate_limited | failed
	)

	broadcastFanoutSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_fanout_seconds",
			Help:    "Wall-clock duration of a full broadcast fan-out.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	segmentSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "segment_size",
			Help: "Most recent resolved size of each audience segment.",
		},
		[]string{"segment"},
	)

	wizardTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_transitions_total",
			Help: "Broadcast wizard state transitions, by resulting step.",
		},
		[]string{"step"},
	)
)

func IncBroadcastCreated(scheduleType string) {
	broadcastsCreatedTotal.WithLabelValues(norm(scheduleType)).Inc()
}

func IncDelivery(result string) {
	broadcastDeliveriesTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveFanoutDuration(seconds float64) {
	broadcastFanoutSeconds.Observe(seconds)
}

func SetSegmentSize(segment string, n int) {
	segmentSize.WithLabelValues(norm(segment)).Set(float64(n))
}

func IncWizardTransition(step string) {
	wizardTransitionsTotal.WithLabelValues(norm(step)).Inc()
}
