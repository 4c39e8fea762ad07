package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(catalogRequestsTotal, coursesSyncedTotal)
}

var (
	catalogRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Requests to the remote course catalog, by operation and outcome.",
		},
		[]string{"op", "outcome"}, // outcome: ok | error
	)

	coursesSyncedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "courses_synced_total",
			Help: "Course rows upserted by catalog sync runs.",
		},
	)
)

func IncCatalogRequest(op string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	catalogRequestsTotal.WithLabelValues(norm(op), outcome).Inc()
}

func AddCoursesSynced(n int) {
	coursesSyncedTotal.Add(float64(n))
}
