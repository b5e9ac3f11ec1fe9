package sweeper

import "github.com/prometheus/client_golang/prometheus"

var (
	RunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_sweeper_runs_total",
			Help: "Total number of sweep passes completed.",
		},
	)

	RunDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "groupcast_sweeper_run_duration_seconds",
			Help: "Duration of a single sweep pass.",
		},
	)

	ClientsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_sweeper_clients_evicted_total",
			Help: "Total number of clients evicted by the sweeper for inactivity.",
		},
	)

	GroupsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_sweeper_groups_expired_total",
			Help: "Total number of groups expired by the sweeper.",
		},
	)
)

// RegisterMetrics registers all metrics collectors of this package with the given prometheus registerer.
func RegisterMetrics(registerer prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		RunsTotal,
		RunDurationSeconds,
		ClientsEvictedTotal,
		GroupsExpiredTotal,
	}
	for _, metric := range metrics {
		if err := registerer.Register(metric); err != nil {
			return err
		}
	}
	return nil
}
