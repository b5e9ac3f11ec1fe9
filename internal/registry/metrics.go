package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	ClientsAddedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_registry_clients_added_total",
			Help: "Total number of clients added to the registry. " +
				"You can calculate the currently active clients by subtracting groupcast_registry_clients_removed_total from this.",
		},
	)

	ClientsRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_registry_clients_removed_total",
			Help: "Total number of clients removed from the registry, by sweeper eviction or explicit disconnect.",
		},
	)

	GroupsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_registry_groups_created_total",
			Help: "Total number of groups created via !CREATE.",
		},
	)

	GroupsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_registry_groups_deleted_total",
			Help: "Total number of groups deleted, by owner teardown or empty-TTL expiry.",
		},
	)

	OwnerLimitRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_registry_owner_limit_rejections_total",
			Help: "Total number of !CREATE calls rejected because the owner was already at its group cap.",
		},
	)

	LiveClientsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupcast_registry_live_clients",
			Help: "Current number of clients known to the registry.",
		},
	)

	LiveGroupsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupcast_registry_live_groups",
			Help: "Current number of groups known to the registry.",
		},
	)
)

// RegisterMetrics registers all metrics collectors of this package with the given prometheus registerer.
func RegisterMetrics(registerer prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		ClientsAddedTotal,
		ClientsRemovedTotal,
		GroupsCreatedTotal,
		GroupsDeletedTotal,
		OwnerLimitRejectionsTotal,
		LiveClientsGauge,
		LiveGroupsGauge,
	}
	for _, metric := range metrics {
		if err := registerer.Register(metric); err != nil {
			return err
		}
	}
	return nil
}
