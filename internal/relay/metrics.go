package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	BroadcastsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_relay_broadcasts_total",
			Help: "Total number of payload datagrams relayed to a group.",
		},
	)

	BroadcastRecipientsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_relay_broadcast_recipients_total",
			Help: "Total number of individual payload deliveries across all broadcasts.",
		},
	)
)

// RegisterMetrics registers all metrics collectors of this package with the given prometheus registerer.
func RegisterMetrics(registerer prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		BroadcastsTotal,
		BroadcastRecipientsTotal,
	}
	for _, metric := range metrics {
		if err := registerer.Register(metric); err != nil {
			return err
		}
	}
	return nil
}
