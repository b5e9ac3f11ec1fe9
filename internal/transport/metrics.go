package transport

import "github.com/prometheus/client_golang/prometheus"

var (
	DatagramsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_transport_datagrams_received_total",
			Help: "Total number of UDP datagrams received.",
		},
	)

	DatagramsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_transport_datagrams_sent_total",
			Help: "Total number of UDP datagrams sent.",
		},
	)

	DatagramsTruncatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_transport_datagrams_truncated_total",
			Help: "Total number of received datagrams that reached the size limit and were rejected as oversized.",
		},
	)

	BytesReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_transport_bytes_received_total",
			Help: "Total number of bytes received.",
		},
	)

	BytesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupcast_transport_bytes_sent_total",
			Help: "Total number of bytes sent.",
		},
	)
)

// RegisterMetrics registers all metrics collectors of this package with the given prometheus registerer.
func RegisterMetrics(registerer prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		DatagramsReceivedTotal,
		DatagramsSentTotal,
		DatagramsTruncatedTotal,
		BytesReceivedTotal,
		BytesSentTotal,
	}
	for _, metric := range metrics {
		if err := registerer.Register(metric); err != nil {
			return err
		}
	}
	return nil
}
