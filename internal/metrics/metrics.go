package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentnest_messages_sent_total",
		Help: "Messages appended to conversations.",
	})
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rentnest_ws_connections",
		Help: "Open conversation websocket connections.",
	})
	PaymentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentnest_payments_total",
		Help: "Payment attempts by outcome.",
	}, []string{"outcome"})
	PropertyViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentnest_property_views_total",
		Help: "Recorded property detail views.",
	})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
