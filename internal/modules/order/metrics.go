// README: Prometheus counters for the ordering flow.
package order

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var surpriseOrders = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "travelbook",
	Name:      "surprise_orders_total",
	Help:      "Surprise order attempts by outcome (created or failure kind).",
}, []string{"result"})
