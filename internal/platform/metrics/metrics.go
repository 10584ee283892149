// Package metrics registra los colectores Prometheus del servicio:
//   - http_request_total / http_request_duration_seconds / http_request_in_flight
//   - treatment_plans_assembled_total{result}
//   - reminder_deliveries_total{channel,result}
//
// Se registran en el registry por defecto al inicializar el paquete.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	PlansAssembled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treatment_plans_assembled_total",
			Help: "Treatment plan assemblies by result",
		},
		[]string{"result"},
	)

	ReminderDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_deliveries_total",
			Help: "Follow-up reminder deliveries by channel and result",
		},
		[]string{"channel", "result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(PlansAssembled)
	prometheus.MustRegister(ReminderDeliveries)
}
