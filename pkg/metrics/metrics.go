package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront's instrumentation. Register against a fresh
// registry in tests and prometheus.DefaultRegisterer in cmd.
type Metrics struct {
	Checkouts            *prometheus.CounterVec
	ReservationRejected  prometheus.Counter
	ReconciliationNeeded prometheus.Counter
	InvoiceJobs          *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPLatencyMS        *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"result"}),
		ReservationRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "stock_reservations_rejected_total",
			Help:      "Reservations refused for insufficient stock.",
		}),
		ReconciliationNeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "reconciliations_required_total",
			Help:      "Compensating actions that failed and were left for reconciliation.",
		}),
		InvoiceJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "invoice_jobs_total",
			Help:      "Invoice worker jobs by outcome.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "status"}),
		HTTPLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method"}),
	}

	reg.MustRegister(
		m.Checkouts,
		m.ReservationRejected,
		m.ReconciliationNeeded,
		m.InvoiceJobs,
		m.HTTPRequests,
		m.HTTPLatencyMS,
	)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
