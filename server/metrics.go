package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one server instance. Each
// instance has its own registry so tests can build several servers.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	datasetLoads    *prometheus.CounterVec
	loadDuration    prometheus.Histogram
	selectionSize   prometheus.Histogram
	datasetListings prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		datasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_dataset_loads_total",
			Help: "Dataset loads from disk by result.",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_dataset_load_duration_seconds",
			Help:    "Time spent reading and cleaning the dataset.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		selectionSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_filtered_listings",
			Help:    "Number of listings left after filtering.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		datasetListings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_listings",
			Help: "Listings in the most recently loaded dataset.",
		}),
	}

	m.registry.MustRegister(
		m.requests, m.requestDuration,
		m.datasetLoads, m.loadDuration,
		m.selectionSize, m.datasetListings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveLoad is installed as the dataset cache's load hook.
func (m *Metrics) ObserveLoad(_ string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.datasetLoads.WithLabelValues(result).Inc()
	m.loadDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeSelection(n int) {
	m.selectionSize.Observe(float64(n))
}

func (m *Metrics) setDatasetSize(n int) {
	m.datasetListings.Set(float64(n))
}
