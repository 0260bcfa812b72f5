package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "rail_distance_"

var (
	registerOnce sync.Once

	resolutionsTotal   *prometheus.CounterVec
	resolutionLatency  *prometheus.HistogramVec
	geocoderRequests   *prometheus.CounterVec
	coordinateLookups  *prometheus.CounterVec
	tariffReloadsTotal *prometheus.CounterVec
	registryStations   prometheus.Gauge
	graphNodes         prometheus.Gauge
)

// Init registers the service metrics with the default registry. Recorders
// are no-ops until Init has run, so packages can be used without it in tests.
func Init() {
	registerOnce.Do(func() {
		resolutionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "resolutions_total",
				Help: "Distance resolutions by method and outcome",
			},
			[]string{"method", "outcome"},
		)
		resolutionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "resolution_latency_seconds",
				Help:    "Distance resolution latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)
		geocoderRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "geocoder_requests_total",
				Help: "External geocoder requests by result",
			},
			[]string{"result"},
		)
		coordinateLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "coordinate_cache_lookups_total",
				Help: "Coordinate cache lookups by result",
			},
			[]string{"result"},
		)
		tariffReloadsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "tariff_reloads_total",
				Help: "Tariff registry loads by result",
			},
			[]string{"result"},
		)
		registryStations = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "registry_stations",
			Help: "Stations in the loaded tariff registry",
		})
		graphNodes = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "graph_nodes",
			Help: "Stations in the adjacency graph",
		})

		prometheus.MustRegister(
			resolutionsTotal,
			resolutionLatency,
			geocoderRequests,
			coordinateLookups,
			tariffReloadsTotal,
			registryStations,
			graphNodes,
		)
	})
}

// ObserveResolution records one finished distance resolution.
func ObserveResolution(method, outcome string, duration time.Duration) {
	if method == "" {
		method = "none"
	}
	if resolutionsTotal != nil {
		resolutionsTotal.WithLabelValues(method, outcome).Inc()
	}
	if resolutionLatency != nil {
		resolutionLatency.WithLabelValues(method).Observe(duration.Seconds())
	}
}

// IncGeocoderRequest counts a geocoder call: found, not_found or error.
func IncGeocoderRequest(result string) {
	if geocoderRequests != nil {
		geocoderRequests.WithLabelValues(result).Inc()
	}
}

// IncCoordinateLookup counts a coordinate cache hit or miss.
func IncCoordinateLookup(result string) {
	if coordinateLookups != nil {
		coordinateLookups.WithLabelValues(result).Inc()
	}
}

// ObserveTariffReload records a registry load and the resulting sizes.
func ObserveTariffReload(result string, stations int) {
	if tariffReloadsTotal != nil {
		tariffReloadsTotal.WithLabelValues(result).Inc()
	}
	if registryStations != nil && result == "success" {
		registryStations.Set(float64(stations))
	}
}

// SetGraphNodes publishes the size of the current adjacency graph.
func SetGraphNodes(n int) {
	if graphNodes != nil {
		graphNodes.Set(float64(n))
	}
}
