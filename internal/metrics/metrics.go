package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RoutingRequests   *prometheus.CounterVec
	RequestSeconds    *prometheus.HistogramVec
	RankingRuns       *prometheus.CounterVec
	Annotations       *prometheus.CounterVec
	RefinesInFlight   prometheus.Gauge
	CatalogPlaces     prometheus.Gauge
	SessionsActive    prometheus.Gauge
	FilterEvaluations prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RoutingRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "wayfarer_routing_requests_total",
			Help: "Total number of road distance requests sent to the routing provider.",
		}, []string{"provider", "status"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wayfarer_routing_request_duration_seconds",
			Help:    "Duration of requests to the routing provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		RankingRuns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "wayfarer_ranking_runs_total",
			Help: "Total number of nearest-places ranking runs.",
		}, []string{"outcome"}),
		Annotations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "wayfarer_distance_annotations_total",
			Help: "Distance annotations produced, by precision.",
		}, []string{"precision"}),
		RefinesInFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "wayfarer_refinements_in_flight",
			Help: "Current number of road distance refinements waiting or running.",
		}),
		CatalogPlaces: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "wayfarer_catalog_places",
			Help: "Number of places in the loaded catalog.",
		}),
		SessionsActive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "wayfarer_sessions_active",
			Help: "Number of live user sessions.",
		}),
		FilterEvaluations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "wayfarer_filter_evaluations_total",
			Help: "Total number of catalog filter evaluations.",
		}),
	}
}
