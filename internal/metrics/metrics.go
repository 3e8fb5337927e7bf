package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors of the catalog service on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	resolutions     *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	catalogProducts prometheus.Gauge
	catalogProjects prometheus.Gauge
	compareOps      *prometheus.CounterVec
	requests        *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radiolink_category_resolutions_total",
			Help: "The total number of category path resolutions by outcome",
		}, []string{"outcome"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radiolink_catalog_refreshes_total",
			Help: "The total number of catalog refreshes by snapshot source",
		}, []string{"source"}),
		catalogProducts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "radiolink_catalog_products",
			Help: "The number of products in the served snapshot",
		}),
		catalogProjects: factory.NewGauge(prometheus.GaugeOpts{
			Name: "radiolink_catalog_projects",
			Help: "The number of projects in the served snapshot",
		}),
		compareOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radiolink_compare_operations_total",
			Help: "The total number of compare set operations",
		}, []string{"op", "changed"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radiolink_http_requests_total",
			Help: "The total number of handled API requests",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) ObserveResolve(found bool) {
	outcome := "found"
	if !found {
		outcome = "not_found"
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRefresh(source string, products, projects int) {
	m.refreshes.WithLabelValues(source).Inc()
	m.catalogProducts.Set(float64(products))
	m.catalogProjects.Set(float64(projects))
}

// ObserveCompare matches compare.Observer.
func (m *Metrics) ObserveCompare(op string, changed bool) {
	m.compareOps.WithLabelValues(op, strconv.FormatBool(changed)).Inc()
}

func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
