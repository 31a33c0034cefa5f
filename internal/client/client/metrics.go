package client

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts backend requests per route on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shoplist_client_requests_total",
			Help: "Backend requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shoplist_client_request_duration_seconds",
			Help:    "Backend request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observe(method, route, code string, d time.Duration) {
	m.requests.WithLabelValues(method, route, code).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RouteStat is one row of the stats table.
type RouteStat struct {
	Method string
	Route  string
	Code   string
	Count  float64
}

// Snapshot returns request counts sorted by route, method and code.
func (m *Metrics) Snapshot() ([]RouteStat, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []RouteStat
	for _, mf := range families {
		if mf.GetName() != "shoplist_client_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			var s RouteStat
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "method":
					s.Method = lp.GetValue()
				case "route":
					s.Route = lp.GetValue()
				case "code":
					s.Code = lp.GetValue()
				}
			}
			s.Count = metric.GetCounter().GetValue()
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Route != out[j].Route {
			return out[i].Route < out[j].Route
		}
		if out[i].Method != out[j].Method {
			return out[i].Method < out[j].Method
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}
