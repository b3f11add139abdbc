package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	uploads   *prometheus.CounterVec
	repoAdmin *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hgdesk_http_requests_total",
			Help: "HTTP requests by method, mount and status code",
		}, []string{"method", "mount", "code"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hgdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "mount"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hgdesk_uploads_total",
			Help: "File uploads by result",
		}, []string{"result"}),
		repoAdmin: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hgdesk_repo_admin_total",
			Help: "Repository admin operations by operation and outcome",
		}, []string{"op", "outcome"}),
	}
}

// TrackRepositories exports the size of the hgweb route table.
func (m *Metrics) TrackRepositories(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "hgdesk_hg_repositories",
		Help: "Repositories currently known to the hgweb route table",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) ObserveRequest(method, mount string, status int, d time.Duration) {
	if mount == "" {
		mount = "/"
	}
	method = methodLabel(method)
	m.requests.WithLabelValues(method, mount, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, mount).Observe(d.Seconds())
}

// methodLabel folds any method outside the standard set into "other";
// net/http accepts arbitrary method tokens from unauthenticated clients.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodDelete, http.MethodPatch, http.MethodOptions:
		return method
	}
	return "other"
}

func (m *Metrics) ObserveUpload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRepoAdmin(op, outcome string) {
	m.repoAdmin.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
