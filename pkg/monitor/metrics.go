package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 使用独立的 Registry，便于在测试中多次创建。
type Metrics struct {
	registry       *prometheus.Registry
	regionsScanned prometheus.Counter
	treasuresFound prometheus.Counter
	activeWorkers  prometheus.Gauge
	hunts          *prometheus.CounterVec
	huntDuration   prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		regionsScanned: f.NewCounter(prometheus.CounterOpts{
			Name: "treasurehunt_regions_scanned_total",
			Help: "Regions scanned by all groups",
		}),
		treasuresFound: f.NewCounter(prometheus.CounterOpts{
			Name: "treasurehunt_treasures_found_total",
			Help: "Treasures discovered by all groups",
		}),
		activeWorkers: f.NewGauge(prometheus.GaugeOpts{
			Name: "treasurehunt_active_workers",
			Help: "Search groups currently scanning",
		}),
		hunts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treasurehunt_hunts_total",
			Help: "Completed hunts by status",
		}, []string{"status"}),
		huntDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "treasurehunt_hunt_duration_seconds",
			Help:    "Wall time of a hunt from placement to report",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) WorkerStarted() {
	m.activeWorkers.Inc()
}

func (m *Metrics) WorkerFinished() {
	m.activeWorkers.Dec()
}

// ObserveScan is called once per group with its totals.
func (m *Metrics) ObserveScan(scanned, found int) {
	m.regionsScanned.Add(float64(scanned))
	m.treasuresFound.Add(float64(found))
}

func (m *Metrics) ObserveHunt(status string, d time.Duration) {
	m.hunts.WithLabelValues(status).Inc()
	m.huntDuration.Observe(d.Seconds())
}
