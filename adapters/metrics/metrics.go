package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

var alertTypes = []model.AlertType{
	model.AlertCritical,
	model.AlertMaintenance,
	model.AlertWarning,
	model.AlertEnergy,
	model.AlertAnomaly,
}

type Metrics struct {
	registry          *prometheus.Registry
	refreshTotal      *prometheus.CounterVec
	refreshDuration   prometheus.Histogram
	alerts            *prometheus.GaugeVec
	machineHealth     *prometheus.GaugeVec
	reportsTotal      *prometheus.CounterVec
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. A nil reg means the default registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "faultzero_refresh_total",
			Help: "Total telemetry refreshes by trigger.",
		}, []string{"trigger"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "faultzero_refresh_duration_seconds",
			Help:    "Histogram of telemetry batch generation durations.",
			Buckets: prometheus.DefBuckets,
		}),
		alerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "faultzero_alerts",
			Help: "Alerts in the current batch by type.",
		}, []string{"type"}),
		machineHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "faultzero_machine_health_score",
			Help: "Health score of each machine in the current batch.",
		}, []string{"machine"}),
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "faultzero_reports_total",
			Help: "Total report exports by result.",
		}, []string{"result"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	if reg != nil {
		registerer = reg
	}
	registerer.MustRegister(
		m.refreshTotal,
		m.refreshDuration,
		m.alerts,
		m.machineHealth,
		m.reportsTotal,
		m.httpRequestsTotal,
		m.httpDuration,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Hijack lets websocket upgrades through the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(duration)
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRefresh records a new batch: the refresh itself, its alerts and the
// machine health scores.
func (m *Metrics) ObserveRefresh(trigger string, took time.Duration, t model.Telemetry) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(trigger).Inc()
	m.refreshDuration.Observe(took.Seconds())

	counts := make(map[model.AlertType]int, len(alertTypes))
	for _, a := range t.Alerts {
		counts[a.Type]++
	}
	for _, typ := range alertTypes {
		m.alerts.WithLabelValues(string(typ)).Set(float64(counts[typ]))
	}
	for _, s := range t.Machines {
		m.machineHealth.WithLabelValues(strconv.Itoa(s.MachineID)).Set(s.HealthScore)
	}
}

func (m *Metrics) ReportGenerated(success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.reportsTotal.WithLabelValues(result).Inc()
}
