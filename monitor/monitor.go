// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlineConnections prometheus.Gauge
	ActiveRooms       prometheus.Gauge
	MessagesReceived  *prometheus.CounterVec
	MessagesSent      *prometheus.CounterVec
	SendFailures      *prometheus.CounterVec
	MessageLatency    prometheus.Histogram
	RoundsResolved    *prometheus.CounterVec
	GamesFinished     prometheus.Counter
	Buzzes            prometheus.Counter
	Errors            *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OnlineConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_connections",
			Help:      "Number of open socket connections",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Inbound messages by event",
		}, []string{"event"}),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Outbound messages by event",
		}, []string{"event"}),
		SendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Outbound messages that could not be delivered",
		}, []string{"event"}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		RoundsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_resolved_total",
			Help:      "Resolved questions by trigger",
		}, []string{"trigger"}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached game over",
		}),
		Buzzes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buzzes_total",
			Help:      "Accepted buzzer presses",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "error_notices_total",
			Help:      "Error notices sent to clients by code",
		}, []string{"code"}),
	}
}

// Monitor owns a private prometheus registry so several instances can coexist in tests.
type Monitor struct {
	metrics      *Metrics
	registry     *prometheus.Registry
	startTime    time.Time
	requestCount atomic.Int64
}

func NewMonitor(namespace string) *Monitor {
	m := &Monitor{
		metrics:   NewMetrics(namespace),
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.metrics.OnlineConnections,
		m.metrics.ActiveRooms,
		m.metrics.MessagesReceived,
		m.metrics.MessagesSent,
		m.metrics.SendFailures,
		m.metrics.MessageLatency,
		m.metrics.RoundsResolved,
		m.metrics.GamesFinished,
		m.metrics.Buzzes,
		m.metrics.Errors,
	)
	return m
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the prometheus exposition for this monitor.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics and /debug/vars on a dedicated address.
func (m *Monitor) StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/debug/vars", expvar.Handler())

	publishOnce(m)

	srv := &http.Server{Addr: addr, Handler: mux}
	go srv.ListenAndServe()
	return srv
}

var published atomic.Bool

// expvar names are process-global and panic on re-publish.
func publishOnce(m *Monitor) {
	if !published.CompareAndSwap(false, true) {
		return
	}
	expvar.Publish("uptime", expvar.Func(func() any {
		return time.Since(m.startTime).Seconds()
	}))
	expvar.Publish("requests", expvar.Func(func() any {
		return m.requestCount.Load()
	}))
}

func (m *Monitor) IncOnlineConnections() {
	m.metrics.OnlineConnections.Inc()
}

func (m *Monitor) DecOnlineConnections() {
	m.metrics.OnlineConnections.Dec()
}

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

func (m *Monitor) IncMessagesReceived(event string) {
	m.metrics.MessagesReceived.WithLabelValues(event).Inc()
	m.requestCount.Add(1)
}

func (m *Monitor) ObserveMessageLatency(duration time.Duration) {
	m.metrics.MessageLatency.Observe(duration.Seconds())
}

// MessageSent and SendFailed let the monitor serve as broadcast stats.
func (m *Monitor) MessageSent(event string) {
	m.metrics.MessagesSent.WithLabelValues(event).Inc()
}

func (m *Monitor) SendFailed(event string) {
	m.metrics.SendFailures.WithLabelValues(event).Inc()
}

func (m *Monitor) RoundResolved(trigger string) {
	m.metrics.RoundsResolved.WithLabelValues(trigger).Inc()
}

func (m *Monitor) GameFinished() {
	m.metrics.GamesFinished.Inc()
}

func (m *Monitor) Buzz() {
	m.metrics.Buzzes.Inc()
}

func (m *Monitor) ErrorNotice(code string) {
	m.metrics.Errors.WithLabelValues(code).Inc()
}
