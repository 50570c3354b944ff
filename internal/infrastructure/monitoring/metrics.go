package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the Prometheus collectors exposed on /metrics.
type Metrics struct {
	CredentialRefreshes *prometheus.CounterVec
	ChannelConnects     *prometheus.CounterVec
	ChannelResubscribes prometheus.Counter
	InboundFrames       *prometheus.CounterVec
	Commands            *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	ActiveSessions      prometheus.Gauge
}

// NewMetrics registers all collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CredentialRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ovenlink_credential_refreshes_total",
				Help: "Credential refreshes per tier and result.",
			},
			[]string{"tier", "result"},
		),
		ChannelConnects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ovenlink_channel_connects_total",
				Help: "Device channel connection attempts by result.",
			},
			[]string{"result"},
		),
		ChannelResubscribes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ovenlink_channel_resubscribes_total",
				Help: "Topic re-subscriptions after a channel resume.",
			},
		),
		InboundFrames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ovenlink_inbound_frames_total",
				Help: "Inbound channel frames by kind and result.",
			},
			[]string{"kind", "result"},
		),
		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ovenlink_commands_total",
				Help: "Commands dispatched to appliances by command and result.",
			},
			[]string{"command", "result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ovenlink_http_requests_total",
				Help: "HTTP requests by method, path and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ovenlink_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ovenlink_active_sessions",
				Help: "Number of appliance sessions currently running.",
			},
		),
	}
}

// NewDefaultMetrics registers against the default Prometheus registry.
func NewDefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

func (m *Metrics) RecordCredentialRefresh(tier string, err error) {
	m.CredentialRefreshes.WithLabelValues(tier, resultLabel(err)).Inc()
}

func (m *Metrics) RecordChannelConnect(err error) {
	m.ChannelConnects.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) RecordResubscribe() {
	m.ChannelResubscribes.Inc()
}

func (m *Metrics) RecordInboundFrame(kind string, err error) {
	m.InboundFrames.WithLabelValues(kind, resultLabel(err)).Inc()
}

func (m *Metrics) RecordCommand(command string, err error) {
	m.Commands.WithLabelValues(command, resultLabel(err)).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
