package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DocumentsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "secwall_documents_total",
			Help: "Total number of documents by portfolio and type",
		},
		[]string{"portfolio", "type"},
	)

	DispatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secwall_dispatch_requests_total",
			Help: "Total number of dispatched commands by command and outcome",
		},
		[]string{"command", "outcome"},
	)

	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "secwall_dispatch_duration_seconds",
			Help:    "Time taken to dispatch a command, by command",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	NotificationsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secwall_notifications_published_total",
			Help: "Total number of notifications published, by action",
		},
		[]string{"action"},
	)

	NotificationQueueDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "secwall_notification_queue_drops_total",
			Help: "Total number of notifications dropped because a subscriber's queue was full",
		},
	)

	NotificationSubscribersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "secwall_notification_subscribers",
			Help: "Current number of active notification subscribers",
		},
	)

	ConfigReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secwall_config_reloads_total",
			Help: "Total number of configuration reload attempts, by outcome",
		},
		[]string{"outcome"},
	)

	PersistenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "secwall_persistence_write_duration_seconds",
			Help:    "Time taken to persist the database file to disk",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(DocumentsTotal)
	prometheus.MustRegister(DispatchRequestsTotal)
	prometheus.MustRegister(DispatchDuration)
	prometheus.MustRegister(NotificationsPublishedTotal)
	prometheus.MustRegister(NotificationQueueDropsTotal)
	prometheus.MustRegister(NotificationSubscribersTotal)
	prometheus.MustRegister(ConfigReloadsTotal)
	prometheus.MustRegister(PersistenceDuration)
}

// Handler returns the Prometheus scrape handler, mounted at /metrics by
// cmd/secwall.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed wall-clock time for a single dispatch or
// persistence operation.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
