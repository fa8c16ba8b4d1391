package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook delivery metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trolleybot_events_total",
			Help: "Total number of Slack webhook deliveries received",
		},
		[]string{"type", "status"},
	)

	EventsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trolleybot_events_deduplicated_total",
			Help: "Total number of event deliveries dropped as duplicates",
		},
	)

	SignatureFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trolleybot_signature_failures_total",
			Help: "Total number of webhook deliveries rejected by signature verification",
		},
	)

	// Order metrics
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trolleybot_orders_total",
			Help: "Total number of grocery order runs by result",
		},
		[]string{"result"},
	)

	OrderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trolleybot_order_duration_seconds",
			Help:    "Duration of grocery automation runs in seconds",
			Buckets: []float64{30, 60, 120, 300, 600, 1200},
		},
	)

	OrdersInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trolleybot_orders_in_flight",
			Help: "Number of grocery automation runs currently executing",
		},
	)

	// Notification metrics
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trolleybot_notification_failures_total",
			Help: "Total number of Slack notification posts that failed",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trolleybot_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"key"},
	)

	// Dedup store metrics
	DedupEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trolleybot_dedup_entries",
			Help: "Number of event IDs currently tracked by the dedup store",
		},
	)
)
