package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transit_taps_total",
			Help: "Tap events by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	FaresChargedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transit_fares_charged_total",
			Help: "Sum of journey fares debited after daily-cap discounts",
		},
	)

	FareDiscountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transit_fare_discount_total",
			Help: "Sum of daily-cap discounts granted",
		},
	)

	DailyCapReachedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transit_daily_cap_reached_total",
			Help: "Tap-outs after which the rider's daily spend reached the cap",
		},
	)

	JourneyZones = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transit_journey_zones",
			Help:    "Zones transited per completed journey",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	SweepJourneysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transit_sweep_journeys_total",
			Help: "Abandoned journeys handled by the sweep, by result",
		},
		[]string{"result"},
	)

	WalletTopUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transit_wallet_topups_total",
			Help: "Total number of wallet top-ups",
		},
	)

	WalletTopUpAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transit_wallet_topup_amount_total",
			Help: "Sum of wallet top-up amounts",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transit_notifications_total",
			Help: "Rider notifications by type and status",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "transit_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTap(direction, outcome string) {
	TapsTotal.WithLabelValues(direction, outcome).Inc()
}

func RecordFare(charged, discount float64, zones int, capReached bool) {
	FaresChargedTotal.Add(charged)
	FareDiscountTotal.Add(discount)
	JourneyZones.Observe(float64(zones))
	if capReached {
		DailyCapReachedTotal.Inc()
	}
}

func RecordSweep(result string) {
	SweepJourneysTotal.WithLabelValues(result).Inc()
}

func RecordWalletTopUp(amount float64) {
	WalletTopUpsTotal.Inc()
	WalletTopUpAmount.Add(amount)
}

func RecordNotification(notificationType, status string) {
	NotificationsTotal.WithLabelValues(notificationType, status).Inc()
}
