package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 購買流程的業務指標
type Metrics struct {
	CheckoutSessions *prometheus.CounterVec
	PaymentEvents    *prometheus.CounterVec
	RightsGranted    prometheus.Counter
	OversoldRefunds  *prometheus.CounterVec
	TitlesCreated    prometheus.Counter
	GrantDuration    prometheus.Histogram
	QueueDeliveries  *prometheus.CounterVec
}

// New 建立並註冊到 reg，reg 為 nil 時使用預設 registry
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CheckoutSessions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "katagaki_checkout_sessions_total",
			Help: "Checkout session attempts by result.",
		}, []string{"result"}),
		PaymentEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "katagaki_payment_events_total",
			Help: "Verified payment events by type and outcome.",
		}, []string{"type", "outcome"}),
		RightsGranted: factory.NewCounter(prometheus.CounterOpts{
			Name: "katagaki_rights_granted_total",
			Help: "Rights created from completed checkouts.",
		}),
		OversoldRefunds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "katagaki_oversold_refunds_total",
			Help: "Refunds issued for payments completed after a title sold out.",
		}, []string{"result"}),
		TitlesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "katagaki_titles_created_total",
			Help: "Titles created with an allocated official number.",
		}),
		GrantDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "katagaki_grant_duration_seconds",
			Help:    "Duration of the grant transaction.",
			Buckets: prometheus.DefBuckets,
		}),
		QueueDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "katagaki_queue_deliveries_total",
			Help: "Payment queue deliveries by result.",
		}, []string{"result"}),
	}
}
