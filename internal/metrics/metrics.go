package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Payment provider metrics
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_provider_requests_total",
			Help: "Total number of payment provider API requests",
		},
		[]string{"provider", "operation", "status"},
	)
	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "payment_provider_request_duration_seconds",
			Help: "Duration of payment provider API requests in seconds",
		},
		[]string{"provider", "operation"},
	)

	// Webhook metrics
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_webhook_events_total",
			Help: "Total number of received billing webhook events",
		},
		[]string{"provider", "event", "result"},
	)

	// Subscription lifecycle metrics
	SubscriptionActivations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_activations_total",
			Help: "Subscription activations by plan",
		},
		[]string{"plan"},
	)
	SubscriptionsOverdue = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_marked_overdue_total",
			Help: "Subscriptions moved to overdue by the daily sweep",
		},
	)
)

// Register registers all collectors on the given registry.
func Register(reg *prometheus.Registry) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		WebhookEventsTotal,
		SubscriptionActivations,
		SubscriptionsOverdue,
	)
}
