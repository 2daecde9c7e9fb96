// Package metrics holds the prometheus collectors shared across packages
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration observes HTTP handler latency by route template
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "satgas_ppk",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// Transitions counts case workflow events by outcome (applied, rejected)
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satgas_ppk",
		Name:      "case_transitions_total",
		Help:      "Case status machine events by outcome.",
	}, []string{"event", "outcome"})

	// NotificationFailures counts notifications that could not be recorded
	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "satgas_ppk",
		Name:      "notification_dispatch_failures_total",
		Help:      "Notifications dropped because the write failed.",
	})

	// Deliveries counts email delivery attempts by outcome (sent, failed, skipped)
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satgas_ppk",
		Name:      "notification_deliveries_total",
		Help:      "Email delivery attempts by outcome.",
	}, []string{"outcome"})

	// ListingFallbacks counts listings served by the degraded strategy
	ListingFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "satgas_ppk",
		Name:      "listing_fallbacks_total",
		Help:      "Case listings served without enrichment.",
	})
)
