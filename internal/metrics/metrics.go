// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	SubmissionsTotal    *prometheus.CounterVec
	SubscriptionsTotal  *prometheus.CounterVec
	EmailsSent          *prometheus.CounterVec
	CampaignsCompleted  *prometheus.CounterVec
	CampaignSendSeconds prometheus.Histogram
	LoginAttempts       *prometheus.CounterVec
	RateLimited         *prometheus.CounterVec
}

// New registers every metric on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		SubmissionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_submissions_total",
				Help: "Accepted public form submissions",
			},
			[]string{"kind"},
		),
		SubscriptionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsletter_subscriptions_total",
				Help: "Newsletter subscribe outcomes",
			},
			[]string{"outcome"}, // created, reactivated, duplicate, unsubscribed
		),
		EmailsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emails_sent_total",
				Help: "Outbound emails by result",
			},
			[]string{"result"}, // success, failure
		),
		CampaignsCompleted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaigns_completed_total",
				Help: "Campaign sends by terminal status",
			},
			[]string{"status"},
		),
		CampaignSendSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "campaign_send_duration_seconds",
			Help:    "Wall time of a full campaign send",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		LoginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),
		RateLimited: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limited_requests_total",
				Help: "Requests rejected by a rate limiter",
			},
			[]string{"limiter"},
		),
	}
}

// NewNop returns metrics bound to a throwaway registry, for tests and tools.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) RecordEmail(err error) {
	if err != nil {
		m.EmailsSent.WithLabelValues("failure").Inc()
		return
	}
	m.EmailsSent.WithLabelValues("success").Inc()
}
