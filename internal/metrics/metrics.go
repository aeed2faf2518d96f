package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PollRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_poll_runs_total",
			Help: "Number of due-session poll cycles executed",
		},
	)

	SessionsProvisioned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_sessions_provisioned_total",
			Help: "Number of sessions that received a meeting resource",
		},
	)

	ProvisionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_provision_failures_total",
			Help: "Number of provisioning attempts that failed",
		},
	)

	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_notifications_sent_total",
			Help: "Outbound notification results by outcome",
		},
		[]string{"outcome"},
	)

	SendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "studio_notification_send_seconds",
			Help: "Time spent delivering a single notification",
		},
	)
)

func Register() {
	prometheus.MustRegister(PollRuns, SessionsProvisioned, ProvisionFailures, NotificationsSent, SendDuration)
}
