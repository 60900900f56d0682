package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	Registrations      *prometheus.CounterVec
	Cancellations      prometheus.Counter
	Replacements       prometheus.Counter
	PeriodsOpened      prometheus.Counter
	SyncRuns           prometheus.Counter
	SyncFailures       prometheus.Counter
	SyncDuration       prometheus.Histogram
	SheetWrites        prometheus.Counter
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
