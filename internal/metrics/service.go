package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_registrations_total",
			Help: "The total number of match-day registrations, by classification.",
		}, []string{"classification"}),
		Cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_cancellations_total",
			Help: "The total number of cancelled registrations.",
		}),
		Replacements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_replacements_total",
			Help: "The total number of registrations handed over to a replacement.",
		}),
		PeriodsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_periods_opened_total",
			Help: "The total number of registration periods opened.",
		}),
		SyncRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_sync_runs_total",
			Help: "The total number of group syncs to the spreadsheet.",
		}),
		SyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_sync_failures_total",
			Help: "The total number of group syncs that failed.",
		}),
		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_sync_duration_seconds",
			Help:    "The duration of a single group sync.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SheetWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_sheet_writes_total",
			Help: "The total number of batched worksheet writes.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roster_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Registrations,
		s.Cancellations,
		s.Replacements,
		s.PeriodsOpened,
		s.SyncRuns,
		s.SyncFailures,
		s.SyncDuration,
		s.SheetWrites,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRegistrations(classification string) {
	s.Registrations.WithLabelValues(classification).Inc()
}

func (s *Service) IncCancellations() {
	s.Cancellations.Inc()
}

func (s *Service) IncReplacements() {
	s.Replacements.Inc()
}

func (s *Service) IncPeriodsOpened() {
	s.PeriodsOpened.Inc()
}

func (s *Service) IncSyncRuns() {
	s.SyncRuns.Inc()
}

func (s *Service) IncSyncFailures() {
	s.SyncFailures.Inc()
}

func (s *Service) ObserveSyncDuration(seconds float64) {
	s.SyncDuration.Observe(seconds)
}

func (s *Service) IncSheetWrites() {
	s.SheetWrites.Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
