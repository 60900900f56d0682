package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncRegistrations(classification string)
	IncCancellations()
	IncReplacements()
	IncPeriodsOpened()
	IncSyncRuns()
	IncSyncFailures()
	ObserveSyncDuration(seconds float64)
	IncSheetWrites()
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists counters that should survive restarts.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
