package processor

import (
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/pubsub"
	"github.com/mauv0809/padel-roster/internal/sheets"
)

// Processor projects rosters into the groups' worksheets.
type Processor struct {
	store    Store
	roster   Roster
	sink     sheets.Sink
	pubsub   pubsub.PubSubClient
	notifier notifier.Notifier
	metrics  metrics.Metrics
	counters metrics.MetricsStore
	cfg      Config
}

// Config holds the tunables of the processor.
type Config struct {
	WorksheetPrefix string
	Workers         int
}

// Persisted counter keys.
const (
	CounterSyncRuns     = "sync_runs"
	CounterSyncFailures = "sync_failures"
	CounterSheetWrites  = "sheet_writes"
)

// GroupResult is the outcome of syncing one group.
type GroupResult struct {
	GroupID   string   `json:"group_id"`
	GroupName string   `json:"group_name"`
	Sheets    []string `json:"sheets"`
	Dates     int      `json:"dates"`
	// Skipped counts dates without a column in their worksheet.
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
	err     error
}

// Err returns the failure of the group sync, if any.
func (r GroupResult) Err() error { return r.err }

// Report is the outcome of syncing all groups.
type Report struct {
	DryRun     bool          `json:"dry_run"`
	Groups     []GroupResult `json:"groups"`
	Synced     int           `json:"synced"`
	Failed     int           `json:"failed"`
	DurationMs int64         `json:"duration_ms"`
}
