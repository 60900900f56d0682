package inngest

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/mauv0809/padel-roster/internal/processor"
)

// New registers the sync functions on inngestClient: one on the cron schedule
// and one on EventSyncRequested.
func New(inngestClient inngestgo.Client, syncer Syncer, cron string) InngestClient {
	c := &client{
		inngestClient: inngestClient,
		syncer:        syncer,
	}
	c.createScheduledSyncFunction(cron)
	c.createRequestedSyncFunction()
	return c
}

func (i *client) createScheduledSyncFunction(cron string) inngestgo.ServableFunction {
	config := inngestgo.FunctionOpts{
		ID:   "roster-sync-scheduled",
		Name: "Sync rosters on schedule",
	}
	f, err := inngestgo.CreateFunction(i.inngestClient, config, inngestgo.CronTrigger(cron), i.syncAll)
	if err != nil {
		log.Fatal("Failed to create function", "error", err, "id", config.ID)
	}
	return f
}

func (i *client) createRequestedSyncFunction() inngestgo.ServableFunction {
	config := inngestgo.FunctionOpts{
		ID:   "roster-sync-requested",
		Name: "Sync rosters on request",
	}
	f, err := inngestgo.CreateFunction(i.inngestClient, config, inngestgo.EventTrigger(EventSyncRequested, nil), i.syncAll)
	if err != nil {
		log.Fatal("Failed to create function", "error", err, "id", config.ID)
	}
	return f
}

func (i *client) syncAll(ctx context.Context, input inngestgo.Input[map[string]any]) (any, error) {
	data, _ := input.Event["data"].(map[string]any)
	dryRun, _ := data["dry_run"].(bool)
	// Per-group failures are part of the report, not an error.
	report, err := step.Run(ctx, "sync-all-groups", func(ctx context.Context) (processor.Report, error) {
		return i.syncer.SyncAll(ctx, time.Now(), dryRun)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Inngest sync done", "synced", report.Synced, "failed", report.Failed)
	return report, nil
}

func (i *client) Serve() http.Handler {
	return i.inngestClient.Serve()
}
