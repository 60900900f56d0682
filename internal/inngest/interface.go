package inngest

import (
	"context"
	"net/http"
	"time"

	"github.com/mauv0809/padel-roster/internal/processor"
)

type InngestClient interface {
	Serve() http.Handler
}

// Syncer runs a spreadsheet sync over all groups.
type Syncer interface {
	SyncAll(ctx context.Context, now time.Time, dryRun bool) (processor.Report, error)
}
