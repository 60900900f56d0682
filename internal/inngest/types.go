package inngest

import (
	"github.com/inngest/inngestgo"
)

type client struct {
	inngestClient inngestgo.Client
	syncer        Syncer
}

// EventSyncRequested triggers an immediate sync of all groups.
// Its data may carry "dry_run": true.
const EventSyncRequested = "roster/sync.requested"
