package processor

import (
	"context"
	"time"

	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/roster"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetGroup(ctx context.Context, id string) (*club.Group, error)
	ListSyncableGroups(ctx context.Context) ([]club.Group, error)
	ListMatchDates(ctx context.Context, groupID string, from time.Time) ([]time.Time, error)
}

// Roster derives the ordered roster of a match day.
type Roster interface {
	RosterFor(ctx context.Context, groupID string, date time.Time) ([]roster.Entry, error)
}
