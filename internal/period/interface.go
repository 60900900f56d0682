package period

import (
	"context"
	"time"

	"github.com/mauv0809/padel-roster/internal/club"
)

// Store defines the persistence operations the period service needs.
type Store interface {
	CreateAdmin(ctx context.Context, admin club.Admin) error
	GetAdmin(ctx context.Context, id string) (*club.Admin, error)
	CreateGroup(ctx context.Context, group club.Group) error
	GetGroup(ctx context.Context, id string) (*club.Group, error)
	ListGroupsByAdmin(ctx context.Context, adminID string) ([]club.Group, error)
	UpdateRegistrationOpenUntil(ctx context.Context, groupID string, openUntil time.Time) error
	UpdateSpreadsheet(ctx context.Context, groupID string, spreadsheet string) error
	SoftDeleteGroup(ctx context.Context, groupID string, at time.Time) error
}

// Metrics defines the counters the service reports to.
type Metrics interface {
	IncPeriodsOpened()
	IncSheetWrites()
}
