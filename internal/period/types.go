package period

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/sheets"
)

// Service opens registration periods and manages the groups of an admin.
type Service struct {
	store    Store
	sink     sheets.Sink
	notifier notifier.Notifier
	metrics  Metrics
	cfg      Config
	validate *validator.Validate
}

// Config holds the tunables of the service.
type Config struct {
	WorksheetPrefix   string
	MaxGroupsPerAdmin int
}

// GroupDraft is the data collected by the group setup conversation.
type GroupDraft struct {
	ID          string `validate:"required"`
	Name        string `validate:"required,max=100"`
	AdminID     string `validate:"required"`
	GameWeekday int    `validate:"min=0,max=6"`
	WeekRange   int    `validate:"min=1,max=12"`
	Spreadsheet string `validate:"required"`
	CourtLimit  int    `validate:"min=1,max=50"`
}

// Opened describes a newly opened registration period.
type Opened struct {
	Group club.Group
	Sheet string
	// Start and End bound the period as [Start, End).
	Start, End time.Time
}
