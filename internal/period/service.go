package period

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/grid"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/roster"
	"github.com/mauv0809/padel-roster/internal/sheets"
)

// New creates a new Service.
func New(store Store, sink sheets.Sink, n notifier.Notifier, metrics Metrics, cfg Config) *Service {
	if cfg.WorksheetPrefix == "" {
		cfg.WorksheetPrefix = "Americano"
	}
	if cfg.MaxGroupsPerAdmin <= 0 {
		cfg.MaxGroupsPerAdmin = 3
	}
	return &Service{
		store:    store,
		sink:     sink,
		notifier: n,
		metrics:  metrics,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// RegisterAdmin signs a person up as an admin.
func (s *Service) RegisterAdmin(ctx context.Context, admin club.Admin) error {
	err := s.store.CreateAdmin(ctx, admin)
	if errors.Is(err, club.ErrDuplicate) {
		return ErrAdminExists
	}
	if err != nil {
		return apperrors.External(err, "create admin")
	}
	log.Info("Registered admin", "adminID", admin.ID, "username", admin.Username)
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, adminID string) error {
	_, err := s.store.GetAdmin(ctx, adminID)
	if errors.Is(err, club.ErrNotFound) {
		return ErrAdminNotRegistered
	}
	return apperrors.External(err, "load admin")
}

// adminGroup loads an active group and checks adminID is its admin of record.
func (s *Service) adminGroup(ctx context.Context, groupID, adminID string) (*club.Group, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, club.ErrNotFound) {
		return nil, roster.ErrGroupNotFound
	}
	if err != nil {
		return nil, apperrors.External(err, "load group")
	}
	if !g.Active() {
		return nil, roster.ErrGroupNotFound
	}
	if g.AdminID != adminID {
		return nil, ErrNotGroupAdmin
	}
	return g, nil
}

// CreateGroup stores a new group and lays out the worksheet of its first period,
// which runs from today until the initial registration window closes.
func (s *Service) CreateGroup(ctx context.Context, draft GroupDraft, now time.Time) (Opened, error) {
	if err := s.validate.StructCtx(ctx, draft); err != nil {
		return Opened{}, apperrors.Invalid("group", err)
	}
	spreadsheet, err := sheets.SpreadsheetID(draft.Spreadsheet)
	if err != nil {
		return Opened{}, err
	}
	if err := s.requireAdmin(ctx, draft.AdminID); err != nil {
		return Opened{}, err
	}
	groups, err := s.store.ListGroupsByAdmin(ctx, draft.AdminID)
	if err != nil {
		return Opened{}, apperrors.External(err, "list groups")
	}
	if len(groups) >= s.cfg.MaxGroupsPerAdmin {
		return Opened{}, ErrGroupLimit
	}
	if _, err := s.store.GetGroup(ctx, draft.ID); err == nil {
		return Opened{}, ErrGroupExists
	} else if !errors.Is(err, club.ErrNotFound) {
		return Opened{}, apperrors.External(err, "load group")
	}
	if err := s.sink.CheckWritable(ctx, spreadsheet); err != nil {
		return Opened{}, err
	}

	today := calendar.DateOf(now)
	g := club.Group{
		ID:                    draft.ID,
		Name:                  draft.Name,
		AdminID:               draft.AdminID,
		GameWeekday:           draft.GameWeekday,
		WeekRange:             draft.WeekRange,
		CourtLimit:            draft.CourtLimit,
		Spreadsheet:           spreadsheet,
		RegistrationOpenUntil: calendar.ComputeInitialWindow(today, draft.WeekRange),
		CreatedAt:             now,
	}
	opened, err := s.layOut(ctx, g, today, g.RegistrationOpenUntil)
	if err != nil {
		return Opened{}, err
	}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		if errors.Is(err, club.ErrDuplicate) {
			return Opened{}, ErrGroupExists
		}
		return Opened{}, apperrors.External(err, "create group")
	}
	log.Info("Created group", "groupID", g.ID, "adminID", g.AdminID, "weekday", calendar.WeekdayName(g.GameWeekday), "sheet", opened.Sheet)
	s.announce(ctx, opened, false)
	return opened, nil
}

// OpenNext extends the group's registration window by one period and lays out the
// worksheet for the new period. It fails with calendar.ErrInvalidState while the
// current period still has more days left than remain in the game week.
func (s *Service) OpenNext(ctx context.Context, groupID, adminID string, now time.Time, dryRun bool) (Opened, error) {
	g, err := s.adminGroup(ctx, groupID, adminID)
	if err != nil {
		return Opened{}, err
	}
	next, err := calendar.ComputeNextWindow(now, g.RegistrationOpenUntil, g.WeekRange, g.GameWeekday)
	if err != nil {
		return Opened{}, err
	}
	start := calendar.DateOf(g.RegistrationOpenUntil)
	updated := *g
	updated.RegistrationOpenUntil = next

	if dryRun {
		opened := Opened{Group: updated, Sheet: calendar.WorksheetName(s.cfg.WorksheetPrefix, start, next), Start: start, End: next}
		log.Info("[Dry Run] Would open registration period", "groupID", groupID, "sheet", opened.Sheet, "openUntil", calendar.FormatDate(next))
		return opened, nil
	}

	opened, err := s.layOut(ctx, updated, start, next)
	if err != nil {
		return Opened{}, err
	}
	if err := s.store.UpdateRegistrationOpenUntil(ctx, groupID, next); err != nil {
		return Opened{}, apperrors.External(err, "update registration window")
	}
	s.metrics.IncPeriodsOpened()
	log.Info("Opened registration period", "groupID", groupID, "sheet", opened.Sheet, "openUntil", calendar.FormatDate(next))
	s.announce(ctx, opened, false)
	return opened, nil
}

// layOut creates the worksheet for [start, end) and writes its blank grid.
func (s *Service) layOut(ctx context.Context, g club.Group, start, end time.Time) (Opened, error) {
	name := calendar.WorksheetName(s.cfg.WorksheetPrefix, start, end)
	exists, err := s.sink.SheetExists(ctx, g.Spreadsheet, name)
	if err != nil {
		return Opened{}, err
	}
	if exists {
		return Opened{}, ErrWorksheetExists
	}
	days := calendar.DaysInPeriod(start, end)
	blank := grid.BuildBlank(start, days, g.GameWeekday, g.PlayerCount())
	if err := s.sink.CreateSheet(ctx, g.Spreadsheet, name, blank.Rows(), blank.Cols()); err != nil {
		return Opened{}, err
	}
	if err := s.sink.WriteGrid(ctx, g.Spreadsheet, name, blank); err != nil {
		return Opened{}, err
	}
	s.metrics.IncSheetWrites()
	return Opened{Group: g, Sheet: name, Start: start, End: end}, nil
}

func (s *Service) announce(ctx context.Context, opened Opened, dryRun bool) {
	if err := s.notifier.AnnouncePeriodOpened(ctx, opened.Group, opened.Sheet, dryRun); err != nil {
		log.Error("Failed to announce registration period", "groupID", opened.Group.ID, "error", err)
	}
}

// ListGroups returns the active groups managed by adminID.
func (s *Service) ListGroups(ctx context.Context, adminID string) ([]club.Group, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroupsByAdmin(ctx, adminID)
	if err != nil {
		return nil, apperrors.External(err, "list groups")
	}
	return groups, nil
}

// DeleteGroup soft-deletes the group. Its signups and worksheets are kept.
func (s *Service) DeleteGroup(ctx context.Context, groupID, adminID string, now time.Time) error {
	if _, err := s.adminGroup(ctx, groupID, adminID); err != nil {
		return err
	}
	if err := s.store.SoftDeleteGroup(ctx, groupID, now); err != nil {
		return apperrors.External(err, "delete group")
	}
	log.Info("Deleted group", "groupID", groupID, "adminID", adminID)
	return nil
}

// UpdateSpreadsheet points the group at another spreadsheet. The bot must be able to
// edit it, and the worksheet of the current period is laid out when missing.
func (s *Service) UpdateSpreadsheet(ctx context.Context, groupID, adminID, ref string) (club.Group, error) {
	g, err := s.adminGroup(ctx, groupID, adminID)
	if err != nil {
		return club.Group{}, err
	}
	spreadsheet, err := sheets.SpreadsheetID(ref)
	if err != nil {
		return club.Group{}, err
	}
	if err := s.sink.CheckWritable(ctx, spreadsheet); err != nil {
		return club.Group{}, err
	}
	g.Spreadsheet = spreadsheet
	start := calendar.PeriodStart(g.RegistrationOpenUntil, g.WeekRange)
	if _, err := s.layOut(ctx, *g, start, g.RegistrationOpenUntil); err != nil && !errors.Is(err, ErrWorksheetExists) {
		return club.Group{}, err
	}
	if err := s.store.UpdateSpreadsheet(ctx, groupID, spreadsheet); err != nil {
		return club.Group{}, apperrors.External(err, "update spreadsheet")
	}
	log.Info("Updated spreadsheet", "groupID", groupID, "spreadsheet", spreadsheet)
	return *g, nil
}
