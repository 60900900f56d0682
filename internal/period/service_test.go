package period_test

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/database"
	"github.com/mauv0809/padel-roster/internal/grid"
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/period"
	"github.com/mauv0809/padel-roster/internal/roster"
	"github.com/mauv0809/padel-roster/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sheetURL      = "https://docs.google.com/spreadsheets/d/1AbCdEfGhIjKlMnOp/edit#gid=0"
	spreadsheetID = "1AbCdEfGhIjKlMnOp"
)

type fixture struct {
	svc      *period.Service
	store    club.ClubStore
	sink     *sheets.Mock
	notifier *notifier.Mock
	metrics  *metrics.Mock
}

func setup(t *testing.T, cfg period.Config) fixture {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	f := fixture{
		store:    club.New(db),
		sink:     sheets.NewMock(),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
	}
	f.svc = period.New(f.store, f.sink, f.notifier, f.metrics, cfg)
	require.NoError(t, f.svc.RegisterAdmin(context.Background(), club.Admin{ID: "admin1", Username: "anna"}))
	return f
}

func thursdayDraft() period.GroupDraft {
	return period.GroupDraft{
		ID:          "-100123",
		Name:        "Thursday Americano",
		AdminID:     "admin1",
		GameWeekday: 3,
		WeekRange:   3,
		Spreadsheet: sheetURL,
		CourtLimit:  2,
	}
}

func TestCreateGroup(t *testing.T) {
	f := setup(t, period.Config{})
	ctx := context.Background()
	now := time.Date(2024, 11, 14, 10, 30, 0, 0, time.UTC)

	opened, err := f.svc.CreateGroup(ctx, thursdayDraft(), now)
	require.NoError(t, err)
	assert.Equal(t, "Americano 14.11-04.12", opened.Sheet)
	assert.Equal(t, time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC), opened.Group.RegistrationOpenUntil)

	stored, err := f.store.GetGroup(ctx, "-100123")
	require.NoError(t, err)
	assert.Equal(t, spreadsheetID, stored.Spreadsheet)
	assert.True(t, stored.RegistrationOpenUntil.Equal(opened.Group.RegistrationOpenUntil))

	require.Len(t, f.sink.CreateSheetCalls, 1)
	assert.Equal(t, grid.RowCount(8), f.sink.CreateSheetCalls[0].Rows)
	assert.Equal(t, 21, f.sink.CreateSheetCalls[0].Cols)

	g, ok := f.sink.Sheet(spreadsheetID, "Americano 14.11-04.12")
	require.True(t, ok)
	assert.Equal(t, "Thursday", g.Cell(grid.WeekdayRow, 0))
	assert.Equal(t, "14.11.2024", g.Cell(grid.DateRow, 0))
	assert.Equal(t, grid.PlayerListLabel, g.Cell(grid.ListLabelRow, 0))
	assert.Equal(t, grid.PlayerListLabel, g.Cell(grid.ListLabelRow, 7))
	assert.Equal(t, "", g.Cell(grid.ListLabelRow, 1))

	require.Len(t, f.notifier.AnnouncePeriodOpenedCalls, 1)
	assert.Equal(t, "Americano 14.11-04.12", f.notifier.AnnouncePeriodOpenedCalls[0].Sheet)
	assert.Equal(t, 1, f.metrics.SheetWrites())

	t.Run("same id twice", func(t *testing.T) {
		_, err := f.svc.CreateGroup(ctx, thursdayDraft(), now)
		assert.ErrorIs(t, err, period.ErrGroupExists)
	})
}

func TestCreateGroup_Rejections(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 14, 10, 30, 0, 0, time.UTC)

	t.Run("admin not signed up", func(t *testing.T) {
		f := setup(t, period.Config{})
		draft := thursdayDraft()
		draft.AdminID = "stranger"
		_, err := f.svc.CreateGroup(ctx, draft, now)
		assert.ErrorIs(t, err, period.ErrAdminNotRegistered)
	})

	t.Run("group limit", func(t *testing.T) {
		f := setup(t, period.Config{MaxGroupsPerAdmin: 1})
		_, err := f.svc.CreateGroup(ctx, thursdayDraft(), now)
		require.NoError(t, err)
		draft := thursdayDraft()
		draft.ID = "-100456"
		_, err = f.svc.CreateGroup(ctx, draft, now)
		assert.ErrorIs(t, err, period.ErrGroupLimit)
	})

	t.Run("invalid draft", func(t *testing.T) {
		f := setup(t, period.Config{})
		draft := thursdayDraft()
		draft.CourtLimit = 0
		_, err := f.svc.CreateGroup(ctx, draft, now)
		assert.True(t, apperrors.IsValidation(err))

		draft = thursdayDraft()
		draft.Spreadsheet = "my sheet"
		_, err = f.svc.CreateGroup(ctx, draft, now)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("worksheet already there", func(t *testing.T) {
		f := setup(t, period.Config{})
		f.sink.Put(spreadsheetID, "Americano 14.11-04.12", grid.New(1, 1))
		_, err := f.svc.CreateGroup(ctx, thursdayDraft(), now)
		assert.ErrorIs(t, err, period.ErrWorksheetExists)

		_, err = f.store.GetGroup(ctx, "-100123")
		assert.ErrorIs(t, err, club.ErrNotFound)
	})

	t.Run("spreadsheet not shared", func(t *testing.T) {
		f := setup(t, period.Config{})
		f.sink.CheckWritableFunc = func(string) error { return sheets.ErrNotWritable }
		_, err := f.svc.CreateGroup(ctx, thursdayDraft(), now)
		assert.ErrorIs(t, err, sheets.ErrNotWritable)
		assert.Empty(t, f.sink.CreateSheetCalls)
	})
}

func TestOpenNext(t *testing.T) {
	f := setup(t, period.Config{WorksheetPrefix: "Americano"})
	ctx := context.Background()
	_, err := f.svc.CreateGroup(ctx, thursdayDraft(), time.Date(2024, 11, 14, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	f.notifier.Reset()

	t.Run("too early", func(t *testing.T) {
		_, err := f.svc.OpenNext(ctx, "-100123", "admin1", time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC), false)
		assert.ErrorIs(t, err, calendar.ErrInvalidState)
		assert.True(t, apperrors.IsPolicy(err))
	})

	t.Run("not the admin", func(t *testing.T) {
		_, err := f.svc.OpenNext(ctx, "-100123", "admin2", time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC), false)
		assert.ErrorIs(t, err, period.ErrNotGroupAdmin)
	})

	t.Run("dry run", func(t *testing.T) {
		opened, err := f.svc.OpenNext(ctx, "-100123", "admin1", time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC), true)
		require.NoError(t, err)
		assert.Equal(t, "Americano 05.12-25.12", opened.Sheet)
		_, ok := f.sink.Sheet(spreadsheetID, opened.Sheet)
		assert.False(t, ok)
		assert.Equal(t, 0, f.metrics.PeriodsOpened())
	})

	t.Run("opens the next period", func(t *testing.T) {
		opened, err := f.svc.OpenNext(ctx, "-100123", "admin1", time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC), false)
		require.NoError(t, err)
		assert.Equal(t, "Americano 05.12-25.12", opened.Sheet)
		assert.Equal(t, time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC), opened.End)

		g, ok := f.sink.Sheet(spreadsheetID, opened.Sheet)
		require.True(t, ok)
		assert.Equal(t, "05.12.2024", g.Cell(grid.DateRow, 0))
		assert.Equal(t, grid.PlayerListLabel, g.Cell(grid.ListLabelRow, 0))

		stored, err := f.store.GetGroup(ctx, "-100123")
		require.NoError(t, err)
		assert.True(t, stored.RegistrationOpenUntil.Equal(opened.End))
		assert.Equal(t, 1, f.metrics.PeriodsOpened())
		assert.Len(t, f.notifier.AnnouncePeriodOpenedCalls, 1)
	})
}

func TestDeleteAndListGroups(t *testing.T) {
	f := setup(t, period.Config{})
	ctx := context.Background()
	now := time.Date(2024, 11, 14, 10, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateGroup(ctx, thursdayDraft(), now)
	require.NoError(t, err)

	groups, err := f.svc.ListGroups(ctx, "admin1")
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.ErrorIs(t, f.svc.DeleteGroup(ctx, "-100123", "admin2", now), period.ErrNotGroupAdmin)
	require.NoError(t, f.svc.DeleteGroup(ctx, "-100123", "admin1", now))

	groups, err = f.svc.ListGroups(ctx, "admin1")
	require.NoError(t, err)
	assert.Empty(t, groups)

	_, err = f.svc.OpenNext(ctx, "-100123", "admin1", time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC), false)
	assert.ErrorIs(t, err, roster.ErrGroupNotFound)

	_, err = f.svc.ListGroups(ctx, "stranger")
	assert.ErrorIs(t, err, period.ErrAdminNotRegistered)
}

func TestUpdateSpreadsheet(t *testing.T) {
	f := setup(t, period.Config{})
	ctx := context.Background()
	_, err := f.svc.CreateGroup(ctx, thursdayDraft(), time.Date(2024, 11, 14, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	g, err := f.svc.UpdateSpreadsheet(ctx, "-100123", "admin1", "9ZyXwVuTsRqPoNm")
	require.NoError(t, err)
	assert.Equal(t, "9ZyXwVuTsRqPoNm", g.Spreadsheet)

	_, ok := f.sink.Sheet("9ZyXwVuTsRqPoNm", "Americano 14.11-04.12")
	assert.True(t, ok, "current period is laid out in the new spreadsheet")

	stored, err := f.store.GetGroup(ctx, "-100123")
	require.NoError(t, err)
	assert.Equal(t, "9ZyXwVuTsRqPoNm", stored.Spreadsheet)

	t.Run("bot cannot edit", func(t *testing.T) {
		f.sink.CheckWritableFunc = func(string) error { return sheets.ErrNotWritable }
		_, err := f.svc.UpdateSpreadsheet(ctx, "-100123", "admin1", sheetURL)
		assert.ErrorIs(t, err, sheets.ErrNotWritable)
	})
}

func TestRegisterAdmin_Twice(t *testing.T) {
	f := setup(t, period.Config{})
	err := f.svc.RegisterAdmin(context.Background(), club.Admin{ID: "admin1"})
	assert.ErrorIs(t, err, period.ErrAdminExists)
}
