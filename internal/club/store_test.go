package club_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (club.ClubStore, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return club.New(db), db, teardown
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedGroup(t *testing.T, store club.ClubStore) club.Group {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.CreateAdmin(ctx, club.Admin{ID: "admin1", Username: "boss", CreatedAt: date(2024, 11, 1)}))
	g := club.Group{
		ID:                    "-100123",
		Name:                  "Thursday Americano",
		AdminID:               "admin1",
		GameWeekday:           3,
		WeekRange:             3,
		CourtLimit:            2,
		Spreadsheet:           "https://docs.google.com/spreadsheets/d/abc123/edit",
		RegistrationOpenUntil: date(2024, 12, 5),
		CreatedAt:             date(2024, 11, 14),
	}
	require.NoError(t, store.CreateGroup(ctx, g))
	return g
}

func seedMember(t *testing.T, store club.ClubStore, id, first, last string) club.Member {
	t.Helper()
	m := club.Member{ID: id, FirstName: first, LastName: last, Phone: "+4520123456", CreatedAt: date(2024, 11, 1)}
	require.NoError(t, store.CreateMember(context.Background(), m))
	return m
}

func TestGroups(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	g := seedGroup(t, store)

	got, err := store.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Name, got.Name)
	assert.Equal(t, date(2024, 12, 5), got.RegistrationOpenUntil)
	assert.Equal(t, 8, got.PlayerCount())
	assert.True(t, got.Active())

	err = store.CreateGroup(ctx, g)
	assert.True(t, errors.Is(err, club.ErrDuplicate))

	_, err = store.GetGroup(ctx, "missing")
	assert.True(t, errors.Is(err, club.ErrNotFound))

	require.NoError(t, store.UpdateRegistrationOpenUntil(ctx, g.ID, date(2024, 12, 26)))
	got, err = store.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 12, 26), got.RegistrationOpenUntil)

	syncable, err := store.ListSyncableGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, syncable, 1)

	require.NoError(t, store.SoftDeleteGroup(ctx, g.ID, date(2024, 12, 1)))
	got, err = store.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, got.Active())

	owned, err := store.ListGroupsByAdmin(ctx, "admin1")
	require.NoError(t, err)
	assert.Empty(t, owned)
	syncable, err = store.ListSyncableGroups(ctx)
	require.NoError(t, err)
	assert.Empty(t, syncable)

	err = store.SoftDeleteGroup(ctx, g.ID, date(2024, 12, 2))
	assert.True(t, errors.Is(err, club.ErrNotFound), "a group is only deleted once")
}

func TestMembersAndMemberships(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	g := seedGroup(t, store)
	email := "ann@example.com"
	m := club.Member{ID: "U1", FirstName: "Ann", LastName: "Lee", Phone: "+4520123456", Email: &email, Username: "ann", CreatedAt: date(2024, 11, 2)}
	require.NoError(t, store.CreateMember(ctx, m))

	got, err := store.GetMember(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", got.DisplayName())
	require.NotNil(t, got.Email)
	assert.Equal(t, email, *got.Email)

	require.NoError(t, store.CreateMembership(ctx, club.Membership{MemberID: "U1", GroupID: g.ID, Status: club.MembershipActive, CreatedAt: date(2024, 11, 2)}))
	err = store.CreateMembership(ctx, club.Membership{MemberID: "U1", GroupID: g.ID, Status: club.MembershipActive, CreatedAt: date(2024, 11, 3)})
	assert.True(t, errors.Is(err, club.ErrDuplicate))

	ms, err := store.GetMembership(ctx, "U1", g.ID)
	require.NoError(t, err)
	assert.Equal(t, club.MembershipActive, ms.Status)

	active, err := store.ListActiveMemberships(ctx, "U1")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = store.GetMembership(ctx, "U2", g.ID)
	assert.True(t, errors.Is(err, club.ErrNotFound))

	t.Run("inactive memberships are kept but not listed", func(t *testing.T) {
		seedMember(t, store, "U3", "Cid", "Moe")
		require.NoError(t, store.CreateMembership(ctx, club.Membership{MemberID: "U3", GroupID: g.ID, Status: club.MembershipInactive, CreatedAt: date(2024, 11, 4)}))

		ms, err := store.GetMembership(ctx, "U3", g.ID)
		require.NoError(t, err)
		assert.Equal(t, club.MembershipInactive, ms.Status)

		active, err := store.ListActiveMemberships(ctx, "U3")
		require.NoError(t, err)
		assert.Empty(t, active)
	})
}

func TestSignups(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	g := seedGroup(t, store)
	seedMember(t, store, "U1", "Ann", "Lee")
	seedMember(t, store, "U2", "Bob", "Ray")
	seedMember(t, store, "U3", "Cid", "Moe")
	matchDay := date(2024, 11, 28)
	same := time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)

	t.Run("orders by registration time then insertion", func(t *testing.T) {
		_, err := store.InsertSignup(ctx, club.Signup{ID: "s2", GroupID: g.ID, MemberID: "U2", MatchDate: matchDay, RegisteredAt: same})
		require.NoError(t, err)
		_, err = store.InsertSignup(ctx, club.Signup{ID: "s1", GroupID: g.ID, MemberID: "U1", MatchDate: matchDay, RegisteredAt: same})
		require.NoError(t, err)
		_, err = store.InsertSignup(ctx, club.Signup{ID: "s3", GroupID: g.ID, MemberID: "U3", MatchDate: matchDay, RegisteredAt: same.Add(-time.Minute)})
		require.NoError(t, err)

		slot, err := store.ListSlot(ctx, g.ID, matchDay)
		require.NoError(t, err)
		require.Len(t, slot, 3)
		assert.Equal(t, []string{"U3", "U2", "U1"}, []string{slot[0].MemberID, slot[1].MemberID, slot[2].MemberID})
		require.NotNil(t, slot[0].Member)
		assert.Equal(t, "Cid Moe", slot[0].Member.DisplayName())
	})

	t.Run("rejects a second signup for the same date", func(t *testing.T) {
		_, err := store.InsertSignup(ctx, club.Signup{ID: "dup", GroupID: g.ID, MemberID: "U1", MatchDate: matchDay, RegisteredAt: same})
		assert.True(t, errors.Is(err, club.ErrDuplicate))
	})

	t.Run("reassigns in place", func(t *testing.T) {
		seedMember(t, store, "U4", "Dan", "Roe")
		require.NoError(t, store.ReassignSignup(ctx, "s2", "U4"))
		slot, err := store.ListSlot(ctx, g.ID, matchDay)
		require.NoError(t, err)
		assert.Equal(t, "U4", slot[1].MemberID)

		_, err = store.GetSignup(ctx, g.ID, "U2", matchDay)
		assert.True(t, errors.Is(err, club.ErrNotFound))
		err = store.ReassignSignup(ctx, "s1", "U4")
		assert.True(t, errors.Is(err, club.ErrDuplicate))
	})

	t.Run("lists dates and member signups", func(t *testing.T) {
		_, err := store.InsertSignup(ctx, club.Signup{ID: "s5", GroupID: g.ID, MemberID: "U1", MatchDate: date(2024, 12, 5), RegisteredAt: same})
		require.NoError(t, err)

		dates, err := store.ListMatchDates(ctx, g.ID, date(2024, 11, 21))
		require.NoError(t, err)
		assert.Equal(t, []time.Time{matchDay, date(2024, 12, 5)}, dates)

		dates, err = store.ListMatchDates(ctx, g.ID, date(2024, 11, 29))
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2024, 12, 5)}, dates)

		mine, err := store.ListMemberSignups(ctx, "U1", date(2024, 11, 1))
		require.NoError(t, err)
		assert.Len(t, mine, 2)
	})

	t.Run("deletes", func(t *testing.T) {
		require.NoError(t, store.DeleteSignup(ctx, "s1"))
		assert.True(t, errors.Is(store.DeleteSignup(ctx, "s1"), club.ErrNotFound))
	})

	t.Run("keeps signups of missing members visible", func(t *testing.T) {
		_, err := store.InsertSignup(ctx, club.Signup{ID: "ghost", GroupID: g.ID, MemberID: "gone", MatchDate: matchDay, RegisteredAt: same.Add(time.Hour)})
		require.NoError(t, err)
		slot, err := store.ListSlot(ctx, g.ID, matchDay)
		require.NoError(t, err)
		last := slot[len(slot)-1]
		assert.Equal(t, "gone", last.MemberID)
		assert.Nil(t, last.Member)
	})
}
