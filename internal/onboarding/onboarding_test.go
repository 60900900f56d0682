package onboarding

import (
	"testing"

	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupSetup_Sequence(t *testing.T) {
	g := NewGroupSetup("admin1")
	assert.Equal(t, GroupStepID, g.Step())
	assert.Contains(t, g.Prompt(), "group chat")

	answers := []string{"-100123", "Thursday Americano", "thursday", "3", "https://docs.google.com/spreadsheets/d/1AbCdEfGhIjKlMnOp/edit", "2"}
	for _, a := range answers {
		require.False(t, g.Done())
		require.NoError(t, g.Receive(a), "step %s", g.Step())
	}
	assert.True(t, g.Done())
	assert.Equal(t, period.GroupDraft{
		ID:          "-100123",
		Name:        "Thursday Americano",
		AdminID:     "admin1",
		GameWeekday: 3,
		WeekRange:   3,
		Spreadsheet: "https://docs.google.com/spreadsheets/d/1AbCdEfGhIjKlMnOp/edit",
		CourtLimit:  2,
	}, g.Draft())

	assert.True(t, apperrors.IsValidation(g.Receive("again")))
}

func TestGroupSetup_RejectsAndStays(t *testing.T) {
	g := NewGroupSetup("admin1")
	assert.True(t, apperrors.IsValidation(g.Receive("two words")))
	assert.Equal(t, GroupStepID, g.Step())
	require.NoError(t, g.Receive("C0123"))
	require.NoError(t, g.Receive("Padel"))

	assert.True(t, apperrors.IsValidation(g.Receive("Funday")))
	assert.Equal(t, GroupStepWeekday, g.Step())
	require.NoError(t, g.Receive("Sunday"))

	assert.True(t, apperrors.IsValidation(g.Receive("0")))
	assert.True(t, apperrors.IsValidation(g.Receive("three")))
	assert.True(t, apperrors.IsValidation(g.Receive("13")))
	require.NoError(t, g.Receive("12"))

	assert.True(t, apperrors.IsValidation(g.Receive("my sheet")))
	require.NoError(t, g.Receive("1AbCdEfGhIjKlMnOp"))

	assert.True(t, apperrors.IsValidation(g.Receive("0")))
	assert.Equal(t, GroupStepCourtLimit, g.Step())
	require.NoError(t, g.Receive("1"))
	assert.Equal(t, 6, g.Draft().GameWeekday)
	assert.Equal(t, "done", g.Step().String())
}

func TestJoin_Sequence(t *testing.T) {
	j := NewJoin("-100123", "U1", "ann")
	require.NoError(t, j.Receive("Ann"))
	require.NoError(t, j.Receive("Lee"))
	assert.Equal(t, JoinStepPhone, j.Step())

	assert.True(t, apperrors.IsValidation(j.Receive("12345678")))
	assert.True(t, apperrors.IsValidation(j.Receive("+99999999")), "unassigned country code")
	assert.Equal(t, JoinStepPhone, j.Step())
	require.NoError(t, j.Receive("+45 2012 3456"))

	assert.True(t, apperrors.IsValidation(j.Receive("ann@")))
	require.NoError(t, j.Receive("SKIP"))
	assert.True(t, j.Done())

	p := j.Profile()
	assert.Equal(t, "-100123", j.GroupID())
	assert.Equal(t, "U1", p.MemberID)
	assert.Equal(t, "ann", p.Username)
	assert.Equal(t, "Ann", p.FirstName)
	assert.Equal(t, "Lee", p.LastName)
	assert.Equal(t, "+4520123456", p.Phone)
	assert.Nil(t, p.Email)
}

func TestJoin_NamesNeedThreeLetters(t *testing.T) {
	j := NewJoin("g", "U1", "")
	assert.True(t, apperrors.IsValidation(j.Receive("Al")))
	assert.True(t, apperrors.IsValidation(j.Receive("Ann2")))
	assert.Equal(t, JoinStepFirstName, j.Step())
	require.NoError(t, j.Receive("Ann"))
	require.NoError(t, j.Receive("Lee"))
	require.NoError(t, j.Receive("+4520123456"))
	require.NoError(t, j.Receive("ann@example.com"))
	require.NotNil(t, j.Profile().Email)
	assert.Equal(t, "ann@example.com", *j.Profile().Email)
}

func TestSessions(t *testing.T) {
	s := NewSessions()
	_, ok := s.Get("join/U1")
	assert.False(t, ok)

	j := NewJoin("g", "U1", "")
	s.Start("join/U1", j)
	got, ok := s.Get("join/U1")
	require.True(t, ok)
	assert.Same(t, j, got)

	s.End("join/U1")
	_, ok = s.Get("join/U1")
	assert.False(t, ok)
}
