package roster

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
)

// CancelNotice is how long before a match a member may still cancel without a replacement.
const CancelNotice = 48 * time.Hour

// New creates a new Engine.
func New(store Store, metrics Metrics) *Engine {
	return &Engine{
		store:    store,
		metrics:  metrics,
		validate: NewValidator(),
		slots:    newKeyedMutex(),
	}
}

func slotKey(groupID string, date time.Time) string {
	return groupID + "|" + calendar.FormatDate(date)
}

// Classify derives the placement of a rank for a match day with playerCount places.
func Classify(rank, playerCount int) Placement {
	if rank <= playerCount {
		return Placement{Rank: rank, Classification: Confirmed}
	}
	return Placement{Rank: rank, Classification: Waiting, WaitingOrdinal: rank - playerCount}
}

func (e *Engine) activeGroup(ctx context.Context, groupID string) (*club.Group, error) {
	g, err := e.store.GetGroup(ctx, groupID)
	if errors.Is(err, club.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, apperrors.External(err, "load group")
	}
	if !g.Active() {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

func (e *Engine) requireMembership(ctx context.Context, groupID, memberID string) error {
	ms, err := e.store.GetMembership(ctx, memberID, groupID)
	if errors.Is(err, club.ErrNotFound) {
		return ErrNotAMember
	}
	if err != nil {
		return apperrors.External(err, "load membership")
	}
	if ms.Status != club.MembershipActive {
		return ErrNotAMember
	}
	return nil
}

// Register admits memberID to the match on date. The preconditions are checked in order:
// membership, past date, registration window, weekday, existing signup.
func (e *Engine) Register(ctx context.Context, groupID, memberID string, date, now time.Time) (Placement, error) {
	date = calendar.DateOf(date)
	g, err := e.activeGroup(ctx, groupID)
	if err != nil {
		return Placement{}, err
	}
	if err := e.requireMembership(ctx, groupID, memberID); err != nil {
		return Placement{}, err
	}
	if date.Before(calendar.DateOf(now)) {
		return Placement{}, ErrPastDate
	}
	if date.After(calendar.DateOf(g.RegistrationOpenUntil)) {
		return Placement{}, ErrWindowClosed
	}
	if !calendar.IsGameDay(date, g.GameWeekday) {
		return Placement{}, ErrWrongWeekday
	}

	unlock := e.slots.Lock(slotKey(groupID, date))
	defer unlock()

	if _, err := e.store.GetSignup(ctx, groupID, memberID, date); err == nil {
		return Placement{}, ErrAlreadyRegistered
	} else if !errors.Is(err, club.ErrNotFound) {
		return Placement{}, apperrors.External(err, "load signup")
	}

	signup, err := e.store.InsertSignup(ctx, club.Signup{
		ID:           uuid.NewString(),
		GroupID:      groupID,
		MemberID:     memberID,
		MatchDate:    date,
		RegisteredAt: now,
	})
	if errors.Is(err, club.ErrDuplicate) {
		return Placement{}, ErrAlreadyRegistered
	}
	if err != nil {
		return Placement{}, apperrors.External(err, "insert signup")
	}

	slot, err := e.store.ListSlot(ctx, groupID, date)
	if err != nil {
		return Placement{}, apperrors.External(err, "list signups")
	}
	// A registration timestamped before earlier inserts sorts ahead of them.
	rank := 0
	for i, entry := range slot {
		if entry.ID == signup.ID {
			rank = i + 1
			break
		}
	}
	if rank == 0 {
		return Placement{}, apperrors.Inconsistent("signup %s missing from its slot", signup.ID)
	}
	placement := Classify(rank, g.PlayerCount())
	e.metrics.IncRegistrations(string(placement.Classification))
	log.Info("Registered player", "groupID", groupID, "memberID", memberID, "date", calendar.FormatDate(date), "rank", placement.Rank, "classification", placement.Classification)
	return placement, nil
}

// Cancel removes memberID's signup when the match is at least CancelNotice away.
// Closer to the match the signup is kept and ErrReplacementRequired is returned.
func (e *Engine) Cancel(ctx context.Context, groupID, memberID string, date, now time.Time) (CancelOutcome, error) {
	date = calendar.DateOf(date)
	g, err := e.activeGroup(ctx, groupID)
	if err != nil {
		return CancelOutcome{}, err
	}

	unlock := e.slots.Lock(slotKey(groupID, date))
	defer unlock()

	signup, err := e.store.GetSignup(ctx, groupID, memberID, date)
	if errors.Is(err, club.ErrNotFound) {
		return CancelOutcome{}, ErrNotRegistered
	}
	if err != nil {
		return CancelOutcome{}, apperrors.External(err, "load signup")
	}
	if date.Sub(now) < CancelNotice {
		return CancelOutcome{}, ErrReplacementRequired
	}

	slot, err := e.store.ListSlot(ctx, groupID, date)
	if err != nil {
		return CancelOutcome{}, apperrors.External(err, "list signups")
	}
	if err := e.store.DeleteSignup(ctx, signup.ID); err != nil {
		return CancelOutcome{}, apperrors.External(err, "delete signup")
	}

	var outcome CancelOutcome
	if promoted := promotedBy(slot, signup.ID, g.PlayerCount()); promoted != nil {
		outcome.Promoted = promoted
		log.Info("Promoted player from waiting list", "groupID", groupID, "memberID", promoted.ID, "date", calendar.FormatDate(date))
	}
	e.metrics.IncCancellations()
	log.Info("Cancelled registration", "groupID", groupID, "memberID", memberID, "date", calendar.FormatDate(date))
	return outcome, nil
}

// promotedBy returns the member that moves into the main list when signupID leaves slot.
func promotedBy(slot []club.SlotEntry, signupID string, playerCount int) *club.Member {
	if len(slot) <= playerCount {
		return nil
	}
	for i, entry := range slot {
		if entry.ID == signupID {
			if i >= playerCount {
				return nil
			}
			return slot[playerCount].Member
		}
	}
	return nil
}

// Replace hands existingID's signup over to replacementID. The signup keeps its rank.
func (e *Engine) Replace(ctx context.Context, groupID, existingID, replacementID string, date, now time.Time) (ReplaceOutcome, error) {
	date = calendar.DateOf(date)
	g, err := e.activeGroup(ctx, groupID)
	if err != nil {
		return ReplaceOutcome{}, err
	}

	unlock := e.slots.Lock(slotKey(groupID, date))
	defer unlock()

	signup, err := e.store.GetSignup(ctx, groupID, existingID, date)
	if errors.Is(err, club.ErrNotFound) {
		return ReplaceOutcome{}, ErrNotRegistered
	}
	if err != nil {
		return ReplaceOutcome{}, apperrors.External(err, "load signup")
	}
	if _, err := e.store.GetSignup(ctx, groupID, replacementID, date); err == nil {
		return ReplaceOutcome{}, ErrAlreadyRegistered
	} else if !errors.Is(err, club.ErrNotFound) {
		return ReplaceOutcome{}, apperrors.External(err, "load signup")
	}
	replacement, err := e.store.GetMember(ctx, replacementID)
	if errors.Is(err, club.ErrNotFound) {
		return ReplaceOutcome{}, ErrMemberNotFound
	}
	if err != nil {
		return ReplaceOutcome{}, apperrors.External(err, "load member")
	}

	slot, err := e.store.ListSlot(ctx, groupID, date)
	if err != nil {
		return ReplaceOutcome{}, apperrors.External(err, "list signups")
	}
	rank := 0
	for i, entry := range slot {
		if entry.ID == signup.ID {
			rank = i + 1
			break
		}
	}
	if rank == 0 {
		return ReplaceOutcome{}, apperrors.Inconsistent("signup %s missing from its own roster", signup.ID)
	}

	if err := e.store.ReassignSignup(ctx, signup.ID, replacementID); err != nil {
		if errors.Is(err, club.ErrDuplicate) {
			return ReplaceOutcome{}, ErrAlreadyRegistered
		}
		return ReplaceOutcome{}, apperrors.External(err, "reassign signup")
	}
	e.metrics.IncReplacements()
	log.Info("Replaced player", "groupID", groupID, "from", existingID, "to", replacementID, "date", calendar.FormatDate(date), "rank", rank)
	return ReplaceOutcome{Placement: Classify(rank, g.PlayerCount()), Replacement: *replacement}, nil
}

// RosterFor returns the roster of a match day ordered by rank. Each call reads the
// store afresh, so the result reflects every mutation completed before it.
func (e *Engine) RosterFor(ctx context.Context, groupID string, date time.Time) ([]Entry, error) {
	g, err := e.store.GetGroup(ctx, groupID)
	if errors.Is(err, club.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, apperrors.External(err, "load group")
	}
	return e.rosterFor(ctx, g, date)
}

func (e *Engine) rosterFor(ctx context.Context, g *club.Group, date time.Time) ([]Entry, error) {
	slot, err := e.store.ListSlot(ctx, g.ID, calendar.DateOf(date))
	if err != nil {
		return nil, apperrors.External(err, "list signups")
	}
	entries := make([]Entry, 0, len(slot))
	for i, s := range slot {
		if s.Member == nil {
			return nil, apperrors.Inconsistent("signup %s references missing member %s", s.ID, s.MemberID)
		}
		entries = append(entries, Entry{
			Placement:    Classify(i+1, g.PlayerCount()),
			Member:       *s.Member,
			SignupID:     s.ID,
			RegisteredAt: s.RegisteredAt,
		})
	}
	return entries, nil
}

// Join makes the member an active member of the group, creating the member on first join.
// An existing member's profile is left untouched.
func (e *Engine) Join(ctx context.Context, groupID string, profile Profile, now time.Time) (JoinOutcome, error) {
	if _, err := e.activeGroup(ctx, groupID); err != nil {
		return JoinOutcome{}, err
	}
	if _, err := e.store.GetMembership(ctx, profile.MemberID, groupID); err == nil {
		return JoinOutcome{}, ErrAlreadyMember
	} else if !errors.Is(err, club.ErrNotFound) {
		return JoinOutcome{}, apperrors.External(err, "load membership")
	}

	var outcome JoinOutcome
	member, err := e.store.GetMember(ctx, profile.MemberID)
	switch {
	case err == nil:
		outcome.Member = *member
	case errors.Is(err, club.ErrNotFound):
		if err := e.validate.StructCtx(ctx, profile); err != nil {
			return JoinOutcome{}, apperrors.Invalid("profile", err)
		}
		outcome.Member = club.Member{
			ID:        profile.MemberID,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Phone:     profile.Phone,
			Email:     profile.Email,
			Username:  profile.Username,
			CreatedAt: now,
		}
		if err := e.store.CreateMember(ctx, outcome.Member); err != nil {
			return JoinOutcome{}, apperrors.External(err, "create member")
		}
		outcome.NewMember = true
	default:
		return JoinOutcome{}, apperrors.External(err, "load member")
	}

	err = e.store.CreateMembership(ctx, club.Membership{
		MemberID:  profile.MemberID,
		GroupID:   groupID,
		Status:    club.MembershipActive,
		CreatedAt: now,
	})
	if errors.Is(err, club.ErrDuplicate) {
		return JoinOutcome{}, ErrAlreadyMember
	}
	if err != nil {
		return JoinOutcome{}, apperrors.External(err, "create membership")
	}
	log.Info("Member joined group", "groupID", groupID, "memberID", profile.MemberID, "new_member", outcome.NewMember)
	return outcome, nil
}

// ListMemberMatches returns the member's upcoming registrations in active groups.
func (e *Engine) ListMemberMatches(ctx context.Context, memberID string, now time.Time) ([]MemberMatch, error) {
	memberships, err := e.store.ListActiveMemberships(ctx, memberID)
	if err != nil {
		return nil, apperrors.External(err, "list memberships")
	}
	activeIn := make(map[string]bool, len(memberships))
	for _, ms := range memberships {
		activeIn[ms.GroupID] = true
	}

	signups, err := e.store.ListMemberSignups(ctx, memberID, calendar.DateOf(now))
	if err != nil {
		return nil, apperrors.External(err, "list signups")
	}
	groups := make(map[string]*club.Group)
	var out []MemberMatch
	for _, s := range signups {
		if !activeIn[s.GroupID] {
			continue
		}
		g, ok := groups[s.GroupID]
		if !ok {
			g, err = e.store.GetGroup(ctx, s.GroupID)
			if errors.Is(err, club.ErrNotFound) {
				return nil, apperrors.Inconsistent("signup %s refers to missing group %s", s.ID, s.GroupID)
			}
			if err != nil {
				return nil, apperrors.External(err, "load group")
			}
			groups[s.GroupID] = g
		}
		if !g.Active() {
			continue
		}
		entries, err := e.rosterFor(ctx, g, s.MatchDate)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.SignupID == s.ID {
				out = append(out, MemberMatch{Placement: entry.Placement, Group: *g, Date: s.MatchDate})
				break
			}
		}
	}
	return out, nil
}
