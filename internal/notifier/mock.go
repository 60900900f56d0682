package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/mauv0809/padel-roster/internal/club"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spy for failure injection; applies to every method when set.
	Err error

	// Call records
	AnnouncePeriodOpenedCalls []PeriodOpenedCall
	NotifyMemberJoinedCalls   []MemberCall
	NotifyPromotionCalls      []MemberCall
	NotifyReplacementCalls    []ReplacementCall
	NotifySyncFailuresCalls   [][]SyncFailure
}

// PeriodOpenedCall holds the arguments for a call to AnnouncePeriodOpened.
type PeriodOpenedCall struct {
	Group club.Group
	Sheet string
}

// MemberCall holds the arguments for calls naming a single member.
type MemberCall struct {
	Group  club.Group
	Member club.Member
	Date   time.Time
}

// ReplacementCall holds the arguments for a call to NotifyReplacement.
type ReplacementCall struct {
	Group    club.Group
	From, To club.Member
	Date     time.Time
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnnouncePeriodOpenedCalls = nil
	m.NotifyMemberJoinedCalls = nil
	m.NotifyPromotionCalls = nil
	m.NotifyReplacementCalls = nil
	m.NotifySyncFailuresCalls = nil
}

func (m *Mock) AnnouncePeriodOpened(ctx context.Context, group club.Group, sheet string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnnouncePeriodOpenedCalls = append(m.AnnouncePeriodOpenedCalls, PeriodOpenedCall{Group: group, Sheet: sheet})
	return m.Err
}

func (m *Mock) NotifyMemberJoined(ctx context.Context, group club.Group, member club.Member, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyMemberJoinedCalls = append(m.NotifyMemberJoinedCalls, MemberCall{Group: group, Member: member})
	return m.Err
}

func (m *Mock) NotifyPromotion(ctx context.Context, group club.Group, member club.Member, date time.Time, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyPromotionCalls = append(m.NotifyPromotionCalls, MemberCall{Group: group, Member: member, Date: date})
	return m.Err
}

func (m *Mock) NotifyReplacement(ctx context.Context, group club.Group, from, to club.Member, date time.Time, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyReplacementCalls = append(m.NotifyReplacementCalls, ReplacementCall{Group: group, From: from, To: to, Date: date})
	return m.Err
}

func (m *Mock) NotifySyncFailures(ctx context.Context, failures []SyncFailure, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifySyncFailuresCalls = append(m.NotifySyncFailuresCalls, failures)
	return m.Err
}

// Calls returns the number of recorded calls across all methods.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AnnouncePeriodOpenedCalls) + len(m.NotifyMemberJoinedCalls) + len(m.NotifyPromotionCalls) +
		len(m.NotifyReplacementCalls) + len(m.NotifySyncFailuresCalls)
}
