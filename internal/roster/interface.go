package roster

import (
	"context"
	"time"

	"github.com/mauv0809/padel-roster/internal/club"
)

// Store defines the persistence operations required by the engine.
type Store interface {
	GetGroup(ctx context.Context, id string) (*club.Group, error)
	GetMember(ctx context.Context, id string) (*club.Member, error)
	CreateMember(ctx context.Context, member club.Member) error
	CreateMembership(ctx context.Context, membership club.Membership) error
	GetMembership(ctx context.Context, memberID, groupID string) (*club.Membership, error)
	ListActiveMemberships(ctx context.Context, memberID string) ([]club.Membership, error)
	InsertSignup(ctx context.Context, signup club.Signup) (club.Signup, error)
	GetSignup(ctx context.Context, groupID, memberID string, date time.Time) (*club.Signup, error)
	DeleteSignup(ctx context.Context, id string) error
	ReassignSignup(ctx context.Context, id string, memberID string) error
	ListSlot(ctx context.Context, groupID string, date time.Time) ([]club.SlotEntry, error)
	ListMemberSignups(ctx context.Context, memberID string, from time.Time) ([]club.Signup, error)
}

// Metrics defines the counters the engine reports to.
type Metrics interface {
	IncRegistrations(classification string)
	IncCancellations()
	IncReplacements()
}
