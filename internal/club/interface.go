package club

import (
	"context"
	"time"
)

// ClubStore defines the interface for all persistence of admins, groups, members and signups.
type ClubStore interface {
	CreateAdmin(ctx context.Context, admin Admin) error
	GetAdmin(ctx context.Context, id string) (*Admin, error)

	CreateGroup(ctx context.Context, group Group) error
	GetGroup(ctx context.Context, id string) (*Group, error)
	ListGroupsByAdmin(ctx context.Context, adminID string) ([]Group, error)
	ListSyncableGroups(ctx context.Context) ([]Group, error)
	UpdateRegistrationOpenUntil(ctx context.Context, groupID string, openUntil time.Time) error
	UpdateSpreadsheet(ctx context.Context, groupID string, spreadsheet string) error
	SoftDeleteGroup(ctx context.Context, groupID string, at time.Time) error

	CreateMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, id string) (*Member, error)
	CreateMembership(ctx context.Context, membership Membership) error
	GetMembership(ctx context.Context, memberID, groupID string) (*Membership, error)
	ListActiveMemberships(ctx context.Context, memberID string) ([]Membership, error)

	InsertSignup(ctx context.Context, signup Signup) (Signup, error)
	GetSignup(ctx context.Context, groupID, memberID string, date time.Time) (*Signup, error)
	DeleteSignup(ctx context.Context, id string) error
	ReassignSignup(ctx context.Context, id string, memberID string) error
	ListSlot(ctx context.Context, groupID string, date time.Time) ([]SlotEntry, error)
	ListMatchDates(ctx context.Context, groupID string, from time.Time) ([]time.Time, error)
	ListMemberSignups(ctx context.Context, memberID string, from time.Time) ([]Signup, error)
}
