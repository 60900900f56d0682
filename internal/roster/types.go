package roster

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/padel-roster/internal/club"
)

// Engine admits, cancels and replaces signups and derives rosters from them.
type Engine struct {
	store    Store
	metrics  Metrics
	validate *validator.Validate
	slots    *keyedMutex
}

// Classification tells whether a signup holds a playing place.
type Classification string

const (
	Confirmed Classification = "confirmed"
	Waiting   Classification = "waiting"
)

// Placement is the position of a signup in its match-day roster.
type Placement struct {
	Rank           int            `json:"rank"`
	Classification Classification `json:"classification"`
	// WaitingOrdinal is 1-based and only set for waiting signups.
	WaitingOrdinal int `json:"waiting_ordinal,omitempty"`
}

// Entry is one line of a match-day roster.
type Entry struct {
	Placement
	Member       club.Member
	SignupID     string
	RegisteredAt time.Time
}

// CancelOutcome describes a successful cancellation.
type CancelOutcome struct {
	// Promoted is the member moved from the waiting list into the main list, if any.
	Promoted *club.Member
}

// ReplaceOutcome describes a successful replacement.
type ReplaceOutcome struct {
	Placement
	Replacement club.Member
}

// JoinOutcome describes a successful join.
type JoinOutcome struct {
	Member    club.Member
	NewMember bool
}

// MemberMatch is one upcoming registration of a member.
type MemberMatch struct {
	Placement
	Group club.Group
	Date  time.Time
}

// Profile is the personal data collected when a member joins their first group.
type Profile struct {
	MemberID  string  `validate:"required"`
	FirstName string  `validate:"required,alpha,min=3"`
	LastName  string  `validate:"required,alpha,min=3"`
	Phone     string  `validate:"required,e164,phone"`
	Email     *string `validate:"omitempty,email"`
	Username  string
}
