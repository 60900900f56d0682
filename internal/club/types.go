package club

import (
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// store handles all database operations for groups, members and signups.
type store struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// PlayersPerCourt is the number of players one court holds.
const PlayersPerCourt = 4

// Admin is a person allowed to create and manage groups.
type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Group is a recurring match-day group. Groups are soft-deleted only.
type Group struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	AdminID               string     `json:"admin_id"`
	GameWeekday           int        `json:"game_weekday"`
	WeekRange             int        `json:"week_range"`
	CourtLimit            int        `json:"court_limit"`
	Spreadsheet           string     `json:"spreadsheet"`
	RegistrationOpenUntil time.Time  `json:"registration_open_until"`
	CreatedAt             time.Time  `json:"created_at"`
	DeletedAt             *time.Time `json:"deleted_at,omitempty"`
}

// PlayerCount is the number of confirmed places per match day.
func (g Group) PlayerCount() int {
	return g.CourtLimit * PlayersPerCourt
}

// Active reports whether the group has not been deleted.
func (g Group) Active() bool {
	return g.DeletedAt == nil
}

// Member is a player. The same member can belong to several groups.
type Member struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName is the name shown in grids and messages.
func (m Member) DisplayName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// MembershipStatus is the state of a member in a group.
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

// Membership links a member to a group.
type Membership struct {
	MemberID  string           `json:"member_id"`
	GroupID   string           `json:"group_id"`
	Status    MembershipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Signup is a member's registration for one match date of a group.
// Seq is the insertion order and breaks ties between equal RegisteredAt values.
type Signup struct {
	Seq          int64     `json:"-"`
	ID           string    `json:"id"`
	GroupID      string    `json:"group_id"`
	MemberID     string    `json:"member_id"`
	MatchDate    time.Time `json:"match_date"`
	RegisteredAt time.Time `json:"registered_at"`
}

// SlotEntry is a signup joined with its member. Member is nil when the
// signup references a member that no longer exists.
type SlotEntry struct {
	Signup
	Member *Member
}
