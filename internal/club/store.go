package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: sqlx.NewDb(db, "sqlite3"),
	}
}

type adminRow struct {
	ID        string `db:"id"`
	Username  string `db:"username"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	CreatedAt int64  `db:"created_at"`
}

type groupRow struct {
	ID          string        `db:"id"`
	Name        string        `db:"name"`
	AdminID     string        `db:"admin_id"`
	GameWeekday int           `db:"game_weekday"`
	WeekRange   int           `db:"week_range"`
	CourtLimit  int           `db:"court_limit"`
	Spreadsheet string        `db:"spreadsheet"`
	OpenUntil   int64         `db:"registration_open_until"`
	CreatedAt   int64         `db:"created_at"`
	DeletedAt   sql.NullInt64 `db:"deleted_at"`
}

func (r groupRow) toGroup() Group {
	g := Group{
		ID:                    r.ID,
		Name:                  r.Name,
		AdminID:               r.AdminID,
		GameWeekday:           r.GameWeekday,
		WeekRange:             r.WeekRange,
		CourtLimit:            r.CourtLimit,
		Spreadsheet:           r.Spreadsheet,
		RegistrationOpenUntil: fromUnix(r.OpenUntil),
		CreatedAt:             fromUnix(r.CreatedAt),
	}
	if r.DeletedAt.Valid {
		deleted := fromUnix(r.DeletedAt.Int64)
		g.DeletedAt = &deleted
	}
	return g
}

type memberRow struct {
	ID        string         `db:"id"`
	FirstName string         `db:"first_name"`
	LastName  string         `db:"last_name"`
	Phone     string         `db:"phone"`
	Email     sql.NullString `db:"email"`
	Username  string         `db:"username"`
	CreatedAt int64          `db:"created_at"`
}

func (r memberRow) toMember() Member {
	m := Member{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Username:  r.Username,
		CreatedAt: fromUnix(r.CreatedAt),
	}
	if r.Email.Valid {
		email := r.Email.String
		m.Email = &email
	}
	return m
}

type membershipRow struct {
	MemberID  string `db:"member_id"`
	GroupID   string `db:"group_id"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
}

func (r membershipRow) toMembership() Membership {
	return Membership{
		MemberID:  r.MemberID,
		GroupID:   r.GroupID,
		Status:    MembershipStatus(r.Status),
		CreatedAt: fromUnix(r.CreatedAt),
	}
}

type signupRow struct {
	Seq          int64  `db:"seq"`
	ID           string `db:"id"`
	GroupID      string `db:"group_id"`
	MemberID     string `db:"member_id"`
	MatchDate    int64  `db:"match_date"`
	RegisteredAt int64  `db:"registered_at"`
}

func (r signupRow) toSignup() Signup {
	return Signup{
		Seq:          r.Seq,
		ID:           r.ID,
		GroupID:      r.GroupID,
		MemberID:     r.MemberID,
		MatchDate:    fromUnix(r.MatchDate),
		RegisteredAt: time.Unix(0, r.RegisteredAt).UTC(),
	}
}

type slotRow struct {
	signupRow
	MemberFound     sql.NullString `db:"m_id"`
	MemberFirstName sql.NullString `db:"m_first_name"`
	MemberLastName  sql.NullString `db:"m_last_name"`
	MemberPhone     sql.NullString `db:"m_phone"`
	MemberEmail     sql.NullString `db:"m_email"`
	MemberUsername  sql.NullString `db:"m_username"`
	MemberCreatedAt sql.NullInt64  `db:"m_created_at"`
}

const groupColumns = `id, name, admin_id, game_weekday, week_range, court_limit, spreadsheet, registration_open_until, created_at, deleted_at`

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func dateKey(t time.Time) int64 {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// CreateAdmin registers a new admin.
func (s *store) CreateAdmin(ctx context.Context, admin Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (id, username, first_name, last_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		admin.ID, admin.Username, admin.FirstName, admin.LastName, admin.CreatedAt.Unix())
	if isUniqueViolation(err) {
		return fmt.Errorf("admin %s: %w", admin.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert admin: %w", err)
	}
	log.Info("Created admin", "adminID", admin.ID)
	return nil
}

// GetAdmin returns the admin with the given id.
func (s *store) GetAdmin(ctx context.Context, id string) (*Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row adminRow
	if err := s.db.GetContext(ctx, &row, `SELECT id, username, first_name, last_name, created_at FROM admins WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "admin "+id)
	}
	return &Admin{ID: row.ID, Username: row.Username, FirstName: row.FirstName, LastName: row.LastName, CreatedAt: fromUnix(row.CreatedAt)}, nil
}

// CreateGroup inserts a new group.
func (s *store) CreateGroup(ctx context.Context, group Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_groups (id, name, admin_id, game_weekday, week_range, court_limit, spreadsheet, registration_open_until, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.AdminID, group.GameWeekday, group.WeekRange, group.CourtLimit,
		group.Spreadsheet, dateKey(group.RegistrationOpenUntil), group.CreatedAt.Unix())
	if isUniqueViolation(err) {
		return fmt.Errorf("group %s: %w", group.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	log.Info("Created group", "groupID", group.ID, "name", group.Name)
	return nil
}

// GetGroup returns a group, deleted or not.
func (s *store) GetGroup(ctx context.Context, id string) (*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row groupRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+groupColumns+` FROM match_groups WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "group "+id)
	}
	g := row.toGroup()
	return &g, nil
}

// ListGroupsByAdmin returns the admin's groups that are not deleted.
func (s *store) ListGroupsByAdmin(ctx context.Context, adminID string) ([]Group, error) {
	return s.selectGroups(ctx, `SELECT `+groupColumns+` FROM match_groups WHERE admin_id = ? AND deleted_at IS NULL ORDER BY created_at, id`, adminID)
}

// ListSyncableGroups returns every active group that has a spreadsheet attached.
func (s *store) ListSyncableGroups(ctx context.Context) ([]Group, error) {
	return s.selectGroups(ctx, `SELECT `+groupColumns+` FROM match_groups WHERE deleted_at IS NULL AND spreadsheet <> '' ORDER BY id`)
}

func (s *store) selectGroups(ctx context.Context, query string, args ...any) ([]Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []groupRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	groups := make([]Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.toGroup())
	}
	return groups, nil
}

// UpdateRegistrationOpenUntil moves the end of a group's registration window.
func (s *store) UpdateRegistrationOpenUntil(ctx context.Context, groupID string, openUntil time.Time) error {
	return s.updateGroup(ctx, groupID, `UPDATE match_groups SET registration_open_until = ? WHERE id = ?`, dateKey(openUntil), groupID)
}

// UpdateSpreadsheet replaces the spreadsheet a group syncs to.
func (s *store) UpdateSpreadsheet(ctx context.Context, groupID string, spreadsheet string) error {
	return s.updateGroup(ctx, groupID, `UPDATE match_groups SET spreadsheet = ? WHERE id = ?`, spreadsheet, groupID)
}

// SoftDeleteGroup marks a group as deleted. Its signups are kept.
func (s *store) SoftDeleteGroup(ctx context.Context, groupID string, at time.Time) error {
	return s.updateGroup(ctx, groupID, `UPDATE match_groups SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, at.Unix(), groupID)
}

func (s *store) updateGroup(ctx context.Context, groupID string, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update group %s: %w", groupID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	return nil
}

// CreateMember inserts a new member.
func (s *store) CreateMember(ctx context.Context, member Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var email sql.NullString
	if member.Email != nil {
		email = sql.NullString{String: *member.Email, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, first_name, last_name, phone, email, username, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.FirstName, member.LastName, member.Phone, email, member.Username, member.CreatedAt.Unix())
	if isUniqueViolation(err) {
		return fmt.Errorf("member %s: %w", member.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMember returns the member with the given id.
func (s *store) GetMember(ctx context.Context, id string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row memberRow
	if err := s.db.GetContext(ctx, &row, `SELECT id, first_name, last_name, phone, email, username, created_at FROM members WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "member "+id)
	}
	m := row.toMember()
	return &m, nil
}

// CreateMembership links a member to a group.
func (s *store) CreateMembership(ctx context.Context, membership Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships (member_id, group_id, status, created_at) VALUES (?, ?, ?, ?)`,
		membership.MemberID, membership.GroupID, string(membership.Status), membership.CreatedAt.Unix())
	if isUniqueViolation(err) {
		return fmt.Errorf("membership %s/%s: %w", membership.MemberID, membership.GroupID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

// GetMembership returns the membership of a member in a group.
func (s *store) GetMembership(ctx context.Context, memberID, groupID string) (*Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row membershipRow
	err := s.db.GetContext(ctx, &row, `SELECT member_id, group_id, status, created_at FROM memberships WHERE member_id = ? AND group_id = ?`, memberID, groupID)
	if err != nil {
		return nil, notFound(err, "membership "+memberID+"/"+groupID)
	}
	m := row.toMembership()
	return &m, nil
}

// ListActiveMemberships returns the member's active memberships.
func (s *store) ListActiveMemberships(ctx context.Context, memberID string) ([]Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []membershipRow
	err := s.db.SelectContext(ctx, &rows, `SELECT member_id, group_id, status, created_at FROM memberships WHERE member_id = ? AND status = ? ORDER BY created_at, group_id`, memberID, string(MembershipActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	out := make([]Membership, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toMembership())
	}
	return out, nil
}

// InsertSignup stores a signup and returns it with its insertion sequence.
func (s *store) InsertSignup(ctx context.Context, signup Signup) (Signup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO signups (id, group_id, member_id, match_date, registered_at) VALUES (?, ?, ?, ?, ?)`,
		signup.ID, signup.GroupID, signup.MemberID, dateKey(signup.MatchDate), signup.RegisteredAt.UnixNano())
	if isUniqueViolation(err) {
		return Signup{}, fmt.Errorf("signup %s/%s: %w", signup.GroupID, signup.MemberID, ErrDuplicate)
	}
	if err != nil {
		return Signup{}, fmt.Errorf("failed to insert signup: %w", err)
	}
	if seq, err := res.LastInsertId(); err == nil {
		signup.Seq = seq
	}
	return signup, nil
}

// GetSignup returns the member's signup for a group's match date.
func (s *store) GetSignup(ctx context.Context, groupID, memberID string, date time.Time) (*Signup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row signupRow
	err := s.db.GetContext(ctx, &row, `
		SELECT seq, id, group_id, member_id, match_date, registered_at FROM signups
		WHERE group_id = ? AND member_id = ? AND match_date = ?`,
		groupID, memberID, dateKey(date))
	if err != nil {
		return nil, notFound(err, "signup "+groupID+"/"+memberID)
	}
	su := row.toSignup()
	return &su, nil
}

// DeleteSignup removes a signup.
func (s *store) DeleteSignup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM signups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete signup: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("signup %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReassignSignup hands a signup over to another member, keeping its place in the queue.
func (s *store) ReassignSignup(ctx context.Context, id string, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE signups SET member_id = ? WHERE id = ?`, memberID, id)
	if isUniqueViolation(err) {
		return fmt.Errorf("signup for member %s: %w", memberID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to reassign signup: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("signup %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListSlot returns the signups of a group's match date in registration order.
func (s *store) ListSlot(ctx context.Context, groupID string, date time.Time) ([]SlotEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []slotRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT s.seq, s.id, s.group_id, s.member_id, s.match_date, s.registered_at,
			m.id AS m_id, m.first_name AS m_first_name, m.last_name AS m_last_name,
			m.phone AS m_phone, m.email AS m_email, m.username AS m_username, m.created_at AS m_created_at
		FROM signups s
		LEFT JOIN members m ON m.id = s.member_id
		WHERE s.group_id = ? AND s.match_date = ?
		ORDER BY s.registered_at, s.seq`,
		groupID, dateKey(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list signups: %w", err)
	}

	entries := make([]SlotEntry, 0, len(rows))
	for _, r := range rows {
		entry := SlotEntry{Signup: r.signupRow.toSignup()}
		if r.MemberFound.Valid {
			member := memberRow{
				ID:        r.MemberFound.String,
				FirstName: r.MemberFirstName.String,
				LastName:  r.MemberLastName.String,
				Phone:     r.MemberPhone.String,
				Email:     r.MemberEmail,
				Username:  r.MemberUsername.String,
				CreatedAt: r.MemberCreatedAt.Int64,
			}.toMember()
			entry.Member = &member
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListMatchDates returns the distinct match dates with signups on or after from.
func (s *store) ListMatchDates(ctx context.Context, groupID string, from time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []int64
	err := s.db.SelectContext(ctx, &keys, `SELECT DISTINCT match_date FROM signups WHERE group_id = ? AND match_date >= ? ORDER BY match_date`, groupID, dateKey(from))
	if err != nil {
		return nil, fmt.Errorf("failed to list match dates: %w", err)
	}
	dates := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		dates = append(dates, fromUnix(k))
	}
	return dates, nil
}

// ListMemberSignups returns the member's signups on or after from, across groups.
func (s *store) ListMemberSignups(ctx context.Context, memberID string, from time.Time) ([]Signup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []signupRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT seq, id, group_id, member_id, match_date, registered_at FROM signups
		WHERE member_id = ? AND match_date >= ?
		ORDER BY match_date, group_id`,
		memberID, dateKey(from))
	if err != nil {
		return nil, fmt.Errorf("failed to list member signups: %w", err)
	}
	out := make([]Signup, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toSignup())
	}
	return out, nil
}
