// Package storage persists users, qazo counters, channels and FAQ entries.
// Queries are written with '?' placeholders and rebound for the connected
// driver, so the same store runs on PostgreSQL and SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("storage: not found")

// User is a registered bot user.
type User struct {
	ID          int64     `db:"user_id"`
	FullName    string    `db:"full_name"`
	CreatedAt   time.Time `db:"created_at"`
	IsAdmin     bool      `db:"is_admin"`
	IsMainAdmin bool      `db:"is_main_admin"`
}

// FAQ is an immutable question/answer entry.
type FAQ struct {
	ID       int64   `db:"id"`
	Question string  `db:"question"`
	Answer   string  `db:"answer"`
	VideoURL *string `db:"video_url"`
}

// Stats counts registered users by registration window.
type Stats struct {
	Total   int `db:"total"`
	Daily   int `db:"daily"`
	Weekly  int `db:"weekly"`
	Monthly int `db:"monthly"`
}

// Store is the sqlx-backed counter store.
type Store struct {
	db          *sqlx.DB
	mainAdminID int64
	now         func() time.Time
}

// New wraps db. mainAdminID is always treated as an admin.
func New(db *sqlx.DB, mainAdminID int64) *Store {
	return &Store{db: db, mainAdminID: mainAdminID, now: time.Now}
}

// MainAdminID returns the configured main admin.
func (s *Store) MainAdminID() int64 {
	return s.mainAdminID
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// UserExists reports whether the user row exists.
func (s *Store) UserExists(ctx context.Context, userID int64) (bool, error) {
	var n int
	q := s.db.Rebind(`SELECT COUNT(*) FROM users WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &n, q, userID); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return n > 0, nil
}

// AddUser registers a user. An existing row is left untouched.
func (s *Store) AddUser(ctx context.Context, userID int64, fullName string) error {
	q := s.db.Rebind(`
		INSERT INTO users (user_id, full_name, created_at, is_admin, is_main_admin)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, q, userID, fullName, s.timestamp(), false, false); err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	return nil
}

// GetUser loads a user row.
func (s *Store) GetUser(ctx context.Context, userID int64) (User, error) {
	var u User
	q := s.db.Rebind(`
		SELECT user_id, full_name, created_at, is_admin, is_main_admin
		FROM users WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &u, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// IsAdmin reports admin rights. The main admin is an admin even without a row.
func (s *Store) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if userID == s.mainAdminID {
		return true, nil
	}
	u, err := s.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin || u.IsMainAdmin, nil
}

// AddAdmin grants admin rights to an existing user and reports whether a row
// was updated.
func (s *Store) AddAdmin(ctx context.Context, userID int64) (bool, error) {
	column := "is_admin"
	if userID == s.mainAdminID {
		column = "is_main_admin"
	}
	q := s.db.Rebind(`UPDATE users SET ` + column + ` = ? WHERE user_id = ?`)
	res, err := s.db.ExecContext(ctx, q, true, userID)
	if err != nil {
		return false, fmt.Errorf("add admin: %w", err)
	}
	return affected(res)
}

// RemoveAdmin revokes admin rights. The main admin is never demoted.
func (s *Store) RemoveAdmin(ctx context.Context, userID int64) (bool, error) {
	if userID == s.mainAdminID {
		return false, nil
	}
	q := s.db.Rebind(`
		UPDATE users SET is_admin = ?, is_main_admin = ?
		WHERE user_id = ? AND (is_admin = ? OR is_main_admin = ?)`)
	res, err := s.db.ExecContext(ctx, q, false, false, userID, true, true)
	if err != nil {
		return false, fmt.Errorf("remove admin: %w", err)
	}
	return affected(res)
}

// ListAdmins returns stored admins plus the main admin, ascending.
func (s *Store) ListAdmins(ctx context.Context) ([]int64, error) {
	var ids []int64
	q := s.db.Rebind(`SELECT user_id FROM users WHERE is_admin = ? OR is_main_admin = ?`)
	if err := s.db.SelectContext(ctx, &ids, q, true, true); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	if s.mainAdminID != 0 && !slices.Contains(ids, s.mainAdminID) {
		ids = append(ids, s.mainAdminID)
	}
	slices.Sort(ids)
	return ids, nil
}

// ListUserIDs returns every registered user.
func (s *Store) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT user_id FROM users ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ids, nil
}

// ListRecipientIDs returns registered users that are not admins.
func (s *Store) ListRecipientIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	q := s.db.Rebind(`
		SELECT user_id FROM users
		WHERE is_admin = ? AND is_main_admin = ? AND user_id <> ?
		ORDER BY user_id`)
	if err := s.db.SelectContext(ctx, &ids, q, false, false, s.mainAdminID); err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	return ids, nil
}

// Stats counts users registered since the start of today (UTC), within the
// last 7 days and within the last 30 days.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	now := s.timestamp()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	q := s.db.Rebind(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS daily,
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS weekly,
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS monthly
		FROM users`)
	var st Stats
	err := s.db.GetContext(ctx, &st, q, today, now.AddDate(0, 0, -7), now.AddDate(0, 0, -30))
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
