package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/qazobot/qazobot/app/prayer"
)

// upsertQazo inserts max(delta,0) for a missing row and clamps an existing
// counter at zero.
const upsertQazo = `
	INSERT INTO qazo (user_id, prayer_name, count) VALUES (?, ?, ?)
	ON CONFLICT (user_id, prayer_name) DO UPDATE
	SET count = CASE WHEN qazo.count + ? > 0 THEN qazo.count + ? ELSE 0 END`

// UserQazo returns the counters of every prayer type. Missing rows read as zero.
func (s *Store) UserQazo(ctx context.Context, userID int64) (prayer.Counts, error) {
	var rows []struct {
		Name  string `db:"prayer_name"`
		Count int    `db:"count"`
	}
	q := s.db.Rebind(`SELECT prayer_name, count FROM qazo WHERE user_id = ?`)
	if err := s.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, fmt.Errorf("qazo counts: %w", err)
	}
	counts := make(prayer.Counts, len(prayer.All()))
	for _, p := range prayer.All() {
		counts[p] = 0
	}
	for _, r := range rows {
		if p, err := prayer.Parse(r.Name); err == nil {
			counts[p] = r.Count
		}
	}
	return counts, nil
}

// Count returns one counter.
func (s *Store) Count(ctx context.Context, userID int64, p prayer.Type) (int, error) {
	var n []int
	q := s.db.Rebind(`SELECT count FROM qazo WHERE user_id = ? AND prayer_name = ?`)
	if err := s.db.SelectContext(ctx, &n, q, userID, string(p)); err != nil {
		return 0, fmt.Errorf("qazo count: %w", err)
	}
	if len(n) == 0 {
		return 0, nil
	}
	return n[0], nil
}

// UpdateQazoCount applies delta to one counter, never letting it drop below zero.
func (s *Store) UpdateQazoCount(ctx context.Context, userID int64, p prayer.Type, delta int) error {
	if err := addQazo(ctx, s.db, userID, p, delta); err != nil {
		return fmt.Errorf("add qazo %s: %w", p, err)
	}
	return nil
}

// AddQazoToAll applies the same delta to every prayer type in one transaction.
func (s *Store) AddQazoToAll(ctx context.Context, userID int64, delta int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add qazo all: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, p := range prayer.All() {
		if err := addQazo(ctx, tx, userID, p, delta); err != nil {
			return fmt.Errorf("add qazo all %s: %w", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add qazo all: commit: %w", err)
	}
	return nil
}

func addQazo(ctx context.Context, ext sqlx.ExtContext, userID int64, p prayer.Type, delta int) error {
	_, err := ext.ExecContext(ctx, ext.Rebind(upsertQazo), userID, string(p), max(delta, 0), delta, delta)
	return err
}
