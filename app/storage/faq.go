package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddFAQ stores an entry and returns its id. An empty videoURL is stored as NULL.
func (s *Store) AddFAQ(ctx context.Context, question, answer, videoURL string) (int64, error) {
	var video *string
	if videoURL != "" {
		video = &videoURL
	}
	var id int64
	q := s.db.Rebind(`INSERT INTO faq (question, answer, video_url) VALUES (?, ?, ?) RETURNING id`)
	if err := s.db.GetContext(ctx, &id, q, question, answer, video); err != nil {
		return 0, fmt.Errorf("add faq: %w", err)
	}
	return id, nil
}

// ListFAQ lists all entries by id.
func (s *Store) ListFAQ(ctx context.Context) ([]FAQ, error) {
	var out []FAQ
	if err := s.db.SelectContext(ctx, &out, `SELECT id, question, answer, video_url FROM faq ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list faq: %w", err)
	}
	return out, nil
}

// FAQ loads one entry or returns ErrNotFound.
func (s *Store) FAQ(ctx context.Context, id int64) (FAQ, error) {
	var f FAQ
	q := s.db.Rebind(`SELECT id, question, answer, video_url FROM faq WHERE id = ?`)
	if err := s.db.GetContext(ctx, &f, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FAQ{}, ErrNotFound
		}
		return FAQ{}, fmt.Errorf("get faq: %w", err)
	}
	return f, nil
}
