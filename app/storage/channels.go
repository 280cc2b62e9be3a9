package storage

import (
	"context"
	"fmt"
)

// AddChannel stores a required channel handle. Duplicates are ignored.
func (s *Store) AddChannel(ctx context.Context, channel string) error {
	q := s.db.Rebind(`INSERT INTO channels (channel_id) VALUES (?) ON CONFLICT (channel_id) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, q, channel); err != nil {
		return fmt.Errorf("add channel: %w", err)
	}
	return nil
}

// RemoveChannel deletes a channel and reports whether it existed.
func (s *Store) RemoveChannel(ctx context.Context, channel string) (bool, error) {
	q := s.db.Rebind(`DELETE FROM channels WHERE channel_id = ?`)
	res, err := s.db.ExecContext(ctx, q, channel)
	if err != nil {
		return false, fmt.Errorf("remove channel: %w", err)
	}
	return affected(res)
}

// ListChannels lists required channels sorted by handle.
func (s *Store) ListChannels(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.db.SelectContext(ctx, &out, `SELECT channel_id FROM channels ORDER BY channel_id`); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return out, nil
}
