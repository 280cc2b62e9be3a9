package state

import (
	"context"
	"errors"
	"maps"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// ErrNoSession is returned by Store.Load when the user has no session.
var ErrNoSession = errors.New("state: no session")

// Session stores conversation state and string-keyed scratch data for a user.
type Session struct {
	State State             `json:"state"`
	Data  map[string]string `json:"data,omitempty"`
}

// Active reports whether the session is in a non-idle state.
func (s Session) Active() bool {
	return s.State != "" && s.State != StateIdle
}

// Value returns a data entry.
func (s Session) Value(key string) (string, bool) {
	v, ok := s.Data[key]
	return v, ok
}

func (s Session) clone() Session {
	out := Session{State: s.State}
	if len(s.Data) > 0 {
		out.Data = maps.Clone(s.Data)
	}
	return out
}

// Store persists sessions keyed by Telegram user id.
type Store interface {
	Load(ctx context.Context, userID int64) (Session, error)
	Save(ctx context.Context, userID int64, s Session) error
	Delete(ctx context.Context, userID int64) error
}
