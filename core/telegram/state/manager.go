package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/qazobot/qazobot/core/logger"
	tghelpers "github.com/qazobot/qazobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Manager drives dialogs over a Store and dispatches text to the handler
// registered for the user's current state.
type Manager struct {
	store Store

	mu       sync.RWMutex
	handlers map[State]tele.HandlerFunc
}

// NewManager builds a manager. A nil store falls back to memory.
func NewManager(store Store) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{store: store, handlers: make(map[State]tele.HandlerFunc)}
}

// Handle associates a state with its handler.
func (m *Manager) Handle(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[st] = h
}

// Get returns the user's session, or an idle one when none exists or the
// store is unreachable.
func (m *Manager) Get(ctx context.Context, userID int64) Session {
	s, err := m.store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			logger.Warn(ctx, "tg.fsm", "fsm.load", slog.String("status", "fail"), logger.Err(err))
		}
		return Session{State: StateIdle}
	}
	return s
}

// Start begins a new dialog in st, discarding any previous scratch data.
func (m *Manager) Start(ctx context.Context, userID int64, st State) error {
	return m.store.Save(ctx, userID, Session{State: st})
}

// SetState moves the user to st and keeps collected data.
func (m *Manager) SetState(ctx context.Context, userID int64, st State) error {
	s := m.Get(ctx, userID)
	s.State = st
	return m.store.Save(ctx, userID, s)
}

// SetData stores a scratch value in the current session.
func (m *Manager) SetData(ctx context.Context, userID int64, key, value string) error {
	s := m.Get(ctx, userID)
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	s.Data[key] = value
	return m.store.Save(ctx, userID, s)
}

// Clear ends the dialog.
func (m *Manager) Clear(ctx context.Context, userID int64) error {
	return m.store.Delete(ctx, userID)
}

// InProgress reports whether the user currently has an active dialog.
func (m *Manager) InProgress(ctx context.Context, userID int64) bool {
	return m.Get(ctx, userID).Active()
}

// ManagerHandler executes the handler registered for the user's current state.
// Stale states without a handler are cleared.
func (m *Manager) ManagerHandler(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := tghelpers.SenderID(c)
	current := m.Get(ctx, userID).State

	m.mu.RLock()
	handler, ok := m.handlers[current]
	m.mu.RUnlock()

	logger.Debug(ctx, "tg.fsm", "fsm.dispatch",
		slog.String("state", string(current)),
		slog.Bool("handled", ok),
	)
	if !ok {
		return m.Clear(ctx, userID)
	}
	return handler(c)
}
