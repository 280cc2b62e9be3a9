// Package qazo adjusts missed-prayer counters one at a time and in bulk
// through the range wizard.
package qazo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/qazobot/qazobot/app/prayer"
	"github.com/qazobot/qazobot/core/logger"
	"github.com/qazobot/qazobot/core/telegram/state"
)

const component = "service.qazo"

var (
	// ErrAlreadyZero is returned by Decrement when the counter is already zero.
	ErrAlreadyZero = errors.New("qazo: counter already zero")
	// ErrInvalidAmount rejects non-numeric, non-positive or oversized wizard input.
	ErrInvalidAmount = errors.New("qazo: invalid amount")
	// ErrNoRangeDialog is returned when an amount arrives outside the wizard.
	ErrNoRangeDialog = errors.New("qazo: no range dialog in progress")
)

// Wizard states.
const (
	StateRangeChoice state.State = "qazo.range_choice"
	StateYears       state.State = "qazo.years"
	StateMonths      state.State = "qazo.months"
	StateDays        state.State = "qazo.days"
)

// Unit is the granularity picked in the range wizard.
type Unit string

const (
	Years  Unit = "y"
	Months Unit = "m"
	Days   Unit = "d"
)

type unitSpec struct {
	state      state.State
	multiplier int
	max        int
}

var units = map[Unit]unitSpec{
	Years:  {state: StateYears, multiplier: 365, max: 100},
	Months: {state: StateMonths, multiplier: 30, max: 1200},
	Days:   {state: StateDays, multiplier: 1, max: 36500},
}

// ParseUnit validates a callback-supplied unit.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.TrimSpace(s))
	if _, ok := units[u]; !ok {
		return "", fmt.Errorf("qazo: unknown unit %q", s)
	}
	return u, nil
}

// Multiplier is the number of days one unit stands for.
func (u Unit) Multiplier() int {
	return units[u].multiplier
}

// State is the dialog state awaiting an amount in this unit.
func (u Unit) State() state.State {
	return units[u].state
}

// UnitForState maps an awaiting-amount state back to its unit.
func UnitForState(st state.State) (Unit, bool) {
	for u, spec := range units {
		if spec.state == st {
			return u, true
		}
	}
	return "", false
}

// ParseAmount accepts a positive integer no greater than the unit's bound.
func ParseAmount(u Unit, text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 || n > units[u].max {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// Store is the storage slice the service needs.
type Store interface {
	UserQazo(ctx context.Context, userID int64) (prayer.Counts, error)
	Count(ctx context.Context, userID int64, p prayer.Type) (int, error)
	UpdateQazoCount(ctx context.Context, userID int64, p prayer.Type, delta int) error
	AddQazoToAll(ctx context.Context, userID int64, delta int) error
}

// Dialogs is the part of the FSM manager the wizard drives.
type Dialogs interface {
	Get(ctx context.Context, userID int64) state.Session
	Start(ctx context.Context, userID int64, st state.State) error
	SetState(ctx context.Context, userID int64, st state.State) error
	Clear(ctx context.Context, userID int64) error
}

// Service implements direct adjustment and the range wizard.
type Service struct {
	store   Store
	dialogs Dialogs
}

// NewService wires the service.
func NewService(store Store, dialogs Dialogs) *Service {
	return &Service{store: store, dialogs: dialogs}
}

// Counts returns all six counters.
func (s *Service) Counts(ctx context.Context, userID int64) (prayer.Counts, error) {
	return s.store.UserQazo(ctx, userID)
}

// Increment adds one qazo and returns fresh counts.
func (s *Service) Increment(ctx context.Context, userID int64, p prayer.Type) (prayer.Counts, error) {
	if err := s.store.UpdateQazoCount(ctx, userID, p, 1); err != nil {
		return nil, err
	}
	logger.Debug(ctx, component, "qazo.increment", slog.String("prayer", string(p)), slog.Int("delta", 1))
	return s.store.UserQazo(ctx, userID)
}

// Decrement removes one qazo. A zero counter is left untouched and
// ErrAlreadyZero is returned.
func (s *Service) Decrement(ctx context.Context, userID int64, p prayer.Type) (prayer.Counts, error) {
	current, err := s.store.Count(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	if current <= 0 {
		return nil, ErrAlreadyZero
	}
	if err := s.store.UpdateQazoCount(ctx, userID, p, -1); err != nil {
		return nil, err
	}
	logger.Debug(ctx, component, "qazo.decrement", slog.String("prayer", string(p)), slog.Int("delta", -1))
	return s.store.UserQazo(ctx, userID)
}

// StartRange opens the wizard, replacing any pending dialog.
func (s *Service) StartRange(ctx context.Context, userID int64) error {
	return s.dialogs.Start(ctx, userID, StateRangeChoice)
}

// ChooseUnit moves the wizard to the amount prompt for u.
func (s *Service) ChooseUnit(ctx context.Context, userID int64, u Unit) error {
	if _, ok := units[u]; !ok {
		return fmt.Errorf("qazo: unknown unit %q", u)
	}
	return s.dialogs.SetState(ctx, userID, u.State())
}

// SubmitAmount applies the amount typed for the pending unit to every
// prayer type and closes the wizard. Invalid input keeps the dialog open.
func (s *Service) SubmitAmount(ctx context.Context, userID int64, text string) (Unit, int, error) {
	u, ok := UnitForState(s.dialogs.Get(ctx, userID).State)
	if !ok {
		return "", 0, ErrNoRangeDialog
	}
	n, err := ParseAmount(u, text)
	if err != nil {
		logger.Debug(ctx, component, "qazo.range_invalid", slog.String("unit", string(u)), slog.String("outcome", "rejected"))
		return u, 0, err
	}
	delta := n * u.Multiplier()
	if err := s.store.AddQazoToAll(ctx, userID, delta); err != nil {
		return u, 0, err
	}
	if err := s.dialogs.Clear(ctx, userID); err != nil {
		logger.Warn(ctx, component, "qazo.dialog_clear", slog.String("status", "fail"), logger.Err(err))
	}
	logger.Info(ctx, component, "qazo.range_applied",
		slog.String("unit", string(u)),
		slog.Int("amount", n),
		slog.Int("delta", delta),
	)
	return u, delta, nil
}
