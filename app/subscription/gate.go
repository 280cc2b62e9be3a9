// Package subscription gates first access on membership in the required
// channels. Admins and deployments without channels are never gated.
package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qazobot/qazobot/core/logger"
)

const component = "service.subscription"

// Screen tells the bot layer which response to render.
type Screen int

const (
	// ScreenGated asks the user to subscribe and confirm.
	ScreenGated Screen = iota
	// ScreenAdmin opens the admin menu.
	ScreenAdmin
	// ScreenWelcome greets a newly registered user.
	ScreenWelcome
	// ScreenWelcomeBack greets a returning user.
	ScreenWelcomeBack
	// ScreenNoChannels confirms that no subscription is required.
	ScreenNoChannels
	// ScreenConfirmed confirms a successful membership check.
	ScreenConfirmed
)

// Result is the outcome of Enter or Confirm.
type Result struct {
	Screen Screen
	// Channels is set when Screen is ScreenGated.
	Channels []string
	// MainAdmin is set for ScreenAdmin.
	MainAdmin bool
}

// Gated reports whether the user still has to subscribe.
func (r Result) Gated() bool {
	return r.Screen == ScreenGated
}

// User identifies the person passing the gate.
type User struct {
	ID       int64
	FullName string
}

// MembershipOracle reports a user's status in a channel, e.g. "member" or "left".
type MembershipOracle interface {
	MemberStatus(ctx context.Context, channel string, userID int64) (string, error)
}

// Store is the storage slice the gate needs.
type Store interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	AddUser(ctx context.Context, userID int64, fullName string) error
	ListChannels(ctx context.Context) ([]string, error)
}

// Roles resolves admin rights.
type Roles interface {
	IsAdmin(ctx context.Context, userID int64) bool
	IsMainAdmin(userID int64) bool
}

// Gate implements the Gated/Ungated flow.
type Gate struct {
	store  Store
	roles  Roles
	oracle MembershipOracle
}

// NewGate wires the gate.
func NewGate(store Store, roles Roles, oracle MembershipOracle) *Gate {
	return &Gate{store: store, roles: roles, oracle: oracle}
}

var joined = map[string]struct{}{
	"member":        {},
	"administrator": {},
	"creator":       {},
}

// Enter handles the start of a session.
func (g *Gate) Enter(ctx context.Context, u User) (Result, error) {
	if g.roles.IsAdmin(ctx, u.ID) {
		if err := g.store.AddUser(ctx, u.ID, u.FullName); err != nil {
			return Result{}, err
		}
		logger.Info(ctx, component, "gate.enter", slog.String("outcome", "ok"), slog.String("mode", "admin"))
		return Result{Screen: ScreenAdmin, MainAdmin: g.roles.IsMainAdmin(u.ID)}, nil
	}

	channels, err := g.store.ListChannels(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(channels) > 0 {
		logger.Info(ctx, component, "gate.enter",
			slog.String("outcome", "rejected"),
			slog.Int("count", len(channels)),
		)
		return Result{Screen: ScreenGated, Channels: channels}, nil
	}

	exists, err := g.store.UserExists(ctx, u.ID)
	if err != nil {
		return Result{}, err
	}
	if exists {
		logger.Info(ctx, component, "gate.enter", slog.String("outcome", "ok"), slog.String("mode", "returning"))
		return Result{Screen: ScreenWelcomeBack}, nil
	}
	if err := g.store.AddUser(ctx, u.ID, u.FullName); err != nil {
		return Result{}, err
	}
	logger.Info(ctx, component, "gate.enter", slog.String("outcome", "ok"), slog.String("mode", "new"))
	return Result{Screen: ScreenWelcome}, nil
}

// Confirm re-checks membership after the user claims to have subscribed.
func (g *Gate) Confirm(ctx context.Context, u User) (Result, error) {
	if g.roles.IsAdmin(ctx, u.ID) {
		if err := g.store.AddUser(ctx, u.ID, u.FullName); err != nil {
			return Result{}, err
		}
		return Result{Screen: ScreenAdmin, MainAdmin: g.roles.IsMainAdmin(u.ID)}, nil
	}

	channels, err := g.store.ListChannels(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(channels) == 0 {
		if err := g.store.AddUser(ctx, u.ID, u.FullName); err != nil {
			return Result{}, err
		}
		return Result{Screen: ScreenNoChannels}, nil
	}

	if !g.subscribed(ctx, u.ID, channels) {
		return Result{Screen: ScreenGated, Channels: channels}, nil
	}
	if err := g.store.AddUser(ctx, u.ID, u.FullName); err != nil {
		return Result{}, err
	}
	logger.Info(ctx, component, "gate.confirm", slog.String("outcome", "ok"), slog.Int("count", len(channels)))
	return Result{Screen: ScreenConfirmed}, nil
}

// subscribed checks channels in order and stops at the first failure. An
// oracle error, including a channel the bot cannot see, counts as failure.
func (g *Gate) subscribed(ctx context.Context, userID int64, channels []string) bool {
	for _, ch := range channels {
		status, err := g.oracle.MemberStatus(ctx, ch, userID)
		if err != nil {
			logger.Warn(ctx, component, "gate.membership_error",
				slog.String("channel_id", ch),
				slog.String("outcome", "rejected"),
				logger.Err(fmt.Errorf("member status: %w", err)),
			)
			return false
		}
		if _, ok := joined[status]; !ok {
			logger.Info(ctx, component, "gate.not_subscribed",
				slog.String("channel_id", ch),
				slog.String("state", status),
				slog.String("outcome", "rejected"),
			)
			return false
		}
	}
	return true
}
