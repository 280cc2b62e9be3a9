// Package admin implements the admin panel workflows: broadcast, required
// channel management, admin grants and FAQ authoring.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/qazobot/qazobot/app/storage"
	"github.com/qazobot/qazobot/core/logger"
	"github.com/qazobot/qazobot/core/telegram/state"
)

const component = "service.admin"

// Dialog states.
const (
	StateBroadcast     state.State = "admin.broadcast"
	StateChannelAdd    state.State = "admin.channel_add"
	StateChannelRemove state.State = "admin.channel_remove"
	StateAdminAdd      state.State = "admin.admin_add"
	StateAdminRemove   state.State = "admin.admin_remove"
	StateFAQQuestion   state.State = "admin.faq_question"
	StateFAQAnswer     state.State = "admin.faq_answer"
)

const faqQuestionKey = "question"

var (
	ErrNotAdmin        = errors.New("admin: not an admin")
	ErrNotMainAdmin    = errors.New("admin: main admin only")
	ErrInvalidUserID   = errors.New("admin: invalid user id")
	ErrAlreadyAdmin    = errors.New("admin: user is already an admin")
	ErrUserNotFound    = errors.New("admin: user not registered")
	ErrTargetNotAdmin  = errors.New("admin: target is not an admin")
	ErrCannotRemove    = errors.New("admin: admin cannot be removed")
	ErrEmptyInput      = errors.New("admin: empty input")
	ErrBotNotAdmin     = errors.New("admin: bot is not a channel administrator")
	ErrChannelNotFound = errors.New("admin: channel unreachable")
	ErrNoFAQQuestion   = errors.New("admin: faq question missing")
)

// Store is the storage slice the admin workflows need.
type Store interface {
	Stats(ctx context.Context) (storage.Stats, error)
	ListRecipientIDs(ctx context.Context) ([]int64, error)
	AddChannel(ctx context.Context, channel string) error
	RemoveChannel(ctx context.Context, channel string) (bool, error)
	ListChannels(ctx context.Context) ([]string, error)
	ListAdmins(ctx context.Context) ([]int64, error)
	AddAdmin(ctx context.Context, userID int64) (bool, error)
	RemoveAdmin(ctx context.Context, userID int64) (bool, error)
	AddFAQ(ctx context.Context, question, answer, videoURL string) (int64, error)
}

// Roles resolves admin rights.
type Roles interface {
	IsAdmin(ctx context.Context, userID int64) bool
	IsMainAdmin(userID int64) bool
}

// Profile is the public part of a Telegram chat.
type Profile struct {
	FullName string
	Username string
}

// Messenger is the Telegram surface the workflows use.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	MemberStatus(ctx context.Context, channel string, userID int64) (string, error)
	Profile(ctx context.Context, userID int64) (Profile, error)
	BotID() int64
}

// Dialogs is the part of the FSM manager the workflows drive.
type Dialogs interface {
	Get(ctx context.Context, userID int64) state.Session
	Start(ctx context.Context, userID int64, st state.State) error
	SetState(ctx context.Context, userID int64, st state.State) error
	SetData(ctx context.Context, userID int64, key, value string) error
	Clear(ctx context.Context, userID int64) error
}

// Service runs the admin workflows.
type Service struct {
	store     Store
	roles     Roles
	messenger Messenger
	dialogs   Dialogs
}

// NewService wires the service.
func NewService(store Store, roles Roles, messenger Messenger, dialogs Dialogs) *Service {
	return &Service{store: store, roles: roles, messenger: messenger, dialogs: dialogs}
}

var mainAdminOnly = map[state.State]bool{
	StateAdminAdd:    true,
	StateAdminRemove: true,
}

// Begin opens a dialog for actor, discarding whatever dialog was pending.
func (s *Service) Begin(ctx context.Context, actor int64, st state.State) error {
	if !s.roles.IsAdmin(ctx, actor) {
		return ErrNotAdmin
	}
	if mainAdminOnly[st] && !s.roles.IsMainAdmin(actor) {
		return ErrNotMainAdmin
	}
	if err := s.dialogs.Start(ctx, actor, st); err != nil {
		return fmt.Errorf("begin %s: %w", st, err)
	}
	logger.Info(ctx, component, "admin.dialog_start", slog.String("state", string(st)))
	return nil
}

// Cancel closes any pending dialog.
func (s *Service) Cancel(ctx context.Context, actor int64) error {
	return s.dialogs.Clear(ctx, actor)
}

// Stats returns the registration statistics.
func (s *Service) Stats(ctx context.Context) (storage.Stats, error) {
	return s.store.Stats(ctx)
}

// Channels lists the required channels.
func (s *Service) Channels(ctx context.Context) ([]string, error) {
	return s.store.ListChannels(ctx)
}

// AddChannel verifies that the bot administers the channel and stores it.
// On failure the dialog stays open so the admin can retry.
func (s *Service) AddChannel(ctx context.Context, actor int64, input string) (string, error) {
	channel := NormalizeChannel(input)
	if channel == "" {
		return "", ErrEmptyInput
	}
	status, err := s.messenger.MemberStatus(ctx, channel, s.messenger.BotID())
	if err != nil {
		logger.Warn(ctx, component, "admin.channel_verify",
			slog.String("channel_id", channel),
			slog.String("outcome", "rejected"),
			logger.Err(err),
		)
		return channel, fmt.Errorf("%w: %w", ErrChannelNotFound, err)
	}
	if status != "administrator" && status != "creator" {
		logger.Warn(ctx, component, "admin.channel_verify",
			slog.String("channel_id", channel),
			slog.String("state", status),
			slog.String("outcome", "rejected"),
		)
		return channel, ErrBotNotAdmin
	}
	if err := s.store.AddChannel(ctx, channel); err != nil {
		return channel, err
	}
	s.finish(ctx, actor)
	logger.Info(ctx, component, "admin.channel_added", slog.String("channel_id", channel))
	return channel, nil
}

// RemoveChannel deletes the channel and reports whether it existed.
func (s *Service) RemoveChannel(ctx context.Context, actor int64, input string) (string, bool, error) {
	channel := NormalizeChannel(input)
	if channel == "" {
		return "", false, ErrEmptyInput
	}
	existed, err := s.store.RemoveChannel(ctx, channel)
	if err != nil {
		return channel, false, err
	}
	s.finish(ctx, actor)
	logger.Info(ctx, component, "admin.channel_removed",
		slog.String("channel_id", channel),
		slog.Bool("existed", existed),
	)
	return channel, existed, nil
}

// NormalizeChannel trims input. Bare usernames get an "@" prefix; numeric
// ids are kept as typed.
func NormalizeChannel(input string) string {
	ch := strings.TrimSpace(input)
	if ch == "" || strings.HasPrefix(ch, "@") {
		return ch
	}
	if _, err := strconv.ParseInt(ch, 10, 64); err == nil {
		return ch
	}
	if rest, ok := strings.CutPrefix(ch, "https://t.me/"); ok {
		ch = rest
	}
	return "@" + ch
}

// AdminEntry is one row of the admin list.
type AdminEntry struct {
	ID      int64
	Main    bool
	Profile Profile
	// LookupErr is set when the profile could not be fetched.
	LookupErr error
}

// Admins lists every admin with profile details. Main admin only.
func (s *Service) Admins(ctx context.Context, actor int64) ([]AdminEntry, error) {
	if !s.roles.IsMainAdmin(actor) {
		return nil, ErrNotMainAdmin
	}
	ids, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AdminEntry, 0, len(ids))
	for _, id := range ids {
		entry := AdminEntry{ID: id, Main: s.roles.IsMainAdmin(id)}
		entry.Profile, entry.LookupErr = s.messenger.Profile(ctx, id)
		if entry.LookupErr != nil {
			logger.Warn(ctx, component, "admin.profile_lookup",
				slog.Int64("target_id", id),
				slog.String("status", "fail"),
				logger.Err(entry.LookupErr),
			)
		}
		out = append(out, entry)
	}
	return out, nil
}

// ParseUserID accepts a positive numeric Telegram id.
func ParseUserID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidUserID
	}
	return id, nil
}

// GrantAdmin makes a registered user an admin. An invalid id keeps the
// dialog open; every other outcome closes it.
func (s *Service) GrantAdmin(ctx context.Context, actor int64, text string) (int64, error) {
	if !s.roles.IsMainAdmin(actor) {
		return 0, ErrNotMainAdmin
	}
	target, err := ParseUserID(text)
	if err != nil {
		return 0, err
	}
	defer s.finish(ctx, actor)
	if s.roles.IsAdmin(ctx, target) {
		return target, ErrAlreadyAdmin
	}
	ok, err := s.store.AddAdmin(ctx, target)
	if err != nil {
		return target, err
	}
	if !ok {
		return target, ErrUserNotFound
	}
	logger.Info(ctx, component, "admin.granted", slog.Int64("target_id", target))
	return target, nil
}

// RevokeAdmin removes admin rights from target. The main admin is never
// demoted.
func (s *Service) RevokeAdmin(ctx context.Context, actor int64, text string) (int64, error) {
	if !s.roles.IsMainAdmin(actor) {
		return 0, ErrNotMainAdmin
	}
	target, err := ParseUserID(text)
	if err != nil {
		return 0, err
	}
	defer s.finish(ctx, actor)
	if !s.roles.IsAdmin(ctx, target) {
		return target, ErrTargetNotAdmin
	}
	ok, err := s.store.RemoveAdmin(ctx, target)
	if err != nil {
		return target, err
	}
	if !ok {
		return target, ErrCannotRemove
	}
	logger.Info(ctx, component, "admin.revoked", slog.Int64("target_id", target))
	return target, nil
}

// SubmitFAQQuestion records the question and asks for the answer.
func (s *Service) SubmitFAQQuestion(ctx context.Context, actor int64, text string) error {
	q := strings.TrimSpace(text)
	if q == "" {
		return ErrEmptyInput
	}
	if err := s.dialogs.SetData(ctx, actor, faqQuestionKey, q); err != nil {
		return err
	}
	return s.dialogs.SetState(ctx, actor, StateFAQAnswer)
}

// SubmitFAQAnswer persists the entry built from the carried question.
func (s *Service) SubmitFAQAnswer(ctx context.Context, actor int64, text string) (int64, error) {
	answer := strings.TrimSpace(text)
	if answer == "" {
		return 0, ErrEmptyInput
	}
	question, ok := s.dialogs.Get(ctx, actor).Value(faqQuestionKey)
	if !ok || question == "" {
		s.finish(ctx, actor)
		return 0, ErrNoFAQQuestion
	}
	id, err := s.store.AddFAQ(ctx, question, answer, "")
	s.finish(ctx, actor)
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, component, "admin.faq_added", slog.Int64("faq_id", id))
	return id, nil
}

func (s *Service) finish(ctx context.Context, actor int64) {
	if err := s.dialogs.Clear(ctx, actor); err != nil {
		logger.Warn(ctx, component, "admin.dialog_clear", slog.String("status", "fail"), logger.Err(err))
	}
}
