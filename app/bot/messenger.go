package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/qazobot/qazobot/app/admin"
	"github.com/qazobot/qazobot/app/prayer"
	"github.com/qazobot/qazobot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned while the messenger has no running bot.
var ErrNotBound = errors.New("bot: messenger is not bound to a bot")

// Messenger performs bot-initiated Bot API calls for the services: fan-out
// delivery, membership checks and profile lookups. The bot is created by the
// telegram runtime, so it is bound in OnStart and released in OnStop.
type Messenger struct {
	bot  atomic.Pointer[tele.Bot]
	disp atomic.Pointer[sender.Dispatcher]

	ready     chan struct{}
	readyOnce sync.Once
}

// NewMessenger returns an unbound messenger.
func NewMessenger() *Messenger {
	return &Messenger{ready: make(chan struct{})}
}

// Bind attaches the running bot. A nil dispatcher sends without retries.
func (m *Messenger) Bind(b *tele.Bot, d *sender.Dispatcher) {
	m.disp.Store(d)
	m.bot.Store(b)
	m.readyOnce.Do(func() { close(m.ready) })
}

// Ready is closed once a bot was bound for the first time.
func (m *Messenger) Ready() <-chan struct{} {
	return m.ready
}

// Unbind detaches the bot; later calls fail with ErrNotBound.
func (m *Messenger) Unbind() {
	m.bot.Store(nil)
	m.disp.Store(nil)
}

func (m *Messenger) current() (*tele.Bot, error) {
	b := m.bot.Load()
	if b == nil {
		return nil, ErrNotBound
	}
	return b, nil
}

// do runs a Bot API call through the dispatcher so flood waits and
// transient failures are retried with the shared policy.
func (m *Messenger) do(ctx context.Context, action, endpoint string, run func() error) error {
	if d := m.disp.Load(); d != nil {
		return d.Do(ctx, action, endpoint, run)
	}
	return run()
}

func (m *Messenger) send(ctx context.Context, action string, chatID int64, text string, opts *tele.SendOptions) error {
	b, err := m.current()
	if err != nil {
		return err
	}
	return m.do(ctx, action, "sendMessage", func() error {
		_, err := b.Send(tele.ChatID(chatID), text, opts)
		return err
	})
}

// SendText delivers text as-is, without a parse mode.
func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) error {
	return m.send(ctx, "send.broadcast", chatID, text, &tele.SendOptions{})
}

// SendHTML delivers an HTML message with an optional inline keyboard.
func (m *Messenger) SendHTML(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error {
	return m.send(ctx, "send.notify", chatID, text, &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
		ReplyMarkup:           markup,
	})
}

// SendReminder pushes the daily counter panel.
func (m *Messenger) SendReminder(ctx context.Context, userID int64, counts prayer.Counts) error {
	return m.SendHTML(ctx, userID, textReminder, reminderKeyboard(counts))
}

// MemberStatus returns the user's chat member status in channel, which is
// either an @username or a numeric chat id.
func (m *Messenger) MemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	b, err := m.current()
	if err != nil {
		return "", err
	}
	var member *tele.ChatMember
	err = m.do(ctx, "member.status", "getChatMember", func() error {
		chat, err := resolveChat(b, channel)
		if err != nil {
			return err
		}
		member, err = b.ChatMemberOf(chat, &tele.User{ID: userID})
		return err
	})
	if err != nil {
		return "", err
	}
	return string(member.Role), nil
}

func resolveChat(b *tele.Bot, channel string) (*tele.Chat, error) {
	channel = strings.TrimSpace(channel)
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return &tele.Chat{ID: id}, nil
	}
	return b.ChatByUsername(channel)
}

// Profile looks up a user's display name and username.
func (m *Messenger) Profile(ctx context.Context, userID int64) (admin.Profile, error) {
	b, err := m.current()
	if err != nil {
		return admin.Profile{}, err
	}
	var chat *tele.Chat
	err = m.do(ctx, "profile.lookup", "getChat", func() error {
		chat, err = b.ChatByID(userID)
		return err
	})
	if err != nil {
		return admin.Profile{}, err
	}
	return admin.Profile{
		FullName: strings.TrimSpace(chat.FirstName + " " + chat.LastName),
		Username: chat.Username,
	}, nil
}

// BotID is the bot's own user id, or 0 while unbound.
func (m *Messenger) BotID() int64 {
	b := m.bot.Load()
	if b == nil || b.Me == nil {
		return 0
	}
	return b.Me.ID
}
