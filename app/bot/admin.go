package bot

import (
	"errors"
	"log/slog"

	"github.com/qazobot/qazobot/app/actions"
	"github.com/qazobot/qazobot/app/admin"
	"github.com/qazobot/qazobot/core/logger"
	tghelpers "github.com/qazobot/qazobot/core/telegram/helpers"
	"github.com/qazobot/qazobot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) panel(c tele.Context) *tele.ReplyMarkup {
	return adminMenu(h.Roles.IsMainAdmin(tghelpers.SenderID(c)))
}

func (h *Handlers) adminStats(c tele.Context, _ actions.Action) error {
	stats, err := h.Admin.Stats(tghelpers.BuildContext(c))
	if err != nil {
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, textStats(stats), h.panel(c))
}

func (h *Handlers) adminChannels(c tele.Context, _ actions.Action) error {
	channels, err := h.Admin.Channels(tghelpers.BuildContext(c))
	if err != nil {
		return h.fail(c, err)
	}
	if len(channels) == 0 {
		return tghelpers.SendHTML(c, textNoChannels, backOnly())
	}
	return tghelpers.SendHTML(c, textChannels(channels), h.panel(c))
}

func (h *Handlers) adminList(c tele.Context, _ actions.Action) error {
	entries, err := h.Admin.Admins(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if errors.Is(err, admin.ErrNotMainAdmin) {
		return tghelpers.SendHTML(c, textMainOnly, backOnly())
	}
	if err != nil {
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, textAdmins(entries), h.panel(c))
}

// beginDialog opens an admin dialog and sends its prompt.
func (h *Handlers) beginDialog(st state.State, prompt string) actionHandler {
	return func(c tele.Context, _ actions.Action) error {
		err := h.Admin.Begin(tghelpers.BuildContext(c), tghelpers.SenderID(c), st)
		switch {
		case errors.Is(err, admin.ErrNotMainAdmin):
			return tghelpers.SendHTML(c, textMainOnly, backOnly())
		case errors.Is(err, admin.ErrNotAdmin):
			return h.rejectAdmin(c)
		case err != nil:
			return h.fail(c, err)
		}
		return tghelpers.SendHTML(c, prompt, backOnly())
	}
}

func (h *Handlers) broadcast(c tele.Context) error {
	rep, err := h.Admin.Broadcast(tghelpers.BuildContext(c), tghelpers.SenderID(c), c.Text())
	switch {
	case errors.Is(err, admin.ErrEmptyInput):
		return tghelpers.SendHTML(c, textEmptyInput, backOnly())
	case err != nil:
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, textBroadcastDone(rep.Sent), h.panel(c))
}

func (h *Handlers) channelAdd(c tele.Context) error {
	channel, err := h.Admin.AddChannel(tghelpers.BuildContext(c), tghelpers.SenderID(c), c.Text())
	switch {
	case errors.Is(err, admin.ErrEmptyInput):
		return tghelpers.SendHTML(c, textEmptyInput, backOnly())
	case errors.Is(err, admin.ErrBotNotAdmin):
		return tghelpers.SendHTML(c, textBotNotAdmin, backOnly())
	case errors.Is(err, admin.ErrChannelNotFound):
		return tghelpers.SendHTML(c, textChannelUnreachable(channel), backOnly())
	case err != nil:
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, textChannelAdded(channel), h.panel(c))
}

func (h *Handlers) channelRemove(c tele.Context) error {
	channel, existed, err := h.Admin.RemoveChannel(tghelpers.BuildContext(c), tghelpers.SenderID(c), c.Text())
	switch {
	case errors.Is(err, admin.ErrEmptyInput):
		return tghelpers.SendHTML(c, textEmptyInput, backOnly())
	case err != nil:
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, textChannelRemoved(channel, existed), h.panel(c))
}

func (h *Handlers) adminAdd(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	target, err := h.Admin.GrantAdmin(ctx, tghelpers.SenderID(c), c.Text())
	switch {
	case errors.Is(err, admin.ErrInvalidUserID):
		return tghelpers.SendHTML(c, textBadUserID, backOnly())
	case errors.Is(err, admin.ErrAlreadyAdmin):
		return tghelpers.SendHTML(c, textAlreadyAdmin, backOnly())
	case errors.Is(err, admin.ErrUserNotFound):
		return tghelpers.SendHTML(c, textUserNotFound, backOnly())
	case errors.Is(err, admin.ErrNotMainAdmin):
		return tghelpers.SendHTML(c, textMainOnly, backOnly())
	case err != nil:
		return h.fail(c, err)
	}

	text := textAdminGranted(target)
	if err := h.Messenger.SendHTML(ctx, target, textYouAreAdmin, adminMenu(h.Roles.IsMainAdmin(target))); err != nil {
		logger.Warn(ctx, component, "admin.notify",
			slog.Int64("target_id", target),
			slog.String("status", "fail"),
			logger.Err(err),
		)
		text = textAdminGrantedSilent(target)
	}
	return tghelpers.SendHTML(c, text, h.panel(c))
}

func (h *Handlers) adminRemove(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	target, err := h.Admin.RevokeAdmin(ctx, tghelpers.SenderID(c), c.Text())
	switch {
	case errors.Is(err, admin.ErrInvalidUserID):
		return tghelpers.SendHTML(c, textBadUserID, backOnly())
	case errors.Is(err, admin.ErrTargetNotAdmin):
		return tghelpers.SendHTML(c, textTargetNotAdmin, backOnly())
	case errors.Is(err, admin.ErrCannotRemove):
		return tghelpers.SendHTML(c, textCannotRemove, backOnly())
	case errors.Is(err, admin.ErrNotMainAdmin):
		return tghelpers.SendHTML(c, textMainOnly, backOnly())
	case err != nil:
		return h.fail(c, err)
	}

	text := textAdminRevoked(target)
	if err := h.Messenger.SendHTML(ctx, target, textYouAreNotAdmin, mainMenu()); err != nil {
		logger.Warn(ctx, component, "admin.notify",
			slog.Int64("target_id", target),
			slog.String("status", "fail"),
			logger.Err(err),
		)
		text = textAdminRevokedSilent(target)
	}
	return tghelpers.SendHTML(c, text, h.panel(c))
}

func (h *Handlers) faqQuestion(c tele.Context) error {
	err := h.Admin.SubmitFAQQuestion(tghelpers.BuildContext(c), tghelpers.SenderID(c), c.Text())
	switch {
	case errors.Is(err, admin.ErrEmptyInput):
		return tghelpers.SendHTML(c, textEmptyInput, backOnly())
	case err != nil:
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, textAskFAQAnswer, backOnly())
}

func (h *Handlers) faqAnswerText(c tele.Context) error {
	_, err := h.Admin.SubmitFAQAnswer(tghelpers.BuildContext(c), tghelpers.SenderID(c), c.Text())
	switch {
	case errors.Is(err, admin.ErrEmptyInput):
		return tghelpers.SendHTML(c, textEmptyInput, backOnly())
	case err != nil:
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, textFAQSaved, h.panel(c))
}
