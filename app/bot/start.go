package bot

import (
	"log/slog"

	"github.com/qazobot/qazobot/app/actions"
	"github.com/qazobot/qazobot/app/subscription"
	"github.com/qazobot/qazobot/core/logger"
	tghelpers "github.com/qazobot/qazobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	if err := h.Dialogs.Clear(ctx, uid); err != nil {
		logger.Warn(ctx, component, "dialog.clear", slog.String("status", "fail"), logger.Err(err))
	}
	res, err := h.Gate.Enter(ctx, subscriber(c))
	if err != nil {
		return h.fail(c, err)
	}
	return h.renderGate(c, res)
}

func (h *Handlers) renderGate(c tele.Context, res subscription.Result) error {
	switch res.Screen {
	case subscription.ScreenGated:
		return h.show(c, textSubscribe, subscribeMenu(res.Channels))
	case subscription.ScreenAdmin:
		text := textAdminWelcome
		if c.Callback() != nil {
			text = textSubsAdmin
		}
		return h.show(c, text, adminMenu(res.MainAdmin))
	case subscription.ScreenWelcomeBack:
		return h.show(c, textWelcomeBack, mainMenu())
	case subscription.ScreenNoChannels:
		return h.show(c, textSubsNone, mainMenu())
	case subscription.ScreenConfirmed:
		return h.show(c, textSubsOK, mainMenu())
	default:
		return h.show(c, textWelcome, mainMenu())
	}
}

func (h *Handlers) confirmSubscription(c tele.Context, _ actions.Action) error {
	res, err := h.Gate.Confirm(tghelpers.BuildContext(c), subscriber(c))
	if err != nil {
		return h.fail(c, err)
	}
	if res.Gated() {
		return tghelpers.Respond(c, textSubsMissing, true)
	}
	return h.renderGate(c, res)
}

func (h *Handlers) cancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	if err := h.Dialogs.Clear(ctx, uid); err != nil {
		return h.fail(c, err)
	}
	return tghelpers.SendHTML(c, textCancelled, h.menuFor(ctx, uid))
}

// menu returns to the main menu in place.
func (h *Handlers) menu(c tele.Context, _ actions.Action) error {
	ctx := tghelpers.BuildContext(c)
	if err := h.Dialogs.Clear(ctx, tghelpers.SenderID(c)); err != nil {
		logger.Warn(ctx, component, "dialog.clear", slog.String("status", "fail"), logger.Err(err))
	}
	return h.show(c, textMenu, mainMenu())
}

// back abandons any dialog and returns to the menu matching the user's role.
func (h *Handlers) back(c tele.Context, _ actions.Action) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	if err := h.Dialogs.Clear(ctx, uid); err != nil {
		return h.fail(c, err)
	}
	return h.show(c, textBackToMenu, h.menuFor(ctx, uid))
}

func (h *Handlers) adminPanel(c tele.Context) error {
	return tghelpers.SendHTML(c, textAdminPanel, adminMenu(h.Roles.IsMainAdmin(tghelpers.SenderID(c))))
}
