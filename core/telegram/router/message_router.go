package router

import (
	"context"
	"time"

	tg "github.com/qazobot/qazobot/core/telegram"
	tghelpers "github.com/qazobot/qazobot/core/telegram/helpers"
	"github.com/qazobot/qazobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for an FSM manager.
type FSM interface {
	InProgress(ctx context.Context, userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls routing for free text. Registered command aliases
// win over an active dialog so menu buttons always leave the wizard.
type TextOptions struct {
	Admin       middleware.AdminOptions
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the OnText handler: command aliases, then the FSM,
// then the registry fallback.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				return commandHandler(key, cmd, opts.Admin)(c)
			}
		}

		if fsmMgr != nil && fsmMgr.InProgress(tghelpers.BuildContext(c), tghelpers.SenderID(c)) {
			return handleWithSummary(c, "fsm", start, "", "", func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}
