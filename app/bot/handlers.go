// Package bot translates Telegram updates into qazobot operations: it owns
// the commands, inline menus and dialog handlers, and the Messenger the
// services use to reach Telegram on their own.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qazobot/qazobot/app/access"
	"github.com/qazobot/qazobot/app/actions"
	"github.com/qazobot/qazobot/app/admin"
	"github.com/qazobot/qazobot/app/prayertimes"
	"github.com/qazobot/qazobot/app/qazo"
	"github.com/qazobot/qazobot/app/storage"
	"github.com/qazobot/qazobot/app/subscription"
	"github.com/qazobot/qazobot/core/logger"
	tg "github.com/qazobot/qazobot/core/telegram"
	"github.com/qazobot/qazobot/core/telegram/callbacks"
	"github.com/qazobot/qazobot/core/telegram/commands"
	tghelpers "github.com/qazobot/qazobot/core/telegram/helpers"
	"github.com/qazobot/qazobot/core/telegram/middleware"
	"github.com/qazobot/qazobot/core/telegram/router"
	"github.com/qazobot/qazobot/core/telegram/state"
	"github.com/qazobot/qazobot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

const component = "bot"

var _ ui.FallbackProvider = (*Handlers)(nil)

// Users is the registration lookup the handlers need.
type Users interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// FAQs reads the FAQ catalogue.
type FAQs interface {
	ListFAQ(ctx context.Context) ([]storage.FAQ, error)
	FAQ(ctx context.Context, id int64) (storage.FAQ, error)
}

// Timings looks up today's prayer times for a city.
type Timings interface {
	Lookup(ctx context.Context, city string) (prayertimes.Timings, time.Time, error)
}

// Options wires the handlers to the services.
type Options struct {
	Users     Users
	FAQ       FAQs
	Roles     *access.Checker
	Gate      *subscription.Gate
	Qazo      *qazo.Service
	Admin     *admin.Service
	Timings   Timings
	Dialogs   *state.Manager
	Messenger *Messenger
}

// Handlers implements every bot interaction.
type Handlers struct {
	Options
	adminOpts middleware.AdminOptions
}

// New builds the handler set.
func New(opts Options) *Handlers {
	h := &Handlers{Options: opts}
	h.adminOpts = opts.Roles.AdminOptions(h.rejectAdmin)
	return h
}

type actionHandler func(c tele.Context, a actions.Action) error

func (h *Handlers) actionHandlers() map[actions.Kind]actionHandler {
	return map[actions.Kind]actionHandler{
		actions.Noop:        func(tele.Context, actions.Action) error { return nil },
		actions.Menu:        h.menu,
		actions.Back:        h.back,
		actions.Subscribed:  h.confirmSubscription,
		actions.QazoPanel:   h.counterPanel,
		actions.QazoInc:     h.increment,
		actions.QazoDec:     h.decrement,
		actions.RangeStart:  h.rangeStart,
		actions.RangeUnit:   h.rangeUnit,
		actions.PrayerTimes: h.regions,
		actions.PTRegion:    h.cities,
		actions.PTCity:      h.timings,
		actions.FAQList:     h.faqList,
		actions.FAQAnswer:   h.faqAnswer,

		actions.AdminStats:         h.adminStats,
		actions.AdminBroadcast:     h.beginDialog(admin.StateBroadcast, textAskBroadcast),
		actions.AdminChannelAdd:    h.beginDialog(admin.StateChannelAdd, textAskChannelAdd),
		actions.AdminChannelRemove: h.beginDialog(admin.StateChannelRemove, textAskChannelRm),
		actions.AdminChannelList:   h.adminChannels,
		actions.AdminList:          h.adminList,
		actions.AdminAdd:           h.beginDialog(admin.StateAdminAdd, textAskAdminAdd),
		actions.AdminRemove:        h.beginDialog(admin.StateAdminRemove, textAskAdminRemove),
		actions.AdminFAQAdd:        h.beginDialog(admin.StateFAQQuestion, textAskFAQQuestion),
	}
}

// Register adds commands, one callback per action kind and the dialog
// handlers. Every action kind must have a handler.
func (h *Handlers) Register(reg *tg.Registry) error {
	cmds := map[string]commands.Command{
		"/start":  {Handler: h.start, Description: "Botni ishga tushirish"},
		"/cancel": {Handler: h.cancel, Description: "Joriy amalni bekor qilish"},
		"/admin":  {Handler: h.adminPanel, Description: "Admin paneli", AdminOnly: true, Aliases: []string{"Admin"}},
	}
	for name, cmd := range cmds {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			return err
		}
	}

	handlers := h.actionHandlers()
	adminOnly := middleware.AdminOnlyMiddleware(h.adminOpts)
	for _, k := range actions.Kinds() {
		fn, ok := handlers[k]
		if !ok {
			return fmt.Errorf("bot: no handler for action %q", k)
		}
		hf := h.decode(fn)
		switch {
		case k.AdminOnly():
			hf = adminOnly(hf)
		case k != actions.Noop && k != actions.Subscribed:
			hf = h.registered(hf)
		}
		if err := reg.RegisterCallback(string(k), hf); err != nil {
			return err
		}
	}
	h.registerFallbacks(reg, h)

	h.Dialogs.Handle(qazo.StateRangeChoice, h.rangeChoiceText)
	for _, st := range []state.State{qazo.StateYears, qazo.StateMonths, qazo.StateDays} {
		h.Dialogs.Handle(st, h.rangeAmount)
	}
	adminDialogs := map[state.State]tele.HandlerFunc{
		admin.StateBroadcast:     h.broadcast,
		admin.StateChannelAdd:    h.channelAdd,
		admin.StateChannelRemove: h.channelRemove,
		admin.StateAdminAdd:      h.adminAdd,
		admin.StateAdminRemove:   h.adminRemove,
		admin.StateFAQQuestion:   h.faqQuestion,
		admin.StateFAQAnswer:     h.faqAnswerText,
	}
	dialogGuard := middleware.AdminOnlyMiddleware(h.Roles.AdminOptions(func(c tele.Context) error {
		if err := h.Dialogs.Clear(tghelpers.BuildContext(c), tghelpers.SenderID(c)); err != nil {
			return err
		}
		return h.rejectAdmin(c)
	}))
	for st, fn := range adminDialogs {
		h.Dialogs.Handle(st, dialogGuard(fn))
	}
	return nil
}

// Routes returns the command, callback and text routes over reg.
func (h *Handlers) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{Admin: h.adminOpts})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	return append(routes, router.TextRoutes(h.Dialogs, reg, router.TextOptions{Admin: h.adminOpts})...)
}

func (h *Handlers) registerFallbacks(reg *tg.Registry, fb ui.FallbackProvider) {
	reg.SetCallbackNotFound(fb.UnknownCallback())
	reg.SetTextFallback(fb.UnknownText())
}

// UnknownText answers free text outside any dialog with the menu.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return h.registered(func(c tele.Context) error {
		return tghelpers.SendHTML(c, textMenu, h.menuFor(tghelpers.BuildContext(c), tghelpers.SenderID(c)))
	})
}

// UnknownCallback handles buttons whose action no longer decodes.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.Respond(c, textStale, true)
	}
}

// RateLimited tells a throttled user to slow down.
func (h *Handlers) RateLimited(c tele.Context) error {
	return tghelpers.Respond(c, textRateLimited, false)
}

func (h *Handlers) decode(fn actionHandler) tele.HandlerFunc {
	return func(c tele.Context) error {
		a, err := actions.Parse(callbacks.ParseCallbackData(c.Callback()))
		if err != nil {
			logger.Warn(tghelpers.BuildContext(c), component, "action.decode",
				slog.String("outcome", "rejected"),
				logger.Err(err),
			)
			return h.UnknownCallback()(c)
		}
		return fn(c, a)
	}
}

// registered lets the update through for known users. Unknown users go
// through the subscription gate first: if it registers them the update
// proceeds, otherwise the gating screen is shown instead.
func (h *Handlers) registered(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		uid := tghelpers.SenderID(c)
		exists, err := h.Users.UserExists(ctx, uid)
		if err != nil {
			return h.fail(c, err)
		}
		if exists {
			return next(c)
		}
		res, err := h.Gate.Enter(ctx, subscriber(c))
		if err != nil {
			return h.fail(c, err)
		}
		if res.Gated() {
			return h.show(c, textSubscribe, subscribeMenu(res.Channels))
		}
		return next(c)
	}
}

func (h *Handlers) rejectAdmin(c tele.Context) error {
	if c.Callback() != nil {
		return tghelpers.Respond(c, textNotAdmin, true)
	}
	return tghelpers.SendHTML(c, textNoRights, mainMenu())
}

// show edits the message behind a callback or sends a new one for text.
func (h *Handlers) show(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() != nil {
		return tghelpers.EditOrSendHTML(c, text, markup)
	}
	return tghelpers.SendHTML(c, text, markup)
}

// fail tells the user something went wrong and hands err to the router,
// which logs it with the handler summary.
func (h *Handlers) fail(c tele.Context, err error) error {
	if rerr := tghelpers.Respond(c, textError, c.Callback() != nil); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

func (h *Handlers) menuFor(ctx context.Context, uid int64) *tele.ReplyMarkup {
	if h.Roles.IsAdmin(ctx, uid) {
		return adminMenu(h.Roles.IsMainAdmin(uid))
	}
	return mainMenu()
}

func subscriber(c tele.Context) subscription.User {
	u := c.Sender()
	if u == nil {
		return subscription.User{}
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return subscription.User{ID: u.ID, FullName: name}
}
