package router

import (
	"log/slog"
	"time"

	"github.com/qazobot/qazobot/core/logger"
	tg "github.com/qazobot/qazobot/core/telegram"
	"github.com/qazobot/qazobot/core/telegram/commands"
	"github.com/qazobot/qazobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	Admin middleware.AdminOptions
}

// CommandRoutes prepares slash-command handlers with admin gating and summaries.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  commandHandler(name, def, opts.Admin),
		})
	}

	logger.TWire.Info("routes wired",
		slog.String("event", "tg.wire"),
		slog.Int("count", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}

func commandHandler(name string, def commands.Command, admin middleware.AdminOptions) tele.HandlerFunc {
	h := def.Handler
	if def.AdminOnly {
		h = middleware.AdminOnlyMiddleware(admin)(h)
	}
	handlerName := normalizeHandlerName(name)
	return func(c tele.Context) error {
		return handleWithSummary(c, handlerName, time.Now(), "", "", func() error {
			return h(c)
		})
	}
}
