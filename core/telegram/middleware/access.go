package middleware

import (
	"context"

	tghelpers "github.com/qazobot/qazobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
// IsAdmin is consulted on every update so role changes apply immediately.
type AdminOptions struct {
	IsAdmin  func(ctx context.Context, userID int64) bool
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only admins can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.IsAdmin == nil {
				return next(c)
			}
			uid := tghelpers.SenderID(c)
			if uid == 0 || !opts.IsAdmin(tghelpers.BuildContext(c), uid) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
