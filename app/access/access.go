// Package access answers admin and main-admin questions for handlers and
// the admin-only middleware.
package access

import (
	"context"
	"log/slog"

	"github.com/qazobot/qazobot/core/logger"
	"github.com/qazobot/qazobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// AdminStore is the storage slice the checker needs.
type AdminStore interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Checker resolves roles. Storage errors deny access.
type Checker struct {
	store       AdminStore
	mainAdminID int64
}

// NewChecker builds a checker. mainAdminID is an admin regardless of storage.
func NewChecker(store AdminStore, mainAdminID int64) *Checker {
	return &Checker{store: store, mainAdminID: mainAdminID}
}

// IsAdmin reports whether userID holds admin rights.
func (c *Checker) IsAdmin(ctx context.Context, userID int64) bool {
	if userID == 0 {
		return false
	}
	if c.IsMainAdmin(userID) {
		return true
	}
	if c.store == nil {
		return false
	}
	ok, err := c.store.IsAdmin(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "access", "access.check_failed",
			slog.Int64("target_id", userID),
			slog.String("status", "fail"),
			logger.Err(err),
		)
		return false
	}
	return ok
}

// IsMainAdmin reports whether userID is the configured main admin.
func (c *Checker) IsMainAdmin(userID int64) bool {
	return c.mainAdminID != 0 && userID == c.mainAdminID
}

// MainAdminID returns the configured main admin.
func (c *Checker) MainAdminID() int64 {
	return c.mainAdminID
}

// AdminOptions adapts the checker to the admin-only middleware.
func (c *Checker) AdminOptions(onReject tele.HandlerFunc) middleware.AdminOptions {
	return middleware.AdminOptions{IsAdmin: c.IsAdmin, OnReject: onReject}
}
