package admin

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qazobot/qazobot/core/logger"
	"github.com/qazobot/qazobot/core/metrics"
)

// Report aggregates a fan-out.
type Report struct {
	RunID      string
	Recipients int
	Sent       int
	Failed     int
}

// Broadcast delivers text to every non-admin user. A failed delivery is
// logged and skipped. The dialog is closed whatever the outcome.
func (s *Service) Broadcast(ctx context.Context, actor int64, text string) (Report, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Report{}, ErrEmptyInput
	}
	defer s.finish(ctx, actor)

	rep := Report{RunID: uuid.NewString()}
	ctx = logger.WithRunID(ctx, rep.RunID)
	start := time.Now()

	ids, err := s.store.ListRecipientIDs(ctx)
	if err != nil {
		return rep, err
	}
	rep.Recipients = len(ids)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		err := s.messenger.SendText(ctx, id, text)
		metrics.FanoutDeliveries.WithLabelValues("broadcast", metrics.Result(err)).Inc()
		if err != nil {
			rep.Failed++
			logger.Warn(ctx, component, "broadcast.delivery",
				slog.Int64("target_id", id),
				slog.String("status", "fail"),
				logger.Err(err),
			)
			continue
		}
		rep.Sent++
	}

	logger.Info(ctx, component, "broadcast.done",
		slog.Int("recipients", rep.Recipients),
		slog.Int("sent", rep.Sent),
		slog.Int("failed", rep.Failed),
		slog.Duration("duration", logger.Took(start)),
	)
	return rep, ctx.Err()
}
