// Package notifier pushes the daily qazo reminder to every non-admin user.
package notifier

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/qazobot/qazobot/app/prayer"
	"github.com/qazobot/qazobot/core/logger"
	"github.com/qazobot/qazobot/core/metrics"
)

const (
	component = "service.notifier"
	// JobName labels the reminder in logs and metrics.
	JobName = "qazo_reminder"
)

// Store is the storage slice the sweep needs.
type Store interface {
	ListRecipientIDs(ctx context.Context) ([]int64, error)
	UserQazo(ctx context.Context, userID int64) (prayer.Counts, error)
}

// Deliverer renders and sends the reminder panel.
type Deliverer interface {
	SendReminder(ctx context.Context, userID int64, counts prayer.Counts) error
}

// Options tune the sweep.
type Options struct {
	// Workers bounds concurrent deliveries; 0 -> 4.
	Workers int
}

// Notifier runs reminder sweeps.
type Notifier struct {
	store     Store
	deliverer Deliverer
	workers   int
}

// New wires the notifier.
func New(store Store, deliverer Deliverer, opts Options) *Notifier {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Notifier{store: store, deliverer: deliverer, workers: opts.Workers}
}

// Report aggregates one sweep.
type Report struct {
	RunID      string
	Recipients int
	Sent       int
	Failed     int
}

// Sweep sends the reminder to every non-admin user. Per-recipient failures
// are logged and counted; only a failure to list recipients aborts the run.
func (n *Notifier) Sweep(ctx context.Context) (Report, error) {
	rep := Report{RunID: logger.RunIDFrom(ctx)}
	if rep.RunID == "" {
		rep.RunID = uuid.NewString()
		ctx = logger.WithRunID(ctx, rep.RunID)
	}
	start := time.Now()

	ids, err := n.store.ListRecipientIDs(ctx)
	if err != nil {
		logger.Error(ctx, component, "notifier.sweep", slog.String("status", "fail"), logger.Err(err))
		return rep, err
	}
	rep.Recipients = len(ids)

	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)
	for _, id := range ids {
		id := id
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := n.remind(gctx, id); err != nil {
				failed.Add(1)
				metrics.FanoutDeliveries.WithLabelValues(JobName, "fail").Inc()
				logger.Warn(gctx, component, "notifier.delivery",
					slog.Int64("target_id", id),
					slog.String("status", "fail"),
					logger.Err(err),
				)
				return nil
			}
			sent.Add(1)
			metrics.FanoutDeliveries.WithLabelValues(JobName, "ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	rep.Sent, rep.Failed = int(sent.Load()), int(failed.Load())
	logger.Info(ctx, component, "notifier.sweep",
		slog.String("job", JobName),
		slog.Int("recipients", rep.Recipients),
		slog.Int("sent", rep.Sent),
		slog.Int("failed", rep.Failed),
		slog.Duration("duration", logger.Took(start)),
	)
	return rep, ctx.Err()
}

func (n *Notifier) remind(ctx context.Context, userID int64) error {
	counts, err := n.store.UserQazo(ctx, userID)
	if err != nil {
		return err
	}
	return n.deliverer.SendReminder(ctx, userID, counts)
}

// Job adapts the sweep to the scheduler's run signature.
func (n *Notifier) Job(ctx context.Context) error {
	_, err := n.Sweep(ctx)
	return err
}
