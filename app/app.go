// Package app assembles qazobot: storage, services, Telegram handlers and
// the background jobs, on top of the core runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/qazobot/qazobot/app/access"
	"github.com/qazobot/qazobot/app/admin"
	"github.com/qazobot/qazobot/app/bot"
	"github.com/qazobot/qazobot/app/config"
	"github.com/qazobot/qazobot/app/notifier"
	"github.com/qazobot/qazobot/app/prayertimes"
	"github.com/qazobot/qazobot/app/qazo"
	"github.com/qazobot/qazobot/app/storage"
	"github.com/qazobot/qazobot/app/subscription"
	"github.com/qazobot/qazobot/core/bootstrap"
	corecmd "github.com/qazobot/qazobot/core/cmd"
	"github.com/qazobot/qazobot/core/logger"
	"github.com/qazobot/qazobot/core/ops"
	"github.com/qazobot/qazobot/core/scheduler"
	tg "github.com/qazobot/qazobot/core/telegram"
	"github.com/qazobot/qazobot/core/telegram/state"
	"github.com/qazobot/qazobot/migrations"
)

// App is the bootstrapped application.
type App struct {
	cfg       *config.Config
	db        *sqlx.DB
	redis     *redis.Client
	store     *storage.Store
	registry  *tg.Registry
	handlers  *bot.Handlers
	messenger *bot.Messenger
	scheduler *scheduler.Scheduler
}

// Bootstrap builds the application from a loaded *config.Config.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	return New(ctx, cfg, bootstrap.Options{})
}

// New runs the bootstrap pipeline and wires every component. Fields left
// empty in base are filled from cfg.
func New(ctx context.Context, cfg *config.Config, base bootstrap.Options) (*App, error) {
	mainAdmin := cfg.Telegram.AdminID

	base.Config = cfg.CoreConfig()
	base.Database = cfg.Database
	if base.Migrations == nil {
		base.Migrations = migrations.FS
	}
	base.Seeders = append(base.Seeders, mainAdminSeeder(mainAdmin))
	res, err := bootstrap.Run(ctx, base)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		db:        res.DB,
		store:     storage.New(res.DB, mainAdmin),
		registry:  tg.NewRegistry(),
		messenger: bot.NewMessenger(),
	}
	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.cfg

	var (
		dialogStore state.Store
		timesCache  prayertimes.Cache
	)
	if cfg.Redis.Enabled() {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("app: redis ping: %w", err)
		}
		dialogStore = state.NewRedisStore(a.redis, "qazobot:fsm:", cfg.Redis.StateTTL)
		timesCache = prayertimes.NewRedisCache(a.redis, "qazobot:prayertimes:", cfg.Redis.CacheTTL)
	}
	dialogs := state.NewManager(dialogStore)

	loc, err := cfg.Reminder.Location()
	if err != nil {
		return fmt.Errorf("app: reminder timezone: %w", err)
	}

	roles := access.NewChecker(a.store, cfg.Telegram.AdminID)
	times := prayertimes.NewService(prayertimes.NewClient(prayertimes.ClientOptions{
		BaseURL: cfg.PrayerTimes.BaseURL,
		Country: cfg.PrayerTimes.Country,
		Timeout: cfg.PrayerTimes.Timeout,
	}), timesCache, loc)

	a.handlers = bot.New(bot.Options{
		Users:     a.store,
		FAQ:       a.store,
		Roles:     roles,
		Gate:      subscription.NewGate(a.store, roles, a.messenger),
		Qazo:      qazo.NewService(a.store, dialogs),
		Admin:     admin.NewService(a.store, roles, a.messenger, dialogs),
		Timings:   times,
		Dialogs:   dialogs,
		Messenger: a.messenger,
	})
	if err := a.handlers.Register(a.registry); err != nil {
		return fmt.Errorf("app: register handlers: %w", err)
	}

	if cfg.Reminder.On() {
		a.scheduler = scheduler.New(loc)
		n := notifier.New(a.store, a.messenger, notifier.Options{})
		err := a.scheduler.AddDaily(scheduler.DailyJob{
			Name:  notifier.JobName,
			At:    cfg.Reminder.Time,
			Grace: cfg.Reminder.MisfireGrace,
			Run:   n.Job,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// TelegramRunOptions implements corecmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(core, a.handlers.RateLimited),
		Routes:      a.handlers.Routes(a.registry),
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.messenger.Bind(rt.Bot, rt.Dispatcher)
			return nil
		},
		OnStop: func(context.Context, tg.Runtime) error {
			a.messenger.Unbind()
			return nil
		},
	}, nil
}

// Services implements corecmd.TelegramApp: the reminder scheduler and the
// ops server, each only when configured.
func (a *App) Services() []corecmd.Service {
	var svcs []corecmd.Service
	if a.scheduler != nil {
		svcs = append(svcs, corecmd.Service{
			Name: "scheduler",
			Run: func(ctx context.Context) error {
				// Deliveries need the bot, so missed runs are caught up only once it is bound.
				select {
				case <-a.messenger.Ready():
				case <-ctx.Done():
					return ctx.Err()
				}
				return a.scheduler.Run(ctx)
			},
		})
	}
	if listen := a.cfg.Ops.Listen; listen != "" {
		srv := ops.New(ops.Options{Listen: listen, Checks: a.healthChecks()})
		svcs = append(svcs, corecmd.Service{Name: "ops", Run: srv.Run})
	}
	return svcs
}

func (a *App) healthChecks() map[string]ops.Check {
	checks := map[string]ops.Check{"db": a.store.Ping}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// mainAdminSeeder makes sure the configured main admin has a flagged row.
func mainAdminSeeder(mainAdmin int64) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		if mainAdmin == 0 {
			return nil
		}
		store := storage.New(db, mainAdmin)
		if err := store.AddUser(ctx, mainAdmin, ""); err != nil {
			return err
		}
		if _, err := store.AddAdmin(ctx, mainAdmin); err != nil {
			return err
		}
		logger.Debug(ctx, "app", "seed.main_admin", slog.Int64("target_id", mainAdmin))
		return nil
	})
}
