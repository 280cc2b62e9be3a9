// Package scheduler runs daily jobs on a cron clock in a fixed location.
// A job that fires later than its misfire grace is skipped, and a job whose
// slot passed shortly before startup runs once on start.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/qazobot/qazobot/core/logger"
	"github.com/qazobot/qazobot/core/metrics"
)

// DailyJob runs once a day at At ("HH:MM") in the scheduler's location.
type DailyJob struct {
	Name  string
	At    string
	Grace time.Duration
	Run   func(ctx context.Context) error
}

// Scheduler wraps a cron instance with grace handling and structured logs.
type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
	now  func() time.Time

	mu   sync.Mutex
	jobs []scheduled
	ctx  context.Context
}

type scheduled struct {
	job          DailyJob
	hour, minute int
}

// New builds a scheduler running in loc (UTC when nil).
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		loc: loc,
		now: time.Now,
		ctx: context.Background(),
	}
}

// AddDaily registers job. It must be called before Run.
func (s *Scheduler) AddDaily(job DailyJob) error {
	if job.Run == nil {
		return fmt.Errorf("scheduler: job %q has no run function", job.Name)
	}
	hour, minute, err := ParseClock(job.At)
	if err != nil {
		return fmt.Errorf("scheduler: job %q: %w", job.Name, err)
	}
	sj := scheduled{job: job, hour: hour, minute: minute}
	spec := fmt.Sprintf("0 %d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(spec, func() { s.fire(sj, false) }); err != nil {
		return fmt.Errorf("scheduler: job %q: %w", job.Name, err)
	}
	s.mu.Lock()
	s.jobs = append(s.jobs, sj)
	s.mu.Unlock()
	return nil
}

// Run starts the clock, catches up recently missed slots and blocks until
// ctx is done. Running jobs are awaited before it returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	jobs := append([]scheduled(nil), s.jobs...)
	s.mu.Unlock()

	logger.SCHED.Info("scheduler started",
		slog.String("event", "scheduler.start"),
		slog.Int("count", len(jobs)),
		slog.String("tz", s.loc.String()),
	)

	s.cron.Start()
	for _, sj := range jobs {
		if withinGrace(s.now().In(s.loc), sj.hour, sj.minute, sj.job.Grace) {
			go s.fire(sj, true)
		}
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()
	logger.SCHED.Info("scheduler stopped", slog.String("event", "scheduler.stop"))
	return nil
}

func (s *Scheduler) fire(sj scheduled, catchUp bool) {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()

	ctx := logger.WithRunID(parent, uuid.NewString())
	name := sj.job.Name
	now := s.now().In(s.loc)

	if !catchUp && sj.job.Grace > 0 && !withinGrace(now, sj.hour, sj.minute, sj.job.Grace) {
		metrics.SchedulerRuns.WithLabelValues(name, "skip").Inc()
		logger.Warn(ctx, "scheduler", "job.misfire",
			slog.String("job", name),
			slog.String("status", "skip"),
			slog.Duration("late", now.Sub(lastOccurrence(now, sj.hour, sj.minute))),
		)
		return
	}

	start := time.Now()
	err := sj.job.Run(ctx)
	status := metrics.Result(err)
	metrics.SchedulerRuns.WithLabelValues(name, status).Inc()

	attrs := []slog.Attr{
		slog.String("job", name),
		slog.String("status", status),
		slog.Bool("catch_up", catchUp),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		logger.Error(ctx, "scheduler", "job.run", append(attrs, logger.Err(err))...)
		return
	}
	logger.Info(ctx, "scheduler", "job.run", attrs...)
}

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(s string) (int, int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// lastOccurrence returns the latest hour:minute slot at or before now.
func lastOccurrence(now time.Time, hour, minute int) time.Time {
	slot := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if slot.After(now) {
		slot = slot.AddDate(0, 0, -1)
	}
	return slot
}

func withinGrace(now time.Time, hour, minute int, grace time.Duration) bool {
	if grace <= 0 {
		return false
	}
	return now.Sub(lastOccurrence(now, hour, minute)) <= grace
}

// cronLogger adapts cron's logging to the scheduler component logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	logger.SCHED.Debug(msg, append([]any{slog.String("event", "cron.info")}, kv...)...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	logger.SCHED.Error(msg, append([]any{slog.String("event", "cron.error"), logger.Err(err)}, kv...)...)
}
