package prayertimes

import (
	"context"
	"log/slog"
	"time"

	"github.com/qazobot/qazobot/core/logger"
)

const component = "service.prayertimes"

// Fetcher retrieves fresh timings.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (Timings, error)
}

// Service looks timings up through an optional cache.
type Service struct {
	fetcher Fetcher
	cache   Cache
	loc     *time.Location
	now     func() time.Time
}

// NewService wires the lookup. cache may be nil; loc defines the calendar day.
func NewService(fetcher Fetcher, cache Cache, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{fetcher: fetcher, cache: cache, loc: loc, now: time.Now}
}

// Lookup returns today's timings for city and the day they belong to.
// Cache failures are logged and bypassed.
func (s *Service) Lookup(ctx context.Context, city string) (Timings, time.Time, error) {
	day := s.now().In(s.loc)
	if s.cache != nil {
		t, ok, err := s.cache.Get(ctx, city, day)
		switch {
		case err != nil:
			logger.Warn(ctx, component, "prayertimes.cache", slog.String("city", city), slog.String("status", "fail"), logger.Err(err))
		case ok:
			logger.Debug(ctx, component, "prayertimes.lookup", slog.String("city", city), slog.String("cache", "hit"))
			return t, day, nil
		}
	}

	start := time.Now()
	t, err := s.fetcher.Fetch(ctx, city)
	if err != nil {
		logger.Warn(ctx, component, "prayertimes.lookup",
			slog.String("city", city),
			slog.String("status", "fail"),
			slog.Duration("duration", logger.Took(start)),
			logger.Err(err),
		)
		return Timings{}, day, err
	}
	logger.Info(ctx, component, "prayertimes.lookup",
		slog.String("city", city),
		slog.String("cache", "miss"),
		slog.Duration("duration", logger.Took(start)),
	)
	if s.cache != nil {
		if err := s.cache.Set(ctx, city, day, t); err != nil {
			logger.Warn(ctx, component, "prayertimes.cache", slog.String("city", city), slog.String("status", "fail"), logger.Err(err))
		}
	}
	return t, day, nil
}
