// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/metrics"
)

// Purger deletes readings older than a horizon.
type Purger interface {
	PurgeOlderThan(ctx context.Context, horizonDays int) (int64, error)
}

// Config configures a Sweeper.
type Config struct {
	// Schedule is a 5-field cron expression.
	Schedule string

	// HorizonDays is the age in days past which readings are deleted.
	HorizonDays int

	// Location evaluates Schedule. Defaults to time.Local.
	Location *time.Location

	// RunOnStartup purges once before waiting for the first tick.
	RunOnStartup bool

	// OnPurge, if set, is called after a purge that removed rows.
	OnPurge func(deleted int64)
}

// DefaultConfig purges readings older than 30 days every midnight.
func DefaultConfig() Config {
	return Config{
		Schedule:    "0 0 * * *",
		HorizonDays: 30,
		Location:    time.Local,
	}
}

// Option customizes a Sweeper.
type Option func(*Sweeper)

// WithClock replaces the wall clock and timer, for tests.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
		s.after = after
	}
}

// Sweeper runs the retention purge on its schedule. It implements suture.Service.
type Sweeper struct {
	purger Purger
	cfg    Config
	cron   *CronExpression
	log    zerolog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewSweeper validates cfg and creates a Sweeper.
func NewSweeper(purger Purger, cfg Config, opts ...Option) (*Sweeper, error) {
	cron, err := ParseCron(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	if cfg.HorizonDays <= 0 {
		return nil, fmt.Errorf("retention horizon must be positive, got %d days", cfg.HorizonDays)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	s := &Sweeper{
		purger: purger,
		cfg:    cfg,
		cron:   cron,
		log:    logging.WithComponent("retention"),
		now:    time.Now,
		after:  time.After,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// String implements fmt.Stringer for suture logs.
func (s *Sweeper) String() string {
	return "retention-sweeper"
}

// NextRun returns the next scheduled purge after the current time.
func (s *Sweeper) NextRun() time.Time {
	return s.cron.NextRun(s.now(), s.cfg.Location)
}

// Serve waits for each scheduled tick and purges. It returns when ctx ends.
func (s *Sweeper) Serve(ctx context.Context) error {
	s.log.Info().
		Str("schedule", s.cron.String()).
		Str("timezone", s.cfg.Location.String()).
		Int("horizon_days", s.cfg.HorizonDays).
		Msg("Retention sweeper started")

	if s.cfg.RunOnStartup {
		s.runLogged(ctx)
	}

	for {
		next := s.NextRun()
		if next.IsZero() {
			return fmt.Errorf("%w: %q never fires: %w", ErrInvalidSchedule, s.cron.String(), suture.ErrDoNotRestart)
		}
		wait := next.Sub(s.now())
		s.log.Debug().Time("next_run", next).Dur("wait", wait).Msg("Waiting for next retention run")

		select {
		case <-ctx.Done():
			s.log.Info().Msg("Retention sweeper stopped")
			return ctx.Err()
		case <-s.after(wait):
		}

		s.runLogged(ctx)
	}
}

// RunOnce purges readings older than the horizon and returns the number removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := s.purger.PurgeOlderThan(ctx, s.cfg.HorizonDays)
	metrics.RecordRetentionRun(deleted, err)
	if err == nil && deleted > 0 && s.cfg.OnPurge != nil {
		s.cfg.OnPurge(deleted)
	}
	return deleted, err
}

func (s *Sweeper) runLogged(ctx context.Context) {
	start := s.now()
	deleted, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("horizon_days", s.cfg.HorizonDays).Msg("Retention purge failed")
		return
	}
	s.log.Info().
		Int64("deleted", deleted).
		Int("horizon_days", s.cfg.HorizonDays).
		Dur("duration", s.now().Sub(start)).
		Msg("Retention purge completed")
}
