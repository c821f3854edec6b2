package engine

import (
	"time"

	"github.com/spektr-org/notetrack/internal/logging"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for New()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger      logging.Logger
	Now         func() time.Time
	WeekStart   time.Weekday
	Concurrency int // folder reads in flight
	Metrics     *Metrics
}

const defaultConcurrency = 8

// WithLogger sets the engine logger. Nil disables logging.
func WithLogger(logger logging.Logger) Option {
	return func(c *config) {
		c.Logger = logging.OrNop(logger)
	}
}

// WithClock sets the time source used for periods and streaks.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.Now = now
		}
	}
}

// WithWeekStart sets the first day of the week for the weekly period.
func WithWeekStart(day time.Weekday) Option {
	return func(c *config) {
		if day >= time.Sunday && day <= time.Saturday {
			c.WeekStart = day
		}
	}
}

// WithConcurrency caps concurrent document reads in folder scans.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.Concurrency = n
		}
	}
}

// WithMetrics records scans on m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.Metrics = m
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:      logging.Nop(),
		Now:         time.Now,
		WeekStart:   time.Monday,
		Concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
