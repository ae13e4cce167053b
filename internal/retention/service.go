// Package retention ages out the permanent chat log and re-applies the
// context window cap on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/verdevalley/concierge/internal/session"
	"github.com/verdevalley/concierge/internal/store"
)

const (
	// DefaultSchedule runs the sweep nightly at 04:00.
	DefaultSchedule = "0 4 * * *"
	// DefaultDays is how long chat-log rows are retained.
	DefaultDays = 90
)

// Service runs the scheduled retention sweep.
type Service struct {
	store    store.Store
	window   *session.Window
	schedule string
	days     int
	logger   *slog.Logger
}

// NewService builds a Service. Empty schedule and non-positive days fall
// back to the defaults.
func NewService(st store.Store, window *session.Window, schedule string, days int, logger *slog.Logger) *Service {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if days <= 0 {
		days = DefaultDays
	}
	return &Service{
		store:    st,
		window:   window,
		schedule: schedule,
		days:     days,
		logger:   logger,
	}
}

// Run schedules the sweep and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("retention sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule retention sweep %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info("retention sweep scheduled", "schedule", s.schedule, "days", s.days)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

// Sweep purges chat-log rows older than the retention period and re-trims
// every user's context window. A per-user trim failure is logged and the
// sweep continues.
func (s *Service) Sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.days)

	purged, err := s.store.PurgeLogsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge chat logs: %w", err)
	}
	s.logger.Info("chat logs purged", "cutoff", cutoff.Format(time.RFC3339), "rows", purged)

	userIDs, err := s.store.ContextUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list context users: %w", err)
	}
	for _, userID := range userIDs {
		if err := s.window.Trim(ctx, userID); err != nil {
			s.logger.Error("window trim failed", "user_id", userID, "error", err)
		}
	}
	s.logger.Info("retention sweep complete", "windows", len(userIDs))
	return nil
}
