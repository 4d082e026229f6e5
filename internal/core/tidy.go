package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/voidshard/wasmbuild/pkg/structs"
)

const (
	tidyTimeout = time.Minute
)

// startTidy schedules tidy every TidyFrequency.
func (c *Service) startTidy() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(c.opts.TidyFrequency),
		gocron.NewTask(c.tidy),
		gocron.WithName("tidy"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.Shutdown()
		return fmt.Errorf("failed to create tidy job: %w", err)
	}

	slog.Info("Starting tidy routine", "frequency", c.opts.TidyFrequency, "maxJobRuntime", c.opts.MaxJobRuntime, "maxQueueAge", c.opts.MaxQueueAge, "resultTTL", c.opts.ResultTTL)
	s.Start()

	c.lock.Lock()
	c.sched = s
	c.lock.Unlock()
	return nil
}

// tidy fails jobs that have been RUNNING longer than any build could take
// (their worker is gone) or QUEUED longer than MaxQueueAge (their task was
// lost), then evicts finished jobs older than ResultTTL.
func (c *Service) tidy() {
	ctx, cancel := context.WithTimeout(context.Background(), tidyTimeout)
	defer cancel()
	now := timeNow()

	if c.opts.MaxJobRuntime > 0 {
		result := structs.NewFailed(msgAbandoned, fmt.Sprintf("job was running for longer than %s", c.opts.MaxJobRuntime))
		reaped, err := c.db.ReapRunning(ctx, now-int64(c.opts.MaxJobRuntime/time.Second), result)
		if err != nil {
			slog.Error("Failed to reap stuck jobs", "error", err)
		} else if len(reaped) > 0 {
			slog.Warn("Reaped stuck jobs", "count", len(reaped), "jobIDs", reaped)
			c.rec.IncReaped(len(reaped))
		}
	}

	if c.opts.MaxQueueAge > 0 {
		result := structs.NewFailed(msgAbandoned, fmt.Sprintf("job was queued for longer than %s", c.opts.MaxQueueAge))
		reaped, err := c.db.ReapQueued(ctx, now-int64(c.opts.MaxQueueAge/time.Second), result)
		if err != nil {
			slog.Error("Failed to reap lost jobs", "error", err)
		} else if len(reaped) > 0 {
			slog.Warn("Reaped lost jobs", "count", len(reaped), "jobIDs", reaped)
			c.rec.IncReaped(len(reaped))
		}
	}

	if c.opts.ResultTTL > 0 {
		count, err := c.db.DeleteFinished(ctx, now-int64(c.opts.ResultTTL/time.Second))
		if err != nil {
			slog.Error("Failed to evict finished jobs", "error", err)
		} else if count > 0 {
			slog.Debug("Evicted finished jobs", "count", count)
		}
	}
}
