// Package task schedules crawl runs on a cron expression.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/minwoopark/infomore/internal/crawler"
)

// CrawlTask triggers a full crawl at each schedule entry. A tick that fires
// while the previous run is still draining is skipped, not queued.
type CrawlTask struct {
	runner   *crawler.Runner
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
}

func NewCrawlTask(runner *crawler.Runner, schedule string, logger *slog.Logger) *CrawlTask {
	return &CrawlTask{
		runner:   runner,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger.With("component", "crawl-task"),
	}
}

func (t *CrawlTask) Start() error {
	if _, err := t.cron.AddFunc(t.schedule, t.run); err != nil {
		return fmt.Errorf("invalid crawl schedule %q: %w", t.schedule, err)
	}
	t.cron.Start()
	t.logger.Info("crawl schedule registered", "schedule", t.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running entry to return.
func (t *CrawlTask) Stop() {
	<-t.cron.Stop().Done()
}

func (t *CrawlTask) run() {
	_, err := t.runner.RunOnce(context.Background())
	if errors.Is(err, crawler.ErrRunInProgress) {
		t.logger.Warn("previous crawl still running, skipping tick")
		return
	}
	if err != nil {
		t.logger.Error("scheduled crawl failed", "error", err)
	}
}
