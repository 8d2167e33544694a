package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/minwoopark/infomore/internal/fetch"
	"github.com/minwoopark/infomore/internal/models"
	"github.com/minwoopark/infomore/internal/naver"
	"github.com/minwoopark/infomore/internal/reconciler"
)

// ErrRunInProgress is returned when RunOnce is called while a crawl is
// already active. Scheduled ticks skip on it instead of stacking runs.
var ErrRunInProgress = errors.New("crawl run already in progress")

const itemBuffer = 256

// RunSummary is the outcome of one crawl run.
type RunSummary struct {
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	SnapshotTime  time.Time        `json:"snapshot_time"`
	FetchFailures int64            `json:"fetch_failures"`
	Stats         reconciler.Stats `json:"stats"`
}

// EventPublisher receives notable run events. Implementations must never
// block the pipeline for long; publish failures are theirs to log.
type EventPublisher interface {
	ProductDetected(ctx context.Context, rec models.ProductRecord)
	RunCompleted(ctx context.Context, summary RunSummary)
}

// Runner owns everything that survives across runs and exposes the single
// RunOnce entry point the scheduler and the API both call.
type Runner struct {
	store     reconciler.Store
	profile   *naver.Profile
	fetchOpts fetch.Options
	events    EventPublisher
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	lastRun *RunSummary
}

func NewRunner(store reconciler.Store, profile *naver.Profile, fetchOpts fetch.Options, events EventPublisher, logger *slog.Logger) *Runner {
	return &Runner{
		store:     store,
		profile:   profile,
		fetchOpts: fetchOpts,
		events:    events,
		logger:    logger.With("component", "crawler"),
	}
}

// Running reports whether a crawl is currently active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LastRun returns the most recent completed run, or nil before the first.
func (r *Runner) LastRun() *RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

// RunOnce executes one full crawl: discover the category tree, extract and
// reconcile everything, and return when all fetches have drained. Per-record
// failures never surface here; the error reflects only whether the run itself
// completed.
func (r *Runner) RunOnce(ctx context.Context) (*RunSummary, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRunInProgress
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	startedAt := time.Now()
	run := reconciler.NewRun(r.store, r.logger, startedAt)
	client := fetch.NewClient(r.fetchOpts, r.logger)

	r.logger.Info("crawl run starting", "snapshot_time", run.SnapshotTime())

	categories := make(chan models.CategoryNode, itemBuffer)
	products := make(chan models.ProductRecord, itemBuffer)

	// Single consumer: all reconciliation state stays single-writer, so the
	// run's id caches need no locking however the fetch workers interleave.
	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		r.pipeline(ctx, run, categories, products)
	}()

	c := &crawl{
		fetcher:    client,
		profile:    r.profile,
		logger:     r.logger,
		categories: categories,
		products:   products,
	}
	c.start()

	err := client.Run(ctx)

	close(categories)
	close(products)
	<-pipelineDone

	summary := &RunSummary{
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
		SnapshotTime:  run.SnapshotTime(),
		FetchFailures: client.Failures(),
		Stats:         run.Stats(),
	}

	r.mu.Lock()
	r.lastRun = summary
	r.mu.Unlock()

	if r.events != nil {
		r.events.RunCompleted(ctx, *summary)
	}

	r.logger.Info("crawl run finished",
		"duration", summary.FinishedAt.Sub(summary.StartedAt),
		"categories_upserted", summary.Stats.CategoriesUpserted,
		"products_upserted", summary.Stats.ProductsUpserted,
		"products_dropped", summary.Stats.ProductsDropped,
		"snapshots_written", summary.Stats.SnapshotsWritten,
		"fetch_failures", summary.FetchFailures,
	)

	return summary, err
}

// pipeline drains both item channels until each is closed. Interleaving
// between category and product items is arbitrary; the reconcilers treat a
// product arriving before its category as a routine drop, not an error.
func (r *Runner) pipeline(ctx context.Context, run *reconciler.Run, categories <-chan models.CategoryNode, products <-chan models.ProductRecord) {
	for categories != nil || products != nil {
		select {
		case node, ok := <-categories:
			if !ok {
				categories = nil
				continue
			}
			run.HandleCategory(ctx, node)
		case rec, ok := <-products:
			if !ok {
				products = nil
				continue
			}
			if run.HandleProduct(ctx, rec) && r.events != nil {
				r.events.ProductDetected(ctx, rec)
			}
		}
	}
}
