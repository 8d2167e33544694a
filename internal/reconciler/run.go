package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/minwoopark/infomore/internal/models"
)

// Stats counts what one crawl run wrote and skipped.
type Stats struct {
	CategoriesUpserted int `json:"categories_upserted"`
	CategoriesSkipped  int `json:"categories_skipped"`
	ProductsUpserted   int `json:"products_upserted"`
	ProductsInserted   int `json:"products_inserted"`
	ProductsDropped    int `json:"products_dropped"`
	SnapshotsWritten   int `json:"snapshots_written"`
	SnapshotsSkipped   int `json:"snapshots_skipped"`
}

// Run owns all per-run reconciliation state: the three id caches, the fixed
// snapshot time and the counters. It is built at crawl start, driven by a
// single goroutine, and discarded when the run ends, so nothing here needs
// a lock.
type Run struct {
	snapshotTime time.Time
	categories   *CategoryReconciler
	products     *ProductReconciler
	snapshots    *SnapshotAppender
	stats        Stats
}

// NewRun fixes the snapshot time to now floored to the hour; every snapshot
// row of this run carries it.
func NewRun(store Store, logger *slog.Logger, now time.Time) *Run {
	return &Run{
		snapshotTime: now.Truncate(time.Hour),
		categories:   NewCategoryReconciler(store, logger),
		products:     NewProductReconciler(store, logger),
		snapshots:    NewSnapshotAppender(store, logger),
	}
}

func (r *Run) SnapshotTime() time.Time {
	return r.snapshotTime
}

// HandleCategory reconciles one extracted category node.
func (r *Run) HandleCategory(ctx context.Context, node models.CategoryNode) {
	if r.categories.Reconcile(ctx, node) {
		r.stats.CategoriesUpserted++
	} else {
		r.stats.CategoriesSkipped++
	}
}

// HandleProduct reconciles one extracted product record and, when the row is
// committed, appends its snapshot. Returns whether the product was newly
// inserted (first time ever seen).
func (r *Run) HandleProduct(ctx context.Context, rec models.ProductRecord) bool {
	stored, inserted := r.products.Reconcile(ctx, rec)
	if !stored {
		r.stats.ProductsDropped++
		return false
	}
	r.stats.ProductsUpserted++
	if inserted {
		r.stats.ProductsInserted++
	}

	if r.snapshots.Append(ctx, rec, r.snapshotTime) {
		r.stats.SnapshotsWritten++
	} else {
		r.stats.SnapshotsSkipped++
	}
	return inserted
}

func (r *Run) Stats() Stats {
	return r.stats
}
