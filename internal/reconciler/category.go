package reconciler

import (
	"context"
	"log/slog"

	"github.com/minwoopark/infomore/internal/models"
)

// CategoryReconciler upserts category nodes, resolving parent references
// through a cache-backed lookup. One instance lives for one crawl run; the
// cache maps Naver category ids to internal row ids.
type CategoryReconciler struct {
	store  Store
	logger *slog.Logger
	cache  map[string]int64
}

func NewCategoryReconciler(store Store, logger *slog.Logger) *CategoryReconciler {
	return &CategoryReconciler{
		store:  store,
		logger: logger.With("component", "category-reconciler"),
		cache:  make(map[string]int64),
	}
}

// Reconcile upserts one node. Store errors are logged and swallowed: a bad
// category never halts the crawl. Returns whether the node was stored.
func (r *CategoryReconciler) Reconcile(ctx context.Context, node models.CategoryNode) bool {
	level := node.Level.Rank()
	if level == 0 {
		// Should not happen with the extractor's fixed vocabulary.
		r.logger.Warn("unknown category level",
			"level", string(node.Level), "naver_category_id", node.ExternalID)
		return false
	}

	// Best effort: a parent that resolves at neither the cache nor the store
	// is stored as null rather than failing the node.
	var parentID *int64
	if node.ParentExternalID != "" {
		if id, ok := r.resolve(ctx, node.ParentExternalID); ok {
			parentID = &id
		}
	}

	id, err := r.store.UpsertCategory(ctx, node.ExternalID, node.Name, level, parentID)
	if err != nil {
		r.logger.Error("category upsert failed",
			"naver_category_id", node.ExternalID, "error", err)
		return false
	}

	// A medium node is a child now and a parent of sub nodes moments later
	// in the same pass, so its own entry must land in the cache immediately.
	r.cache[node.ExternalID] = id
	return true
}

func (r *CategoryReconciler) resolve(ctx context.Context, externalID string) (int64, bool) {
	if id, ok := r.cache[externalID]; ok {
		return id, true
	}

	id, ok, err := r.store.CategoryIDByExternalID(ctx, externalID)
	if err != nil {
		r.logger.Error("category lookup failed",
			"naver_category_id", externalID, "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}

	r.cache[externalID] = id
	return id, true
}
