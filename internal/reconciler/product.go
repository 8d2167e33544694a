package reconciler

import (
	"context"
	"log/slog"

	"github.com/minwoopark/infomore/internal/database"
	"github.com/minwoopark/infomore/internal/models"
)

// ProductReconciler upserts product rows. It keeps its own category id cache,
// separate from the category reconciler's, and resolves the governing
// category with the sub > medium > major priority.
type ProductReconciler struct {
	store       Store
	logger      *slog.Logger
	categoryIDs map[string]int64
}

func NewProductReconciler(store Store, logger *slog.Logger) *ProductReconciler {
	return &ProductReconciler{
		store:       store,
		logger:      logger.With("component", "product-reconciler"),
		categoryIDs: make(map[string]int64),
	}
}

// Reconcile upserts one record. A record whose governing category is not yet
// in the store is dropped with a warning: category and product reconciliation
// interleave with network timing, and we accept losing the record over
// blocking or retrying. Returns (stored, newly inserted).
func (r *ProductReconciler) Reconcile(ctx context.Context, rec models.ProductRecord) (bool, bool) {
	externalCategoryID := rec.Category.GoverningID()

	categoryID, ok := r.resolveCategory(ctx, externalCategoryID)
	if !ok {
		r.logger.Warn("category not found for product, dropping record",
			"naver_product_id", rec.ExternalID,
			"naver_category_id", externalCategoryID)
		return false, false
	}

	row := &database.ProductRow{
		ExternalID:    rec.ExternalID,
		CategoryID:    categoryID,
		MallName:      rec.MallName,
		Name:          rec.Name,
		OriginalPrice: rec.OriginalPrice,
		DiscountRate:  rec.DiscountRate,
		Price:         rec.Price,
		DeliveryFee:   rec.DeliveryFee,
		Rating:        rec.Rating,
		ReviewCount:   rec.ReviewCount,
		Ranking:       rec.Ranking,
		DetailURL:     rec.DetailURL,
	}

	_, inserted, err := r.store.UpsertProduct(ctx, row)
	if err != nil {
		// Constraint violations and connectivity hiccups must not stop
		// the run.
		r.logger.Error("product upsert failed",
			"naver_product_id", rec.ExternalID, "error", err)
		return false, false
	}

	return true, inserted
}

func (r *ProductReconciler) resolveCategory(ctx context.Context, externalID string) (int64, bool) {
	if externalID == "" {
		return 0, false
	}
	if id, ok := r.categoryIDs[externalID]; ok {
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

	r.categoryIDs[externalID] = id
	return id, true
}
