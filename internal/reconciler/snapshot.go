package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/minwoopark/infomore/internal/database"
	"github.com/minwoopark/infomore/internal/models"
)

// SnapshotAppender appends one price/rank observation per product per run.
// Its product id cache is its own instance, independent from the product
// reconciler's category cache.
type SnapshotAppender struct {
	store      Store
	logger     *slog.Logger
	productIDs map[string]int64
}

func NewSnapshotAppender(store Store, logger *slog.Logger) *SnapshotAppender {
	return &SnapshotAppender{
		store:      store,
		logger:     logger.With("component", "snapshot-appender"),
		productIDs: make(map[string]int64),
	}
}

// Append inserts one snapshot row at the run's fixed snapshot time. Products
// not yet committed are skipped with a warning; so are insert failures.
// Returns whether a row was written.
func (a *SnapshotAppender) Append(ctx context.Context, rec models.ProductRecord, snapshotTime time.Time) bool {
	productID, ok := a.resolveProduct(ctx, rec.ExternalID)
	if !ok {
		a.logger.Warn("product not found for snapshot, skipping",
			"naver_product_id", rec.ExternalID)
		return false
	}

	err := a.store.InsertSnapshot(ctx, &database.SnapshotRow{
		ProductID:     productID,
		SnapshotTime:  snapshotTime,
		OriginalPrice: rec.OriginalPrice,
		DiscountRate:  rec.DiscountRate,
		Price:         rec.Price,
		DeliveryFee:   rec.DeliveryFee,
		Rating:        rec.Rating,
		ReviewCount:   rec.ReviewCount,
		Ranking:       rec.Ranking,
	})
	if err != nil {
		a.logger.Warn("snapshot insert failed",
			"naver_product_id", rec.ExternalID, "error", err)
		return false
	}
	return true
}

func (a *SnapshotAppender) resolveProduct(ctx context.Context, externalID string) (int64, bool) {
	if externalID == "" {
		return 0, false
	}
	if id, ok := a.productIDs[externalID]; ok {
		return id, true
	}

	id, ok, err := a.store.ProductIDByExternalID(ctx, externalID)
	if err != nil {
		a.logger.Error("product lookup failed",
			"naver_product_id", externalID, "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}

	a.productIDs[externalID] = id
	return id, true
}
