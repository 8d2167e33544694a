package database

import (
	"context"
	"fmt"
	"time"
)

// SnapshotRow is one immutable price/rank observation. SnapshotTime is the
// run's fixed hour-floored timestamp.
type SnapshotRow struct {
	ProductID     int64
	SnapshotTime  time.Time
	OriginalPrice int
	DiscountRate  int
	Price         int
	DeliveryFee   int
	Rating        float64
	ReviewCount   int
	Ranking       *int
}

// InsertSnapshot appends one snapshot row. Plain insert, no conflict clause:
// history is append-only and never rewritten.
func (db *DB) InsertSnapshot(ctx context.Context, s *SnapshotRow) error {
	query := `
		INSERT INTO product_snapshot (
			product_id, snapshot_time,
			original_price, discount_rate, price, delivery_fee,
			rating, review_count, ranking
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db.pool.Exec(ctx, query,
		s.ProductID, s.SnapshotTime,
		s.OriginalPrice, s.DiscountRate, s.Price, s.DeliveryFee,
		s.Rating, s.ReviewCount, s.Ranking,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}
