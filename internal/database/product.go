package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ProductRow is the product upsert payload. CategoryID is the internal
// category id, already resolved by the caller.
type ProductRow struct {
	ExternalID    string
	CategoryID    int64
	MallName      string
	Name          string
	OriginalPrice int
	DiscountRate  int
	Price         int
	DeliveryFee   int
	Rating        float64
	ReviewCount   int
	Ranking       *int
	DetailURL     string
}

// UpsertProduct inserts or updates a product keyed on its Naver product id.
// On conflict every mutable field is overwritten and updated_at touched.
// Returns the internal id and whether the row was newly inserted.
func (db *DB) UpsertProduct(ctx context.Context, p *ProductRow) (int64, bool, error) {
	query := `
		INSERT INTO product (
			naver_product_id, category_id, mall_name, name,
			original_price, discount_rate, price, delivery_fee,
			rating, review_count, ranking, detail_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (naver_product_id) DO UPDATE SET
			category_id    = EXCLUDED.category_id,
			mall_name      = EXCLUDED.mall_name,
			name           = EXCLUDED.name,
			original_price = EXCLUDED.original_price,
			discount_rate  = EXCLUDED.discount_rate,
			price          = EXCLUDED.price,
			delivery_fee   = EXCLUDED.delivery_fee,
			rating         = EXCLUDED.rating,
			review_count   = EXCLUDED.review_count,
			ranking        = EXCLUDED.ranking,
			detail_url     = EXCLUDED.detail_url,
			updated_at     = CURRENT_TIMESTAMP
		RETURNING id, (created_at = updated_at)`

	var id int64
	var inserted bool
	err := db.pool.QueryRow(ctx, query,
		p.ExternalID, p.CategoryID, p.MallName, p.Name,
		p.OriginalPrice, p.DiscountRate, p.Price, p.DeliveryFee,
		p.Rating, p.ReviewCount, p.Ranking, p.DetailURL,
	).Scan(&id, &inserted)

	if err != nil {
		return 0, false, fmt.Errorf("failed to upsert product: %w", err)
	}
	return id, inserted, nil
}

// ProductIDByExternalID looks up the internal id for a Naver product id.
// A missing row is (0, false, nil), not an error.
func (db *DB) ProductIDByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		`SELECT id FROM product WHERE naver_product_id = $1`, externalID,
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up product: %w", err)
	}
	return id, true, nil
}
