package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertCategory inserts or updates a category keyed on its Naver id and
// returns the internal row id. Re-crawling the same external id overwrites
// name, level and parent in place.
func (db *DB) UpsertCategory(ctx context.Context, externalID, name string, level int, parentID *int64) (int64, error) {
	query := `
		INSERT INTO category (naver_category_id, name, level, parent_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (naver_category_id) DO UPDATE SET
			name = EXCLUDED.name,
			level = EXCLUDED.level,
			parent_id = EXCLUDED.parent_id
		RETURNING id`

	var id int64
	err := db.pool.QueryRow(ctx, query, externalID, name, level, parentID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert category: %w", err)
	}
	return id, nil
}

// CategoryIDByExternalID looks up the internal id for a Naver category id.
// A missing row is (0, false, nil), not an error.
func (db *DB) CategoryIDByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		`SELECT id FROM category WHERE naver_category_id = $1`, externalID,
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up category: %w", err)
	}
	return id, true, nil
}
