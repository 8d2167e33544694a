package reconciler

import (
	"context"

	"github.com/minwoopark/infomore/internal/database"
)

// Store is the slice of the database layer the reconcilers touch.
// *database.DB satisfies it; tests inject fakes.
type Store interface {
	UpsertCategory(ctx context.Context, externalID, name string, level int, parentID *int64) (int64, error)
	CategoryIDByExternalID(ctx context.Context, externalID string) (int64, bool, error)
	UpsertProduct(ctx context.Context, p *database.ProductRow) (int64, bool, error)
	ProductIDByExternalID(ctx context.Context, externalID string) (int64, bool, error)
	InsertSnapshot(ctx context.Context, s *database.SnapshotRow) error
}

var _ Store = (*database.DB)(nil)
