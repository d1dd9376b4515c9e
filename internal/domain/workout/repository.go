package workout

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for workout record access
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// ListPage returns records ordered by recorded_at ascending. Batch
	// classification walks the history page by page so multi-year datasets
	// never get materialized at once.
	ListPage(ctx context.Context, limit, offset int) ([]Record, error)

	Count(ctx context.Context) (int, error)
}
