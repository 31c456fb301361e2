package pipeline

import (
	"context"

	"tiltwatch/internal/models"
	"tiltwatch/internal/storage"
)

// DefaultRecentLimit caps the recent-window query.
const DefaultRecentLimit = 10

// Query is the read-only path over persisted records.
type Query struct {
	store storage.Store
}

func NewQuery(store storage.Store) *Query {
	return &Query{store: store}
}

// Recent returns up to limit records, newest first by id. A non-positive
// limit falls back to DefaultRecentLimit.
func (q *Query) Recent(ctx context.Context, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return q.store.Recent(ctx, limit)
}
