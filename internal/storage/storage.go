package storage

import (
	"context"
	"errors"

	"tiltwatch/internal/models"
)

// ErrUnavailable wraps every failure to reach the store or complete a
// statement. Handlers map it to a server error.
var ErrUnavailable = errors.New("storage unavailable")

// Store persists accepted samples and serves the recent window.
type Store interface {
	// Insert appends exactly one record with a store-assigned id and
	// timestamp. Call it only for samples the change gate accepted.
	Insert(ctx context.Context, s models.Sample, alertFlag bool) (models.Record, error)

	// Recent returns up to limit records, newest first by id.
	Recent(ctx context.Context, limit int) ([]models.Record, error)

	Close() error
}
