// Package transfers implements the metadata store: one record per transfer.
package transfers

import (
	"context"

	"github.com/gursmeep404/sharden/internal/server/models"
)

// Filter narrows List results. Empty fields match everything; non-empty
// fields are case-insensitive exact matches.
type Filter struct {
	Sender    string
	Recipient string
}

type Repository interface {
	// Create persists a new transfer record.
	Create(ctx context.Context, t *models.Transfer) error
	// GetByID returns the record or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Transfer, error)
	// List returns matching transfers ordered newest-created-first.
	List(ctx context.Context, f Filter) ([]*models.Transfer, error)
	// Revoke unconditionally sets revoked=true. Safe to race: concurrent
	// callers all succeed and the flag only ever moves one way.
	Revoke(ctx context.Context, id string) error
}
