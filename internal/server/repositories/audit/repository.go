// Package audit implements the append-only audit log: one entry per access
// attempt. Entries are never mutated or deleted.
package audit

import (
	"context"

	"github.com/gursmeep404/sharden/internal/server/models"
)

type Repository interface {
	// Append writes one entry and fills in its DB-assigned ID and timestamp.
	Append(ctx context.Context, e *models.AuditEntry) error
	// SelectRecent returns the most recent limit entries, newest first.
	SelectRecent(ctx context.Context, limit int) ([]*models.AuditEntry, error)
}
