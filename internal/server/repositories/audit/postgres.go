package audit

import (
	"context"
	"fmt"

	"github.com/gursmeep404/sharden/internal/dbx"
	"github.com/gursmeep404/sharden/internal/server/models"
)

// PostgresRepository implements the audit log over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts one audit entry. The id is assigned monotonically by the
// database; the timestamp defaults to now.
func (r *PostgresRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (transfer_id, action, status, detail)
		VALUES ($1, $2, $3, $4)
		RETURNING id, ts;
	`
	err := r.db.QueryRowContext(ctx, query,
		e.TransferID, string(e.Action), string(e.Status), e.Detail).Scan(&e.ID, &e.Timestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SelectRecent returns the newest limit entries, most recent first.
func (r *PostgresRepository) SelectRecent(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	query := `SELECT id, transfer_id, action, status, detail, ts FROM audit_log
		ORDER BY ts DESC, id DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select audit entries: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		var item models.AuditEntry
		var action, status string
		if err := rows.Scan(&item.ID, &item.TransferID, &action, &status, &item.Detail, &item.Timestamp); err != nil {
			return nil, err
		}
		item.Action = models.AuditAction(action)
		item.Status = models.AuditStatus(status)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
