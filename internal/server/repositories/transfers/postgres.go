package transfers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gursmeep404/sharden/internal/common"
	"github.com/gursmeep404/sharden/internal/dbx"
	"github.com/gursmeep404/sharden/internal/server/models"
)

// PostgresRepository implements transfer metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const transferColumns = `id, original_name, storage_ref, mime_type, sender, recipient,
		expiry_at, revoked, encryption_mode, client_iv, server_key, encrypted_size, created_at`

// Create inserts a new transfer row. The encryption variant is flattened
// into mode + mutually exclusive nullable columns; the table's CHECK
// constraint guards the invariant at the storage layer too.
func (r *PostgresRepository) Create(ctx context.Context, t *models.Transfer) error {
	var clientIV sql.NullString
	var serverKey []byte

	switch enc := t.Encryption.(type) {
	case models.EndToEnd:
		clientIV = sql.NullString{String: enc.ClientIV, Valid: true}
	case models.ServerManaged:
		serverKey = enc.Key
	default:
		return fmt.Errorf("unknown encryption variant %T", t.Encryption)
	}

	query := `
		INSERT INTO transfers (id, original_name, storage_ref, mime_type, sender, recipient,
			expiry_at, revoked, encryption_mode, client_iv, server_key, encrypted_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.OriginalName, t.StorageRef, t.MimeType, t.Sender, t.Recipient,
		t.ExpiryAt, t.Revoked, string(t.Encryption.Mode()), clientIV, serverKey, t.EncryptedSize, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the transfer with the given id, or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id=$1`

	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTransfer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select transfer: %w", err)
	}
	return t, nil
}

// List returns transfers matching the filter, newest first. Ties on
// created_at fall back to id so ordering stays stable.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers`

	var args []any
	var where []string
	if f.Sender != "" {
		args = append(args, f.Sender)
		where = append(where, fmt.Sprintf("lower(sender)=lower($%d)", len(args)))
	}
	if f.Recipient != "" {
		args = append(args, f.Recipient)
		where = append(where, fmt.Sprintf("lower(recipient)=lower($%d)", len(args)))
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select transfers: %w", err)
	}
	defer rows.Close()

	var result []*models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Revoke sets revoked=true. The write is unconditional, so concurrent
// revocations of the same id all land on the same terminal state.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE transfers SET revoked=TRUE WHERE id=$1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to revoke: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanTransfer(scan func(dest ...any) error) (*models.Transfer, error) {
	var t models.Transfer
	var mode string
	var clientIV sql.NullString
	var serverKey []byte

	err := scan(&t.ID, &t.OriginalName, &t.StorageRef, &t.MimeType, &t.Sender, &t.Recipient,
		&t.ExpiryAt, &t.Revoked, &mode, &clientIV, &serverKey, &t.EncryptedSize, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	switch models.EncryptionMode(mode) {
	case models.ModeEndToEnd:
		t.Encryption = models.EndToEnd{ClientIV: clientIV.String}
	case models.ModeServerManaged:
		t.Encryption = models.ServerManaged{Key: serverKey}
	default:
		return nil, fmt.Errorf("unknown encryption mode %q", mode)
	}
	return &t, nil
}
