package repomanager

import (
	"context"
	"database/sql"

	"github.com/gursmeep404/sharden/internal/dbx"
	"github.com/gursmeep404/sharden/internal/server/repositories/audit"
	"github.com/gursmeep404/sharden/internal/server/repositories/transfers"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes a schema migration hook.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Transfers(db dbx.DBTX) transfers.Repository
	Audit(db dbx.DBTX) audit.Repository
}
