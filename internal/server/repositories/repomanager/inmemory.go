package repomanager

import (
	"context"
	"database/sql"

	"github.com/gursmeep404/sharden/internal/dbx"
	"github.com/gursmeep404/sharden/internal/server/repositories/audit"
	"github.com/gursmeep404/sharden/internal/server/repositories/transfers"
)

// InMemoryRepositoryManager vends process-memory repositories. The DBTX
// argument is ignored; there is no database underneath.
type InMemoryRepositoryManager struct {
	transfers *transfers.InMemoryRepository
	audit     *audit.InMemoryRepository
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{
		transfers: transfers.NewInMemoryRepository(),
		audit:     audit.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Transfers(db dbx.DBTX) transfers.Repository {
	return m.transfers
}

func (m *InMemoryRepositoryManager) Audit(db dbx.DBTX) audit.Repository {
	return m.audit
}
