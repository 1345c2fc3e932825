package audit

import (
	"context"
	"sync"
	"time"

	"github.com/gursmeep404/sharden/internal/server/models"
)

// InMemoryRepository keeps audit entries in process memory. Used in tests
// and when running with the memory blob backend.
type InMemoryRepository struct {
	mu      sync.Mutex
	entries []*models.AuditEntry
	nextID  int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *InMemoryRepository) SelectRecent(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	if limit > n {
		limit = n
	}

	result := make([]*models.AuditEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		cp := *r.entries[i]
		result = append(result, &cp)
	}
	return result, nil
}
