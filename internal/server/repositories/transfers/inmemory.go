package transfers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gursmeep404/sharden/internal/common"
	"github.com/gursmeep404/sharden/internal/server/models"
)

// InMemoryRepository keeps transfer records in process memory. Used in tests
// and when running with the memory blob backend.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*models.Transfer
	order []string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]*models.Transfer)}
}

func (r *InMemoryRepository) Create(ctx context.Context, t *models.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *t
	r.items[t.ID] = &cp
	r.order = append(r.order, t.ID)
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *InMemoryRepository) List(ctx context.Context, f Filter) ([]*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Transfer
	for _, id := range r.order {
		t := r.items[id]
		if f.Sender != "" && !strings.EqualFold(f.Sender, t.Sender) {
			continue
		}
		if f.Recipient != "" && !strings.EqualFold(f.Recipient, t.Recipient) {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}

	// newest first; the stable sort preserves insertion order on equal
	// creation timestamps
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRepository) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return common.ErrNotFound
	}
	t.Revoked = true
	return nil
}
