package transfers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gursmeep404/sharden/internal/common"
	"github.com/gursmeep404/sharden/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransfer(id, sender, recipient string, created time.Time) *models.Transfer {
	return &models.Transfer{
		ID:           id,
		OriginalName: "f.bin",
		StorageRef:   "ref-" + id,
		Sender:       sender,
		Recipient:    recipient,
		ExpiryAt:     created.Add(10 * time.Minute),
		Encryption:   models.ServerManaged{Key: []byte("k")},
		CreatedAt:    created,
	}
}

func TestInMemory_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	tr := newTransfer("t1", "a@x", "b@x", time.Now())
	require.NoError(t, repo.Create(ctx, tr))

	got, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, tr.Recipient, got.Recipient)

	// returned record is a copy; mutating it must not leak into the store
	got.Recipient = "evil@x"
	again, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "b@x", again.Recipient)
}

func TestInMemory_GetMissing(t *testing.T) {
	repo := NewInMemoryRepository()
	_, err := repo.GetByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestInMemory_ListOrderAndFilter(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newTransfer("t1", "a@x", "b@x", base)))
	require.NoError(t, repo.Create(ctx, newTransfer("t2", "a@x", "c@x", base.Add(time.Second))))
	require.NoError(t, repo.Create(ctx, newTransfer("t3", "z@x", "b@x", base.Add(2*time.Second))))

	all, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t3", all[0].ID)
	assert.Equal(t, "t1", all[2].ID)

	bySender, err := repo.List(ctx, Filter{Sender: "A@X"})
	require.NoError(t, err)
	require.Len(t, bySender, 2)

	byBoth, err := repo.List(ctx, Filter{Sender: "a@x", Recipient: "B@X"})
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	assert.Equal(t, "t1", byBoth[0].ID)
}

func TestInMemory_ListStableOnEqualTimestamps(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newTransfer("first", "a@x", "b@x", ts)))
	require.NoError(t, repo.Create(ctx, newTransfer("second", "a@x", "b@x", ts)))

	all, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].ID)
	assert.Equal(t, "second", all[1].ID)
}

func TestInMemory_Revoke(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTransfer("t1", "a@x", "b@x", time.Now())))

	require.NoError(t, repo.Revoke(ctx, "t1"))
	got, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	// idempotent
	require.NoError(t, repo.Revoke(ctx, "t1"))

	assert.True(t, errors.Is(repo.Revoke(ctx, "missing"), common.ErrNotFound))
}
