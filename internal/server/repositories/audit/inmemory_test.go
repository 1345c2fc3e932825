package audit

import (
	"context"
	"testing"

	"github.com/gursmeep404/sharden/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_AppendAssignsIDs(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	e1 := &models.AuditEntry{Action: models.ActionUpload, Status: models.StatusSuccess}
	e2 := &models.AuditEntry{Action: models.ActionDownload, Status: models.StatusFailure}

	require.NoError(t, repo.Append(ctx, e1))
	require.NoError(t, repo.Append(ctx, e2))

	assert.Equal(t, int64(1), e1.ID)
	assert.Equal(t, int64(2), e2.ID)
	assert.False(t, e1.Timestamp.IsZero())
}

func TestInMemory_SelectRecentNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, a := range []models.AuditAction{models.ActionUpload, models.ActionDownload, models.ActionRevoke} {
		require.NoError(t, repo.Append(ctx, &models.AuditEntry{Action: a, Status: models.StatusSuccess}))
	}

	got, err := repo.SelectRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ActionRevoke, got[0].Action)
	assert.Equal(t, models.ActionDownload, got[1].Action)
}

func TestInMemory_SelectRecentLimitAboveSize(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, &models.AuditEntry{Action: models.ActionUpload, Status: models.StatusSuccess}))

	got, err := repo.SelectRecent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
