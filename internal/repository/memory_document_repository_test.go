package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/step-challenge-api/internal/models"
)

func TestMemoryDocumentRepositoryIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDocumentRepository(sampleDataset())

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	record := loaded["S1"]
	record.TotalSteps = 1
	record.DailyScreenshots["2026-03-02"] = models.DayEntry{Steps: 1}
	loaded["S1"] = record

	again, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5000, again["S1"].TotalSteps)
	assert.Len(t, again["S1"].DailyScreenshots, 1)

	require.NoError(t, repo.Save(ctx, loaded))
	saved, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, saved["S1"].TotalSteps)
}

func TestMemoryDocumentRepositoryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewMemoryDocumentRepository(nil)

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Save(ctx, models.Dataset{}), context.Canceled)
}
