package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/step-challenge-api/internal/models"
)

// MemoryDocumentRepository keeps the dataset in process. Values are copied on the
// way in and out so callers never share maps with the store.
type MemoryDocumentRepository struct {
	mu      sync.RWMutex
	dataset models.Dataset
}

// NewMemoryDocumentRepository constructs an in-memory store seeded with the given dataset.
func NewMemoryDocumentRepository(seed models.Dataset) *MemoryDocumentRepository {
	if seed == nil {
		seed = models.Dataset{}
	}
	return &MemoryDocumentRepository{dataset: seed.Clone()}
}

// Load returns a copy of the dataset.
func (r *MemoryDocumentRepository) Load(ctx context.Context) (models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dataset.Clone(), nil
}

// Save replaces the dataset with a copy of the provided one.
func (r *MemoryDocumentRepository) Save(ctx context.Context, dataset models.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dataset == nil {
		dataset = models.Dataset{}
	}
	r.mu.Lock()
	r.dataset = dataset.Clone()
	r.mu.Unlock()
	return nil
}
