package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

type fakeStore struct {
	mu      sync.Mutex
	data    models.Dataset
	loadErr error
	saveErr error
	loads   int
	saves   int
}

func newFakeStore(seed models.Dataset) *fakeStore {
	if seed == nil {
		seed = models.Dataset{}
	}
	return &fakeStore{data: seed}
}

func (f *fakeStore) Load(ctx context.Context) (models.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.data.Clone(), nil
}

func (f *fakeStore) Save(ctx context.Context, dataset models.Dataset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data = dataset.Clone()
	return nil
}

func (f *fakeStore) snapshot() models.Dataset {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.Clone()
}

type fakeBoardCache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	fetchErr error
	storeErr error
	clears   int
}

func newFakeBoardCache() *fakeBoardCache {
	return &fakeBoardCache{entries: map[string][]byte{}}
}

func (f *fakeBoardCache) Fetch(ctx context.Context, board string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return f.fetchErr
	}
	raw, ok := f.entries[board]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeBoardCache) StoreAll(ctx context.Context, boards map[string]interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	for board, value := range boards {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		f.entries[board] = raw
	}
	return nil
}

func (f *fakeBoardCache) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.entries = map[string][]byte{}
	return nil
}
