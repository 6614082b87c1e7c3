package metrics

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryFilterStore is the concurrency-safe default FilterStore.
type InMemoryFilterStore struct {
	mu   sync.RWMutex
	data map[string]FilterState
}

// NewInMemoryFilterStore creates an empty filter store.
func NewInMemoryFilterStore() *InMemoryFilterStore {
	return &InMemoryFilterStore{
		data: make(map[string]FilterState),
	}
}

// SavedFilter returns the viewer's stored filter, reporting whether one
// exists. Anonymous viewers never have stored filters.
func (s *InMemoryFilterStore) SavedFilter(_ context.Context, viewer ViewerContext) (FilterState, bool, error) {
	if viewer.UserID == "" {
		return FilterState{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	filter, ok := s.data[viewer.UserID]
	return filter, ok, nil
}

// SaveFilter persists the viewer's filter selection. The window size must
// already be validated by the caller; the store normalizes only the
// region sentinel.
func (s *InMemoryFilterStore) SaveFilter(_ context.Context, viewer ViewerContext, filter FilterState) error {
	if viewer.UserID == "" {
		return fmt.Errorf("metrics: filter store requires viewer user id")
	}
	if filter.Region == "" {
		filter.Region = RegionAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewer.UserID] = filter
	return nil
}
