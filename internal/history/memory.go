package history

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the history in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item // newest first
	max   int
	clock Clock
}

// NewMemoryStore returns an empty store holding at most max items.
func NewMemoryStore(max int, clock Clock) *MemoryStore {
	return &MemoryStore{max: max, clock: clock}
}

func (s *MemoryStore) Add(_ context.Context, typ, description string, data any) (Item, error) {
	item, err := newItem(s.clock, typ, description, data)
	if err != nil {
		return Item{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Insert(s.items, 0, item)
	if len(s.items) > s.max {
		s.items = s.items[:s.max]
	}
	return item, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Item, error) {
	return s.ListByType(ctx, "", limit)
}

// ListByType filters by type; an empty type matches every item.
func (s *MemoryStore) ListByType(_ context.Context, typ string, limit int) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit = effectiveLimit(limit, s.max)
	out := make([]Item, 0, min(limit, len(s.items)))
	for _, it := range s.items {
		if len(out) == limit {
			break
		}
		if typ == "" || it.Type == typ {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

func (s *MemoryStore) Close() error { return nil }
