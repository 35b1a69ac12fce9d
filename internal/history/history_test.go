package history_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/history"
)

// tickClock advances one second per call so timestamps are distinct.
type tickClock struct{ t time.Time }

func (c *tickClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newClock() *tickClock {
	return &tickClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// stores runs fn against every implementation.
func stores(t *testing.T, max int, fn func(t *testing.T, s history.Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, history.NewMemoryStore(max, newClock()))
	})
	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", config.HistoryDBFile)
		s, err := history.OpenSQLite(context.Background(), path, max, newClock())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func TestStore_AddAndList(t *testing.T) {
	stores(t, 50, func(t *testing.T, s history.Store) {
		ctx := context.Background()
		first, err := s.Add(ctx, config.HistTypeDiff, "2025-01-01 → 2025-12-31", map[string]int{"days": 364})
		require.NoError(t, err)
		_, err = s.Add(ctx, config.HistTypeAge, "1990-08-20", nil)
		require.NoError(t, err)

		items, err := s.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, config.HistTypeAge, items[0].Type, "Newest first")
		assert.Equal(t, first.ID, items[1].ID)
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC), items[1].Timestamp)

		var data map[string]int
		require.NoError(t, json.Unmarshal(items[1].Data, &data))
		assert.Equal(t, 364, data["days"])
		assert.Empty(t, items[0].Data)
	})
}

func TestStore_EvictsOldest(t *testing.T) {
	stores(t, 3, func(t *testing.T, s history.Store) {
		ctx := context.Background()
		for i := range 5 {
			_, err := s.Add(ctx, config.HistTypeDiff, fmt.Sprintf("item %d", i), nil)
			require.NoError(t, err)
		}
		items, err := s.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "item 4", items[0].Description)
		assert.Equal(t, "item 2", items[2].Description)

		limited, err := s.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}

func TestStore_ListByType(t *testing.T) {
	stores(t, 10, func(t *testing.T, s history.Store) {
		ctx := context.Background()
		for _, typ := range []string{config.HistTypeDiff, config.HistTypeWareki, config.HistTypeDiff} {
			_, err := s.Add(ctx, typ, typ, nil)
			require.NoError(t, err)
		}
		diffs, err := s.ListByType(ctx, config.HistTypeDiff, 0)
		require.NoError(t, err)
		assert.Len(t, diffs, 2)

		none, err := s.ListByType(ctx, config.HistTypeRecurrence, 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestStore_RemoveAndClear(t *testing.T) {
	stores(t, 10, func(t *testing.T, s history.Store) {
		ctx := context.Background()
		a, err := s.Add(ctx, config.HistTypeDiff, "a", nil)
		require.NoError(t, err)
		_, err = s.Add(ctx, config.HistTypeDiff, "b", nil)
		require.NoError(t, err)

		require.NoError(t, s.Remove(ctx, a.ID))
		assert.ErrorIs(t, s.Remove(ctx, a.ID), history.ErrNotFound)

		items, err := s.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "b", items[0].Description)

		require.NoError(t, s.Clear(ctx))
		items, err = s.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestSQLite_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), config.HistoryDBFile)

	s, err := history.OpenSQLite(ctx, path, 10, newClock())
	require.NoError(t, err)
	_, err = s.Add(ctx, config.HistTypeWareki, "令和7年", nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := history.OpenSQLite(ctx, path, 10, newClock())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	items, err := reopened.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "令和7年", items[0].Description)
}

func TestOpen_Driver(t *testing.T) {
	s, err := history.Open(context.Background(), config.HistoryMemory, "", 5, newClock())
	require.NoError(t, err)
	assert.IsType(t, &history.MemoryStore{}, s)

	_, err = history.Open(context.Background(), "redis", "", 5, newClock())
	assert.ErrorContains(t, err, config.ErrHistoryDriver)
}
