// Package history keeps a bounded, newest-first log of past calculations.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-koyomi/internal/config"
)

// ErrNotFound is returned by Remove for an unknown id.
var ErrNotFound = errors.New(config.ErrHistoryNotFound)

// Item is one recorded calculation.
type Item struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Store is implemented by MemoryStore and SQLiteStore. Lists are newest
// first; once more than the maximum is stored the oldest items are dropped.
type Store interface {
	Add(ctx context.Context, typ, description string, data any) (Item, error)
	List(ctx context.Context, limit int) ([]Item, error)
	ListByType(ctx context.Context, typ string, limit int) ([]Item, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Close() error
}

// Clock provides the item timestamps.
type Clock interface {
	Now() time.Time
}

func newItem(clock Clock, typ, description string, data any) (Item, error) {
	item := Item{
		ID:          uuid.NewString(),
		Timestamp:   clock.Now().UTC(),
		Type:        typ,
		Description: description,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Item{}, fmt.Errorf("%s: %w", config.ErrHistoryEncode, err)
		}
		item.Data = raw
	}
	return item, nil
}

// Open builds the store selected by driver (config.HistoryMemory or
// config.HistorySQLite).
func Open(ctx context.Context, driver, path string, max int, clock Clock) (Store, error) {
	switch driver {
	case config.HistoryMemory, "":
		return NewMemoryStore(max, clock), nil
	case config.HistorySQLite:
		return OpenSQLite(ctx, path, max, clock)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrHistoryDriver, driver)
	}
}

// effectiveLimit caps a requested limit to the store size; zero or negative
// means everything.
func effectiveLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
