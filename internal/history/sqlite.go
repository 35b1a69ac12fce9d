package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tartampluch/go-koyomi/internal/config"
	_ "modernc.org/sqlite" // pure Go driver registered as "sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS history (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	created_at  INTEGER NOT NULL,
	type        TEXT NOT NULL,
	description TEXT NOT NULL,
	data        BLOB
)`

// SQLiteStore persists the history in a single SQLite table.
type SQLiteStore struct {
	db    *sql.DB
	max   int
	clock Clock
}

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(ctx context.Context, path string, max int, clock Clock) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%s: %w", config.ErrHistoryOpen, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrHistoryOpen, err)
	}
	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrHistoryMigrate, err)
	}
	if err := os.Chmod(path, config.FilePermUserRW); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn(config.MsgHistoryChmod,
			config.LogKeyComponent, config.CompHistory,
			config.LogKeyError, err)
	}

	slog.Info(config.MsgHistoryOpened,
		config.LogKeyComponent, config.CompHistory,
		config.LogKeyDriver, config.HistorySQLite,
		config.LogKeyFile, path,
		config.LogKeyMax, max)
	return &SQLiteStore{db: db, max: max, clock: clock}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, typ, description string, data any) (item Item, retErr error) {
	item, err := newItem(s.clock, typ, description, data)
	if err != nil {
		return Item{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("%s: %w", config.ErrHistoryWrite, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history (id, created_at, type, description, data) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Timestamp.UnixNano(), item.Type, item.Description, []byte(item.Data),
	); err != nil {
		return Item{}, fmt.Errorf("%s: %w", config.ErrHistoryWrite, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)`,
		s.max,
	); err != nil {
		return Item{}, fmt.Errorf("%s: %w", config.ErrHistoryWrite, err)
	}
	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("%s: %w", config.ErrHistoryWrite, err)
	}
	return item, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Item, error) {
	return s.ListByType(ctx, "", limit)
}

// ListByType filters by type; an empty type matches every item.
func (s *SQLiteStore) ListByType(ctx context.Context, typ string, limit int) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, type, description, data FROM history
		 WHERE ? = '' OR type = ?
		 ORDER BY seq DESC LIMIT ?`,
		typ, typ, effectiveLimit(limit, s.max))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrHistoryRead, err)
	}
	defer func() { _ = rows.Close() }()

	items := []Item{}
	for rows.Next() {
		var (
			it      Item
			created int64
			data    []byte
		)
		if err := rows.Scan(&it.ID, &created, &it.Type, &it.Description, &data); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrHistoryRead, err)
		}
		it.Timestamp = time.Unix(0, created).UTC()
		if len(data) > 0 {
			it.Data = data
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrHistoryRead, err)
	}
	return items, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrHistoryWrite, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("%s: %w", config.ErrHistoryWrite, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
