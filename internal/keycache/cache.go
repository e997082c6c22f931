package keycache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pagewright/internal/keytable"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry summarizes one cached table.
type Entry struct {
	ContentID string    `json:"content_id"`
	Kind      string    `json:"kind"`
	Entries   int       `json:"entries"`
	CachedAt  time.Time `json:"cached_at"`
}

// Cache persists decrypted key tables keyed by content id and kind.
type Cache struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or connects to the cache database at path.
func Open(path string) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("key cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create key cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, path: path, now: time.Now}
	if err := cache.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Put stores or replaces a table.
func (c *Cache) Put(ctx context.Context, contentID, kind string, table keytable.Table) error {
	if contentID == "" || kind == "" {
		return errors.New("key cache put: content id and kind are required")
	}
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode key table: %w", err)
	}
	stamp := c.now().UTC().Format(time.RFC3339Nano)
	return c.execWithRetry(ctx, `INSERT INTO key_tables (content_id, kind, entries, entry_count, cached_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(content_id, kind) DO UPDATE SET entries = excluded.entries, entry_count = excluded.entry_count, cached_at = excluded.cached_at`,
		contentID, kind, string(data), len(table), stamp)
}

// PutAll stores every table in tables.
func (c *Cache) PutAll(ctx context.Context, contentID string, tables map[string]keytable.Table) error {
	for kind, table := range tables {
		if err := c.Put(ctx, contentID, kind, table); err != nil {
			return fmt.Errorf("cache %s: %w", kind, err)
		}
	}
	return nil
}

// Get returns a cached table. The bool is false when nothing is cached.
func (c *Cache) Get(ctx context.Context, contentID, kind string) (keytable.Table, bool, error) {
	ctx = ensureContext(ctx)
	var raw string
	err := retryOnBusy(ctx, func() error {
		return c.db.QueryRowContext(ctx,
			"SELECT entries FROM key_tables WHERE content_id = ? AND kind = ?", contentID, kind,
		).Scan(&raw)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query key table: %w", err)
	}
	var table keytable.Table
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return nil, false, fmt.Errorf("decode cached key table %s/%s: %w", contentID, kind, err)
	}
	return table, true, nil
}

// GetAll returns every cached table for contentID keyed by kind.
func (c *Cache) GetAll(ctx context.Context, contentID string) (map[string]keytable.Table, error) {
	out := make(map[string]keytable.Table)
	for _, kind := range keytable.Kinds {
		table, ok, err := c.Get(ctx, contentID, kind)
		if err != nil {
			return nil, err
		}
		if ok {
			out[kind] = table
		}
	}
	return out, nil
}

// List returns a summary of every cached table ordered by content id and kind.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := c.db.QueryContext(ctx,
		"SELECT content_id, kind, entry_count, cached_at FROM key_tables ORDER BY content_id, kind")
	if err != nil {
		return nil, fmt.Errorf("list key tables: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			stamp string
		)
		if err := rows.Scan(&e.ContentID, &e.Kind, &e.Entries, &stamp); err != nil {
			return nil, fmt.Errorf("scan key table row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
			e.CachedAt = parsed
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate key tables: %w", err)
	}
	return entries, nil
}

// Clear removes every cached table and reports how many were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := c.db.ExecContext(ctx, "DELETE FROM key_tables")
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear key tables: %w", err)
	}
	return removed, nil
}

func (c *Cache) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx, query, args...)
		return err
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
