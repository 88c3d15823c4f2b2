// Package sqlite provides resource descriptors for blobs kept in a SQLite
// database, using the pure Go driver. The database can live in a file or in
// memory (":memory:"), which makes this kind handy for tests and for
// embedded deployments without a separate object store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/resource"
	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore keeps named blobs in a two-column-index layout: an in-memory
// B-tree for fast key lookups backed by a blob table for content and
// metadata. It acts as the loader scheme for "sqlite:key" locations.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB

	// In-memory B-tree for fast key lookups
	keys *btree.Map[string, string]
}

// NewSQLiteStore opens (or creates) the store at dbPath, which may be
// ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("resource: opening sqlite store: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("resource: configuring sqlite store: %w", err)
	}

	store := &SQLiteStore{
		db:   db,
		keys: btree.NewMap[string, string](0),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("resource: initializing sqlite schema: %w", err)
	}
	if err := store.loadKeys(); err != nil {
		db.Close()
		return nil, fmt.Errorf("resource: loading sqlite keys: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resource_blobs (
		id TEXT PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		content BLOB NOT NULL,
		size INTEGER NOT NULL CHECK(size >= 0),
		modify_time INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_resource_blobs_key ON resource_blobs(key);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) loadKeys() error {
	rows, err := s.db.Query("SELECT key, id FROM resource_blobs")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return err
		}
		s.keys.Set(key, id)
	}

	return rows.Err()
}

// Close releases the key index and the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys.Clear()
	return s.db.Close()
}

// Put stores (or replaces) a blob under the given key.
func (s *SQLiteStore) Put(ctx context.Context, key string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.keys.Get(key)
	if !exists {
		id = uuid.Must(uuid.NewV7()).String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resource_blobs (id, key, content, size, modify_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET content = excluded.content,
			size = excluded.size, modify_time = excluded.modify_time`,
		id, key, content, len(content), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("resource: storing blob %q: %w", key, err)
	}

	s.keys.Set(key, id)
	return nil
}

// Delete removes the blob under the given key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys.Get(key); !exists {
		return fmt.Errorf("%w: sqlite blob [%s]", resource.ErrNotExist, key)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM resource_blobs WHERE key = ?", key); err != nil {
		return fmt.Errorf("resource: deleting blob %q: %w", key, err)
	}

	s.keys.Delete(key)
	return nil
}

// Name returns the location scheme handled by this store.
func (*SQLiteStore) Name() string {
	return "sqlite"
}

// Resolve turns a "sqlite:key" location into a descriptor.
func (s *SQLiteStore) Resolve(location string) (resource.Resource, error) {
	key := strings.TrimPrefix(location, "sqlite:")
	if key == "" {
		return nil, fmt.Errorf("%w: %q names no key", resource.ErrInvalid, location)
	}
	return s.Resource(key), nil
}

// Resource returns a descriptor for the given key. The key does not need to
// exist yet.
func (s *SQLiteStore) Resource(key string) *SQLiteResource {
	return &SQLiteResource{
		Base:  resource.NewBase(fmt.Sprintf("sqlite blob [%s]", key)),
		store: s,
		key:   key,
	}
}

// contains reports whether a key is present, using only the key index.
func (s *SQLiteStore) contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.keys.Get(key)
	return exists
}

// read fetches the content of a key.
func (s *SQLiteStore) read(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var content []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM resource_blobs WHERE key = ?", key).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, resource.ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return content, nil
}

// stat fetches size and modification time of a key.
func (s *SQLiteStore) stat(ctx context.Context, key string) (int64, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var size, modify int64
	err := s.db.QueryRowContext(ctx,
		"SELECT size, modify_time FROM resource_blobs WHERE key = ?", key).Scan(&size, &modify)
	if err == sql.ErrNoRows {
		return 0, time.Time{}, resource.ErrNotExist
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return size, time.Unix(modify, 0), nil
}
