// Package clientdata provides persistent caching for upstream provider
// responses. Payloads are stored as msgpack blobs with expiration
// timestamps for cache-first behavior.
package clientdata

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache TTLs per payload kind.
const (
	TTLSchemeList   = 12 * time.Hour
	TTLSchemeDetail = 12 * time.Hour
)

// AllTables lists all tables in cache.db for cleanup operations.
var AllTables = []string{
	"mfapi_scheme_list",
	"mfapi_scheme_detail",
}

// validTables is a set for O(1) table name validation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Repository provides cache operations for provider data.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new cache repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InitSchema creates the cache tables if they do not exist.
func (r *Repository) InitSchema() error {
	for _, table := range AllTables {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key  TEXT PRIMARY KEY,
				data       BLOB NOT NULL,
				expires_at INTEGER NOT NULL
			)`, table)
		if _, err := r.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create cache table %s: %w", table, err)
		}
	}
	return nil
}

// validateTable ensures the table name is in our allowed list.
// This prevents SQL injection through table names.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// Store saves a value with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert data.
func (r *Repository) Store(table, key string, value interface{}, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	blob, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (cache_key, data, expires_at) VALUES (?, ?, ?)",
		table,
	)
	if _, err := r.db.Exec(query, key, blob, expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}

	return nil
}

// GetIfFresh unmarshals into out only if expires_at > now.
// Returns false if the key doesn't exist or the data is expired.
// Use Get to retrieve stale data as a fallback when API calls fail.
func (r *Repository) GetIfFresh(table, key string, out interface{}) (bool, error) {
	return r.get(table, key, out, true)
}

// Get unmarshals into out regardless of expiration. Stale data is better
// than no data when the upstream API is down.
func (r *Repository) Get(table, key string, out interface{}) (bool, error) {
	return r.get(table, key, out, false)
}

func (r *Repository) get(table, key string, out interface{}, freshOnly bool) (bool, error) {
	if err := validateTable(table); err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE cache_key = ?", table)
	args := []interface{}{key}
	if freshOnly {
		query += " AND expires_at > ?"
		args = append(args, time.Now().Unix())
	}

	var blob []byte
	err := r.db.QueryRow(query, args...).Scan(&blob)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read from %s: %w", table, err)
	}

	if err := msgpack.Unmarshal(blob, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return true, nil
}

// DeleteExpired removes expired rows from every cache table.
func (r *Repository) DeleteExpired() (int64, error) {
	var total int64
	now := time.Now().Unix()
	for _, table := range AllTables {
		res, err := r.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", table), now)
		if err != nil {
			return total, fmt.Errorf("failed to prune %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}
