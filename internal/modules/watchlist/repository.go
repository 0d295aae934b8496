// Package watchlist manages per-user watched schemes in portfolio.db
// and computes return snapshots for them.
package watchlist

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles watchlist database operations against portfolio.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new watchlist repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "watchlist").Logger(),
	}
}

// InitSchema creates the watchlist table if it does not exist.
func (r *Repository) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS watchlist (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     TEXT NOT NULL,
		scheme_code INTEGER NOT NULL,
		scheme_name TEXT NOT NULL DEFAULT '',
		added_at    INTEGER NOT NULL,
		UNIQUE (user_id, scheme_code)
	);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create watchlist schema: %w", err)
	}
	return nil
}

// Add inserts a watchlist entry. Adding a scheme that is already
// watched refreshes its stored name instead of failing.
func (r *Repository) Add(userID string, schemeCode int, schemeName string) (*Entry, error) {
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO watchlist (user_id, scheme_code, scheme_name, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, scheme_code) DO UPDATE SET scheme_name = excluded.scheme_name`,
		userID, schemeCode, schemeName, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add watchlist entry: %w", err)
	}

	return r.get(userID, schemeCode)
}

// Remove deletes a watchlist entry. Returns false if nothing was watched.
func (r *Repository) Remove(userID string, schemeCode int) (bool, error) {
	res, err := r.db.Exec(
		"DELETE FROM watchlist WHERE user_id = ? AND scheme_code = ?",
		userID, schemeCode,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove watchlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns a user's watchlist, oldest first.
func (r *Repository) List(userID string) ([]Entry, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, scheme_code, scheme_name, added_at
		FROM watchlist WHERE user_id = ? ORDER BY added_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func (r *Repository) get(userID string, schemeCode int) (*Entry, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, scheme_code, scheme_name, added_at
		FROM watchlist WHERE user_id = ? AND scheme_code = ?`,
		userID, schemeCode,
	)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var addedAt int64
	if err := row.Scan(&e.ID, &e.UserID, &e.SchemeCode, &e.SchemeName, &addedAt); err != nil {
		return nil, err
	}
	e.AddedAt = time.Unix(addedAt, 0).UTC()
	return &e, nil
}
