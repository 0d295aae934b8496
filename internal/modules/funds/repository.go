// Package funds manages the locally persisted mutual fund universe:
// scheme metadata and NAV history stored in funds.db, kept fresh by
// the scheduled refresh job.
package funds

import (
	"database/sql"
	"fmt"
	"time"

	"fundscope/internal/database"
	"fundscope/internal/modules/navseries"

	"github.com/rs/zerolog"
)

// Repository handles fund database operations against funds.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new fund repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "funds").Logger(),
	}
}

const fundColumns = `scheme_code, name, fund_house, scheme_type, category,
is_active, latest_nav, latest_nav_date, last_synced`

// InitSchema creates the funds tables if they do not exist.
func (r *Repository) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS funds (
		scheme_code     INTEGER PRIMARY KEY,
		name            TEXT NOT NULL,
		fund_house      TEXT NOT NULL DEFAULT '',
		scheme_type     TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL DEFAULT '',
		is_active       INTEGER NOT NULL DEFAULT 1,
		latest_nav      REAL NOT NULL DEFAULT 0,
		latest_nav_date TEXT NOT NULL DEFAULT '',
		last_synced     INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS nav_history (
		scheme_code INTEGER NOT NULL,
		date        TEXT NOT NULL,
		nav         TEXT NOT NULL,
		PRIMARY KEY (scheme_code, date)
	);

	CREATE INDEX IF NOT EXISTS idx_nav_history_scheme ON nav_history(scheme_code);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create funds schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a fund row.
func (r *Repository) Upsert(f *Fund) error {
	query := `
		INSERT OR REPLACE INTO funds (` + fundColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		f.SchemeCode, f.Name, f.FundHouse, f.SchemeType, f.Category,
		boolToInt(f.IsActive), f.LatestNAV, f.LatestDate.Format("2006-01-02"),
		f.LastSynced.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fund %d: %w", f.SchemeCode, err)
	}
	return nil
}

// GetByCode returns a fund by scheme code, or nil if it is not persisted.
func (r *Repository) GetByCode(schemeCode int) (*Fund, error) {
	query := "SELECT " + fundColumns + " FROM funds WHERE scheme_code = ?"

	row := r.db.QueryRow(query, schemeCode)
	fund, err := scanFund(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fund %d: %w", schemeCode, err)
	}
	return fund, nil
}

// List returns all persisted funds ordered by name.
func (r *Repository) List() ([]Fund, error) {
	query := "SELECT " + fundColumns + " FROM funds ORDER BY name"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var result []Fund
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		result = append(result, *fund)
	}
	return result, rows.Err()
}

// ReplaceNavHistory swaps the stored history for a scheme with the
// given rows inside a single transaction.
func (r *Repository) ReplaceNavHistory(schemeCode int, rows []navseries.RawNavPoint) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM nav_history WHERE scheme_code = ?", schemeCode); err != nil {
			return fmt.Errorf("failed to clear nav history for %d: %w", schemeCode, err)
		}

		stmt, err := tx.Prepare("INSERT OR REPLACE INTO nav_history (scheme_code, date, nav) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare nav insert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			if _, err := stmt.Exec(schemeCode, row.Date, row.NAV); err != nil {
				return fmt.Errorf("failed to insert nav row for %d: %w", schemeCode, err)
			}
		}
		return nil
	})
}

// GetNavHistory returns the stored raw NAV rows for a scheme. Row order
// is unspecified; callers build a Series which sorts chronologically.
func (r *Repository) GetNavHistory(schemeCode int) ([]navseries.RawNavPoint, error) {
	rows, err := r.db.Query("SELECT date, nav FROM nav_history WHERE scheme_code = ?", schemeCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query nav history for %d: %w", schemeCode, err)
	}
	defer rows.Close()

	var result []navseries.RawNavPoint
	for rows.Next() {
		var p navseries.RawNavPoint
		if err := rows.Scan(&p.Date, &p.NAV); err != nil {
			return nil, fmt.Errorf("failed to scan nav row: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Delete removes a fund and its history.
func (r *Repository) Delete(schemeCode int) error {
	if _, err := r.db.Exec("DELETE FROM nav_history WHERE scheme_code = ?", schemeCode); err != nil {
		return fmt.Errorf("failed to delete nav history for %d: %w", schemeCode, err)
	}
	if _, err := r.db.Exec("DELETE FROM funds WHERE scheme_code = ?", schemeCode); err != nil {
		return fmt.Errorf("failed to delete fund %d: %w", schemeCode, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFund(row rowScanner) (*Fund, error) {
	var f Fund
	var isActive int
	var latestDate string
	var lastSynced int64

	err := row.Scan(&f.SchemeCode, &f.Name, &f.FundHouse, &f.SchemeType, &f.Category,
		&isActive, &f.LatestNAV, &latestDate, &lastSynced)
	if err != nil {
		return nil, err
	}

	f.IsActive = isActive != 0
	if latestDate != "" {
		if d, err := time.ParseInLocation("2006-01-02", latestDate, time.UTC); err == nil {
			f.LatestDate = d
		}
	}
	f.LastSynced = time.Unix(lastSynced, 0).UTC()
	return &f, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
