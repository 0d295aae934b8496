// Package virtualportfolio manages saved virtual SIP plans in
// portfolio.db. Each plan caches the metrics of its last simulation run
// so list views do not recompute on every request.
package virtualportfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles virtual portfolio database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new virtual portfolio repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "virtual_portfolio").Logger(),
	}
}

const portfolioColumns = `id, user_id, name, scheme_code, scheme_name, amount,
frequency, start_date, end_date, is_active,
total_invested, final_value, total_units, absolute_return, annualized_return,
installments, refreshed_at, created_at, updated_at`

// InitSchema creates the virtual_portfolios table if it does not exist.
func (r *Repository) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS virtual_portfolios (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		name              TEXT NOT NULL,
		scheme_code       INTEGER NOT NULL,
		scheme_name       TEXT NOT NULL DEFAULT '',
		amount            REAL NOT NULL,
		frequency         TEXT NOT NULL,
		start_date        TEXT NOT NULL,
		end_date          TEXT NOT NULL,
		is_active         INTEGER NOT NULL DEFAULT 1,
		total_invested    REAL,
		final_value       REAL,
		total_units       REAL,
		absolute_return   REAL,
		annualized_return REAL,
		installments      INTEGER,
		refreshed_at      INTEGER,
		created_at        INTEGER NOT NULL,
		updated_at        INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vp_user ON virtual_portfolios(user_id);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create virtual portfolio schema: %w", err)
	}
	return nil
}

// Create inserts a new portfolio row.
func (r *Repository) Create(p *Portfolio) error {
	query := `
		INSERT INTO virtual_portfolios (` + portfolioColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query, r.writeArgs(p)...)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	return nil
}

// Update replaces a portfolio row by id.
func (r *Repository) Update(p *Portfolio) error {
	query := `
		UPDATE virtual_portfolios SET
			user_id = ?, name = ?, scheme_code = ?, scheme_name = ?, amount = ?,
			frequency = ?, start_date = ?, end_date = ?, is_active = ?,
			total_invested = ?, final_value = ?, total_units = ?,
			absolute_return = ?, annualized_return = ?, installments = ?,
			refreshed_at = ?, created_at = ?, updated_at = ?
		WHERE id = ?`

	args := append(r.writeArgs(p)[1:], p.ID)
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update portfolio %s: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("portfolio %s not found", p.ID)
	}
	return nil
}

// GetByID returns a portfolio by id, or nil if it does not exist.
func (r *Repository) GetByID(id string) (*Portfolio, error) {
	query := "SELECT " + portfolioColumns + " FROM virtual_portfolios WHERE id = ?"

	row := r.db.QueryRow(query, id)
	p, err := scanPortfolio(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio %s: %w", id, err)
	}
	return p, nil
}

// List returns a user's portfolios, newest first.
func (r *Repository) List(userID string) ([]Portfolio, error) {
	query := "SELECT " + portfolioColumns + ` FROM virtual_portfolios
		WHERE user_id = ? ORDER BY created_at DESC, id`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	var result []Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// Delete removes a portfolio. Returns false if the id was unknown.
func (r *Repository) Delete(id string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM virtual_portfolios WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete portfolio %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const dateLayout = "2006-01-02"

func (r *Repository) writeArgs(p *Portfolio) []interface{} {
	var invested, finalValue, units, absRet, annRet interface{}
	var installments, refreshedAt interface{}
	if p.Metrics != nil {
		invested = p.Metrics.TotalInvested
		finalValue = p.Metrics.FinalValue
		units = p.Metrics.TotalUnits
		absRet = p.Metrics.AbsoluteReturn
		annRet = p.Metrics.AnnualizedReturn
		installments = p.Metrics.Installments
		refreshedAt = p.Metrics.RefreshedAt.Unix()
	}

	return []interface{}{
		p.ID, p.UserID, p.Name, p.SchemeCode, p.SchemeName, p.Amount,
		p.Frequency, p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout),
		boolToInt(p.IsActive),
		invested, finalValue, units, absRet, annRet,
		installments, refreshedAt,
		p.CreatedAt.Unix(), p.UpdatedAt.Unix(),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPortfolio(row rowScanner) (*Portfolio, error) {
	var p Portfolio
	var isActive int
	var startDate, endDate string
	var createdAt, updatedAt int64
	var invested, finalValue, units, absRet, annRet sql.NullFloat64
	var installments, refreshedAt sql.NullInt64

	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.SchemeCode, &p.SchemeName, &p.Amount,
		&p.Frequency, &startDate, &endDate, &isActive,
		&invested, &finalValue, &units, &absRet, &annRet,
		&installments, &refreshedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.IsActive = isActive != 0
	p.StartDate, _ = time.ParseInLocation(dateLayout, startDate, time.UTC)
	p.EndDate, _ = time.ParseInLocation(dateLayout, endDate, time.UTC)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if refreshedAt.Valid {
		p.Metrics = &Metrics{
			TotalInvested:    invested.Float64,
			FinalValue:       finalValue.Float64,
			TotalUnits:       units.Float64,
			AbsoluteReturn:   absRet.Float64,
			AnnualizedReturn: annRet.Float64,
			Installments:     int(installments.Int64),
			RefreshedAt:      time.Unix(refreshedAt.Int64, 0).UTC(),
		}
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
