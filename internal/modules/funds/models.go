package funds

import (
	"time"

	"fundscope/internal/modules/navseries"
)

// Fund is a mutual fund scheme tracked in funds.db.
type Fund struct {
	SchemeCode int       `json:"schemeCode"`
	Name       string    `json:"name"`
	FundHouse  string    `json:"fundHouse"`
	SchemeType string    `json:"schemeType"`
	Category   string    `json:"category"`
	IsActive   bool      `json:"isActive"`
	LatestNAV  float64   `json:"latestNav"`
	LatestDate time.Time `json:"latestNavDate"`
	LastSynced time.Time `json:"lastSynced"`
}

// DirectoryEntry is one row of the searchable scheme directory.
// The directory comes straight from the provider's scheme list and is
// much larger than the set of funds we persist locally.
type DirectoryEntry struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
}

// DirectoryPage is a paginated slice of the scheme directory.
type DirectoryPage struct {
	Schemes    []DirectoryEntry `json:"schemes"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// FundDetail bundles a fund with its usable NAV history.
type FundDetail struct {
	Fund    Fund                    `json:"fund"`
	History []navseries.RawNavPoint `json:"history"`
}
