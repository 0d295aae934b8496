package watchlist

import "time"

// Entry is one watched scheme for a user.
type Entry struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	SchemeCode int       `json:"schemeCode"`
	SchemeName string    `json:"schemeName"`
	AddedAt    time.Time `json:"addedAt"`
}

// Performance is the per-scheme return snapshot served by the
// performance endpoint. Horizon fields are nil when the scheme's
// history cannot cover them.
type Performance struct {
	SchemeCode int      `json:"schemeCode"`
	SchemeName string   `json:"schemeName"`
	LatestNAV  float64  `json:"latestNav"`
	LatestDate string   `json:"latestNavDate"`
	Return1D   *float64 `json:"return1d"`
	Return1M   *float64 `json:"return1m"`
	Return3M   *float64 `json:"return3m"`
	Return6M   *float64 `json:"return6m"`
	Return1Y   *float64 `json:"return1y"`
}
