package virtualportfolio

import "time"

// Portfolio is a saved virtual SIP plan with its cached simulation
// metrics. Metrics are recomputed on demand via Refresh. Frequency is
// kept as its request tag and re-parsed on simulation.
type Portfolio struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	SchemeCode int       `json:"schemeCode"`
	SchemeName string    `json:"schemeName"`
	Amount     float64   `json:"amount"`
	Frequency  string    `json:"frequency"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	IsActive   bool      `json:"isActive"`
	Metrics    *Metrics  `json:"metrics,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Metrics are the cached results of the portfolio's SIP simulation.
type Metrics struct {
	TotalInvested    float64   `json:"totalInvested"`
	FinalValue       float64   `json:"finalValue"`
	TotalUnits       float64   `json:"totalUnits"`
	AbsoluteReturn   float64   `json:"absoluteReturn"`
	AnnualizedReturn float64   `json:"annualizedReturn"`
	Installments     int       `json:"installments"`
	RefreshedAt      time.Time `json:"refreshedAt"`
}

// CreateRequest is the payload for creating a virtual portfolio.
type CreateRequest struct {
	Name       string  `json:"name"`
	SchemeCode int     `json:"schemeCode"`
	SchemeName string  `json:"schemeName"`
	Amount     float64 `json:"amount"`
	Frequency  string  `json:"frequency"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
}

// UpdateRequest is the payload for updating a virtual portfolio. Nil
// fields are left unchanged.
type UpdateRequest struct {
	Name      *string  `json:"name"`
	Amount    *float64 `json:"amount"`
	Frequency *string  `json:"frequency"`
	StartDate *string  `json:"startDate"`
	EndDate   *string  `json:"endDate"`
	IsActive  *bool    `json:"isActive"`
}
