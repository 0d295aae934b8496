package mfapi

// SchemeListEntry is one row of the full scheme directory from the provider.
type SchemeListEntry struct {
	SchemeCode int    `json:"schemeCode" msgpack:"schemeCode"`
	SchemeName string `json:"schemeName" msgpack:"schemeName"`
}

// SchemeMeta describes a scheme as reported by the provider.
type SchemeMeta struct {
	FundHouse      string `json:"fund_house" msgpack:"fund_house"`
	SchemeType     string `json:"scheme_type" msgpack:"scheme_type"`
	SchemeCategory string `json:"scheme_category" msgpack:"scheme_category"`
	SchemeCode     int    `json:"scheme_code" msgpack:"scheme_code"`
	SchemeName     string `json:"scheme_name" msgpack:"scheme_name"`
}

// NavRow is a single NAV observation as returned by the provider.
// Dates are DD-MM-YYYY strings, NAVs are decimal strings; rows are
// ordered newest first.
type NavRow struct {
	Date string `json:"date" msgpack:"date"`
	NAV  string `json:"nav" msgpack:"nav"`
}

// SchemeDetail is the provider response for a single scheme.
type SchemeDetail struct {
	Meta   SchemeMeta `json:"meta" msgpack:"meta"`
	Data   []NavRow   `json:"data" msgpack:"data"`
	Status string     `json:"status" msgpack:"status"`
}
