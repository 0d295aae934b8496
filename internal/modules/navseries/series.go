// Package navseries provides the NAV time-series primitives used by all
// fund calculations: date normalization, look-back price resolution, and
// cash-flow schedule generation.
package navseries

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RawNavPoint is one row of upstream NAV history as delivered by the data
// provider: newest first, NAV as a string, date in either DD-MM-YYYY (as
// stored upstream) or YYYY-MM-DD (as passed through from query params).
type RawNavPoint struct {
	Date string `json:"date"`
	NAV  string `json:"nav"`
}

// NavPoint is a normalized observation: a calendar date (midnight UTC) and a
// per-unit price. Points with non-positive NAV are kept in the series but are
// never used for resolution or division.
type NavPoint struct {
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}

// ParseNavDate normalizes the two date encodings that appear in raw input.
// The format is detected by the length of the first dash-delimited token:
// two characters means DD-MM-YYYY, four means YYYY-MM-DD.
func ParseNavDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	first, _, found := strings.Cut(s, "-")
	if !found {
		return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
	}

	layout := "2006-01-02"
	if len(first) == 2 {
		layout = "02-01-2006"
	}

	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
	}
	return t, nil
}

// ParseNavValue parses a raw NAV string into a float.
func ParseNavValue(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Date constructs a calendar date at midnight UTC. All internal calculation
// dates go through this so ordering comparisons are unambiguous.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Series is an in-memory NAV history, sorted ascending by date. It is built
// once per request from raw provider rows and is read-only afterwards, so a
// single Series may be shared by concurrent calculations.
type Series struct {
	points []NavPoint
}

// NewSeries parses raw provider rows into a chronological series. Rows with
// unparsable dates or NAV values are dropped; rows with non-positive NAV are
// retained (they still mark observation dates) but never resolve.
func NewSeries(raw []RawNavPoint) (*Series, error) {
	if len(raw) == 0 {
		return nil, ErrInsufficientData
	}

	points := make([]NavPoint, 0, len(raw))
	for _, r := range raw {
		date, err := ParseNavDate(r.Date)
		if err != nil {
			continue
		}
		nav, err := ParseNavValue(r.NAV)
		if err != nil {
			continue
		}
		points = append(points, NavPoint{Date: date, NAV: nav})
	}

	if len(points) == 0 {
		return nil, ErrInsufficientData
	}

	// Provider data is newest-first; everything downstream walks forward in
	// time, so sort ascending once here.
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return &Series{points: points}, nil
}

// Len returns the number of observations, including non-positive ones.
func (s *Series) Len() int { return len(s.points) }

// Points returns the ascending observations. Callers must not mutate the
// returned slice.
func (s *Series) Points() []NavPoint { return s.points }

// ResolveAsOf returns the point with the largest date <= target among points
// with a strictly positive NAV. This is look-back resolution: a cash flow on
// a non-trading day executes at the most recent prior published price, and a
// future price is never used. Returns ErrNoData when the target predates the
// series or every candidate has a non-positive NAV.
func (s *Series) ResolveAsOf(target time.Time) (NavPoint, error) {
	// Index of the first point after target.
	idx := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Date.After(target)
	})

	// Walk back past any non-positive observations.
	for i := idx - 1; i >= 0; i-- {
		if s.points[i].NAV > 0 {
			return s.points[i], nil
		}
	}
	return NavPoint{}, ErrNoData
}

// FirstUsable returns the earliest point with a positive NAV.
func (s *Series) FirstUsable() (NavPoint, error) {
	for _, p := range s.points {
		if p.NAV > 0 {
			return p, nil
		}
	}
	return NavPoint{}, ErrNoData
}

// LastUsable returns the latest point with a positive NAV.
func (s *Series) LastUsable() (NavPoint, error) {
	for i := len(s.points) - 1; i >= 0; i-- {
		if s.points[i].NAV > 0 {
			return s.points[i], nil
		}
	}
	return NavPoint{}, ErrNoData
}

// Between returns the positive-NAV observations with from <= date <= to, in
// ascending order.
func (s *Series) Between(from, to time.Time) []NavPoint {
	var out []NavPoint
	for _, p := range s.points {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		if p.NAV <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// DaysBetween returns the calendar-day distance from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// YearsBetween returns the elapsed calendar time from a to b in years,
// using a fixed 365-day year. This matches the annualization convention used
// throughout the calculation engine.
func YearsBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24 / 365
}
