// Package returns implements point-to-point and rolling-window return
// calculations over a NAV series, including the rolling-return distribution
// statistics.
package returns

import (
	"fmt"
	"time"

	"fundscope/internal/modules/navseries"
)

// Period is a relative analysis window. It is a closed enumeration;
// unrecognized tags are rejected at parse time.
type Period int

const (
	Period1M Period = iota
	Period3M
	Period6M
	Period1Y
	Period3Y
	Period5Y
)

// ParsePeriod maps a request tag (1m/3m/6m/1y/3y/5y) to a Period.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "1m":
		return Period1M, nil
	case "3m":
		return Period3M, nil
	case "6m":
		return Period6M, nil
	case "1y":
		return Period1Y, nil
	case "3y":
		return Period3Y, nil
	case "5y":
		return Period5Y, nil
	default:
		return 0, fmt.Errorf("%w: unknown period %q", navseries.ErrInvalidParams, s)
	}
}

// AllPeriods lists every period, shortest first.
func AllPeriods() []Period {
	return []Period{Period1M, Period3M, Period6M, Period1Y, Period3Y, Period5Y}
}

func (p Period) String() string {
	switch p {
	case Period1M:
		return "1m"
	case Period3M:
		return "3m"
	case Period6M:
		return "6m"
	case Period1Y:
		return "1y"
	case Period3Y:
		return "3y"
	case Period5Y:
		return "5y"
	default:
		return "unknown"
	}
}

// Days returns the nominal window length in days, used by rolling-return
// window matching.
func (p Period) Days() int {
	switch p {
	case Period1M:
		return 30
	case Period3M:
		return 90
	case Period6M:
		return 180
	case Period1Y:
		return 365
	case Period3Y:
		return 1095
	case Period5Y:
		return 1825
	default:
		return 365
	}
}

// Label returns the human-readable window length for error messages.
func (p Period) Label() string {
	switch p {
	case Period1M:
		return "1 month"
	case Period3M:
		return "3 months"
	case Period6M:
		return "6 months"
	case Period1Y:
		return "1 year"
	case Period3Y:
		return "3 years"
	case Period5Y:
		return "5 years"
	default:
		return p.String()
	}
}

// startBefore computes "end minus this period" with calendar arithmetic.
func (p Period) startBefore(end time.Time) time.Time {
	switch p {
	case Period1M:
		return end.AddDate(0, -1, 0)
	case Period3M:
		return end.AddDate(0, -3, 0)
	case Period6M:
		return end.AddDate(0, -6, 0)
	case Period1Y:
		return end.AddDate(-1, 0, 0)
	case Period3Y:
		return end.AddDate(-3, 0, 0)
	case Period5Y:
		return end.AddDate(-5, 0, 0)
	default:
		return end.AddDate(-1, 0, 0)
	}
}
