package returns

import (
	"fmt"
	"math"
	"time"

	"fundscope/internal/modules/navseries"
)

// PointResult is a fixed-window point-to-point return. Start and end dates
// are the actually resolved observation dates, which may sit earlier than
// the requested boundaries when those fall on non-trading days.
type PointResult struct {
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	StartNAV         float64   `json:"startNAV"`
	EndNAV           float64   `json:"endNAV"`
	SimpleReturn     float64   `json:"simpleReturn"`
	AnnualizedReturn float64   `json:"annualizedReturn"`
}

// PointForPeriod computes the trailing return for a relative period ending
// now.
func PointForPeriod(series *navseries.Series, period Period, now time.Time) (*PointResult, error) {
	return PointBetween(series, period.startBefore(now), now)
}

// PointBetween computes the return between two dates. Both boundary prices
// resolve via look-back; a miss on either side is an insufficient-data
// error because a window boundary is a required resolution. Annualization
// uses the actual resolved-date gap, not the nominal requested gap.
func PointBetween(series *navseries.Series, from, to time.Time) (*PointResult, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: either a period or from/to dates are required", navseries.ErrInvalidParams)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: start date must be before end date", navseries.ErrInvalidParams)
	}

	start, err := series.ResolveAsOf(from)
	if err != nil {
		return nil, fmt.Errorf("%w: no NAV at or before the start date", navseries.ErrInsufficientData)
	}
	end, err := series.ResolveAsOf(to)
	if err != nil {
		return nil, fmt.Errorf("%w: no NAV at or before the end date", navseries.ErrInsufficientData)
	}

	simple := (end.NAV - start.NAV) / start.NAV * 100

	// When both boundaries resolve to the same observation the gap is zero;
	// report the simple return instead of dividing by zero.
	years := navseries.YearsBetween(start.Date, end.Date)
	annualizedRet := simple
	if years > 0 {
		annualizedRet = (math.Pow(end.NAV/start.NAV, 1/years) - 1) * 100
	}

	return &PointResult{
		StartDate:        start.Date,
		EndDate:          end.Date,
		StartNAV:         start.NAV,
		EndNAV:           end.NAV,
		SimpleReturn:     simple,
		AnnualizedReturn: annualizedRet,
	}, nil
}
