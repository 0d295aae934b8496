package returns

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"fundscope/internal/modules/navseries"
)

// matchToleranceDays is how far a window-start observation may sit from the
// nominal period length and still pair with a window end. The tolerance is
// fixed regardless of period length, so for the 1-month period it is half
// the window itself; this matches the reference behavior and is flagged
// rather than silently tightened.
const matchToleranceDays = 15

// rollingChartStep is the chart down-sampling interval for rolling series.
const rollingChartStep = 5

// RangeTooShortError rejects a rolling-return request whose analysis range
// is shorter than the rolling period itself.
type RangeTooShortError struct {
	Period    Period
	RangeDays int
}

func (e *RangeTooShortError) Error() string {
	return fmt.Sprintf("date range too short for %s rolling returns; select a range longer than %s",
		e.Period.Label(), e.Period.Label())
}

// RollingPoint is the return over one trailing window: the window end is an
// observation date, the window start is the observation closest to one
// period earlier.
type RollingPoint struct {
	Date        time.Time `json:"date"`
	WindowStart time.Time `json:"windowStart"`
	StartNAV    float64   `json:"startNav"`
	EndNAV      float64   `json:"endNav"`
	Return      float64   `json:"return"` // annualized, percent
}

// Bucket is one fixed histogram band of the rolling-return distribution.
type Bucket struct {
	Range      string  `json:"range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RollingStats summarizes the annualized-return series.
type RollingStats struct {
	Best               float64 `json:"best"`
	Worst              float64 `json:"worst"`
	Average            float64 `json:"average"`
	PositivePercentage float64 `json:"positivePercentage"`
}

// RollingResult is the full rolling-return analysis for one scheme.
type RollingResult struct {
	Period       string         `json:"period"`
	TotalWindows int            `json:"totalWindows"`
	Statistics   RollingStats   `json:"statistics"`
	Distribution []Bucket       `json:"distribution"`
	Points       []RollingPoint `json:"points"`
	ChartData    []RollingPoint `json:"chartData"`
}

// Rolling computes the trailing-window return series across [from, to]. For
// every observation date, walking from most recent backward, it pairs the
// date with the earlier observation whose gap is within the tolerance of the
// period length (closest match preferred) and emits the annualized return of
// that window. The range must be at least one period long.
func Rolling(series *navseries.Series, period Period, from, to time.Time) (*RollingResult, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: from and to dates are required", navseries.ErrInvalidParams)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: start date must be before end date", navseries.ErrInvalidParams)
	}

	targetDays := period.Days()
	if rangeDays := navseries.DaysBetween(from, to); rangeDays < targetDays {
		return nil, &RangeTooShortError{Period: period, RangeDays: rangeDays}
	}

	window := series.Between(from, to)
	if len(window) == 0 {
		return nil, fmt.Errorf("%w: no NAV observations in the selected range", navseries.ErrInsufficientData)
	}

	var points []RollingPoint
	for i := len(window) - 1; i >= 0; i-- {
		end := window[i]

		// Find the earlier observation closest to one period before end.
		var (
			start   navseries.NavPoint
			found   bool
			closest = math.MaxInt
		)
		for j := 0; j < i; j++ {
			gap := navseries.DaysBetween(window[j].Date, end.Date)
			if gap < targetDays-matchToleranceDays || gap > targetDays+matchToleranceDays {
				continue
			}
			if diff := abs(gap - targetDays); diff < closest {
				closest = diff
				start = window[j]
				found = true
			}
		}
		if !found {
			continue
		}

		simple := (end.NAV - start.NAV) / start.NAV * 100
		annualizedRet := simple
		if years := navseries.YearsBetween(start.Date, end.Date); years > 0 {
			annualizedRet = (math.Pow(end.NAV/start.NAV, 1/years) - 1) * 100
		}

		points = append(points, RollingPoint{
			Date:        end.Date,
			WindowStart: start.Date,
			StartNAV:    start.NAV,
			EndNAV:      end.NAV,
			Return:      annualizedRet,
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: not enough observations for %s rolling windows", navseries.ErrInsufficientData, period.Label())
	}

	// Points were collected newest-first; present them chronologically.
	reverse(points)

	rets := make([]float64, len(points))
	positives := 0
	for i, pt := range points {
		rets[i] = pt.Return
		if pt.Return >= 0 {
			positives++
		}
	}

	stats := RollingStats{
		Best:               floats.Max(rets),
		Worst:              floats.Min(rets),
		Average:            stat.Mean(rets, nil),
		PositivePercentage: float64(positives) / float64(len(rets)) * 100,
	}

	return &RollingResult{
		Period:       period.String(),
		TotalWindows: len(points),
		Statistics:   stats,
		Distribution: distribute(rets),
		Points:       points,
		ChartData:    sampleRolling(points),
	}, nil
}

// distribute assigns each return to one of seven fixed percent-return bands.
// Every return lands in exactly one band, so the counts sum to the total.
func distribute(rets []float64) []Bucket {
	buckets := []Bucket{
		{Range: "> 20%"},
		{Range: "15% to 20%"},
		{Range: "10% to 15%"},
		{Range: "5% to 10%"},
		{Range: "0% to 5%"},
		{Range: "-5% to 0%"},
		{Range: "< -5%"},
	}

	for _, r := range rets {
		switch {
		case r > 20:
			buckets[0].Count++
		case r > 15:
			buckets[1].Count++
		case r > 10:
			buckets[2].Count++
		case r > 5:
			buckets[3].Count++
		case r > 0:
			buckets[4].Count++
		case r > -5:
			buckets[5].Count++
		default:
			buckets[6].Count++
		}
	}

	for i := range buckets {
		buckets[i].Percentage = float64(buckets[i].Count) / float64(len(rets)) * 100
	}
	return buckets
}

func sampleRolling(points []RollingPoint) []RollingPoint {
	out := make([]RollingPoint, 0, len(points)/rollingChartStep+2)
	for i, p := range points {
		if i == 0 || i == len(points)-1 || i%rollingChartStep == 0 {
			out = append(out, p)
		}
	}
	return out
}

func reverse(points []RollingPoint) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
