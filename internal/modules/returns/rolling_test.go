package returns

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscope/internal/modules/navseries"
)

// monthlySeries builds n monthly observations starting at start, with NAV
// produced by f(i).
func monthlySeries(t *testing.T, start time.Time, n int, f func(i int) float64) *navseries.Series {
	t.Helper()
	raw := make([]navseries.RawNavPoint, 0, n)
	for i := 0; i < n; i++ {
		raw = append(raw, navseries.RawNavPoint{
			Date: start.AddDate(0, i, 0).Format("02-01-2006"),
			NAV:  fmt.Sprintf("%.4f", f(i)),
		})
	}
	return mustSeries(t, raw)
}

func TestRolling_RangeTooShort(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2023", NAV: "10.0"},
	})

	from := navseries.Date(2023, time.January, 1)
	to := from.AddDate(0, 0, 300)

	_, err := Rolling(series, Period1Y, from, to)
	require.Error(t, err)

	var tooShort *RangeTooShortError
	require.True(t, errors.As(err, &tooShort))
	assert.Equal(t, Period1Y, tooShort.Period)
	assert.Contains(t, err.Error(), "1 year")
}

func TestRolling_SingleWindow(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2021", NAV: "11.0"},
		{Date: "01-01-2020", NAV: "10.0"},
	})

	from := navseries.Date(2020, time.January, 1)
	to := navseries.Date(2021, time.January, 1)

	res, err := Rolling(series, Period1Y, from, to)
	require.NoError(t, err)

	require.Equal(t, 1, res.TotalWindows)
	pt := res.Points[0]
	assert.Equal(t, navseries.Date(2021, time.January, 1), pt.Date)
	assert.Equal(t, navseries.Date(2020, time.January, 1), pt.WindowStart)
	// 366-day window in a leap year annualizes slightly under the 10%
	// point return.
	assert.InDelta(t, 9.97, pt.Return, 0.05)

	assert.InDelta(t, pt.Return, res.Statistics.Best, 1e-9)
	assert.InDelta(t, pt.Return, res.Statistics.Worst, 1e-9)
	assert.InDelta(t, pt.Return, res.Statistics.Average, 1e-9)
	assert.InDelta(t, 100.0, res.Statistics.PositivePercentage, 1e-9)
}

func TestRolling_BucketCountsSumToTotal(t *testing.T) {
	// Five years of monthly data with alternating growth so returns spread
	// across several buckets.
	series := monthlySeries(t, navseries.Date(2018, time.January, 1), 61, func(i int) float64 {
		nav := 100.0
		for j := 0; j < i; j++ {
			if j%3 == 0 {
				nav *= 0.985
			} else {
				nav *= 1.02
			}
		}
		return nav
	})

	res, err := Rolling(series, Period1Y,
		navseries.Date(2018, time.January, 1),
		navseries.Date(2023, time.January, 1))
	require.NoError(t, err)
	require.NotZero(t, res.TotalWindows)

	require.Len(t, res.Distribution, 7)
	sum := 0
	var pctSum float64
	for _, b := range res.Distribution {
		sum += b.Count
		pctSum += b.Percentage
	}
	assert.Equal(t, res.TotalWindows, sum)
	assert.InDelta(t, 100.0, pctSum, 1e-6)
}

func TestRolling_PointsAreChronological(t *testing.T) {
	series := monthlySeries(t, navseries.Date(2019, time.January, 1), 37, func(i int) float64 {
		return 100 + float64(i)
	})

	res, err := Rolling(series, Period1Y,
		navseries.Date(2019, time.January, 1),
		navseries.Date(2022, time.January, 1))
	require.NoError(t, err)
	require.Greater(t, res.TotalWindows, 1)

	for i := 1; i < len(res.Points); i++ {
		assert.True(t, res.Points[i].Date.After(res.Points[i-1].Date))
	}

	// Window starts sit one period (within tolerance) behind window ends.
	for _, pt := range res.Points {
		gap := navseries.DaysBetween(pt.WindowStart, pt.Date)
		assert.GreaterOrEqual(t, gap, Period1Y.Days()-matchToleranceDays)
		assert.LessOrEqual(t, gap, Period1Y.Days()+matchToleranceDays)
	}
}

func TestRolling_ChartKeepsEndpoints(t *testing.T) {
	series := monthlySeries(t, navseries.Date(2018, time.January, 1), 61, func(i int) float64 {
		return 100 * (1 + 0.01*float64(i))
	})

	res, err := Rolling(series, Period1Y,
		navseries.Date(2018, time.January, 1),
		navseries.Date(2023, time.January, 1))
	require.NoError(t, err)
	require.NotEmpty(t, res.ChartData)

	assert.Equal(t, res.Points[0].Date, res.ChartData[0].Date)
	assert.Equal(t, res.Points[len(res.Points)-1].Date, res.ChartData[len(res.ChartData)-1].Date)
	assert.LessOrEqual(t, len(res.ChartData), len(res.Points))
}

func TestRolling_NoMatchableWindows(t *testing.T) {
	// Two observations 400 days apart: outside the +/-15 day tolerance for
	// every period, so no window pairs.
	start := navseries.Date(2020, time.January, 1)
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: start.AddDate(0, 0, 400).Format("02-01-2006"), NAV: "11.0"},
		{Date: start.Format("02-01-2006"), NAV: "10.0"},
	})

	_, err := Rolling(series, Period1Y, start, start.AddDate(0, 0, 400))
	assert.ErrorIs(t, err, navseries.ErrInsufficientData)
}

func TestRolling_InvalidRange(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2023", NAV: "10.0"},
	})
	day := navseries.Date(2023, time.January, 1)

	_, err := Rolling(series, Period1M, day, day)
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)
}
