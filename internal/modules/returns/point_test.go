package returns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscope/internal/modules/navseries"
)

func mustSeries(t *testing.T, raw []navseries.RawNavPoint) *navseries.Series {
	t.Helper()
	s, err := navseries.NewSeries(raw)
	require.NoError(t, err)
	return s
}

func TestParsePeriod(t *testing.T) {
	for tag, days := range map[string]int{
		"1m": 30, "3m": 90, "6m": 180, "1y": 365, "3y": 1095, "5y": 1825,
	} {
		p, err := ParsePeriod(tag)
		require.NoError(t, err)
		assert.Equal(t, days, p.Days())
		assert.Equal(t, tag, p.String())
	}

	_, err := ParsePeriod("2y")
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)
}

func TestPointBetween(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2024", NAV: "12.0"},
		{Date: "01-01-2023", NAV: "10.0"},
	})

	res, err := PointBetween(series,
		navseries.Date(2023, time.January, 1),
		navseries.Date(2024, time.January, 1))
	require.NoError(t, err)

	assert.InDelta(t, 20.0, res.SimpleReturn, 1e-9)
	assert.InDelta(t, 20.0, res.AnnualizedReturn, 1e-6) // exactly one 365-day year
	assert.Equal(t, 10.0, res.StartNAV)
	assert.Equal(t, 12.0, res.EndNAV)
}

func TestPointBetween_AnnualizesOverResolvedGap(t *testing.T) {
	// The requested boundaries fall on non-trading days; annualization must
	// use the resolved observation dates, which span exactly two years.
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2024", NAV: "12.1"},
		{Date: "01-01-2022", NAV: "10.0"},
	})

	res, err := PointBetween(series,
		navseries.Date(2022, time.January, 5),
		navseries.Date(2024, time.January, 10))
	require.NoError(t, err)

	assert.Equal(t, navseries.Date(2022, time.January, 1), res.StartDate)
	assert.Equal(t, navseries.Date(2024, time.January, 1), res.EndDate)
	assert.InDelta(t, 21.0, res.SimpleReturn, 1e-9)
	// sqrt(1.21) - 1 = 10% per year over a 730-day gap.
	assert.InDelta(t, 10.0, res.AnnualizedReturn, 0.05)
}

func TestPointBetween_SameResolvedObservation(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2023", NAV: "10.0"},
	})

	// Both boundaries resolve to the single observation; the annualized
	// figure falls back to the simple return instead of dividing by zero.
	res, err := PointBetween(series,
		navseries.Date(2023, time.February, 1),
		navseries.Date(2023, time.March, 1))
	require.NoError(t, err)

	assert.Zero(t, res.SimpleReturn)
	assert.Zero(t, res.AnnualizedReturn)
}

func TestPointBetween_MissingBoundary(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-06-2023", NAV: "10.0"},
	})

	_, err := PointBetween(series,
		navseries.Date(2023, time.January, 1),
		navseries.Date(2023, time.December, 1))
	assert.ErrorIs(t, err, navseries.ErrInsufficientData)
}

func TestPointBetween_InvalidRange(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2023", NAV: "10.0"},
	})
	day := navseries.Date(2023, time.June, 1)

	_, err := PointBetween(series, day, day)
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)

	_, err = PointBetween(series, time.Time{}, day)
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)
}

func TestPointForPeriod(t *testing.T) {
	now := navseries.Date(2024, time.January, 1)
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2024", NAV: "11.0"},
		{Date: "01-01-2023", NAV: "10.0"},
	})

	res, err := PointForPeriod(series, Period1Y, now)
	require.NoError(t, err)

	assert.Equal(t, navseries.Date(2023, time.January, 1), res.StartDate)
	assert.InDelta(t, 10.0, res.SimpleReturn, 1e-9)
}
