package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscope/internal/modules/navseries"
)

func TestSIP_MissingMonthResolvesBackward(t *testing.T) {
	// Only January and March have published prices; the February
	// contribution executes at the January price via look-back.
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-03-2023", NAV: "12.0"},
		{Date: "01-01-2023", NAV: "10.0"},
	})

	res, err := SIP(series, SIPParams{
		Amount:    1000,
		Frequency: navseries.Monthly,
		From:      navseries.Date(2023, time.January, 1),
		To:        navseries.Date(2023, time.March, 1),
	})
	require.NoError(t, err)

	// Schedule emits Jan 1, Feb 1, Mar 1.
	require.Equal(t, 3, res.InstallmentCount)
	assert.InDelta(t, 3000, res.TotalInvested, 1e-9)

	require.Len(t, res.Transactions, 3)
	assert.Equal(t, 10.0, res.Transactions[0].NAV)
	assert.Equal(t, 10.0, res.Transactions[1].NAV) // February look-back
	assert.Equal(t, 12.0, res.Transactions[2].NAV)

	wantUnits := 100.0 + 100.0 + 1000.0/12.0
	assert.InDelta(t, wantUnits, res.TotalUnits, 1e-9)
	assert.InDelta(t, wantUnits*12.0, res.CurrentValue, 1e-9)
}

func TestSIP_LedgerIsCumulativeAndAppendOnly(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-06-2023", NAV: "11.0"},
		{Date: "01-01-2023", NAV: "10.0"},
	})

	res, err := SIP(series, SIPParams{
		Amount:    500,
		Frequency: navseries.Monthly,
		From:      navseries.Date(2023, time.January, 1),
		To:        navseries.Date(2023, time.June, 1),
	})
	require.NoError(t, err)

	var cumUnits, cumCash float64
	for i, tx := range res.Transactions {
		cumUnits += tx.Units
		cumCash += tx.CashFlow
		assert.InDelta(t, cumUnits, tx.CumUnits, 1e-9, "row %d", i)
		assert.InDelta(t, cumCash, tx.CumCash, 1e-9, "row %d", i)
		if i > 0 {
			assert.True(t, tx.Date.After(res.Transactions[i-1].Date))
		}
	}
	assert.InDelta(t, cumCash, res.TotalInvested, 1e-9)
	assert.InDelta(t, cumUnits, res.TotalUnits, 1e-9)
}

func TestStepUpSIP_AmountEscalatesMonotonically(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2022", NAV: "10.0"},
		{Date: "01-01-2020", NAV: "10.0"},
	})

	res, err := SIP(series, SIPParams{
		Amount:    1000,
		Frequency: navseries.Monthly,
		From:      navseries.Date(2020, time.January, 1),
		To:        navseries.Date(2022, time.January, 1),
		StepUp:    &StepUp{Percentage: 10, Cadence: navseries.StepUpYearly},
	})
	require.NoError(t, err)

	for i := 1; i < len(res.Transactions); i++ {
		assert.GreaterOrEqual(t, res.Transactions[i].CashFlow, res.Transactions[i-1].CashFlow,
			"per-event amount decreased at row %d", i)
	}

	first := res.Transactions[0].CashFlow
	last := res.Transactions[len(res.Transactions)-1].CashFlow
	assert.InDelta(t, 1000, first, 1e-9)
	assert.Greater(t, last, first)

	// Two 365-day boundaries elapse across the two-year run.
	assert.InDelta(t, 1000*1.1*1.1, res.FinalInstallment, 1e-9)
}

func TestStepUpSIP_HalfYearlyCadence(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2021", NAV: "10.0"},
		{Date: "01-01-2020", NAV: "10.0"},
	})

	res, err := SIP(series, SIPParams{
		Amount:    1000,
		Frequency: navseries.Monthly,
		From:      navseries.Date(2020, time.January, 1),
		To:        navseries.Date(2021, time.January, 1),
		StepUp:    &StepUp{Percentage: 20, Cadence: navseries.StepUpHalfYearly},
	})
	require.NoError(t, err)

	// 182-day boundaries: escalations land mid-year and at year end.
	assert.InDelta(t, 1000*1.2*1.2, res.FinalInstallment, 1e-9)
}

func TestSIP_NoResolvableDates(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2024", NAV: "10.0"},
	})

	// The whole schedule predates the series.
	_, err := SIP(series, SIPParams{
		Amount:    1000,
		Frequency: navseries.Monthly,
		From:      navseries.Date(2020, time.January, 1),
		To:        navseries.Date(2020, time.June, 1),
	})
	assert.ErrorIs(t, err, navseries.ErrInsufficientData)
}

func TestSIP_InvalidParams(t *testing.T) {
	series := mustSeries(t, []navseries.RawNavPoint{
		{Date: "01-01-2023", NAV: "10.0"},
	})
	from := navseries.Date(2023, time.January, 1)

	_, err := SIP(series, SIPParams{Amount: -5, Frequency: navseries.Monthly, From: from, To: from.AddDate(1, 0, 0)})
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)

	_, err = SIP(series, SIPParams{Amount: 1000, Frequency: navseries.Monthly, From: from, To: from})
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)

	_, err = SIP(series, SIPParams{
		Amount: 1000, Frequency: navseries.Monthly,
		From: from, To: from.AddDate(1, 0, 0),
		StepUp: &StepUp{Percentage: 0, Cadence: navseries.StepUpYearly},
	})
	assert.ErrorIs(t, err, navseries.ErrInvalidParams)
}
