package navseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	for tag, want := range map[string]Frequency{
		"daily":     Daily,
		"weekly":    Weekly,
		"monthly":   Monthly,
		"quarterly": Quarterly,
	} {
		got, err := ParseFrequency(tag)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, tag, got.String())
	}

	_, err := ParseFrequency("fortnightly")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestParseStepUpCadence(t *testing.T) {
	yearly, err := ParseStepUpCadence("yearly")
	require.NoError(t, err)
	assert.Equal(t, 365, yearly.Days())

	half, err := ParseStepUpCadence("half-yearly")
	require.NoError(t, err)
	assert.Equal(t, 182, half.Days())

	_, err = ParseStepUpCadence("monthly")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestGenerateSchedule_Monthly(t *testing.T) {
	dates := GenerateSchedule(Date(2023, time.January, 1), Date(2023, time.March, 1), Monthly)

	require.Len(t, dates, 3)
	assert.Equal(t, Date(2023, time.January, 1), dates[0])
	assert.Equal(t, Date(2023, time.February, 1), dates[1])
	assert.Equal(t, Date(2023, time.March, 1), dates[2])
}

func TestGenerateSchedule_WeeklyAndDaily(t *testing.T) {
	weekly := GenerateSchedule(Date(2023, time.January, 2), Date(2023, time.January, 23), Weekly)
	require.Len(t, weekly, 4)
	assert.Equal(t, Date(2023, time.January, 23), weekly[3])

	daily := GenerateSchedule(Date(2023, time.January, 1), Date(2023, time.January, 5), Daily)
	assert.Len(t, daily, 5)
}

func TestGenerateSchedule_Quarterly(t *testing.T) {
	dates := GenerateSchedule(Date(2023, time.January, 15), Date(2023, time.December, 31), Quarterly)

	require.Len(t, dates, 4)
	assert.Equal(t, Date(2023, time.October, 15), dates[3])
}

func TestGenerateSchedule_StrictlyAscendingWithinRange(t *testing.T) {
	from := Date(2020, time.March, 7)
	to := Date(2024, time.November, 19)

	for _, freq := range []Frequency{Daily, Weekly, Monthly, Quarterly} {
		dates := GenerateSchedule(from, to, freq)
		require.NotEmpty(t, dates, "frequency %s", freq)

		assert.Equal(t, from, dates[0])
		for i := 1; i < len(dates); i++ {
			assert.True(t, dates[i].After(dates[i-1]), "frequency %s not ascending at %d", freq, i)
		}
		assert.False(t, dates[len(dates)-1].After(to))
	}
}

func TestGenerateSchedule_MonthEndOverflow(t *testing.T) {
	// AddDate normalization: Jan 31 + 1 month lands in early March when
	// February is shorter. The same rule applies to every step.
	dates := GenerateSchedule(Date(2023, time.January, 31), Date(2023, time.June, 30), Monthly)

	require.NotEmpty(t, dates)
	assert.Equal(t, Date(2023, time.January, 31), dates[0])
	assert.Equal(t, Date(2023, time.March, 3), dates[1])
	assert.Equal(t, Date(2023, time.April, 3), dates[2])
}

func TestGenerateSchedule_DegenerateRange(t *testing.T) {
	day := Date(2023, time.January, 1)

	assert.Empty(t, GenerateSchedule(day, day, Monthly))
	assert.Empty(t, GenerateSchedule(day.AddDate(0, 1, 0), day, Monthly))
}

func TestGenerateSchedule_LastDateMayFallShortOfTo(t *testing.T) {
	// `to` is only emitted when it falls exactly on a step.
	dates := GenerateSchedule(Date(2023, time.January, 1), Date(2023, time.February, 20), Monthly)

	require.Len(t, dates, 2)
	assert.Equal(t, Date(2023, time.February, 1), dates[1])
}
