package simulation

import (
	"fmt"

	"fundscope/internal/modules/navseries"
)

// SIP simulates a systematic investment plan: one contribution per schedule
// date, executed at the look-back price for that date. Dates with no
// resolvable price are skipped. When p.StepUp is set the per-contribution
// amount escalates by the configured percentage each time a full cadence
// (fixed day count) has elapsed since the last escalation; the amount is
// monotonically non-decreasing and never resets.
func SIP(series *navseries.Series, p SIPParams) (*SIPResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	schedule := navseries.GenerateSchedule(p.From, p.To, p.Frequency)
	if len(schedule) == 0 {
		return nil, fmt.Errorf("%w: no contribution dates in the selected range", navseries.ErrInsufficientData)
	}

	var (
		ledger     []Transaction
		totalUnits float64
		invested   float64
		amount     = p.Amount
		lastStepUp = p.From
	)

	for _, date := range schedule {
		if p.StepUp != nil && navseries.DaysBetween(lastStepUp, date) >= p.StepUp.Cadence.Days() {
			amount *= 1 + p.StepUp.Percentage/100
			lastStepUp = date
		}

		point, err := series.ResolveAsOf(date)
		if err != nil {
			continue // no price published yet, contribution skipped
		}

		units := amount / point.NAV
		totalUnits += units
		invested += amount

		ledger = append(ledger, Transaction{
			Date:     date,
			NAV:      point.NAV,
			CashFlow: amount,
			Units:    units,
			CumUnits: totalUnits,
			CumCash:  invested,
		})
	}

	if len(ledger) == 0 {
		return nil, fmt.Errorf("%w: no contribution dates resolved to a published NAV", navseries.ErrInsufficientData)
	}

	final, err := series.ResolveAsOf(p.To)
	if err != nil {
		return nil, fmt.Errorf("%w: no NAV at or before the end date", navseries.ErrInsufficientData)
	}

	currentValue := totalUnits * final.NAV

	// Chart each ledger point at its terminal valuation so invested and
	// value series share a scale.
	chart := make([]GrowthPoint, 0, len(ledger))
	for _, tx := range ledger {
		chart = append(chart, GrowthPoint{
			Date:     tx.Date,
			Invested: tx.CumCash,
			Value:    tx.CumUnits * final.NAV,
		})
	}

	years := navseries.YearsBetween(p.From, p.To)

	return &SIPResult{
		TotalInvested:    invested,
		CurrentValue:     currentValue,
		TotalUnits:       totalUnits,
		FinalNAV:         final.NAV,
		InstallmentCount: len(ledger),
		FinalInstallment: amount,
		AbsoluteReturn:   absolutePct(currentValue, invested),
		AnnualizedReturn: annualized(currentValue, invested, years),
		Transactions:     ledger,
		ChartData:        downsample(chart, chartSampleStep),
	}, nil
}
