package simulation

import (
	"fmt"

	"fundscope/internal/modules/navseries"
)

// SWP simulates a systematic withdrawal plan: the initial amount buys units
// at the start-date price, then each schedule date redeems units worth the
// withdrawal amount at that date's look-back price. When the remaining units
// cannot cover a withdrawal, all remaining units are redeemed as a final
// partial withdrawal (recording the partial cash value) and the schedule
// terminates early with the principal exhausted. Step-up escalation follows
// the same fixed-day-count boundary rule as SIP, but only engages after at
// least one withdrawal has occurred.
func SWP(series *navseries.Series, p SWPParams) (*SWPResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	initial, err := series.ResolveAsOf(p.From)
	if err != nil {
		return nil, fmt.Errorf("%w: no NAV at or before the start date", navseries.ErrInsufficientData)
	}

	schedule := navseries.GenerateSchedule(p.From, p.To, p.Frequency)
	if len(schedule) == 0 {
		return nil, fmt.Errorf("%w: no withdrawal dates in the selected range", navseries.ErrInsufficientData)
	}

	var (
		ledger     []Transaction
		units      = p.InitialAmount / initial.NAV
		withdrawn  float64
		amount     = p.WithdrawalAmount
		lastStepUp = p.From
		exhausted  bool
	)

	for _, date := range schedule {
		if units <= 0 {
			break
		}

		if p.StepUp != nil && len(ledger) > 0 && navseries.DaysBetween(lastStepUp, date) >= p.StepUp.Cadence.Days() {
			amount *= 1 + p.StepUp.Percentage/100
			lastStepUp = date
		}

		point, err := series.ResolveAsOf(date)
		if err != nil {
			continue // no price published yet, withdrawal skipped
		}

		redeemUnits := amount / point.NAV
		cash := amount
		if redeemUnits > units {
			// Final partial withdrawal: redeem everything that is left and
			// record the actual cash value, not the nominal amount.
			redeemUnits = units
			cash = units * point.NAV
			exhausted = true
		}

		units -= redeemUnits
		withdrawn += cash

		ledger = append(ledger, Transaction{
			Date:     date,
			NAV:      point.NAV,
			CashFlow: -cash,
			Units:    -redeemUnits,
			CumUnits: units,
			CumCash:  withdrawn,
		})

		if exhausted {
			units = 0
			break
		}
	}

	if len(ledger) == 0 {
		return nil, fmt.Errorf("%w: no withdrawal dates resolved to a published NAV", navseries.ErrInsufficientData)
	}

	final, err := series.ResolveAsOf(p.To)
	if err != nil {
		return nil, fmt.Errorf("%w: no NAV at or before the end date", navseries.ErrInsufficientData)
	}

	finalBalance := units * final.NAV

	chart := make([]BalancePoint, 0, len(ledger))
	for _, tx := range ledger {
		chart = append(chart, BalancePoint{
			Date:      tx.Date,
			Balance:   tx.CumUnits * final.NAV,
			Withdrawn: tx.CumCash,
		})
	}

	// Returns are measured against the total value returned to the
	// investor: everything withdrawn plus whatever balance remains.
	totalValue := withdrawn + finalBalance
	years := navseries.YearsBetween(p.From, p.To)

	return &SWPResult{
		TotalWithdrawn:   withdrawn,
		FinalBalance:     finalBalance,
		RemainingUnits:   units,
		WithdrawalCount:  len(ledger),
		FinalWithdrawal:  amount,
		Exhausted:        exhausted,
		AbsoluteReturn:   absolutePct(totalValue, p.InitialAmount),
		AnnualizedReturn: annualized(totalValue, p.InitialAmount, years),
		Transactions:     ledger,
		ChartData:        downsample(chart, chartSampleStep),
	}, nil
}
