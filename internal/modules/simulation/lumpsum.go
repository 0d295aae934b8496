package simulation

import (
	"fmt"

	"fundscope/internal/modules/navseries"
)

// Lumpsum simulates a single buy-and-hold investment: the full amount buys
// units at the price resolved for the start date, and the holding is valued
// at the price resolved for the end date. Both boundary resolutions are
// required; a miss is an insufficient-data error, not a skippable event.
func Lumpsum(series *navseries.Series, p LumpsumParams) (*LumpsumResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	purchase, err := series.ResolveAsOf(p.From)
	if err != nil {
		return nil, fmt.Errorf("%w: no NAV at or before the start date", navseries.ErrInsufficientData)
	}
	current, err := series.ResolveAsOf(p.To)
	if err != nil {
		return nil, fmt.Errorf("%w: no NAV at or before the end date", navseries.ErrInsufficientData)
	}

	units := p.Amount / purchase.NAV
	currentValue := units * current.NAV

	ledger := []Transaction{
		{
			Date:     purchase.Date,
			NAV:      purchase.NAV,
			CashFlow: p.Amount,
			Units:    units,
			CumUnits: units,
			CumCash:  p.Amount,
		},
	}

	// Value the holding across every observation in the window for charting.
	var chart []ValuePoint
	for _, pt := range series.Between(p.From, p.To) {
		chart = append(chart, ValuePoint{Date: pt.Date, Value: units * pt.NAV})
	}

	// Annualize over the actual resolved dates, not the nominal request:
	// look-back resolution may have shifted both boundaries.
	years := navseries.YearsBetween(purchase.Date, current.Date)

	return &LumpsumResult{
		InvestedAmount:   p.Amount,
		CurrentValue:     currentValue,
		UnitsPurchased:   units,
		PurchaseNAV:      purchase.NAV,
		CurrentNAV:       current.NAV,
		PurchaseDate:     purchase.Date,
		CurrentDate:      current.Date,
		AbsoluteReturn:   absolutePct(currentValue, p.Amount),
		AnnualizedReturn: annualized(currentValue, p.Amount, years),
		Transactions:     ledger,
		ChartData:        downsample(chart, chartSampleStep),
	}, nil
}
