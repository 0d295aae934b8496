// Package simulation implements the investment simulators: lumpsum, SIP and
// SWP including their step-up variants. Every simulator is a pure function of
// a NAV series and a parameter set; it replays the cash-flow schedule against
// historical prices and derives all summary metrics from the resulting
// transaction ledger.
package simulation

import (
	"fmt"
	"math"
	"time"

	"fundscope/internal/modules/navseries"
)

// chartSampleStep controls ledger down-sampling for chart series: every Nth
// point is kept, plus always the first and the last.
const chartSampleStep = 10

// Transaction is one ledger row for a resolved schedule event. The ledger is
// append-only, ordered by event date, and is the authoritative record every
// summary metric is derived from.
type Transaction struct {
	Date     time.Time `json:"date"`
	NAV      float64   `json:"nav"`
	CashFlow float64   `json:"cashFlow"` // signed: +contribution, -withdrawal
	Units    float64   `json:"unitsDelta"`
	CumUnits float64   `json:"cumulativeUnits"`
	CumCash  float64   `json:"cumulativeCash"`
}

// ValuePoint is a lumpsum chart sample: holding value on a date.
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// GrowthPoint is a SIP chart sample: cumulative invested vs. holding value.
type GrowthPoint struct {
	Date     time.Time `json:"date"`
	Invested float64   `json:"invested"`
	Value    float64   `json:"value"`
}

// BalancePoint is a SWP chart sample: remaining balance vs. cumulative
// withdrawals.
type BalancePoint struct {
	Date      time.Time `json:"date"`
	Balance   float64   `json:"balance"`
	Withdrawn float64   `json:"withdrawn"`
}

// StepUp configures periodic escalation of a recurring amount. A nil StepUp
// on SIP/SWP params means a plain fixed-amount plan.
type StepUp struct {
	Percentage float64
	Cadence    navseries.StepUpCadence
}

// LumpsumParams drives a single buy-and-hold simulation.
type LumpsumParams struct {
	Amount float64
	From   time.Time
	To     time.Time
}

// Validate rejects invalid parameters before any computation begins.
func (p LumpsumParams) Validate() error {
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", navseries.ErrInvalidParams)
	}
	return validateRange(p.From, p.To)
}

// LumpsumResult is the outcome of a lumpsum simulation.
type LumpsumResult struct {
	InvestedAmount   float64       `json:"investedAmount"`
	CurrentValue     float64       `json:"currentValue"`
	UnitsPurchased   float64       `json:"unitsPurchased"`
	PurchaseNAV      float64       `json:"purchaseNAV"`
	CurrentNAV       float64       `json:"currentNAV"`
	PurchaseDate     time.Time     `json:"purchaseDate"`
	CurrentDate      time.Time     `json:"currentDate"`
	AbsoluteReturn   float64       `json:"absoluteReturn"`
	AnnualizedReturn float64       `json:"annualizedReturn"`
	Transactions     []Transaction `json:"transactions"`
	ChartData        []ValuePoint  `json:"chartData"`
}

// SIPParams drives a recurring-contribution simulation; StepUp, when set,
// makes it a step-up SIP.
type SIPParams struct {
	Amount    float64
	Frequency navseries.Frequency
	From      time.Time
	To        time.Time
	StepUp    *StepUp
}

// Validate rejects invalid parameters before any computation begins.
func (p SIPParams) Validate() error {
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", navseries.ErrInvalidParams)
	}
	if p.StepUp != nil && p.StepUp.Percentage <= 0 {
		return fmt.Errorf("%w: step-up percentage must be positive", navseries.ErrInvalidParams)
	}
	return validateRange(p.From, p.To)
}

// SIPResult is the outcome of a SIP or step-up SIP simulation.
type SIPResult struct {
	TotalInvested    float64       `json:"totalInvested"`
	CurrentValue     float64       `json:"currentValue"`
	TotalUnits       float64       `json:"totalUnits"`
	FinalNAV         float64       `json:"finalNAV"`
	InstallmentCount int           `json:"installmentCount"`
	FinalInstallment float64       `json:"finalInstallment"` // per-event amount after escalations
	AbsoluteReturn   float64       `json:"absoluteReturn"`
	AnnualizedReturn float64       `json:"annualizedReturn"`
	Transactions     []Transaction `json:"transactions"`
	ChartData        []GrowthPoint `json:"chartData"`
}

// SWPParams drives a recurring-withdrawal simulation; StepUp, when set,
// makes it a step-up SWP.
type SWPParams struct {
	InitialAmount    float64
	WithdrawalAmount float64
	Frequency        navseries.Frequency
	From             time.Time
	To               time.Time
	StepUp           *StepUp
}

// Validate rejects invalid parameters before any computation begins.
func (p SWPParams) Validate() error {
	if p.InitialAmount <= 0 {
		return fmt.Errorf("%w: initial amount must be positive", navseries.ErrInvalidParams)
	}
	if p.WithdrawalAmount <= 0 {
		return fmt.Errorf("%w: withdrawal amount must be positive", navseries.ErrInvalidParams)
	}
	if p.StepUp != nil && p.StepUp.Percentage <= 0 {
		return fmt.Errorf("%w: step-up percentage must be positive", navseries.ErrInvalidParams)
	}
	return validateRange(p.From, p.To)
}

// SWPResult is the outcome of a SWP or step-up SWP simulation. Exhausted
// marks the defined terminal state where the principal ran out and the
// schedule stopped early; it is a successful result, not an error.
type SWPResult struct {
	TotalWithdrawn   float64        `json:"totalWithdrawn"`
	FinalBalance     float64        `json:"finalBalance"`
	RemainingUnits   float64        `json:"remainingUnits"`
	WithdrawalCount  int            `json:"withdrawalCount"`
	FinalWithdrawal  float64        `json:"finalWithdrawal"` // per-event amount after escalations
	Exhausted        bool           `json:"exhausted"`
	AbsoluteReturn   float64        `json:"absoluteReturn"`
	AnnualizedReturn float64        `json:"annualizedReturn"`
	Transactions     []Transaction  `json:"transactions"`
	ChartData        []BalancePoint `json:"chartData"`
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: from and to dates are required", navseries.ErrInvalidParams)
	}
	if !from.Before(to) {
		return fmt.Errorf("%w: start date must be before end date", navseries.ErrInvalidParams)
	}
	return nil
}

// annualized computes CAGR in percent over a 365-day year. A non-positive
// elapsed time reports 0 rather than dividing by zero, and degenerate inputs
// never produce NaN or Inf.
func annualized(terminal, invested, years float64) float64 {
	if years <= 0 || invested <= 0 || terminal <= 0 {
		return 0
	}
	return (math.Pow(terminal/invested, 1/years) - 1) * 100
}

// absolutePct computes the simple percentage return of terminal over
// invested.
func absolutePct(terminal, invested float64) float64 {
	if invested <= 0 {
		return 0
	}
	return (terminal - invested) / invested * 100
}

// downsample keeps every step-th element plus the first and last, preserving
// order. It is how full ledgers become chart series.
func downsample[T any](points []T, step int) []T {
	if len(points) == 0 {
		return nil
	}
	out := make([]T, 0, len(points)/step+2)
	for i, p := range points {
		if i == 0 || i == len(points)-1 || i%step == 0 {
			out = append(out, p)
		}
	}
	return out
}
