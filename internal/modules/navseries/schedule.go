package navseries

import (
	"fmt"
	"time"
)

// Frequency is the recurrence of a SIP contribution or SWP withdrawal.
// It is a closed enumeration: unknown tags are rejected at parse time, never
// silently defaulted.
type Frequency int

const (
	Daily Frequency = iota
	Weekly
	Monthly
	Quarterly
)

// ParseFrequency maps a request tag to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "daily":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	case "monthly":
		return Monthly, nil
	case "quarterly":
		return Quarterly, nil
	default:
		return 0, fmt.Errorf("%w: unknown frequency %q", ErrInvalidParams, s)
	}
}

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	default:
		return "unknown"
	}
}

// next advances a schedule date by one step. Monthly and quarterly use
// calendar-month arithmetic with Go's AddDate normalization, so Jan 31 plus
// one month rolls into early March. That rule is applied uniformly to every
// step of a schedule.
func (f Frequency) next(t time.Time) time.Time {
	switch f {
	case Daily:
		return t.AddDate(0, 0, 1)
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Quarterly:
		return t.AddDate(0, 3, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// StepUpCadence is how often a step-up SIP/SWP escalates its per-event
// amount. Unlike Frequency it is measured in fixed day counts (365 and 182),
// not calendar months; this mirrors the reference behavior and is
// deliberately not unified with the calendar stepping above.
type StepUpCadence int

const (
	StepUpYearly StepUpCadence = iota
	StepUpHalfYearly
)

// ParseStepUpCadence maps a request tag to a StepUpCadence.
func ParseStepUpCadence(s string) (StepUpCadence, error) {
	switch s {
	case "yearly":
		return StepUpYearly, nil
	case "half-yearly":
		return StepUpHalfYearly, nil
	default:
		return 0, fmt.Errorf("%w: unknown step-up frequency %q", ErrInvalidParams, s)
	}
}

// Days returns the cadence length in days.
func (c StepUpCadence) Days() int {
	if c == StepUpHalfYearly {
		return 182
	}
	return 365
}

func (c StepUpCadence) String() string {
	if c == StepUpHalfYearly {
		return "half-yearly"
	}
	return "yearly"
}

// GenerateSchedule produces the ordered event dates for a recurring cash
// flow: from inclusive, then repeated calendar steps, stopping once the next
// date would pass to. The result is strictly ascending and freshly allocated
// on every call; nothing is mutated in place, so concurrent callers never
// share schedule state.
//
// A degenerate range (from == to, or from after to) yields an empty
// schedule. Callers must treat that as a data-insufficiency condition rather
// than a silently successful zero-transaction run.
func GenerateSchedule(from, to time.Time, freq Frequency) []time.Time {
	if !from.Before(to) {
		return nil
	}

	var dates []time.Time
	for cur := from; !cur.After(to); cur = freq.next(cur) {
		dates = append(dates, cur)
	}
	return dates
}
