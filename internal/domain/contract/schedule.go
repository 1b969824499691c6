package contract

import (
	"github.com/shopspring/decimal"
)

// currencyPlaces is the rounding precision for schedule amounts
const currencyPlaces = 2

// BuildSchedule computes the amortization schedule for the contract and
// installs it as the line collection. The financed principal is divided
// evenly over the period count, each quota rounded half-up to cents, with
// the rounding remainder folded into the first installment so the quotas
// sum exactly to the principal. A sequence-0 line due on the start date
// carries the separation amount when one exists.
//
// Requires a positive separation amount: reservation-free contracts are not
// sold, and a zero separation signals miscaptured data.
func (c *Contract) BuildSchedule() error {
	if c.State != StateDraft {
		return NewStateTransitionError(c.Name, c.State, c.State, "schedule can only be built in draft")
	}
	if c.SeparationAmount.LessThanOrEqual(decimal.Zero) {
		return NewScheduleError("separation amount must be positive")
	}
	if c.PeriodCount < 1 {
		return NewScheduleError("period count must be at least 1")
	}
	if c.IntervalMonths < 1 {
		return NewScheduleError("payment interval must be at least 1 month")
	}

	principal := c.InceptiveAmount.Sub(c.SeparationAmount)
	if principal.IsNegative() {
		return NewScheduleError("separation amount exceeds the inceptive amount")
	}

	periods := decimal.NewFromInt(int64(c.PeriodCount))
	quota := principal.Div(periods).Round(currencyPlaces)
	// Fold the rounding drift into the first installment so the schedule
	// totals the principal exactly.
	first := principal.Sub(quota.Mul(decimal.NewFromInt(int64(c.PeriodCount - 1))))

	lines := make([]InstallmentLine, 0, c.PeriodCount+1)

	lines = append(lines, newInstallmentLine(c.ID, c.Name, SeparationSequence, c.StartDate, c.SeparationAmount))

	dueDate := c.StartDate
	for seq := 1; seq <= c.PeriodCount; seq++ {
		dueDate = dueDate.AddDate(0, c.IntervalMonths, 0)
		amount := quota
		if seq == 1 {
			amount = first
		}
		lines = append(lines, newInstallmentLine(c.ID, c.Name, seq, dueDate, amount))
	}

	return c.ReplaceSchedule(lines)
}
