package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LateFeeAssessment is one proposed accrual produced by AssessLateFees. The
// caller issues the fee invoice and applies the fee through ApplyLateFee.
type LateFeeAssessment struct {
	LineID   uuid.UUID
	LineName string
	DueDate  time.Time
	Base     decimal.Decimal // Residual the rate was applied to
	Fee      decimal.Decimal
}

// oneHundred is the percentage divisor
var oneHundred = decimal.NewFromInt(100)

// AssessLateFees computes the late fees owed as of the given date. Only fully
// unpaid lines are candidates; a line is overdue once its due date falls
// before the first day of the month following asOf, and the fee is the
// contract rate applied to the line residual, rounded to cents. Lines whose
// previous fee invoice is still unpaid are skipped so the same arrears are
// not charged twice.
//
// The assessment does not mutate the contract.
func (c *Contract) AssessLateFees(asOf time.Time, hasUnpaidFeeInvoice func(uuid.UUID) bool) []LateFeeAssessment {
	if c.State != StateConfirmed {
		return nil
	}
	if c.LateFeeRate.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	cutoff := firstOfNextMonth(asOf)

	assessments := make([]LateFeeAssessment, 0)
	for i := range c.Lines {
		line := &c.Lines[i]
		if line.State != LineStateOpen {
			continue
		}
		if !line.DueDate.Before(cutoff) {
			continue
		}
		if line.LeftPayment.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if line.LateFeeInvoiceID != nil && hasUnpaidFeeInvoice != nil && hasUnpaidFeeInvoice(*line.LateFeeInvoiceID) {
			continue
		}

		fee := line.LeftPayment.Mul(c.LateFeeRate).Div(oneHundred).Round(currencyPlaces)
		if fee.LessThanOrEqual(decimal.Zero) {
			continue
		}

		assessments = append(assessments, LateFeeAssessment{
			LineID:   line.ID,
			LineName: line.Name,
			DueDate:  line.DueDate,
			Base:     line.LeftPayment,
			Fee:      fee,
		})
	}

	return assessments
}

// firstOfNextMonth returns midnight UTC on the first day of the month after t
func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
