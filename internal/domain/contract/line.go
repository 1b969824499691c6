package contract

import (
	"fmt"
	"time"

	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/condoerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeparationSequence is the reserved sequence for the optional upfront
// separation line. Regular installments use sequences 1..N.
const SeparationSequence = 0

// LineState represents the payment state of an installment line
type LineState string

const (
	LineStateOpen    LineState = "OPEN"    // No payment applied yet
	LineStatePartial LineState = "PARTIAL" // Partially paid, residual remains
	LineStatePaid    LineState = "PAID"    // Fully settled, terminal
	LineStateCancel  LineState = "CANCEL"  // Cancelled with the contract, terminal
)

// IsValid checks if the state is a valid LineState
func (s LineState) IsValid() bool {
	switch s {
	case LineStateOpen, LineStatePartial, LineStatePaid, LineStateCancel:
		return true
	}
	return false
}

// String returns the string representation of LineState
func (s LineState) String() string {
	return string(s)
}

// IsTerminal returns true if no further payment may be applied
func (s LineState) IsTerminal() bool {
	return s == LineStatePaid || s == LineStateCancel
}

// IsOutstanding returns true if the line still accepts payment
func (s LineState) IsOutstanding() bool {
	return s == LineStateOpen || s == LineStatePartial
}

// InstallmentLine is one scheduled due amount within a contract's
// amortization schedule. It is a child entity of the Contract aggregate;
// all mutation goes through the aggregate.
type InstallmentLine struct {
	shared.BaseEntity
	ContractID uuid.UUID
	Sequence   int
	Name       string // "<contract name>-<sequence>"
	DueDate    time.Time

	AmountDue      decimal.Decimal // Fixed at schedule creation
	ChargeAmount   decimal.Decimal // Accrued late fees, mutable
	LatePayment    decimal.Decimal // Unpaid portion of the current late fee
	AmountSubtotal decimal.Decimal // AmountDue + ChargeAmount
	PartialPayment decimal.Decimal // Cumulative partial payments
	AutoPayment    decimal.Decimal // Cumulative applied payment
	LeftPayment    decimal.Decimal // AmountSubtotal - AutoPayment, snapped to 0 under tolerance

	State            LineState
	PaymentID        *uuid.UUID // At most one settlement payment reference
	LateFeeInvoiceID *uuid.UUID // Currently linked late-fee invoice, if any
}

// newInstallmentLine creates a line draft for the given schedule slot.
func newInstallmentLine(contractID uuid.UUID, contractName string, sequence int, dueDate time.Time, amountDue decimal.Decimal) InstallmentLine {
	return InstallmentLine{
		BaseEntity:     shared.NewBaseEntity(),
		ContractID:     contractID,
		Sequence:       sequence,
		Name:           fmt.Sprintf("%s-%d", contractName, sequence),
		DueDate:        dueDate,
		AmountDue:      amountDue,
		ChargeAmount:   decimal.Zero,
		LatePayment:    decimal.Zero,
		AmountSubtotal: amountDue,
		PartialPayment: decimal.Zero,
		AutoPayment:    decimal.Zero,
		LeftPayment:    amountDue,
		State:          LineStateOpen,
	}
}

// IsSeparation returns true for the sequence-0 separation line
func (l *InstallmentLine) IsSeparation() bool {
	return l.Sequence == SeparationSequence
}

// IsCharged returns true if the line carries an accrued late fee
func (l *InstallmentLine) IsCharged() bool {
	return l.ChargeAmount.GreaterThan(decimal.Zero)
}

// FullyPaid returns true when the cumulative applied payment covers the due
// amount
func (l *InstallmentLine) FullyPaid() bool {
	return l.AutoPayment.GreaterThanOrEqual(l.AmountDue)
}

// PaymentNeeded returns the amount still required to fully settle the line
func (l *InstallmentLine) PaymentNeeded() decimal.Decimal {
	return l.AmountSubtotal.Sub(l.PartialPayment)
}

// LeftPaymentMoney returns the residual as Money
func (l *InstallmentLine) LeftPaymentMoney() valueobject.Money {
	return valueobject.NewMoneyDOP(l.LeftPayment)
}

// recomputeDerived refreshes subtotal and residual after any amount change.
func (l *InstallmentLine) recomputeDerived() {
	l.AmountSubtotal = l.AmountDue.Add(l.ChargeAmount)
	l.LeftPayment = l.AmountSubtotal.Sub(l.AutoPayment)
	l.snapResidual()
}

// snapResidual treats sub-cent residuals as settled. A line whose residual
// rounds to zero is paid; anything else keeps its state.
func (l *InstallmentLine) snapResidual() {
	if l.State.IsTerminal() {
		return
	}
	if l.LeftPayment.Abs().LessThan(valueobject.SettlementTolerance) {
		l.LeftPayment = decimal.Zero
		l.State = LineStatePaid
		l.Touch()
	}
}

// applyFeePayment reduces the unpaid late-fee residue by the given amount.
func (l *InstallmentLine) applyFeePayment(amount decimal.Decimal) {
	l.LatePayment = l.LatePayment.Sub(amount)
	if l.LatePayment.IsNegative() {
		l.LatePayment = decimal.Zero
	}
	l.Touch()
}

// settleFull applies the full remaining principal need and marks the line paid.
func (l *InstallmentLine) settleFull(paymentID *uuid.UUID) decimal.Decimal {
	needed := l.PaymentNeeded()
	l.AutoPayment = l.AutoPayment.Add(needed)
	l.PartialPayment = decimal.Zero
	l.LeftPayment = decimal.Zero
	l.State = LineStatePaid
	l.PaymentID = paymentID
	l.Touch()
	return needed
}

// settlePartial applies the given amount and leaves the line partial unless
// the residual snaps to zero.
func (l *InstallmentLine) settlePartial(amount decimal.Decimal, paymentID *uuid.UUID) {
	l.PartialPayment = l.PartialPayment.Add(amount)
	l.AutoPayment = l.AutoPayment.Add(amount)
	l.LeftPayment = l.LeftPayment.Sub(amount)
	l.State = LineStatePartial
	l.PaymentID = paymentID
	l.snapResidual()
	l.Touch()
}

// accrueLateFee adds a fee to the charge amount. The unpaid late-fee residue
// is overwritten, not accumulated; a fresh accrual replaces whatever fee was
// still outstanding.
func (l *InstallmentLine) accrueLateFee(fee decimal.Decimal, invoiceID *uuid.UUID) {
	l.ChargeAmount = l.ChargeAmount.Add(fee)
	l.LatePayment = fee
	l.LateFeeInvoiceID = invoiceID
	l.recomputeDerived()
	l.Touch()
}

// amendLateFee rewrites the unpaid late-fee residue in place. The line keeps
// its linked fee invoice; the charge amount sheds the old fee and carries the
// new one.
func (l *InstallmentLine) amendLateFee(fee decimal.Decimal) {
	l.ChargeAmount = l.ChargeAmount.Sub(l.LatePayment).Add(fee)
	l.LatePayment = fee
	l.recomputeDerived()
	l.Touch()
}

// cancel marks an open line as cancelled. Partial and paid lines are left
// untouched; their money is already in the ledger.
func (l *InstallmentLine) cancel() {
	if l.State == LineStateOpen {
		l.State = LineStateCancel
		l.Touch()
	}
}
