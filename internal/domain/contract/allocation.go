package contract

import (
	"sort"

	"github.com/condoerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineApplication records how much of a payment landed on one line. The fee
// portion settles the line's outstanding late-fee invoice; the caller posts
// it against that invoice's residual.
type LineApplication struct {
	LineID           uuid.UUID
	LineName         string
	Sequence         int
	FeeInvoiceID     *uuid.UUID
	FeeApplied       decimal.Decimal
	PrincipalApplied decimal.Decimal
	Settled          bool
}

// Applied returns the total amount this application consumed
func (a LineApplication) Applied() decimal.Decimal {
	return a.FeeApplied.Add(a.PrincipalApplied)
}

// AllocationResult describes how a payment was spread over the schedule
type AllocationResult struct {
	Applications []LineApplication
	Remainder    decimal.Decimal // Unallocated portion, zero under the overflow guard
}

// TotalApplied returns the amount the allocation consumed
func (r *AllocationResult) TotalApplied() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Applications {
		total = total.Add(a.Applied())
	}
	return total
}

// LinesSettled returns the count of lines the allocation fully settled
func (r *AllocationResult) LinesSettled() int {
	n := 0
	for _, a := range r.Applications {
		if a.Settled {
			n++
		}
	}
	return n
}

// LinesPartial returns the count of lines left partially paid
func (r *AllocationResult) LinesPartial() int {
	n := 0
	for _, a := range r.Applications {
		if !a.Settled {
			n++
		}
	}
	return n
}

// ManualAllocation selects a line and the amount to apply to it
type ManualAllocation struct {
	LineID uuid.UUID
	Amount decimal.Decimal
}

// ApplyPayment spreads a payment over the outstanding lines in due-date
// order. Within a line the unpaid late-fee residue is carved out first so the
// linked fee invoice can be settled, then the principal. A payment exceeding
// the total outstanding is refused before any line is touched.
//
// feeResiduals maps open late-fee invoice IDs to their residual amounts.
func (c *Contract) ApplyPayment(amount decimal.Decimal, paymentID uuid.UUID, feeResiduals map[uuid.UUID]decimal.Decimal) (*AllocationResult, error) {
	if c.State != StateConfirmed {
		return nil, NewStateTransitionError(c.Name, c.State, c.State, "payments are only accepted on a confirmed contract")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, NewScheduleError("payment amount must be positive")
	}

	outstanding := c.TotalOutstanding()
	if excess := amount.Sub(outstanding); excess.GreaterThanOrEqual(valueobject.SettlementTolerance) {
		return nil, NewAllocationOverflowError(c.Name, excess.StringFixed(currencyPlaces))
	}

	result := &AllocationResult{Applications: make([]LineApplication, 0)}
	remaining := amount

	for _, line := range c.OutstandingLines() {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		app := c.allocateToLine(line, remaining, &paymentID, feeResiduals)
		remaining = remaining.Sub(app.Applied())
		result.Applications = append(result.Applications, app)
	}

	result.Remainder = remaining

	c.RegisterPayment(amount.Sub(remaining))
	c.IncrementVersion()

	c.AddDomainEvent(NewPaymentAllocatedEvent(c, paymentID, amount, result))

	return result, nil
}

// ApplyManualPayment applies caller-chosen amounts to caller-chosen lines.
// Selections are processed in due-date order, and each is refused while an
// earlier installment is still outstanding: only the separation line may be
// skipped. The selected amount may not exceed what the line still needs.
func (c *Contract) ApplyManualPayment(selections []ManualAllocation, paymentID uuid.UUID, feeResiduals map[uuid.UUID]decimal.Decimal) (*AllocationResult, error) {
	if c.State != StateConfirmed {
		return nil, NewStateTransitionError(c.Name, c.State, c.State, "payments are only accepted on a confirmed contract")
	}
	if len(selections) == 0 {
		return nil, NewScheduleError("at least one line must be selected")
	}

	selected := make([]*InstallmentLine, 0, len(selections))
	amounts := make(map[uuid.UUID]decimal.Decimal, len(selections))
	for _, sel := range selections {
		line := c.LineByID(sel.LineID)
		if line == nil {
			return nil, NewScheduleError("selected line does not belong to this contract")
		}
		if !line.State.IsOutstanding() {
			return nil, NewScheduleError("line " + line.Name + " no longer accepts payment")
		}
		if sel.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, NewScheduleError("payment amount must be positive")
		}
		lineDue := line.PaymentNeeded().Add(feeDueFor(line, feeResiduals))
		if excess := sel.Amount.Sub(lineDue); excess.GreaterThanOrEqual(valueobject.SettlementTolerance) {
			return nil, NewAllocationOverflowError(c.Name, excess.StringFixed(currencyPlaces))
		}
		if _, dup := amounts[sel.LineID]; dup {
			return nil, NewScheduleError("line " + line.Name + " selected twice")
		}
		selected = append(selected, line)
		amounts[sel.LineID] = sel.Amount
	}

	sort.Slice(selected, func(i, j int) bool { return lineBefore(selected[i], selected[j]) })

	// Validate sequencing against the pre-allocation state so a partial
	// selection on an earlier line cannot unlock a later one.
	for _, line := range selected {
		if err := c.checkSequencing(line, amounts, feeResiduals); err != nil {
			return nil, err
		}
	}

	total := decimal.Zero
	result := &AllocationResult{Applications: make([]LineApplication, 0, len(selected))}

	for _, line := range selected {
		app := c.allocateToLine(line, amounts[line.ID], &paymentID, feeResiduals)
		total = total.Add(app.Applied())
		result.Applications = append(result.Applications, app)
	}

	result.Remainder = decimal.Zero

	c.RegisterPayment(total)
	c.IncrementVersion()

	c.AddDomainEvent(NewPaymentAllocatedEvent(c, paymentID, total, result))

	return result, nil
}

// allocateToLine applies up to `available` to a single line, fee residue
// first. It mutates the line and returns the application record.
func (c *Contract) allocateToLine(line *InstallmentLine, available decimal.Decimal, paymentID *uuid.UUID, feeResiduals map[uuid.UUID]decimal.Decimal) LineApplication {
	app := LineApplication{
		LineID:           line.ID,
		LineName:         line.Name,
		Sequence:         line.Sequence,
		FeeInvoiceID:     line.LateFeeInvoiceID,
		FeeApplied:       decimal.Zero,
		PrincipalApplied: decimal.Zero,
	}

	feePay := decimal.Min(feeDueFor(line, feeResiduals), available)
	if feePay.GreaterThan(decimal.Zero) {
		line.applyFeePayment(feePay)
		feeResiduals[*line.LateFeeInvoiceID] = feeResiduals[*line.LateFeeInvoiceID].Sub(feePay)
		app.FeeApplied = feePay
	}

	// The fee settles the fee invoice only; the principal residual shrinks by
	// what is left of the payment after the fee.
	pool := available.Sub(feePay)
	needed := line.PaymentNeeded()

	switch {
	case pool.GreaterThanOrEqual(needed):
		app.PrincipalApplied = line.settleFull(paymentID)
	case pool.GreaterThan(decimal.Zero):
		line.settlePartial(pool, paymentID)
		app.PrincipalApplied = pool
	}
	app.Settled = line.State == LineStatePaid

	return app
}

// feeDueFor returns the portion of the line's late-fee charge still owed on
// its linked open fee invoice.
func feeDueFor(line *InstallmentLine, feeResiduals map[uuid.UUID]decimal.Decimal) decimal.Decimal {
	if line.LateFeeInvoiceID == nil {
		return decimal.Zero
	}
	residual, ok := feeResiduals[*line.LateFeeInvoiceID]
	if !ok {
		return decimal.Zero
	}
	return decimal.Min(residual, line.LatePayment)
}

// checkSequencing refuses payment on a line while an earlier regular
// installment is still outstanding and not covered by the same request.
func (c *Contract) checkSequencing(target *InstallmentLine, covered map[uuid.UUID]decimal.Decimal, feeResiduals map[uuid.UUID]decimal.Decimal) error {
	for i := range c.Lines {
		line := &c.Lines[i]
		if line.ID == target.ID || line.IsSeparation() {
			continue
		}
		if !line.State.IsOutstanding() {
			continue
		}
		if !lineBefore(line, target) {
			continue
		}
		due := line.PaymentNeeded().Add(feeDueFor(line, feeResiduals))
		amount, ok := covered[line.ID]
		if !ok || amount.Add(valueobject.SettlementTolerance).LessThan(due) {
			return NewSequencingError(c.Name, line.Sequence)
		}
	}
	return nil
}

func lineBefore(a, b *InstallmentLine) bool {
	if !a.DueDate.Equal(b.DueDate) {
		return a.DueDate.Before(b.DueDate)
	}
	return a.Sequence < b.Sequence
}
