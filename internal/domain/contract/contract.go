package contract

import (
	"sort"
	"time"

	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/condoerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State represents the lifecycle state of a contract
type State string

const (
	StateDraft     State = "DRAFT"     // Editable, schedule may be rebuilt
	StateConfirmed State = "CONFIRMED" // Primary invoice issued, payments accepted
	StateDone      State = "DONE"      // Fully settled, terminal
	StateCancelled State = "CANCELLED" // Cancelled, terminal
)

// IsValid checks if the state is a valid contract State
func (s State) IsValid() bool {
	switch s {
	case StateDraft, StateConfirmed, StateDone, StateCancelled:
		return true
	}
	return false
}

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true if no transition may leave this state
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateCancelled
}

// Contract is the aggregate root for a condominium fee contract. It owns the
// ordered installment line collection exclusively; lines hold the contract ID
// as a back-reference and are never shared between contracts.
type Contract struct {
	shared.CompanyAggregateRoot

	Name            string // Sequence-generated, unique per company
	PartnerID       uuid.UUID
	PartnerName     string
	ProjectName     string
	ApartmentNumber string

	ApartmentAmountTotal decimal.Decimal // Full apartment price, informational
	InceptiveAmount      decimal.Decimal // Amount financed through the schedule
	SeparationAmount     decimal.Decimal // Upfront reservation amount (sequence-0 line)
	InitialTotal         decimal.Decimal // InceptiveAmount - SeparationAmount
	InvoiceAdjustment    decimal.Decimal // Difference settled outside the schedule (bank side)

	PeriodCount    int // Number of regular installments, >= 1
	IntervalMonths int // Months between consecutive due dates, >= 1
	StartDate      time.Time

	JournalID   uuid.UUID
	Currency    valueobject.Currency
	AutoLateFee bool            // Automatic late-fee accrual enabled
	LateFeeRate decimal.Decimal // Percentage applied to the overdue residual

	State                 State
	InstallmentsCompleted bool // All lines paid

	// Roll-ups, recomputed whenever lines or payments change
	AmountPaid     decimal.Decimal // Sum of posted payments
	AmountTotal    decimal.Decimal // Sum of line due amounts plus charges
	AmountCharge   decimal.Decimal // Sum of line charges
	AmountDueTotal decimal.Decimal // InvoiceAdjustment + AmountTotal - AmountPaid, clamped at 0

	Lines   []InstallmentLine
	History []ChargeRecord
}

// NewContractParams carries the inputs for creating a contract
type NewContractParams struct {
	CompanyID            uuid.UUID
	Name                 string
	PartnerID            uuid.UUID
	PartnerName          string
	ProjectName          string
	ApartmentNumber      string
	ApartmentAmountTotal decimal.Decimal
	InceptiveAmount      decimal.Decimal
	SeparationAmount     decimal.Decimal
	InvoiceAdjustment    decimal.Decimal
	PeriodCount          int
	IntervalMonths       int
	StartDate            time.Time
	JournalID            uuid.UUID
	Currency             valueobject.Currency
	AutoLateFee          bool
	LateFeeRate          decimal.Decimal
}

// NewContract creates a new contract in draft state
func NewContract(p NewContractParams) (*Contract, error) {
	if p.Name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Contract name cannot be empty")
	}
	if p.CompanyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if p.PartnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if p.PeriodCount < 1 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period count must be at least 1")
	}
	if p.IntervalMonths < 1 {
		return nil, shared.NewDomainError("INVALID_INTERVAL", "Payment interval must be at least 1 month")
	}
	if p.InceptiveAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Inceptive amount must be positive")
	}
	if p.SeparationAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Separation amount cannot be negative")
	}
	if p.InceptiveAmount.LessThan(p.SeparationAmount) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Separation amount cannot exceed the inceptive amount")
	}
	if p.LateFeeRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Late fee rate cannot be negative")
	}
	if p.StartDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Contract start date is required")
	}

	currency := p.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	c := &Contract{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(p.CompanyID),
		Name:                 p.Name,
		PartnerID:            p.PartnerID,
		PartnerName:          p.PartnerName,
		ProjectName:          p.ProjectName,
		ApartmentNumber:      p.ApartmentNumber,
		ApartmentAmountTotal: p.ApartmentAmountTotal,
		InceptiveAmount:      p.InceptiveAmount,
		SeparationAmount:     p.SeparationAmount,
		InitialTotal:         p.InceptiveAmount.Sub(p.SeparationAmount),
		InvoiceAdjustment:    p.InvoiceAdjustment,
		PeriodCount:          p.PeriodCount,
		IntervalMonths:       p.IntervalMonths,
		StartDate:            p.StartDate,
		JournalID:            p.JournalID,
		Currency:             currency,
		AutoLateFee:          p.AutoLateFee,
		LateFeeRate:          p.LateFeeRate,
		State:                StateDraft,
		AmountPaid:           decimal.Zero,
		AmountTotal:          decimal.Zero,
		AmountCharge:         decimal.Zero,
		AmountDueTotal:       decimal.Zero,
		Lines:                make([]InstallmentLine, 0),
		History:              make([]ChargeRecord, 0),
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

// ReplaceSchedule swaps the whole line collection for a freshly built one.
// Refused once any payment has been applied; the old lines are destroyed
// together with the insert of the new ones, so a failure can never leave a
// mixed schedule.
func (c *Contract) ReplaceSchedule(lines []InstallmentLine) error {
	if c.State.IsTerminal() {
		return NewStateTransitionError(c.Name, c.State, c.State, "schedule cannot be rebuilt on a closed contract")
	}
	for i := range c.Lines {
		if c.Lines[i].State == LineStatePaid || c.Lines[i].State == LineStatePartial {
			return shared.NewDomainError(ErrCodeScheduleHasPayments,
				"Contract "+c.Name+": schedule cannot be rebuilt while payments exist")
		}
	}

	c.Lines = lines
	c.InstallmentsCompleted = false
	c.RecomputeTotals()
	c.IncrementVersion()
	c.Touch()

	c.AddDomainEvent(NewScheduleBuiltEvent(c))

	return nil
}

// RecomputeTotals re-derives the contract roll-ups from the line collection
// and the cumulative paid amount. AmountDueTotal is clamped at zero: an
// overpayment is never carried forward as a credit balance.
func (c *Contract) RecomputeTotals() {
	amountTotal := decimal.Zero
	amountCharge := decimal.Zero
	for i := range c.Lines {
		if c.Lines[i].State == LineStateCancel {
			continue
		}
		amountTotal = amountTotal.Add(c.Lines[i].AmountDue)
		amountCharge = amountCharge.Add(c.Lines[i].ChargeAmount)
	}

	c.AmountTotal = amountTotal.Add(amountCharge)
	c.AmountCharge = amountCharge

	due := c.InvoiceAdjustment.Add(c.AmountTotal).Sub(c.AmountPaid)
	if due.IsNegative() {
		due = decimal.Zero
	}
	c.AmountDueTotal = due

	c.InstallmentsCompleted = c.allLinesPaid()
}

// RegisterPayment records a posted payment amount against the contract
// roll-ups.
func (c *Contract) RegisterPayment(amount decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	c.AmountPaid = c.AmountPaid.Add(amount)
	c.RecomputeTotals()
	c.Touch()
}

// DoneFullyPayment returns true when the paid total covers the contract total
func (c *Contract) DoneFullyPayment() bool {
	return c.AmountPaid.GreaterThanOrEqual(c.AmountTotal)
}

// OutstandingLines returns the non-cancelled open/partial lines sorted by due
// date ascending, the order the automatic allocator consumes them in.
func (c *Contract) OutstandingLines() []*InstallmentLine {
	lines := make([]*InstallmentLine, 0, len(c.Lines))
	for i := range c.Lines {
		if c.Lines[i].State.IsOutstanding() {
			lines = append(lines, &c.Lines[i])
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].DueDate.Equal(lines[j].DueDate) {
			return lines[i].DueDate.Before(lines[j].DueDate)
		}
		return lines[i].Sequence < lines[j].Sequence
	})
	return lines
}

// LineByID returns the owned line with the given ID, or nil
func (c *Contract) LineByID(id uuid.UUID) *InstallmentLine {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return &c.Lines[i]
		}
	}
	return nil
}

// LineBySequence returns the owned line with the given sequence, or nil
func (c *Contract) LineBySequence(sequence int) *InstallmentLine {
	for i := range c.Lines {
		if c.Lines[i].Sequence == sequence {
			return &c.Lines[i]
		}
	}
	return nil
}

// LastDueDate returns the due date of the latest line; the primary invoice
// falls due on it
func (c *Contract) LastDueDate() time.Time {
	var last time.Time
	for i := range c.Lines {
		if c.Lines[i].DueDate.After(last) {
			last = c.Lines[i].DueDate
		}
	}
	return last
}

// allLinesPaid reports whether every line is in the paid state
func (c *Contract) allLinesPaid() bool {
	if len(c.Lines) == 0 {
		return false
	}
	for i := range c.Lines {
		if c.Lines[i].State != LineStatePaid {
			return false
		}
	}
	return true
}

// unchargedLinesPaid reports whether every line without an accrued charge is
// paid. Charged lines settle through their late-fee invoices and do not
// block completion.
func (c *Contract) unchargedLinesPaid() bool {
	for i := range c.Lines {
		if c.Lines[i].IsCharged() {
			continue
		}
		if c.Lines[i].State != LineStatePaid {
			return false
		}
	}
	return len(c.Lines) > 0
}

// Confirm moves the contract from draft to confirmed. The caller issues the
// primary invoice for AmountDueTotal through the invoicing service.
func (c *Contract) Confirm() error {
	if c.State != StateDraft {
		return NewStateTransitionError(c.Name, c.State, StateConfirmed, "only a draft contract can be confirmed")
	}
	if len(c.Lines) == 0 {
		return NewStateTransitionError(c.Name, c.State, StateConfirmed, "payment schedule cannot be empty")
	}

	c.State = StateConfirmed
	c.IncrementVersion()
	c.Touch()

	c.AddDomainEvent(NewContractConfirmedEvent(c))

	return nil
}

// MarkDone closes a confirmed contract once every uncharged line is paid.
// hasSettlementInvoice reports whether at least one invoice exists in the
// settlement journal; the caller posts pending ones before persisting.
func (c *Contract) MarkDone(hasSettlementInvoice bool) error {
	if c.State != StateConfirmed {
		return NewStateTransitionError(c.Name, c.State, StateDone, "contract must be confirmed before it can be completed")
	}
	if !c.unchargedLinesPaid() {
		return NewStateTransitionError(c.Name, c.State, StateDone, "all installments must be registered as paid")
	}
	if !hasSettlementInvoice {
		return NewStateTransitionError(c.Name, c.State, StateDone, "no invoice exists in the settlement journal")
	}

	c.State = StateDone
	c.IncrementVersion()
	c.Touch()

	c.AddDomainEvent(NewContractCompletedEvent(c))

	return nil
}

// Cancel cancels a draft or confirmed contract. Refused once the contract is
// fully settled: there is nothing left to cancel. Open lines move to cancel;
// the caller voids their linked invoices.
func (c *Contract) Cancel() error {
	if c.State.IsTerminal() {
		return NewStateTransitionError(c.Name, c.State, StateCancelled, "contract is already closed")
	}
	if c.allLinesPaid() && c.AmountDueTotal.LessThanOrEqual(decimal.Zero) {
		return NewCancellationError(c.Name)
	}

	for i := range c.Lines {
		c.Lines[i].cancel()
	}

	c.State = StateCancelled
	c.RecomputeTotals()
	c.IncrementVersion()
	c.Touch()

	c.AddDomainEvent(NewContractCancelledEvent(c))

	return nil
}

// ResetToDraft reopens a contract, destroying its schedule. Refused while any
// payment, full or partial, has been registered.
func (c *Contract) ResetToDraft() error {
	if c.State == StateDraft {
		return NewStateTransitionError(c.Name, c.State, StateDraft, "contract is already in draft")
	}
	for i := range c.Lines {
		if c.Lines[i].State == LineStatePaid || c.Lines[i].State == LineStatePartial {
			return NewStateTransitionError(c.Name, c.State, StateDraft, "payments have been registered against the schedule")
		}
	}

	c.Lines = make([]InstallmentLine, 0)
	c.InstallmentsCompleted = false
	c.State = StateDraft
	c.RecomputeTotals()
	c.IncrementVersion()
	c.Touch()

	c.AddDomainEvent(NewContractResetEvent(c))

	return nil
}

// ApplyLateFee accrues a late fee against one of the contract's lines and
// records it in the charge history. The line's unpaid fee residue is
// overwritten by the new fee.
func (c *Contract) ApplyLateFee(lineID uuid.UUID, fee decimal.Decimal, invoiceID *uuid.UUID, accruedOn time.Time) error {
	if c.State == StateCancelled {
		return NewStateTransitionError(c.Name, c.State, c.State, "late fees cannot be added to a cancelled contract")
	}
	if fee.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Late fee must be positive")
	}
	line := c.LineByID(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	if line.State.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Line "+line.Name+" no longer accepts late fees")
	}

	line.accrueLateFee(fee, invoiceID)
	c.History = append(c.History, NewChargeRecord(c.ID, line.ID, line.AmountDue, fee, accruedOn))
	c.RecomputeTotals()
	c.IncrementVersion()
	c.Touch()

	c.AddDomainEvent(NewLateFeeAccruedEvent(c, line, fee))

	return nil
}

// AmendLateFee replaces the unpaid late-fee charge on a line that already
// carries a fee invoice. The caller rewrites the invoice amount to match.
func (c *Contract) AmendLateFee(lineID uuid.UUID, fee decimal.Decimal, accruedOn time.Time) error {
	if c.State == StateCancelled {
		return NewStateTransitionError(c.Name, c.State, c.State, "late fees cannot be added to a cancelled contract")
	}
	if fee.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Late fee must be positive")
	}
	line := c.LineByID(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	if line.State.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Line "+line.Name+" no longer accepts late fees")
	}
	if line.LateFeeInvoiceID == nil {
		return shared.NewDomainError("INVALID_STATE",
			"Line "+line.Name+" has no fee invoice to amend")
	}

	line.amendLateFee(fee)
	c.History = append(c.History, NewChargeRecord(c.ID, line.ID, line.AmountDue, fee, accruedOn))
	c.RecomputeTotals()
	c.IncrementVersion()
	c.Touch()

	c.AddDomainEvent(NewLateFeeAccruedEvent(c, line, fee))

	return nil
}

// AmountDueTotalMoney returns the outstanding total as Money
func (c *Contract) AmountDueTotalMoney() valueobject.Money {
	return valueobject.NewMoneyDOP(c.AmountDueTotal)
}

// TotalOutstanding returns the sum of residuals over the outstanding lines,
// late-fee residues included.
func (c *Contract) TotalOutstanding() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Lines {
		if c.Lines[i].State.IsOutstanding() {
			total = total.Add(c.Lines[i].LeftPayment).Add(c.Lines[i].LatePayment)
		}
	}
	return total
}
