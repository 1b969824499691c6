package contract

import (
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const aggregateType = "Contract"

// Event types for the contract aggregate
const (
	EventContractCreated   = "contract.created"
	EventScheduleBuilt     = "contract.schedule_built"
	EventContractConfirmed = "contract.confirmed"
	EventContractCompleted = "contract.completed"
	EventContractCancelled = "contract.cancelled"
	EventContractReset     = "contract.reset_to_draft"
	EventLateFeeAccrued    = "contract.late_fee_accrued"
	EventPaymentAllocated  = "contract.payment_allocated"
)

// ContractCreatedEvent is raised when a new contract enters the system
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractName string          `json:"contract_name"`
	PartnerID    uuid.UUID       `json:"partner_id"`
	ProjectName  string          `json:"project_name"`
	Inceptive    decimal.Decimal `json:"inceptive_amount"`
}

// NewContractCreatedEvent creates a new contract created event
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContractCreated, aggregateType, c.ID, c.CompanyID),
		ContractName:    c.Name,
		PartnerID:       c.PartnerID,
		ProjectName:     c.ProjectName,
		Inceptive:       c.InceptiveAmount,
	}
}

// ScheduleBuiltEvent is raised when the amortization schedule is (re)built
type ScheduleBuiltEvent struct {
	shared.BaseDomainEvent
	ContractName string `json:"contract_name"`
	LineCount    int    `json:"line_count"`
}

// NewScheduleBuiltEvent creates a new schedule built event
func NewScheduleBuiltEvent(c *Contract) *ScheduleBuiltEvent {
	return &ScheduleBuiltEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventScheduleBuilt, aggregateType, c.ID, c.CompanyID),
		ContractName:    c.Name,
		LineCount:       len(c.Lines),
	}
}

// ContractConfirmedEvent is raised when a contract is confirmed
type ContractConfirmedEvent struct {
	shared.BaseDomainEvent
	ContractName string          `json:"contract_name"`
	PartnerID    uuid.UUID       `json:"partner_id"`
	AmountDue    decimal.Decimal `json:"amount_due_total"`
}

// NewContractConfirmedEvent creates a new contract confirmed event
func NewContractConfirmedEvent(c *Contract) *ContractConfirmedEvent {
	return &ContractConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContractConfirmed, aggregateType, c.ID, c.CompanyID),
		ContractName:    c.Name,
		PartnerID:       c.PartnerID,
		AmountDue:       c.AmountDueTotal,
	}
}

// ContractCompletedEvent is raised when a contract is marked done
type ContractCompletedEvent struct {
	shared.BaseDomainEvent
	ContractName string          `json:"contract_name"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
}

// NewContractCompletedEvent creates a new contract completed event
func NewContractCompletedEvent(c *Contract) *ContractCompletedEvent {
	return &ContractCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContractCompleted, aggregateType, c.ID, c.CompanyID),
		ContractName:    c.Name,
		AmountPaid:      c.AmountPaid,
	}
}

// ContractCancelledEvent is raised when a contract is cancelled
type ContractCancelledEvent struct {
	shared.BaseDomainEvent
	ContractName string `json:"contract_name"`
}

// NewContractCancelledEvent creates a new contract cancelled event
func NewContractCancelledEvent(c *Contract) *ContractCancelledEvent {
	return &ContractCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContractCancelled, aggregateType, c.ID, c.CompanyID),
		ContractName:    c.Name,
	}
}

// ContractResetEvent is raised when a contract returns to draft
type ContractResetEvent struct {
	shared.BaseDomainEvent
	ContractName string `json:"contract_name"`
}

// NewContractResetEvent creates a new contract reset event
func NewContractResetEvent(c *Contract) *ContractResetEvent {
	return &ContractResetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContractReset, aggregateType, c.ID, c.CompanyID),
		ContractName:    c.Name,
	}
}

// LateFeeAccruedEvent is raised when a late fee is charged against a line
type LateFeeAccruedEvent struct {
	shared.BaseDomainEvent
	ContractName string          `json:"contract_name"`
	LineID       uuid.UUID       `json:"line_id"`
	LineName     string          `json:"line_name"`
	Fee          decimal.Decimal `json:"fee"`
}

// NewLateFeeAccruedEvent creates a new late fee accrued event
func NewLateFeeAccruedEvent(c *Contract, line *InstallmentLine, fee decimal.Decimal) *LateFeeAccruedEvent {
	return &LateFeeAccruedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventLateFeeAccrued, aggregateType, c.ID, c.CompanyID),
		ContractName:    c.Name,
		LineID:          line.ID,
		LineName:        line.Name,
		Fee:             fee,
	}
}

// PaymentAllocatedEvent is raised after a payment has been spread over the
// schedule
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	ContractName  string          `json:"contract_name"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	LinesSettled  int             `json:"lines_settled"`
	LinesPartial  int             `json:"lines_partial"`
	FullySettled  bool            `json:"fully_settled"`
}

// NewPaymentAllocatedEvent creates a new payment allocated event
func NewPaymentAllocatedEvent(c *Contract, paymentID uuid.UUID, amount decimal.Decimal, result *AllocationResult) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentAllocated, aggregateType, c.ID, c.CompanyID),
		ContractName:    c.Name,
		PaymentID:       paymentID,
		Amount:          amount,
		LinesSettled:    result.LinesSettled(),
		LinesPartial:    result.LinesPartial(),
		FullySettled:    c.InstallmentsCompleted,
	}
}
