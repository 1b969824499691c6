package billing

import (
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types for the billing context
const (
	EventInvoiceIssued   = "billing.invoice_issued"
	EventInvoiceSettled  = "billing.invoice_settled"
	EventInvoiceVoided   = "billing.invoice_voided"
	EventPaymentRecorded = "billing.payment_recorded"
)

// InvoiceIssuedEvent is raised when an invoice is posted
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	Number     string          `json:"number"`
	Origin     InvoiceOrigin   `json:"origin"`
	ContractID uuid.UUID       `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewInvoiceIssuedEvent creates a new invoice issued event
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceIssued, "Invoice", inv.ID, inv.CompanyID),
		Number:          inv.Number,
		Origin:          inv.Origin,
		ContractID:      inv.ContractID,
		Amount:          inv.TotalAmount,
	}
}

// InvoiceSettledEvent is raised when an invoice reaches zero residual
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	Number     string    `json:"number"`
	ContractID uuid.UUID `json:"contract_id"`
}

// NewInvoiceSettledEvent creates a new invoice settled event
func NewInvoiceSettledEvent(inv *Invoice) *InvoiceSettledEvent {
	return &InvoiceSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceSettled, "Invoice", inv.ID, inv.CompanyID),
		Number:          inv.Number,
		ContractID:      inv.ContractID,
	}
}

// InvoiceVoidedEvent is raised when an invoice is cancelled
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	Number     string    `json:"number"`
	ContractID uuid.UUID `json:"contract_id"`
}

// NewInvoiceVoidedEvent creates a new invoice voided event
func NewInvoiceVoidedEvent(inv *Invoice) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceVoided, "Invoice", inv.ID, inv.CompanyID),
		Number:          inv.Number,
		ContractID:      inv.ContractID,
	}
}

// PaymentRecordedEvent is raised when a payment lands in the ledger
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	Number     string          `json:"number"`
	ContractID uuid.UUID       `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewPaymentRecordedEvent creates a new payment recorded event
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentRecorded, "Payment", p.ID, p.CompanyID),
		Number:          p.Number,
		ContractID:      p.ContractID,
		Amount:          p.Amount,
	}
}
