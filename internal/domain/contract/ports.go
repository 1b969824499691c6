package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes the invoices a contract gives rise to
type InvoiceKind string

const (
	InvoiceKindPrimary InvoiceKind = "PRIMARY"  // Full contract amount, issued on confirm
	InvoiceKindLateFee InvoiceKind = "LATE_FEE" // One per accrual run per line
)

// InvoiceRequest carries the data needed to issue an invoice for a contract
type InvoiceRequest struct {
	CompanyID   uuid.UUID
	ContractID  uuid.UUID
	PartnerID   uuid.UUID
	JournalID   uuid.UUID
	Kind        InvoiceKind
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time
}

// InvoicingService is the contract context's port into invoicing. Contracts
// never touch journal entries directly; they request invoices and observe
// residuals.
type InvoicingService interface {
	// IssueInvoice creates and posts an invoice, returning its ID
	IssueInvoice(ctx context.Context, req InvoiceRequest) (uuid.UUID, error)

	// VoidInvoice cancels an open invoice
	VoidInvoice(ctx context.Context, invoiceID uuid.UUID) error

	// AmendInvoiceAmount rewrites the amount of an open, unpaid invoice
	AmendInvoiceAmount(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal) error

	// OpenFeeResiduals returns the residual amount of each open late-fee
	// invoice belonging to the contract, keyed by invoice ID
	OpenFeeResiduals(ctx context.Context, contractID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// HasUnpaidFeeInvoice reports whether the invoice exists and still
	// carries a residual
	HasUnpaidFeeInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error)

	// HasInvoiceInJournal reports whether the contract has at least one
	// invoice in the given journal
	HasInvoiceInJournal(ctx context.Context, contractID, journalID uuid.UUID) (bool, error)

	// RegisterInvoicePayment posts a payment amount against an invoice
	RegisterInvoicePayment(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal) error
}

// ReminderNotice is the payload for a due-date reminder
type ReminderNotice struct {
	ContractName    string
	PartnerID       uuid.UUID
	PartnerName     string
	LineName        string
	DueDate         time.Time
	AmountDue       decimal.Decimal
	DaysUntilDue    int
	ProjectName     string
	ApartmentNumber string
}

// NotificationService delivers reminders to partners
type NotificationService interface {
	// SendPaymentReminder notifies a partner of an upcoming installment
	SendPaymentReminder(ctx context.Context, notice ReminderNotice) error
}
