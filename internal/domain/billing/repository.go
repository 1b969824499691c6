package billing

import (
	"context"
	"time"

	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	ContractID *uuid.UUID     // Filter by contract
	PartnerID  *uuid.UUID     // Filter by partner
	JournalID  *uuid.UUID     // Filter by journal
	Origin     *InvoiceOrigin // Filter by origin
	Status     *InvoiceStatus // Filter by status
	DueFrom    *time.Time     // Filter by due date range start
	DueTo      *time.Time     // Filter by due date range end
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by number for a company
	FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*Invoice, error)

	// FindByContract finds the invoices of a contract with filtering
	FindByContract(ctx context.Context, contractID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// FindOpenFeeInvoices finds the open late-fee invoices of a contract
	FindOpenFeeInvoices(ctx context.Context, contractID uuid.UUID) ([]Invoice, error)

	// FindAllForCompany finds all invoices for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// ExistsInJournal checks if a contract has any invoice in a journal
	ExistsInJournal(ctx context.Context, contractID, journalID uuid.UUID) (bool, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// CountForCompany counts invoices for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter InvoiceFilter) (int64, error)

	// GenerateInvoiceNumber generates the next unique invoice number for a company
	GenerateInvoiceNumber(ctx context.Context, companyID uuid.UUID) (string, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	ContractID *uuid.UUID     // Filter by contract
	PartnerID  *uuid.UUID     // Filter by partner
	Status     *PaymentStatus // Filter by status
	From       *time.Time     // Filter by received date range start
	To         *time.Time     // Filter by received date range end
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByContract finds the payments recorded for a contract
	FindByContract(ctx context.Context, contractID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// FindAllForCompany finds all payments for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// CountForCompany counts payments for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter PaymentFilter) (int64, error)

	// GeneratePaymentNumber generates the next unique payment number for a company
	GeneratePaymentNumber(ctx context.Context, companyID uuid.UUID) (string, error)
}
