package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/condoerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusOpen      InvoiceStatus = "OPEN"      // Posted, residual > 0
	InvoiceStatusPaid      InvoiceStatus = "PAID"      // Fully settled, residual = 0
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Voided before settlement
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// InvoiceOrigin represents the document an invoice was raised for
type InvoiceOrigin string

const (
	OriginContract InvoiceOrigin = "CONTRACT" // Primary contract invoice
	OriginLateFee  InvoiceOrigin = "LATE_FEE" // Late-fee accrual invoice
	OriginManual   InvoiceOrigin = "MANUAL"   // Manually raised invoice
)

// IsValid checks if the origin is valid
func (o InvoiceOrigin) IsValid() bool {
	switch o {
	case OriginContract, OriginLateFee, OriginManual:
		return true
	}
	return false
}

// SettlementRecord is one payment applied to the invoice. It is a value
// object within the Invoice aggregate, stored as JSONB.
type SettlementRecord struct {
	ID        uuid.UUID       `json:"id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
	Remark    string          `json:"remark,omitempty"`
}

// SettlementRecords is a slice of SettlementRecord implementing GORM
// Scanner/Valuer for JSONB storage
type SettlementRecords []SettlementRecord

// Value implements driver.Valuer for GORM to store as JSONB
func (r SettlementRecords) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (r *SettlementRecords) Scan(value interface{}) error {
	if value == nil {
		*r = SettlementRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for SettlementRecords")
	}

	if len(bytes) == 0 {
		*r = SettlementRecords{}
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// Invoice is a receivable document raised against a partner. Contract
// confirmation raises the primary invoice; each late-fee accrual raises a
// fee invoice. Residual tracks what the partner still owes on it.
type Invoice struct {
	shared.CompanyAggregateRoot

	Number      string
	Origin      InvoiceOrigin
	ContractID  uuid.UUID
	LineID      *uuid.UUID // Set for late-fee invoices
	PartnerID   uuid.UUID
	JournalID   uuid.UUID
	Description string

	TotalAmount decimal.Decimal
	Residual    decimal.Decimal

	IssuedOn time.Time
	DueDate  time.Time

	Status      InvoiceStatus
	Settlements SettlementRecords
}

// NewInvoice creates and posts a new open invoice
func NewInvoice(companyID uuid.UUID, number string, origin InvoiceOrigin, contractID, partnerID, journalID uuid.UUID, description string, amount decimal.Decimal, issuedOn, dueDate time.Time) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if !origin.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORIGIN", fmt.Sprintf("Invalid invoice origin: %s", origin))
	}
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}

	inv := &Invoice{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Number:               number,
		Origin:               origin,
		ContractID:           contractID,
		PartnerID:            partnerID,
		JournalID:            journalID,
		Description:          description,
		TotalAmount:          amount,
		Residual:             amount,
		IssuedOn:             issuedOn,
		DueDate:              dueDate,
		Status:               InvoiceStatusOpen,
		Settlements:          make(SettlementRecords, 0),
	}

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return inv, nil
}

// ForLine marks the invoice as covering a specific installment line
func (i *Invoice) ForLine(lineID uuid.UUID) *Invoice {
	i.LineID = &lineID
	return i
}

// IsOpen returns true while the invoice carries a residual
func (i *Invoice) IsOpen() bool {
	return i.Status == InvoiceStatusOpen
}

// ApplySettlement posts a payment amount against the residual. A sub-cent
// residual left behind is treated as settled.
func (i *Invoice) ApplySettlement(paymentID uuid.UUID, amount decimal.Decimal, appliedAt time.Time, remark string) error {
	if i.Status != InvoiceStatusOpen {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Invoice %s no longer accepts payments", i.Number))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Settlement amount must be positive")
	}
	if amount.Sub(i.Residual).GreaterThanOrEqual(valueobject.SettlementTolerance) {
		return shared.NewDomainError("AMOUNT_EXCEEDS_RESIDUAL",
			fmt.Sprintf("Settlement %s exceeds invoice residual %s", amount, i.Residual))
	}

	i.Residual = i.Residual.Sub(amount)
	if i.Residual.Abs().LessThan(valueobject.SettlementTolerance) {
		i.Residual = decimal.Zero
		i.Status = InvoiceStatusPaid
	}

	i.Settlements = append(i.Settlements, SettlementRecord{
		ID:        uuid.New(),
		PaymentID: paymentID,
		Amount:    amount,
		AppliedAt: appliedAt,
		Remark:    remark,
	})

	i.IncrementVersion()
	i.Touch()

	if i.Status == InvoiceStatusPaid {
		i.AddDomainEvent(NewInvoiceSettledEvent(i))
	}

	return nil
}

// Amend rewrites the invoiced amount of an open invoice. Payments already
// applied stay applied; the residual is recomputed against the new total.
func (i *Invoice) Amend(amount decimal.Decimal) error {
	if i.Status != InvoiceStatusOpen {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Invoice %s is closed and cannot be amended", i.Number))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}

	settled := i.TotalAmount.Sub(i.Residual)
	if amount.LessThan(settled) {
		return shared.NewDomainError("AMOUNT_EXCEEDS_RESIDUAL",
			fmt.Sprintf("Amended amount %s is below the %s already settled on invoice %s", amount, settled, i.Number))
	}

	i.TotalAmount = amount
	i.Residual = amount.Sub(settled)
	if i.Residual.Abs().LessThan(valueobject.SettlementTolerance) {
		i.Residual = decimal.Zero
		i.Status = InvoiceStatusPaid
	}

	i.IncrementVersion()
	i.Touch()

	return nil
}

// Void cancels an invoice no payment has touched yet
func (i *Invoice) Void() error {
	if i.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Invoice %s is already closed", i.Number))
	}
	if len(i.Settlements) > 0 {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Invoice %s has payments applied and cannot be voided", i.Number))
	}

	i.Status = InvoiceStatusCancelled
	i.Residual = decimal.Zero
	i.IncrementVersion()
	i.Touch()

	i.AddDomainEvent(NewInvoiceVoidedEvent(i))

	return nil
}
