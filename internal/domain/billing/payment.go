package billing

import (
	"fmt"
	"time"

	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a received payment
type PaymentStatus string

const (
	PaymentStatusPosted   PaymentStatus = "POSTED"   // Recorded and allocated
	PaymentStatusReversed PaymentStatus = "REVERSED" // Reversed after posting
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPosted || s == PaymentStatusReversed
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Payment is a received payment recorded in the ledger. Allocation over the
// installment schedule happens in the contract context; the ledger keeps the
// money trail.
type Payment struct {
	shared.CompanyAggregateRoot

	Number     string
	ContractID uuid.UUID
	PartnerID  uuid.UUID
	JournalID  uuid.UUID
	Amount     decimal.Decimal
	Reference  string // Bank reference or receipt number
	ReceivedOn time.Time
	Status     PaymentStatus

	ReversedAt     *time.Time
	ReversalReason string
}

// NewPayment records a received payment
func NewPayment(companyID uuid.UUID, number string, contractID, partnerID, journalID uuid.UUID, amount decimal.Decimal, reference string, receivedOn time.Time) (*Payment, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Payment number cannot be empty")
	}
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if receivedOn.IsZero() {
		receivedOn = time.Now()
	}

	p := &Payment{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Number:               number,
		ContractID:           contractID,
		PartnerID:            partnerID,
		JournalID:            journalID,
		Amount:               amount,
		Reference:            reference,
		ReceivedOn:           receivedOn,
		Status:               PaymentStatusPosted,
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))

	return p, nil
}

// Reverse voids a posted payment
func (p *Payment) Reverse(reason string) error {
	if p.Status == PaymentStatusReversed {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Payment %s is already reversed", p.Number))
	}

	now := time.Now()
	p.Status = PaymentStatusReversed
	p.ReversedAt = &now
	p.ReversalReason = reason
	p.IncrementVersion()
	p.Touch()

	return nil
}
