package contract

import (
	"time"

	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeRecord is an append-only log entry for a late-fee accrual. Records
// are never updated or deleted; the history answers "what was charged when"
// for the charge report.
type ChargeRecord struct {
	shared.BaseEntity
	ContractID uuid.UUID
	LineID     uuid.UUID
	AmountDue  decimal.Decimal // Line due amount at accrual time
	Charge     decimal.Decimal // The fee accrued by this record
	AccruedOn  time.Time       // Date the fee was assessed for
}

// NewChargeRecord creates a charge history entry
func NewChargeRecord(contractID, lineID uuid.UUID, amountDue, charge decimal.Decimal, accruedOn time.Time) ChargeRecord {
	return ChargeRecord{
		BaseEntity: shared.NewBaseEntity(),
		ContractID: contractID,
		LineID:     lineID,
		AmountDue:  amountDue,
		Charge:     charge,
		AccruedOn:  accruedOn,
	}
}
