package contract

import (
	"fmt"

	"github.com/condoerp/backend/internal/domain/shared"
)

// Error codes raised by the contract domain
const (
	ErrCodeScheduleInvalid     = "SCHEDULE_INVALID"
	ErrCodePaymentOutOfOrder   = "PAYMENT_OUT_OF_ORDER"
	ErrCodeNothingToCancel     = "NOTHING_TO_CANCEL"
	ErrCodeInvalidTransition   = "INVALID_STATE_TRANSITION"
	ErrCodeAllocationOverflow  = "ALLOCATION_OVERFLOW"
	ErrCodeScheduleHasPayments = "SCHEDULE_HAS_PAYMENTS"
)

// NewScheduleError creates an error for invalid schedule parameters
func NewScheduleError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeScheduleInvalid, message)
}

// NewSequencingError creates an error for a manual payment that skips ahead
// of an earlier unpaid installment
func NewSequencingError(contractName string, sequence int) *shared.DomainError {
	return shared.NewDomainError(ErrCodePaymentOutOfOrder,
		fmt.Sprintf("Contract %s: cannot pay installment %d before earlier installments are fully settled", contractName, sequence))
}

// NewCancellationError creates an error for cancelling a fully settled contract
func NewCancellationError(contractName string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeNothingToCancel,
		fmt.Sprintf("Contract %s is fully settled and can no longer be cancelled", contractName))
}

// NewStateTransitionError creates an error for an illegal contract state change
func NewStateTransitionError(contractName string, from, to State, reason string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidTransition,
		fmt.Sprintf("Contract %s: cannot transition from %s to %s: %s", contractName, from, to, reason))
}

// NewAllocationOverflowError creates an error for a payment that exceeds the
// total outstanding amount. The excess is surfaced in the message and must
// never be silently applied.
func NewAllocationOverflowError(contractName string, excess string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeAllocationOverflow,
		fmt.Sprintf("Contract %s: payment exceeds total outstanding by %s; excess reported, not applied", contractName, excess))
}
