package contract

import (
	"context"

	"github.com/condoerp/backend/internal/domain/billing"
	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityHandler subscribes to contract and billing events and writes a
// structured activity trail. Operations stay observable without each
// service logging the same lifecycle twice.
type ActivityHandler struct {
	logger *zap.Logger
}

// NewActivityHandler creates a new activity trail handler
func NewActivityHandler(logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ActivityHandler) EventTypes() []string {
	return []string{
		contract.EventContractCreated,
		contract.EventContractConfirmed,
		contract.EventContractCompleted,
		contract.EventContractCancelled,
		contract.EventContractReset,
		contract.EventLateFeeAccrued,
		contract.EventPaymentAllocated,
		billing.EventInvoiceIssued,
		billing.EventInvoiceSettled,
		billing.EventInvoiceVoided,
		billing.EventPaymentRecorded,
	}
}

// Handle records the event in the activity trail
func (h *ActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("company_id", event.CompanyID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *contract.PaymentAllocatedEvent:
		fields = append(fields,
			zap.String("contract", e.ContractName),
			zap.String("amount", e.Amount.String()),
			zap.Int("lines_settled", e.LinesSettled),
			zap.Bool("fully_settled", e.FullySettled))
	case *contract.LateFeeAccruedEvent:
		fields = append(fields,
			zap.String("contract", e.ContractName),
			zap.String("line", e.LineName),
			zap.String("fee", e.Fee.String()))
	case *contract.ContractConfirmedEvent:
		fields = append(fields,
			zap.String("contract", e.ContractName),
			zap.String("amount_due", e.AmountDue.String()))
	case *contract.ContractCompletedEvent:
		fields = append(fields,
			zap.String("contract", e.ContractName),
			zap.String("amount_paid", e.AmountPaid.String()))
	}

	h.logger.Info("billing activity", fields...)
	return nil
}

var _ shared.EventHandler = (*ActivityHandler)(nil)
