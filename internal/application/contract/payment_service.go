package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/condoerp/backend/internal/domain/billing"
	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService handles payment submission and allocation over the
// installment schedule. Each submission runs under a per-contract lock and a
// single database transaction: the ledger entry, the invoice settlements and
// the schedule mutation commit or roll back together.
type PaymentService struct {
	txScope        TransactionScope
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	locks          *ContractLocks
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService. The lock registry must be
// the one shared with the other contract services so payment and accrual
// never mutate the same contract concurrently.
func NewPaymentService(
	txScope TransactionScope,
	idempotency shared.IdempotencyStore,
	idempotencyCfg shared.IdempotencyConfig,
	locks *ContractLocks,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		txScope:        txScope,
		idempotency:    idempotency,
		idempotencyCfg: idempotencyCfg,
		locks:          locks,
		logger:         logger,
	}
}

// idempotencyEnabled reports whether the submission should be deduplicated
func (s *PaymentService) idempotencyEnabled(key string) bool {
	return key != "" && s.idempotency != nil && s.idempotencyCfg.Enabled
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SubmitPayment records a payment and allocates it over the outstanding
// lines in due-date order. A repeated idempotency key returns the contract's
// current state without applying anything twice.
func (s *PaymentService) SubmitPayment(ctx context.Context, companyID, contractID uuid.UUID, req SubmitPaymentRequest) (*PaymentResultResponse, error) {
	return s.submit(ctx, companyID, contractID, req.IdempotencyKey, func(c *contract.Contract, paymentID uuid.UUID, feeResiduals map[uuid.UUID]decimal.Decimal) (*contract.AllocationResult, error) {
		return c.ApplyPayment(req.Amount, paymentID, feeResiduals)
	}, req.Amount, req.Reference, req.ReceivedOn)
}

// SubmitManualPayment records a payment and applies it to the caller-chosen
// lines, honoring the installment ordering rule.
func (s *PaymentService) SubmitManualPayment(ctx context.Context, companyID, contractID uuid.UUID, req SubmitManualPaymentRequest) (*PaymentResultResponse, error) {
	selections := make([]contract.ManualAllocation, 0, len(req.Allocations))
	total := decimal.Zero
	for _, a := range req.Allocations {
		selections = append(selections, contract.ManualAllocation{LineID: a.LineID, Amount: a.Amount})
		total = total.Add(a.Amount)
	}

	return s.submit(ctx, companyID, contractID, req.IdempotencyKey, func(c *contract.Contract, paymentID uuid.UUID, feeResiduals map[uuid.UUID]decimal.Decimal) (*contract.AllocationResult, error) {
		return c.ApplyManualPayment(selections, paymentID, feeResiduals)
	}, total, req.Reference, req.ReceivedOn)
}

type allocateFunc func(c *contract.Contract, paymentID uuid.UUID, feeResiduals map[uuid.UUID]decimal.Decimal) (*contract.AllocationResult, error)

func (s *PaymentService) submit(ctx context.Context, companyID, contractID uuid.UUID, idempotencyKey string, allocate allocateFunc, amount decimal.Decimal, reference string, receivedOn *time.Time) (*PaymentResultResponse, error) {
	if s.idempotencyEnabled(idempotencyKey) {
		processed, err := s.idempotency.IsProcessed(ctx, idempotencyKey)
		if err != nil {
			s.logger.Warn("idempotency lookup failed", zap.Error(err))
		} else if processed {
			return s.duplicateResult(ctx, companyID, contractID)
		}
	}

	unlock := s.locks.Lock(contractID)
	defer unlock()

	received := time.Now()
	if receivedOn != nil {
		received = *receivedOn
	}

	var (
		c       *contract.Contract
		payment *billing.Payment
		result  *contract.AllocationResult
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.ContractRepo().FindByIDForCompany(ctx, companyID, contractID)
		if err != nil {
			return err
		}
		if c == nil {
			return shared.ErrNotFound
		}

		feeResiduals, err := s.openFeeResiduals(ctx, repos, c.ID)
		if err != nil {
			return err
		}

		number, err := repos.PaymentRepo().GeneratePaymentNumber(ctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to generate payment number: %w", err)
		}

		payment, err = billing.NewPayment(companyID, number, c.ID, c.PartnerID, c.JournalID, amount, reference, received)
		if err != nil {
			return err
		}

		result, err = allocate(c, payment.ID, feeResiduals)
		if err != nil {
			return err
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		if err := s.settleInvoices(ctx, repos, c, payment, result); err != nil {
			return err
		}

		if err := repos.ContractRepo().SaveWithLock(ctx, c); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.idempotencyEnabled(idempotencyKey) {
		if _, err := s.idempotency.MarkProcessed(ctx, idempotencyKey, s.idempotencyCfg.TTL); err != nil {
			s.logger.Warn("failed to mark idempotency key", zap.Error(err))
		}
	}

	s.logger.Info("payment allocated",
		zap.String("contract", c.Name),
		zap.String("payment", payment.Number),
		zap.String("amount", amount.String()),
		zap.Int("lines_settled", result.LinesSettled()))

	s.publishEvents(ctx, payment)
	s.publishEvents(ctx, c)

	response := ToPaymentResultResponse(c, payment.ID, payment.Number, result)
	return &response, nil
}

// openFeeResiduals loads the residuals of the contract's open late-fee
// invoices, keyed by invoice ID.
func (s *PaymentService) openFeeResiduals(ctx context.Context, repos TransactionalRepositories, contractID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	invoices, err := repos.InvoiceRepo().FindOpenFeeInvoices(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee invoices: %w", err)
	}

	residuals := make(map[uuid.UUID]decimal.Decimal, len(invoices))
	for i := range invoices {
		residuals[invoices[i].ID] = invoices[i].Residual
	}
	return residuals, nil
}

// settleInvoices posts the allocation against the billing documents: fee
// portions against their fee invoices, principal against the primary
// contract invoice.
func (s *PaymentService) settleInvoices(ctx context.Context, repos TransactionalRepositories, c *contract.Contract, payment *billing.Payment, result *contract.AllocationResult) error {
	principal := decimal.Zero

	for _, app := range result.Applications {
		principal = principal.Add(app.PrincipalApplied)

		if app.FeeApplied.LessThanOrEqual(decimal.Zero) || app.FeeInvoiceID == nil {
			continue
		}
		inv, err := repos.InvoiceRepo().FindByID(ctx, *app.FeeInvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			continue
		}
		if err := inv.ApplySettlement(payment.ID, app.FeeApplied, payment.ReceivedOn, app.LineName); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		s.publishEvents(ctx, inv)
	}

	if principal.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	origin := billing.OriginContract
	open := billing.InvoiceStatusOpen
	primaries, err := repos.InvoiceRepo().FindByContract(ctx, c.ID, billing.InvoiceFilter{Origin: &origin, Status: &open})
	if err != nil {
		return err
	}
	if len(primaries) == 0 {
		return nil
	}

	primary := &primaries[0]
	applied := decimal.Min(principal, primary.Residual)
	if applied.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	if err := primary.ApplySettlement(payment.ID, applied, payment.ReceivedOn, ""); err != nil {
		return err
	}
	if err := repos.InvoiceRepo().SaveWithLock(ctx, primary); err != nil {
		return err
	}
	s.publishEvents(ctx, primary)

	return nil
}

// duplicateResult answers a repeated idempotency key with the contract's
// current state and no new allocation.
func (s *PaymentService) duplicateResult(ctx context.Context, companyID, contractID uuid.UUID) (*PaymentResultResponse, error) {
	var c *contract.Contract
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.ContractRepo().FindByIDForCompany(ctx, companyID, contractID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}

	return &PaymentResultResponse{
		ContractID:            c.ID,
		InstallmentsCompleted: c.InstallmentsCompleted,
		AmountDueTotal:        c.AmountDueTotal,
		Duplicate:             true,
	}, nil
}

func (s *PaymentService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range agg.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	agg.ClearDomainEvents()
}
