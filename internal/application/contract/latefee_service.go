package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LateFeeService accrues late fees on overdue installments. The monthly run
// visits every confirmed contract with automatic accrual enabled; manual
// accrual targets a single line regardless of the flag.
type LateFeeService struct {
	txScope        TransactionScope
	invoicing      contract.InvoicingService
	settings       Settings
	locks          *ContractLocks
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLateFeeService creates a new LateFeeService. The lock registry must be
// the one shared with the other contract services so accrual and payment
// never mutate the same contract concurrently.
func NewLateFeeService(
	txScope TransactionScope,
	invoicing contract.InvoicingService,
	settings Settings,
	locks *ContractLocks,
	logger *zap.Logger,
) *LateFeeService {
	return &LateFeeService{
		txScope:   txScope,
		invoicing: invoicing,
		settings:  settings,
		locks:     locks,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LateFeeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RunAccrual assesses and applies late fees across the company's contracts
// with automatic accrual enabled. One contract failing does not stop the
// run; failures are logged and counted.
func (s *LateFeeService) RunAccrual(ctx context.Context, companyID uuid.UUID, asOf time.Time) (*AccrualRunResponse, error) {
	var contracts []contract.Contract
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		contracts, err = repos.ContractRepo().FindConfirmedWithAutoLateFee(ctx, companyID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts for accrual: %w", err)
	}

	response := &AccrualRunResponse{
		RunAt:            asOf,
		Accruals:         make([]LateFeeAccrualResponse, 0),
		TotalFeesAccrued: decimal.Zero,
	}

	for i := range contracts {
		accruals, err := s.accrueContract(ctx, companyID, contracts[i].ID, asOf)
		if err != nil {
			s.logger.Error("late fee accrual failed",
				zap.String("contract", contracts[i].Name),
				zap.Error(err))
			response.ContractsSkipped++
			continue
		}
		response.ContractsVisited++
		for _, a := range accruals {
			response.TotalFeesAccrued = response.TotalFeesAccrued.Add(a.Fee)
		}
		response.Accruals = append(response.Accruals, accruals...)
	}

	s.logger.Info("late fee accrual run finished",
		zap.Int("contracts_visited", response.ContractsVisited),
		zap.Int("contracts_skipped", response.ContractsSkipped),
		zap.Int("fees_accrued", len(response.Accruals)),
		zap.String("total", response.TotalFeesAccrued.String()))

	return response, nil
}

// accrueContract applies the assessed fees of one contract atomically.
func (s *LateFeeService) accrueContract(ctx context.Context, companyID, contractID uuid.UUID, asOf time.Time) ([]LateFeeAccrualResponse, error) {
	unlock := s.locks.Lock(contractID)
	defer unlock()

	var (
		c        *contract.Contract
		accruals []LateFeeAccrualResponse
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

		var checkErr error
		hasUnpaid := func(invoiceID uuid.UUID) bool {
			unpaid, err := s.invoicing.HasUnpaidFeeInvoice(ctx, invoiceID)
			if err != nil {
				checkErr = err
				// Treat a lookup failure as unpaid so the line is skipped
				// rather than double charged.
				return true
			}
			return unpaid
		}

		assessments := c.AssessLateFees(asOf, hasUnpaid)
		if checkErr != nil {
			return fmt.Errorf("failed to check fee invoices: %w", checkErr)
		}
		if len(assessments) == 0 {
			accruals = nil
			return nil
		}

		historyBefore := len(c.History)
		accruals = make([]LateFeeAccrualResponse, 0, len(assessments))

		for _, a := range assessments {
			invoiceID, err := s.invoicing.IssueInvoice(ctx, contract.InvoiceRequest{
				CompanyID:   companyID,
				ContractID:  c.ID,
				PartnerID:   c.PartnerID,
				JournalID:   s.settings.FeeJournalID,
				Kind:        contract.InvoiceKindLateFee,
				Description: fmt.Sprintf("Late fee %s", a.LineName),
				Amount:      a.Fee,
				DueDate:     asOf.AddDate(0, 0, 30),
			})
			if err != nil {
				return fmt.Errorf("failed to issue fee invoice: %w", err)
			}

			if err := c.ApplyLateFee(a.LineID, a.Fee, &invoiceID, asOf); err != nil {
				return err
			}

			accruals = append(accruals, LateFeeAccrualResponse{
				ContractID:   c.ID,
				ContractName: c.Name,
				LineID:       a.LineID,
				LineName:     a.LineName,
				DueDate:      a.DueDate,
				Base:         a.Base,
				Fee:          a.Fee,
				InvoiceID:    &invoiceID,
			})
		}

		if err := repos.HistoryRepo().Append(ctx, c.History[historyBefore:]); err != nil {
			return fmt.Errorf("failed to append charge history: %w", err)
		}

		return repos.ContractRepo().SaveWithLock(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	if c != nil {
		s.publishEvents(ctx, c)
	}

	return accruals, nil
}

// ApplyManualFee accrues a caller-specified fee on one line, fee invoice
// included. Used when an administrator charges outside the monthly run.
func (s *LateFeeService) ApplyManualFee(ctx context.Context, companyID, contractID uuid.UUID, req ManualLateFeeRequest) (*LateFeeAccrualResponse, error) {
	unlock := s.locks.Lock(contractID)
	defer unlock()

	var (
		c        *contract.Contract
		response *LateFeeAccrualResponse
	)

	now := time.Now()

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.ContractRepo().FindByIDForCompany(ctx, companyID, contractID)
		if err != nil {
			return err
		}
		if c == nil {
			return shared.ErrNotFound
		}

		line := c.LineByID(req.LineID)
		if line == nil {
			return shared.ErrNotFound
		}
		if line.State.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE", "Line "+line.Name+" no longer accepts charges")
		}

		// A still-unpaid fee invoice on the line is rewritten to the new
		// charge instead of stacking a second invoice on the same arrears.
		amend := false
		if line.LateFeeInvoiceID != nil {
			unpaid, err := s.invoicing.HasUnpaidFeeInvoice(ctx, *line.LateFeeInvoiceID)
			if err != nil {
				return fmt.Errorf("failed to check fee invoice: %w", err)
			}
			amend = unpaid
		}

		historyBefore := len(c.History)

		var invoiceID uuid.UUID
		if amend {
			invoiceID = *line.LateFeeInvoiceID
			if err := s.invoicing.AmendInvoiceAmount(ctx, invoiceID, req.Fee); err != nil {
				return fmt.Errorf("failed to amend fee invoice: %w", err)
			}
			if err := c.AmendLateFee(req.LineID, req.Fee, now); err != nil {
				return err
			}
		} else {
			invoiceID, err = s.invoicing.IssueInvoice(ctx, contract.InvoiceRequest{
				CompanyID:   companyID,
				ContractID:  c.ID,
				PartnerID:   c.PartnerID,
				JournalID:   s.settings.FeeJournalID,
				Kind:        contract.InvoiceKindLateFee,
				Description: fmt.Sprintf("Late fee %s", line.Name),
				Amount:      req.Fee,
				DueDate:     now.AddDate(0, 0, 30),
			})
			if err != nil {
				return fmt.Errorf("failed to issue fee invoice: %w", err)
			}
			if err := c.ApplyLateFee(req.LineID, req.Fee, &invoiceID, now); err != nil {
				return err
			}
		}

		if err := repos.HistoryRepo().Append(ctx, c.History[historyBefore:]); err != nil {
			return fmt.Errorf("failed to append charge history: %w", err)
		}

		if err := repos.ContractRepo().SaveWithLock(ctx, c); err != nil {
			return err
		}

		line = c.LineByID(req.LineID)
		response = &LateFeeAccrualResponse{
			ContractID:   c.ID,
			ContractName: c.Name,
			LineID:       line.ID,
			LineName:     line.Name,
			DueDate:      line.DueDate,
			Base:         line.AmountDue,
			Fee:          req.Fee,
			InvoiceID:    &invoiceID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)

	return response, nil
}

func (s *LateFeeService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
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
