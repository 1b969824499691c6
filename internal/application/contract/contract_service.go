package contract

import (
	"context"
	"fmt"

	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/condoerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Settings carries the accounting wiring the contract operations need
type Settings struct {
	// DefaultJournalID is the journal primary contract invoices post to
	DefaultJournalID uuid.UUID
	// SettlementJournalID is the journal MarkDone requires an invoice in
	SettlementJournalID uuid.UUID
	// FeeJournalID is the journal late-fee invoices post to
	FeeJournalID uuid.UUID
}

// ContractService handles contract lifecycle operations
type ContractService struct {
	contractRepo   contract.ContractRepository
	invoicing      contract.InvoicingService
	settings       Settings
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo contract.ContractRepository,
	invoicing contract.InvoicingService,
	settings Settings,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		invoicing:    invoicing,
		settings:     settings,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ContractService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents drains an aggregate's pending events onto the bus. Event
// handling is asynchronous; a publish failure is logged, not propagated.
func (s *ContractService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
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

// Create creates a new draft contract and builds its payment schedule
func (s *ContractService) Create(ctx context.Context, companyID uuid.UUID, req CreateContractRequest) (*ContractResponse, error) {
	name, err := s.contractRepo.GenerateContractName(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate contract name: %w", err)
	}

	journalID := s.settings.DefaultJournalID
	if req.JournalID != nil {
		journalID = *req.JournalID
	}

	c, err := contract.NewContract(contract.NewContractParams{
		CompanyID:            companyID,
		Name:                 name,
		PartnerID:            req.PartnerID,
		PartnerName:          req.PartnerName,
		ProjectName:          req.ProjectName,
		ApartmentNumber:      req.ApartmentNumber,
		ApartmentAmountTotal: req.ApartmentAmountTotal,
		InceptiveAmount:      req.InceptiveAmount,
		SeparationAmount:     req.SeparationAmount,
		InvoiceAdjustment:    req.InvoiceAdjustment,
		PeriodCount:          req.PeriodCount,
		IntervalMonths:       req.IntervalMonths,
		StartDate:            req.StartDate,
		JournalID:            journalID,
		Currency:             valueobject.Currency(req.Currency),
		AutoLateFee:          req.AutoLateFee,
		LateFeeRate:          req.LateFeeRate,
	})
	if err != nil {
		return nil, err
	}

	if err := c.BuildSchedule(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}

	s.logger.Info("contract created",
		zap.String("contract", c.Name),
		zap.String("partner", c.PartnerName),
		zap.Int("lines", len(c.Lines)))

	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// Get returns a contract by ID
func (s *ContractService) Get(ctx context.Context, companyID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}

	response := ToContractResponse(c)
	return &response, nil
}

// List returns contracts for a company with filtering and pagination
func (s *ContractService) List(ctx context.Context, companyID uuid.UUID, filter ContractListFilter) (*shared.Paginated[ContractResponse], error) {
	domainFilter := toDomainFilter(filter)

	contracts, err := s.contractRepo.FindAllForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.contractRepo.CountForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]ContractResponse, 0, len(contracts))
	for i := range contracts {
		items = append(items, ToContractResponse(&contracts[i]))
	}

	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update updates a draft contract and rebuilds its schedule
func (s *ContractService) Update(ctx context.Context, companyID, contractID uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}
	if c.State != contract.StateDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Only a draft contract can be updated")
	}

	applyContractUpdate(c, req)
	c.InitialTotal = c.InceptiveAmount.Sub(c.SeparationAmount)

	if err := c.BuildSchedule(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// RebuildSchedule recomputes the amortization schedule from the current
// contract terms. Refused once any payment has been applied.
func (s *ContractService) RebuildSchedule(ctx context.Context, companyID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}

	if err := c.BuildSchedule(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// Confirm confirms a draft contract and issues its primary invoice
func (s *ContractService) Confirm(ctx context.Context, companyID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}

	if err := c.Confirm(); err != nil {
		return nil, err
	}

	if _, err := s.invoicing.IssueInvoice(ctx, contract.InvoiceRequest{
		CompanyID:   companyID,
		ContractID:  c.ID,
		PartnerID:   c.PartnerID,
		JournalID:   c.JournalID,
		Kind:        contract.InvoiceKindPrimary,
		Description: fmt.Sprintf("Contract %s", c.Name),
		Amount:      c.AmountDueTotal,
		DueDate:     c.LastDueDate(),
	}); err != nil {
		return nil, fmt.Errorf("failed to issue contract invoice: %w", err)
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract confirmed",
		zap.String("contract", c.Name),
		zap.String("amount_due", c.AmountDueTotal.String()))

	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// MarkDone completes a confirmed contract once every installment is settled
func (s *ContractService) MarkDone(ctx context.Context, companyID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}

	hasSettlement, err := s.invoicing.HasInvoiceInJournal(ctx, c.ID, s.settings.SettlementJournalID)
	if err != nil {
		return nil, fmt.Errorf("failed to check settlement journal: %w", err)
	}

	if err := c.MarkDone(hasSettlement); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract completed", zap.String("contract", c.Name))

	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// Cancel cancels a contract and voids its open invoices
func (s *ContractService) Cancel(ctx context.Context, companyID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}

	if err := c.Cancel(); err != nil {
		return nil, err
	}

	for i := range c.Lines {
		line := &c.Lines[i]
		if line.LateFeeInvoiceID == nil {
			continue
		}
		unpaid, err := s.invoicing.HasUnpaidFeeInvoice(ctx, *line.LateFeeInvoiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to check fee invoice: %w", err)
		}
		if unpaid {
			if err := s.invoicing.VoidInvoice(ctx, *line.LateFeeInvoiceID); err != nil {
				return nil, fmt.Errorf("failed to void fee invoice: %w", err)
			}
		}
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract cancelled", zap.String("contract", c.Name))

	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// ResetToDraft reopens a contract that has no payments yet
func (s *ContractService) ResetToDraft(ctx context.Context, companyID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}

	if err := c.ResetToDraft(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// Delete removes a draft contract
func (s *ContractService) Delete(ctx context.Context, companyID, contractID uuid.UUID) error {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return err
	}
	if c == nil {
		return shared.ErrNotFound
	}
	if c.State != contract.StateDraft {
		return shared.NewDomainError("INVALID_STATE", "Only a draft contract can be deleted")
	}

	return s.contractRepo.Delete(ctx, contractID)
}

func applyContractUpdate(c *contract.Contract, req UpdateContractRequest) {
	if req.PartnerName != nil {
		c.PartnerName = *req.PartnerName
	}
	if req.ProjectName != nil {
		c.ProjectName = *req.ProjectName
	}
	if req.ApartmentNumber != nil {
		c.ApartmentNumber = *req.ApartmentNumber
	}
	if req.ApartmentAmountTotal != nil {
		c.ApartmentAmountTotal = *req.ApartmentAmountTotal
	}
	if req.InceptiveAmount != nil {
		c.InceptiveAmount = *req.InceptiveAmount
	}
	if req.SeparationAmount != nil {
		c.SeparationAmount = *req.SeparationAmount
	}
	if req.InvoiceAdjustment != nil {
		c.InvoiceAdjustment = *req.InvoiceAdjustment
	}
	if req.PeriodCount != nil {
		c.PeriodCount = *req.PeriodCount
	}
	if req.IntervalMonths != nil {
		c.IntervalMonths = *req.IntervalMonths
	}
	if req.StartDate != nil {
		c.StartDate = *req.StartDate
	}
	if req.AutoLateFee != nil {
		c.AutoLateFee = *req.AutoLateFee
	}
	if req.LateFeeRate != nil {
		c.LateFeeRate = *req.LateFeeRate
	}
}

func toDomainFilter(f ContractListFilter) contract.ContractFilter {
	domainFilter := contract.ContractFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
		},
		PartnerID:   f.PartnerID,
		ProjectName: f.ProjectName,
		StartFrom:   f.StartFrom,
		StartTo:     f.StartTo,
	}
	if f.Search != "" {
		domainFilter.NameLike = &f.Search
	}
	if f.State != nil {
		st := contract.State(*f.State)
		domainFilter.State = &st
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = 20
	}
	return domainFilter
}
