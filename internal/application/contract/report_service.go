package contract

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/condoerp/backend/internal/domain/billing"
	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportService builds read models over contracts, billing documents and
// charge history.
type ReportService struct {
	contractRepo contract.ContractRepository
	historyRepo  contract.ChargeHistoryRepository
	invoiceRepo  billing.InvoiceRepository
	paymentRepo  billing.PaymentRepository
	logger       *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	contractRepo contract.ContractRepository,
	historyRepo contract.ChargeHistoryRepository,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		contractRepo: contractRepo,
		historyRepo:  historyRepo,
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		logger:       logger,
	}
}

// ChargeReport rolls up accrued late fees per contract over an optional
// date range.
func (s *ReportService) ChargeReport(ctx context.Context, companyID uuid.UUID, from, to *time.Time) (*ChargeReportResponse, error) {
	filter := contract.ChargeRecordFilter{From: from, To: to}
	records, err := s.historyRepo.FindForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge history: %w", err)
	}

	byContract := make(map[uuid.UUID]*ChargeReportRow)
	for i := range records {
		r := &records[i]
		row, ok := byContract[r.ContractID]
		if !ok {
			row = &ChargeReportRow{ContractID: r.ContractID, TotalCharged: decimal.Zero}
			byContract[r.ContractID] = row
		}
		row.ChargeCount++
		row.TotalCharged = row.TotalCharged.Add(r.Charge)
	}

	response := &ChargeReportResponse{
		From:         from,
		To:           to,
		Rows:         make([]ChargeReportRow, 0, len(byContract)),
		TotalCharged: decimal.Zero,
	}

	for contractID, row := range byContract {
		c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
		if err != nil {
			return nil, fmt.Errorf("failed to load contract %s: %w", contractID, err)
		}
		if c != nil {
			row.ContractName = c.Name
			row.PartnerName = c.PartnerName
			row.ProjectName = c.ProjectName
			row.ApartmentNumber = c.ApartmentNumber
			for _, line := range c.OutstandingLines() {
				row.OutstandingFees = row.OutstandingFees.Add(line.LatePayment)
			}
		}
		response.TotalCharged = response.TotalCharged.Add(row.TotalCharged)
		response.Rows = append(response.Rows, *row)
	}

	sort.Slice(response.Rows, func(i, j int) bool {
		return response.Rows[i].ContractName < response.Rows[j].ContractName
	})

	return response, nil
}

// Statement assembles the full financial picture of one contract: schedule,
// invoices, payments and accrued charges.
func (s *ReportService) Statement(ctx context.Context, companyID, contractID uuid.UUID) (*ContractStatementResponse, error) {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}

	invoices, err := s.invoiceRepo.FindByContract(ctx, contractID, billing.InvoiceFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	payments, err := s.paymentRepo.FindByContract(ctx, contractID, billing.PaymentFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	history, err := s.historyRepo.FindByContract(ctx, contractID, contract.ChargeRecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load charge history: %w", err)
	}

	response := &ContractStatementResponse{
		Contract: ToContractResponse(c),
		Invoices: make([]InvoiceResponse, 0, len(invoices)),
		Payments: make([]PaymentResponse, 0, len(payments)),
		History:  make([]ChargeRecordResponse, 0, len(history)),
	}
	for i := range invoices {
		response.Invoices = append(response.Invoices, ToInvoiceResponse(&invoices[i]))
	}
	for i := range payments {
		response.Payments = append(response.Payments, ToPaymentResponse(&payments[i]))
	}
	for i := range history {
		response.History = append(response.History, ToChargeRecordResponse(&history[i]))
	}

	return response, nil
}

// ChargeHistory lists the charge records of a contract
func (s *ReportService) ChargeHistory(ctx context.Context, companyID, contractID uuid.UUID, filter contract.ChargeRecordFilter) ([]ChargeRecordResponse, error) {
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.ErrNotFound
	}

	records, err := s.historyRepo.FindByContract(ctx, contractID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge history: %w", err)
	}

	responses := make([]ChargeRecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, ToChargeRecordResponse(&records[i]))
	}
	return responses, nil
}
