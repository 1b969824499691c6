package contract

import (
	"time"

	"github.com/condoerp/backend/internal/domain/billing"
	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Contract DTOs ====================

// CreateContractRequest represents a request to create a contract
type CreateContractRequest struct {
	PartnerID            uuid.UUID       `json:"partner_id" binding:"required"`
	PartnerName          string          `json:"partner_name" binding:"required,min=1,max=200"`
	ProjectName          string          `json:"project_name" binding:"required,min=1,max=200"`
	ApartmentNumber      string          `json:"apartment_number" binding:"required,min=1,max=50"`
	ApartmentAmountTotal decimal.Decimal `json:"apartment_amount_total"`
	InceptiveAmount      decimal.Decimal `json:"inceptive_amount" binding:"required"`
	SeparationAmount     decimal.Decimal `json:"separation_amount" binding:"required"`
	InvoiceAdjustment    decimal.Decimal `json:"invoice_adjustment"`
	PeriodCount          int             `json:"period_count" binding:"required,min=1"`
	IntervalMonths       int             `json:"interval_months" binding:"required,min=1"`
	StartDate            time.Time       `json:"start_date" binding:"required"`
	JournalID            *uuid.UUID      `json:"journal_id"`
	Currency             string          `json:"currency"`
	AutoLateFee          bool            `json:"auto_late_fee"`
	LateFeeRate          decimal.Decimal `json:"late_fee_rate"`
}

// UpdateContractRequest represents a request to update a draft contract
type UpdateContractRequest struct {
	PartnerName          *string          `json:"partner_name"`
	ProjectName          *string          `json:"project_name"`
	ApartmentNumber      *string          `json:"apartment_number"`
	ApartmentAmountTotal *decimal.Decimal `json:"apartment_amount_total"`
	InceptiveAmount      *decimal.Decimal `json:"inceptive_amount"`
	SeparationAmount     *decimal.Decimal `json:"separation_amount"`
	InvoiceAdjustment    *decimal.Decimal `json:"invoice_adjustment"`
	PeriodCount          *int             `json:"period_count"`
	IntervalMonths       *int             `json:"interval_months"`
	StartDate            *time.Time       `json:"start_date"`
	AutoLateFee          *bool            `json:"auto_late_fee"`
	LateFeeRate          *decimal.Decimal `json:"late_fee_rate"`
}

// ContractListFilter represents filter options for contract lists
type ContractListFilter struct {
	Search      string     `form:"search"`
	PartnerID   *uuid.UUID `form:"partner_id"`
	State       *string    `form:"state"`
	ProjectName *string    `form:"project_name"`
	StartFrom   *time.Time `form:"start_from"`
	StartTo     *time.Time `form:"start_to"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InstallmentLineResponse represents an installment line in API responses
type InstallmentLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	Sequence         int             `json:"sequence"`
	Name             string          `json:"name"`
	DueDate          time.Time       `json:"due_date"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	ChargeAmount     decimal.Decimal `json:"charge_amount"`
	LatePayment      decimal.Decimal `json:"late_payment"`
	AmountSubtotal   decimal.Decimal `json:"amount_subtotal"`
	PartialPayment   decimal.Decimal `json:"partial_payment"`
	AutoPayment      decimal.Decimal `json:"auto_payment"`
	LeftPayment      decimal.Decimal `json:"left_payment"`
	State            string          `json:"state"`
	IsSeparation     bool            `json:"is_separation"`
	PaymentID        *uuid.UUID      `json:"payment_id,omitempty"`
	LateFeeInvoiceID *uuid.UUID      `json:"late_fee_invoice_id,omitempty"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID                    uuid.UUID                 `json:"id"`
	CompanyID             uuid.UUID                 `json:"company_id"`
	Name                  string                    `json:"name"`
	PartnerID             uuid.UUID                 `json:"partner_id"`
	PartnerName           string                    `json:"partner_name"`
	ProjectName           string                    `json:"project_name"`
	ApartmentNumber       string                    `json:"apartment_number"`
	ApartmentAmountTotal  decimal.Decimal           `json:"apartment_amount_total"`
	InceptiveAmount       decimal.Decimal           `json:"inceptive_amount"`
	SeparationAmount      decimal.Decimal           `json:"separation_amount"`
	InitialTotal          decimal.Decimal           `json:"initial_total"`
	InvoiceAdjustment     decimal.Decimal           `json:"invoice_adjustment"`
	PeriodCount           int                       `json:"period_count"`
	IntervalMonths        int                       `json:"interval_months"`
	StartDate             time.Time                 `json:"start_date"`
	JournalID             uuid.UUID                 `json:"journal_id"`
	Currency              string                    `json:"currency"`
	AutoLateFee           bool                      `json:"auto_late_fee"`
	LateFeeRate           decimal.Decimal           `json:"late_fee_rate"`
	State                 string                    `json:"state"`
	InstallmentsCompleted bool                      `json:"installments_completed"`
	AmountPaid            decimal.Decimal           `json:"amount_paid"`
	AmountTotal           decimal.Decimal           `json:"amount_total"`
	AmountCharge          decimal.Decimal           `json:"amount_charge"`
	AmountDueTotal        decimal.Decimal           `json:"amount_due_total"`
	Lines                 []InstallmentLineResponse `json:"lines"`
	Version               int                       `json:"version"`
	CreatedAt             time.Time                 `json:"created_at"`
	UpdatedAt             time.Time                 `json:"updated_at"`
}

// ToInstallmentLineResponse converts a domain line to its response form
func ToInstallmentLineResponse(l *contract.InstallmentLine) InstallmentLineResponse {
	return InstallmentLineResponse{
		ID:               l.ID,
		Sequence:         l.Sequence,
		Name:             l.Name,
		DueDate:          l.DueDate,
		AmountDue:        l.AmountDue,
		ChargeAmount:     l.ChargeAmount,
		LatePayment:      l.LatePayment,
		AmountSubtotal:   l.AmountSubtotal,
		PartialPayment:   l.PartialPayment,
		AutoPayment:      l.AutoPayment,
		LeftPayment:      l.LeftPayment,
		State:            l.State.String(),
		IsSeparation:     l.IsSeparation(),
		PaymentID:        l.PaymentID,
		LateFeeInvoiceID: l.LateFeeInvoiceID,
	}
}

// ToContractResponse converts a domain contract to its response form
func ToContractResponse(c *contract.Contract) ContractResponse {
	lines := make([]InstallmentLineResponse, 0, len(c.Lines))
	for i := range c.Lines {
		lines = append(lines, ToInstallmentLineResponse(&c.Lines[i]))
	}

	return ContractResponse{
		ID:                    c.ID,
		CompanyID:             c.CompanyID,
		Name:                  c.Name,
		PartnerID:             c.PartnerID,
		PartnerName:           c.PartnerName,
		ProjectName:           c.ProjectName,
		ApartmentNumber:       c.ApartmentNumber,
		ApartmentAmountTotal:  c.ApartmentAmountTotal,
		InceptiveAmount:       c.InceptiveAmount,
		SeparationAmount:      c.SeparationAmount,
		InitialTotal:          c.InitialTotal,
		InvoiceAdjustment:     c.InvoiceAdjustment,
		PeriodCount:           c.PeriodCount,
		IntervalMonths:        c.IntervalMonths,
		StartDate:             c.StartDate,
		JournalID:             c.JournalID,
		Currency:              string(c.Currency),
		AutoLateFee:           c.AutoLateFee,
		LateFeeRate:           c.LateFeeRate,
		State:                 c.State.String(),
		InstallmentsCompleted: c.InstallmentsCompleted,
		AmountPaid:            c.AmountPaid,
		AmountTotal:           c.AmountTotal,
		AmountCharge:          c.AmountCharge,
		AmountDueTotal:        c.AmountDueTotal,
		Lines:                 lines,
		Version:               c.Version,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

// ==================== Payment DTOs ====================

// SubmitPaymentRequest represents an automatic payment submission
type SubmitPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Reference      string          `json:"reference" binding:"max=100"`
	ReceivedOn     *time.Time      `json:"received_on"`
	IdempotencyKey string          `json:"idempotency_key" binding:"max=128"`
}

// ManualAllocationInput selects a line and an amount
type ManualAllocationInput struct {
	LineID uuid.UUID       `json:"line_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SubmitManualPaymentRequest represents a manual payment submission
type SubmitManualPaymentRequest struct {
	Allocations    []ManualAllocationInput `json:"allocations" binding:"required,min=1"`
	Reference      string                  `json:"reference" binding:"max=100"`
	ReceivedOn     *time.Time              `json:"received_on"`
	IdempotencyKey string                  `json:"idempotency_key" binding:"max=128"`
}

// LineApplicationResponse describes how much of a payment landed on one line
type LineApplicationResponse struct {
	LineID           uuid.UUID       `json:"line_id"`
	LineName         string          `json:"line_name"`
	Sequence         int             `json:"sequence"`
	FeeApplied       decimal.Decimal `json:"fee_applied"`
	PrincipalApplied decimal.Decimal `json:"principal_applied"`
	Settled          bool            `json:"settled"`
}

// PaymentResultResponse represents the outcome of a payment submission
type PaymentResultResponse struct {
	PaymentID             uuid.UUID                 `json:"payment_id"`
	PaymentNumber         string                    `json:"payment_number"`
	ContractID            uuid.UUID                 `json:"contract_id"`
	AmountApplied         decimal.Decimal           `json:"amount_applied"`
	Applications          []LineApplicationResponse `json:"applications"`
	InstallmentsCompleted bool                      `json:"installments_completed"`
	AmountDueTotal        decimal.Decimal           `json:"amount_due_total"`
	Duplicate             bool                      `json:"duplicate,omitempty"`
}

// ToPaymentResultResponse converts an allocation result to its response form
func ToPaymentResultResponse(c *contract.Contract, paymentID uuid.UUID, paymentNumber string, result *contract.AllocationResult) PaymentResultResponse {
	apps := make([]LineApplicationResponse, 0, len(result.Applications))
	for _, a := range result.Applications {
		apps = append(apps, LineApplicationResponse{
			LineID:           a.LineID,
			LineName:         a.LineName,
			Sequence:         a.Sequence,
			FeeApplied:       a.FeeApplied,
			PrincipalApplied: a.PrincipalApplied,
			Settled:          a.Settled,
		})
	}

	return PaymentResultResponse{
		PaymentID:             paymentID,
		PaymentNumber:         paymentNumber,
		ContractID:            c.ID,
		AmountApplied:         result.TotalApplied(),
		Applications:          apps,
		InstallmentsCompleted: c.InstallmentsCompleted,
		AmountDueTotal:        c.AmountDueTotal,
	}
}

// ==================== Late Fee DTOs ====================

// ManualLateFeeRequest represents a manually applied late fee
type ManualLateFeeRequest struct {
	LineID uuid.UUID       `json:"line_id" binding:"required"`
	Fee    decimal.Decimal `json:"fee" binding:"required"`
}

// LateFeeAccrualResponse reports one accrual produced by a run
type LateFeeAccrualResponse struct {
	ContractID   uuid.UUID       `json:"contract_id"`
	ContractName string          `json:"contract_name"`
	LineID       uuid.UUID       `json:"line_id"`
	LineName     string          `json:"line_name"`
	DueDate      time.Time       `json:"due_date"`
	Base         decimal.Decimal `json:"base"`
	Fee          decimal.Decimal `json:"fee"`
	InvoiceID    *uuid.UUID      `json:"invoice_id,omitempty"`
}

// AccrualRunResponse summarizes a late-fee accrual run
type AccrualRunResponse struct {
	RunAt             time.Time                `json:"run_at"`
	ContractsVisited  int                      `json:"contracts_visited"`
	Accruals          []LateFeeAccrualResponse `json:"accruals"`
	TotalFeesAccrued  decimal.Decimal          `json:"total_fees_accrued"`
	ContractsSkipped  int                      `json:"contracts_skipped"`
}

// ==================== Report DTOs ====================

// ChargeRecordResponse represents a charge history entry
type ChargeRecordResponse struct {
	ID         uuid.UUID       `json:"id"`
	ContractID uuid.UUID       `json:"contract_id"`
	LineID     uuid.UUID       `json:"line_id"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	Charge     decimal.Decimal `json:"charge"`
	AccruedOn  time.Time       `json:"accrued_on"`
}

// ToChargeRecordResponse converts a charge record to its response form
func ToChargeRecordResponse(r *contract.ChargeRecord) ChargeRecordResponse {
	return ChargeRecordResponse{
		ID:         r.ID,
		ContractID: r.ContractID,
		LineID:     r.LineID,
		AmountDue:  r.AmountDue,
		Charge:     r.Charge,
		AccruedOn:  r.AccruedOn,
	}
}

// ChargeReportRow aggregates the accrued charges of one contract
type ChargeReportRow struct {
	ContractID      uuid.UUID       `json:"contract_id"`
	ContractName    string          `json:"contract_name"`
	PartnerName     string          `json:"partner_name"`
	ProjectName     string          `json:"project_name"`
	ApartmentNumber string          `json:"apartment_number"`
	ChargeCount     int             `json:"charge_count"`
	TotalCharged    decimal.Decimal `json:"total_charged"`
	OutstandingFees decimal.Decimal `json:"outstanding_fees"`
}

// ChargeReportResponse is the company-wide late fee report
type ChargeReportResponse struct {
	From         *time.Time        `json:"from,omitempty"`
	To           *time.Time        `json:"to,omitempty"`
	Rows         []ChargeReportRow `json:"rows"`
	TotalCharged decimal.Decimal   `json:"total_charged"`
}

// ContractStatementResponse is the per-contract statement with documents
type ContractStatementResponse struct {
	Contract ContractResponse       `json:"contract"`
	Invoices []InvoiceResponse      `json:"invoices"`
	Payments []PaymentResponse      `json:"payments"`
	History  []ChargeRecordResponse `json:"history"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	Origin      string          `json:"origin"`
	ContractID  uuid.UUID       `json:"contract_id"`
	LineID      *uuid.UUID      `json:"line_id,omitempty"`
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Residual    decimal.Decimal `json:"residual"`
	IssuedOn    time.Time       `json:"issued_on"`
	DueDate     time.Time       `json:"due_date"`
	Status      string          `json:"status"`
}

// ToInvoiceResponse converts an invoice to its response form
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		Origin:      string(inv.Origin),
		ContractID:  inv.ContractID,
		LineID:      inv.LineID,
		Description: inv.Description,
		TotalAmount: inv.TotalAmount,
		Residual:    inv.Residual,
		IssuedOn:    inv.IssuedOn,
		DueDate:     inv.DueDate,
		Status:      inv.Status.String(),
	}
}

// PaymentResponse represents a ledger payment in API responses
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	ContractID uuid.UUID       `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference,omitempty"`
	ReceivedOn time.Time       `json:"received_on"`
	Status     string          `json:"status"`
}

// ToPaymentResponse converts a payment to its response form
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		Number:     p.Number,
		ContractID: p.ContractID,
		Amount:     p.Amount,
		Reference:  p.Reference,
		ReceivedOn: p.ReceivedOn,
		Status:     p.Status.String(),
	}
}

// ==================== Reminder DTOs ====================

// ReminderRunResponse summarizes a reminder run
type ReminderRunResponse struct {
	RunAt         time.Time `json:"run_at"`
	NoticesSent   int       `json:"notices_sent"`
	NoticesFailed int       `json:"notices_failed"`
}
