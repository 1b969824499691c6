package models

import (
	"time"

	"github.com/condoerp/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// The settlement records live inside the row as JSONB; they are value
// objects and never queried on their own.
type InvoiceModel struct {
	CompanyAggregateModel
	Number      string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_company_number,priority:2"`
	Origin      billing.InvoiceOrigin `gorm:"type:varchar(20);not null;index"`
	ContractID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	LineID      *uuid.UUID            `gorm:"type:uuid;index"`
	PartnerID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	JournalID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	Description string                `gorm:"type:varchar(500)"`

	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Residual    decimal.Decimal `gorm:"type:decimal(18,4);not null;index"`

	IssuedOn time.Time `gorm:"not null"`
	DueDate  time.Time `gorm:"not null;index"`

	Status      billing.InvoiceStatus     `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Settlements billing.SettlementRecords `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		Number:      m.Number,
		Origin:      m.Origin,
		ContractID:  m.ContractID,
		LineID:      m.LineID,
		PartnerID:   m.PartnerID,
		JournalID:   m.JournalID,
		Description: m.Description,
		TotalAmount: m.TotalAmount,
		Residual:    m.Residual,
		IssuedOn:    m.IssuedOn,
		DueDate:     m.DueDate,
		Status:      m.Status,
		Settlements: m.Settlements,
	}
	m.PopulateCompanyAggregateRoot(&inv.CompanyAggregateRoot)
	if inv.Settlements == nil {
		inv.Settlements = make(billing.SettlementRecords, 0)
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainCompanyAggregateRoot(inv.CompanyAggregateRoot)
	m.Number = inv.Number
	m.Origin = inv.Origin
	m.ContractID = inv.ContractID
	m.LineID = inv.LineID
	m.PartnerID = inv.PartnerID
	m.JournalID = inv.JournalID
	m.Description = inv.Description
	m.TotalAmount = inv.TotalAmount
	m.Residual = inv.Residual
	m.IssuedOn = inv.IssuedOn
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.Settlements = inv.Settlements
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	CompanyAggregateModel
	Number     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_company_number,priority:2"`
	ContractID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartnerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	JournalID  uuid.UUID       `gorm:"type:uuid;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reference  string          `gorm:"type:varchar(100)"`
	ReceivedOn time.Time       `gorm:"not null;index"`
	Status     billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'POSTED';index"`

	ReversedAt     *time.Time
	ReversalReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment aggregate.
func (m *PaymentModel) ToDomain() *billing.Payment {
	p := &billing.Payment{
		Number:         m.Number,
		ContractID:     m.ContractID,
		PartnerID:      m.PartnerID,
		JournalID:      m.JournalID,
		Amount:         m.Amount,
		Reference:      m.Reference,
		ReceivedOn:     m.ReceivedOn,
		Status:         m.Status,
		ReversedAt:     m.ReversedAt,
		ReversalReason: m.ReversalReason,
	}
	m.PopulateCompanyAggregateRoot(&p.CompanyAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment aggregate.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	m.Number = p.Number
	m.ContractID = p.ContractID
	m.PartnerID = p.PartnerID
	m.JournalID = p.JournalID
	m.Amount = p.Amount
	m.Reference = p.Reference
	m.ReceivedOn = p.ReceivedOn
	m.Status = p.Status
	m.ReversedAt = p.ReversedAt
	m.ReversalReason = p.ReversalReason
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
