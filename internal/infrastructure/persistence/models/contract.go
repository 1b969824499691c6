package models

import (
	"time"

	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the Contract aggregate root.
// The installment lines are owned by the contract and saved through it.
type ContractModel struct {
	CompanyAggregateModel
	Name            string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_contract_company_name,priority:2"`
	PartnerID       uuid.UUID `gorm:"type:uuid;not null;index"`
	PartnerName     string    `gorm:"type:varchar(200);not null"`
	ProjectName     string    `gorm:"type:varchar(200);index"`
	ApartmentNumber string    `gorm:"type:varchar(50)"`

	ApartmentAmountTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InceptiveAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SeparationAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InitialTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InvoiceAdjustment    decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	PeriodCount    int       `gorm:"not null"`
	IntervalMonths int       `gorm:"not null"`
	StartDate      time.Time `gorm:"not null;index"`

	JournalID   uuid.UUID            `gorm:"type:uuid;not null"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null;default:'DOP'"`
	AutoLateFee bool                 `gorm:"not null;default:false;index"`
	LateFeeRate decimal.Decimal      `gorm:"type:decimal(8,4);not null"`

	State                 contract.State `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	InstallmentsCompleted bool           `gorm:"not null;default:false"`

	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountCharge   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountDueTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	Lines []InstallmentLineModel `gorm:"foreignKey:ContractID;references:ID"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract aggregate.
// The charge history is loaded separately through its own repository.
func (m *ContractModel) ToDomain() *contract.Contract {
	c := &contract.Contract{
		Name:                  m.Name,
		PartnerID:             m.PartnerID,
		PartnerName:           m.PartnerName,
		ProjectName:           m.ProjectName,
		ApartmentNumber:       m.ApartmentNumber,
		ApartmentAmountTotal:  m.ApartmentAmountTotal,
		InceptiveAmount:       m.InceptiveAmount,
		SeparationAmount:      m.SeparationAmount,
		InitialTotal:          m.InitialTotal,
		InvoiceAdjustment:     m.InvoiceAdjustment,
		PeriodCount:           m.PeriodCount,
		IntervalMonths:        m.IntervalMonths,
		StartDate:             m.StartDate,
		JournalID:             m.JournalID,
		Currency:              m.Currency,
		AutoLateFee:           m.AutoLateFee,
		LateFeeRate:           m.LateFeeRate,
		State:                 m.State,
		InstallmentsCompleted: m.InstallmentsCompleted,
		AmountPaid:            m.AmountPaid,
		AmountTotal:           m.AmountTotal,
		AmountCharge:          m.AmountCharge,
		AmountDueTotal:        m.AmountDueTotal,
		Lines:                 make([]contract.InstallmentLine, len(m.Lines)),
		History:               make([]contract.ChargeRecord, 0),
	}
	m.PopulateCompanyAggregateRoot(&c.CompanyAggregateRoot)
	for i := range m.Lines {
		c.Lines[i] = *m.Lines[i].ToDomain()
	}
	return c
}

// FromDomain populates the persistence model from a domain Contract aggregate.
func (m *ContractModel) FromDomain(c *contract.Contract) {
	m.FromDomainCompanyAggregateRoot(c.CompanyAggregateRoot)
	m.Name = c.Name
	m.PartnerID = c.PartnerID
	m.PartnerName = c.PartnerName
	m.ProjectName = c.ProjectName
	m.ApartmentNumber = c.ApartmentNumber
	m.ApartmentAmountTotal = c.ApartmentAmountTotal
	m.InceptiveAmount = c.InceptiveAmount
	m.SeparationAmount = c.SeparationAmount
	m.InitialTotal = c.InitialTotal
	m.InvoiceAdjustment = c.InvoiceAdjustment
	m.PeriodCount = c.PeriodCount
	m.IntervalMonths = c.IntervalMonths
	m.StartDate = c.StartDate
	m.JournalID = c.JournalID
	m.Currency = c.Currency
	m.AutoLateFee = c.AutoLateFee
	m.LateFeeRate = c.LateFeeRate
	m.State = c.State
	m.InstallmentsCompleted = c.InstallmentsCompleted
	m.AmountPaid = c.AmountPaid
	m.AmountTotal = c.AmountTotal
	m.AmountCharge = c.AmountCharge
	m.AmountDueTotal = c.AmountDueTotal
	m.Lines = make([]InstallmentLineModel, len(c.Lines))
	for i := range c.Lines {
		m.Lines[i].FromDomain(&c.Lines[i])
	}
}

// ContractModelFromDomain creates a new persistence model from a domain Contract.
func ContractModelFromDomain(c *contract.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}

// InstallmentLineModel is the persistence model for an installment line.
type InstallmentLineModel struct {
	BaseModel
	ContractID uuid.UUID `gorm:"type:uuid;not null;index"`
	Sequence   int       `gorm:"not null;uniqueIndex:idx_line_contract_sequence,priority:2"`
	Name       string    `gorm:"type:varchar(60);not null"`
	DueDate    time.Time `gorm:"not null;index"`

	AmountDue      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ChargeAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LatePayment    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountSubtotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PartialPayment decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AutoPayment    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LeftPayment    decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	State            contract.LineState `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	PaymentID        *uuid.UUID         `gorm:"type:uuid"`
	LateFeeInvoiceID *uuid.UUID         `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InstallmentLineModel) TableName() string {
	return "installment_lines"
}

// ToDomain converts the persistence model to a domain InstallmentLine entity.
func (m *InstallmentLineModel) ToDomain() *contract.InstallmentLine {
	return &contract.InstallmentLine{
		BaseEntity:       m.BaseModel.ToDomain(),
		ContractID:       m.ContractID,
		Sequence:         m.Sequence,
		Name:             m.Name,
		DueDate:          m.DueDate,
		AmountDue:        m.AmountDue,
		ChargeAmount:     m.ChargeAmount,
		LatePayment:      m.LatePayment,
		AmountSubtotal:   m.AmountSubtotal,
		PartialPayment:   m.PartialPayment,
		AutoPayment:      m.AutoPayment,
		LeftPayment:      m.LeftPayment,
		State:            m.State,
		PaymentID:        m.PaymentID,
		LateFeeInvoiceID: m.LateFeeInvoiceID,
	}
}

// FromDomain populates the persistence model from a domain InstallmentLine entity.
func (m *InstallmentLineModel) FromDomain(l *contract.InstallmentLine) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.ContractID = l.ContractID
	m.Sequence = l.Sequence
	m.Name = l.Name
	m.DueDate = l.DueDate
	m.AmountDue = l.AmountDue
	m.ChargeAmount = l.ChargeAmount
	m.LatePayment = l.LatePayment
	m.AmountSubtotal = l.AmountSubtotal
	m.PartialPayment = l.PartialPayment
	m.AutoPayment = l.AutoPayment
	m.LeftPayment = l.LeftPayment
	m.State = l.State
	m.PaymentID = l.PaymentID
	m.LateFeeInvoiceID = l.LateFeeInvoiceID
}

// ChargeRecordModel is the persistence model for an append-only charge record.
type ChargeRecordModel struct {
	BaseModel
	ContractID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountDue  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Charge     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AccruedOn  time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ChargeRecordModel) TableName() string {
	return "charge_records"
}

// ToDomain converts the persistence model to a domain ChargeRecord.
func (m *ChargeRecordModel) ToDomain() contract.ChargeRecord {
	return contract.ChargeRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		ContractID: m.ContractID,
		LineID:     m.LineID,
		AmountDue:  m.AmountDue,
		Charge:     m.Charge,
		AccruedOn:  m.AccruedOn,
	}
}

// FromDomain populates the persistence model from a domain ChargeRecord.
func (m *ChargeRecordModel) FromDomain(r contract.ChargeRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ContractID = r.ContractID
	m.LineID = r.LineID
	m.AmountDue = r.AmountDue
	m.Charge = r.Charge
	m.AccruedOn = r.AccruedOn
}
