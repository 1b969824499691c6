package contract

import (
	"context"
	"time"

	"github.com/condoerp/backend/internal/domain/billing"
	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockContractRepository is a mock implementation of contract.ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByName(ctx context.Context, companyID uuid.UUID, name string) (*contract.Contract, error) {
	args := m.Called(ctx, companyID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter contract.ContractFilter) ([]contract.Contract, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByPartner(ctx context.Context, companyID, partnerID uuid.UUID, filter contract.ContractFilter) ([]contract.Contract, error) {
	args := m.Called(ctx, companyID, partnerID, filter)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindConfirmedWithAutoLateFee(ctx context.Context, companyID uuid.UUID) ([]contract.Contract, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindWithOverdueLines(ctx context.Context, companyID uuid.UUID, before time.Time) ([]contract.Contract, error) {
	args := m.Called(ctx, companyID, before)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) SaveWithLock(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContractRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter contract.ContractFilter) (int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) CountByState(ctx context.Context, companyID uuid.UUID, state contract.State) (int64, error) {
	args := m.Called(ctx, companyID, state)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) ExistsByName(ctx context.Context, companyID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, companyID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockContractRepository) GenerateContractName(ctx context.Context, companyID uuid.UUID) (string, error) {
	args := m.Called(ctx, companyID)
	return args.String(0), args.Error(1)
}

// MockChargeHistoryRepository is a mock implementation of contract.ChargeHistoryRepository
type MockChargeHistoryRepository struct {
	mock.Mock
}

func (m *MockChargeHistoryRepository) Append(ctx context.Context, records []contract.ChargeRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockChargeHistoryRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter contract.ChargeRecordFilter) ([]contract.ChargeRecord, error) {
	args := m.Called(ctx, contractID, filter)
	return args.Get(0).([]contract.ChargeRecord), args.Error(1)
}

func (m *MockChargeHistoryRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, filter contract.ChargeRecordFilter) ([]contract.ChargeRecord, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).([]contract.ChargeRecord), args.Error(1)
}

func (m *MockChargeHistoryRepository) CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*billing.Invoice, error) {
	args := m.Called(ctx, companyID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, contractID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOpenFeeInvoices(ctx context.Context, contractID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsInJournal(ctx context.Context, contractID, journalID uuid.UUID) (bool, error) {
	args := m.Called(ctx, contractID, journalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	args := m.Called(ctx, companyID)
	return args.String(0), args.Error(1)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, contractID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter billing.PaymentFilter) (int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	args := m.Called(ctx, companyID)
	return args.String(0), args.Error(1)
}

// =============================================================================
// Mock Ports
// =============================================================================

// MockInvoicingService is a mock implementation of contract.InvoicingService
type MockInvoicingService struct {
	mock.Mock
}

func (m *MockInvoicingService) IssueInvoice(ctx context.Context, req contract.InvoiceRequest) (uuid.UUID, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockInvoicingService) VoidInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

func (m *MockInvoicingService) AmendInvoiceAmount(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, invoiceID, amount)
	return args.Error(0)
}

func (m *MockInvoicingService) OpenFeeResiduals(ctx context.Context, contractID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockInvoicingService) HasUnpaidFeeInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoicingService) HasInvoiceInJournal(ctx context.Context, contractID, journalID uuid.UUID) (bool, error) {
	args := m.Called(ctx, contractID, journalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoicingService) RegisterInvoicePayment(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, invoiceID, amount)
	return args.Error(0)
}

// MockNotificationService is a mock implementation of contract.NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendPaymentReminder(ctx context.Context, notice contract.ReminderNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

// =============================================================================
// Transaction scope test double
// =============================================================================

// stubTxScope runs the unit of work directly against the given mocks
type stubTxScope struct {
	contractRepo contract.ContractRepository
	historyRepo  contract.ChargeHistoryRepository
	invoiceRepo  billing.InvoiceRepository
	paymentRepo  billing.PaymentRepository
}

func newStubTxScope(
	contractRepo contract.ContractRepository,
	historyRepo contract.ChargeHistoryRepository,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
) *stubTxScope {
	return &stubTxScope{
		contractRepo: contractRepo,
		historyRepo:  historyRepo,
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
	}
}

func (s *stubTxScope) Execute(ctx context.Context, fn func(TransactionalRepositories) error) error {
	return fn(s)
}

func (s *stubTxScope) ContractRepo() contract.ContractRepository {
	return s.contractRepo
}

func (s *stubTxScope) HistoryRepo() contract.ChargeHistoryRepository {
	return s.historyRepo
}

func (s *stubTxScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

func (s *stubTxScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}
