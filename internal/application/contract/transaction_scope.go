package contract

import (
	"context"

	"github.com/condoerp/backend/internal/domain/billing"
	"github.com/condoerp/backend/internal/domain/contract"
)

// TransactionScope provides transactional access to the contract context's
// repositories. When a function is executed within a transaction scope, all
// repository operations will be part of the same database transaction and
// will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a payment or
// accrual touches within one transaction. All repositories returned share the
// same underlying database transaction.
//
// Aggregate boundary notes:
//   - ContractRepo: the Contract aggregate owns its installment lines; lines
//     are persisted through the aggregate save, never independently.
//   - HistoryRepo: append-only charge records, written in the same
//     transaction as the accrual that produced them.
//   - InvoiceRepo / PaymentRepo: billing documents raised or settled by the
//     operation.
type TransactionalRepositories interface {
	// ContractRepo returns the contract repository scoped to the current transaction
	ContractRepo() contract.ContractRepository
	// HistoryRepo returns the charge history repository scoped to the current transaction
	HistoryRepo() contract.ChargeHistoryRepository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() billing.PaymentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	contractRepo contract.ContractRepository
	historyRepo  contract.ChargeHistoryRepository
	invoiceRepo  billing.InvoiceRepository
	paymentRepo  billing.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	contractRepo contract.ContractRepository,
	historyRepo contract.ChargeHistoryRepository,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		contractRepo: contractRepo,
		historyRepo:  historyRepo,
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ContractRepo returns the contract repository.
func (s *NoOpTransactionScope) ContractRepo() contract.ContractRepository {
	return s.contractRepo
}

// HistoryRepo returns the charge history repository.
func (s *NoOpTransactionScope) HistoryRepo() contract.ChargeHistoryRepository {
	return s.historyRepo
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
