package contract

import (
	"context"
	"time"

	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContractFilter defines filtering options for contract queries
type ContractFilter struct {
	shared.Filter
	PartnerID   *uuid.UUID // Filter by partner
	State       *State     // Filter by lifecycle state
	ProjectName *string    // Filter by project
	AutoLateFee *bool      // Filter by automatic accrual flag
	StartFrom   *time.Time // Filter by start date range start
	StartTo     *time.Time // Filter by start date range end
	NameLike    *string    // Filter by contract name substring
}

// ContractRepository defines the interface for contract persistence. Loading
// a contract always loads its installment lines; the aggregate is saved as a
// whole.
type ContractRepository interface {
	// FindByID finds a contract by ID, lines included
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByIDForCompany finds a contract by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Contract, error)

	// FindByName finds a contract by its sequence name for a company
	FindByName(ctx context.Context, companyID uuid.UUID, name string) (*Contract, error)

	// FindAllForCompany finds all contracts for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter ContractFilter) ([]Contract, error)

	// FindByPartner finds contracts for a partner
	FindByPartner(ctx context.Context, companyID, partnerID uuid.UUID, filter ContractFilter) ([]Contract, error)

	// FindConfirmedWithAutoLateFee finds the contracts the accrual job visits
	FindConfirmedWithAutoLateFee(ctx context.Context, companyID uuid.UUID) ([]Contract, error)

	// FindWithOverdueLines finds confirmed contracts holding an outstanding
	// line due before the given date
	FindWithOverdueLines(ctx context.Context, companyID uuid.UUID, before time.Time) ([]Contract, error)

	// Save creates or updates a contract together with its lines
	Save(ctx context.Context, contract *Contract) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, contract *Contract) error

	// Delete soft deletes a draft contract and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForCompany counts contracts for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter ContractFilter) (int64, error)

	// CountByState counts contracts by state for a company
	CountByState(ctx context.Context, companyID uuid.UUID, state State) (int64, error)

	// ExistsByName checks if a contract name exists for a company
	ExistsByName(ctx context.Context, companyID uuid.UUID, name string) (bool, error)

	// GenerateContractName generates the next unique contract name for a company
	GenerateContractName(ctx context.Context, companyID uuid.UUID) (string, error)
}

// ChargeRecordFilter defines filtering options for charge history queries
type ChargeRecordFilter struct {
	shared.Filter
	ContractID *uuid.UUID // Filter by contract
	LineID     *uuid.UUID // Filter by installment line
	From       *time.Time // Filter by accrual date range start
	To         *time.Time // Filter by accrual date range end
}

// ChargeHistoryRepository defines the interface for charge history
// persistence. The history is append-only.
type ChargeHistoryRepository interface {
	// Append stores new charge records
	Append(ctx context.Context, records []ChargeRecord) error

	// FindByContract finds the charge records of a contract, oldest first
	FindByContract(ctx context.Context, contractID uuid.UUID, filter ChargeRecordFilter) ([]ChargeRecord, error)

	// FindForCompany finds charge records across a company's contracts
	FindForCompany(ctx context.Context, companyID uuid.UUID, filter ChargeRecordFilter) ([]ChargeRecord, error)

	// CountByContract counts the charge records of a contract
	CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error)
}
