package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/infrastructure/persistence/models"
)

// GormCompanyDirectory lists companies with billing activity. The periodic
// jobs fan out over this set rather than a separate company registry.
type GormCompanyDirectory struct {
	db *gorm.DB
}

// NewGormCompanyDirectory creates a new company directory
func NewGormCompanyDirectory(db *gorm.DB) *GormCompanyDirectory {
	return &GormCompanyDirectory{db: db}
}

// ActiveCompanyIDs returns the distinct companies that hold confirmed contracts
func (d *GormCompanyDirectory) ActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Distinct("company_id").
		Where("state = ?", string(contract.StateConfirmed)).
		Pluck("company_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active companies: %w", err)
	}
	return ids, nil
}
