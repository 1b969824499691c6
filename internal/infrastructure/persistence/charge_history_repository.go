package persistence

import (
	"context"

	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChargeHistoryRepository implements ChargeHistoryRepository using GORM.
// Charge records are append-only; there is no update or delete path.
type GormChargeHistoryRepository struct {
	db *gorm.DB
}

// NewGormChargeHistoryRepository creates a new GormChargeHistoryRepository
func NewGormChargeHistoryRepository(db *gorm.DB) *GormChargeHistoryRepository {
	return &GormChargeHistoryRepository{db: db}
}

// Append stores new charge records
func (r *GormChargeHistoryRepository) Append(ctx context.Context, records []contract.ChargeRecord) error {
	if len(records) == 0 {
		return nil
	}
	recordModels := make([]models.ChargeRecordModel, len(records))
	for i, record := range records {
		recordModels[i].FromDomain(record)
	}
	return r.db.WithContext(ctx).Create(&recordModels).Error
}

// FindByContract finds the charge records of a contract, oldest first
func (r *GormChargeHistoryRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter contract.ChargeRecordFilter) ([]contract.ChargeRecord, error) {
	var recordModels []models.ChargeRecordModel
	query := r.db.WithContext(ctx).Model(&models.ChargeRecordModel{}).
		Where("contract_id = ?", contractID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toDomainChargeRecords(recordModels), nil
}

// FindForCompany finds charge records across a company's contracts
func (r *GormChargeHistoryRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, filter contract.ChargeRecordFilter) ([]contract.ChargeRecord, error) {
	var recordModels []models.ChargeRecordModel
	query := r.db.WithContext(ctx).Model(&models.ChargeRecordModel{}).
		Joins("JOIN contracts ON contracts.id = charge_records.contract_id").
		Where("contracts.company_id = ?", companyID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toDomainChargeRecords(recordModels), nil
}

// CountByContract counts the charge records of a contract
func (r *GormChargeHistoryRepository) CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChargeRecordModel{}).
		Where("contract_id = ?", contractID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query. A zero page size leaves
// the result unpaginated; the charge report consumes the full history.
func (r *GormChargeHistoryRepository) applyFilter(query *gorm.DB, filter contract.ChargeRecordFilter) *gorm.DB {
	if filter.ContractID != nil {
		query = query.Where("charge_records.contract_id = ?", *filter.ContractID)
	}
	if filter.LineID != nil {
		query = query.Where("charge_records.line_id = ?", *filter.LineID)
	}
	if filter.From != nil {
		query = query.Where("charge_records.accrued_on >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("charge_records.accrued_on <= ?", *filter.To)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query.Order("charge_records.accrued_on ASC, charge_records.created_at ASC")
}

// toDomainChargeRecords converts a slice of record models to domain records
func toDomainChargeRecords(recordModels []models.ChargeRecordModel) []contract.ChargeRecord {
	records := make([]contract.ChargeRecord, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}
	return records
}

// Ensure GormChargeHistoryRepository implements ChargeHistoryRepository
var _ contract.ChargeHistoryRepository = (*GormChargeHistoryRepository)(nil)
