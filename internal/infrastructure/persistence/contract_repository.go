package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/condoerp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// preloadLines loads the installment lines in schedule order
func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence ASC")
	})
}

// FindByID finds a contract by its ID, lines included
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := preloadLines(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a contract by ID for a specific company
func (r *GormContractRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := preloadLines(r.db.WithContext(ctx)).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a contract by its sequence name for a company
func (r *GormContractRepository) FindByName(ctx context.Context, companyID uuid.UUID, name string) (*contract.Contract, error) {
	var model models.ContractModel
	if err := preloadLines(r.db.WithContext(ctx)).
		Where("company_id = ? AND name = ?", companyID, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany finds all contracts for a company with filtering
func (r *GormContractRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter contract.ContractFilter) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	query := preloadLines(r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("company_id = ?", companyID))
	query = r.applyFilter(query, filter)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}
	return toDomainContracts(contractModels), nil
}

// FindByPartner finds contracts for a partner
func (r *GormContractRepository) FindByPartner(ctx context.Context, companyID, partnerID uuid.UUID, filter contract.ContractFilter) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	query := preloadLines(r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("company_id = ? AND partner_id = ?", companyID, partnerID))
	query = r.applyFilter(query, filter)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}
	return toDomainContracts(contractModels), nil
}

// FindConfirmedWithAutoLateFee finds the contracts the accrual job visits
func (r *GormContractRepository) FindConfirmedWithAutoLateFee(ctx context.Context, companyID uuid.UUID) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	if err := preloadLines(r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("company_id = ? AND state = ? AND auto_late_fee = ?", companyID, contract.StateConfirmed, true)).
		Order("name ASC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}
	return toDomainContracts(contractModels), nil
}

// FindWithOverdueLines finds confirmed contracts holding an outstanding line
// due before the given date
func (r *GormContractRepository) FindWithOverdueLines(ctx context.Context, companyID uuid.UUID, before time.Time) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	if err := preloadLines(r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("company_id = ? AND state = ?", companyID, contract.StateConfirmed).
		Where("EXISTS (SELECT 1 FROM installment_lines l WHERE l.contract_id = contracts.id AND l.due_date < ? AND l.state IN ?)",
			before, []string{contract.LineStateOpen.String(), contract.LineStatePartial.String()})).
		Order("name ASC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}
	return toDomainContracts(contractModels), nil
}

// Save creates or updates a contract together with its lines
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	model := models.ContractModelFromDomain(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}
		return r.saveLines(tx, model)
	})
}

// SaveWithLock saves with optimistic locking. The aggregate increments its
// version on every mutation, so the row is only written when the stored
// version is still behind the in-memory one.
func (r *GormContractRepository) SaveWithLock(ctx context.Context, c *contract.Contract) error {
	model := models.ContractModelFromDomain(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model.UpdatedAt = time.Now()
		result := tx.Model(&models.ContractModel{}).
			Where("id = ? AND version < ?", model.ID, model.Version).
			Updates(map[string]interface{}{
				"partner_id":             model.PartnerID,
				"partner_name":           model.PartnerName,
				"project_name":           model.ProjectName,
				"apartment_number":       model.ApartmentNumber,
				"apartment_amount_total": model.ApartmentAmountTotal,
				"inceptive_amount":       model.InceptiveAmount,
				"separation_amount":      model.SeparationAmount,
				"initial_total":          model.InitialTotal,
				"invoice_adjustment":     model.InvoiceAdjustment,
				"period_count":           model.PeriodCount,
				"interval_months":        model.IntervalMonths,
				"start_date":             model.StartDate,
				"journal_id":             model.JournalID,
				"currency":               model.Currency,
				"auto_late_fee":          model.AutoLateFee,
				"late_fee_rate":          model.LateFeeRate,
				"state":                  model.State,
				"installments_completed": model.InstallmentsCompleted,
				"amount_paid":            model.AmountPaid,
				"amount_total":           model.AmountTotal,
				"amount_charge":          model.AmountCharge,
				"amount_due_total":       model.AmountDueTotal,
				"version":                model.Version,
				"updated_at":             model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The contract has been modified by another user")
		}
		return r.saveLines(tx, model)
	})
}

// saveLines reconciles the stored line set with the aggregate's current lines
func (r *GormContractRepository) saveLines(tx *gorm.DB, model *models.ContractModel) error {
	if len(model.Lines) > 0 {
		currentLineIDs := make([]uuid.UUID, len(model.Lines))
		for i := range model.Lines {
			currentLineIDs[i] = model.Lines[i].ID
		}
		if err := tx.Where("contract_id = ? AND id NOT IN ?", model.ID, currentLineIDs).
			Delete(&models.InstallmentLineModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("contract_id = ?", model.ID).
			Delete(&models.InstallmentLineModel{}).Error; err != nil {
			return err
		}
	}

	for i := range model.Lines {
		model.Lines[i].ContractID = model.ID
		if err := tx.Save(&model.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a contract and its lines
func (r *GormContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).
			Delete(&models.InstallmentLineModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.ContractModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForCompany counts contracts for a company with optional filters
func (r *GormContractRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter contract.ContractFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByState counts contracts by state for a company
func (r *GormContractRepository) CountByState(ctx context.Context, companyID uuid.UUID, state contract.State) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("company_id = ? AND state = ?", companyID, state).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks if a contract name exists for a company
func (r *GormContractRepository) ExistsByName(ctx context.Context, companyID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("company_id = ? AND name = ?", companyID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateContractName generates a unique contract name for a company
// Format: CT-YYYY-NNNNN (e.g., CT-2026-00001)
func (r *GormContractRepository) GenerateContractName(ctx context.Context, companyID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("CT-%d-", year)

	// Get the highest contract name for this year
	var lastContract models.ContractModel
	err := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("company_id = ? AND name LIKE ?", companyID, prefix+"%").
		Order("name DESC").
		First(&lastContract).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastContract.Name != "" {
		parts := strings.Split(lastContract.Name, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	name := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.ExistsByName(ctx, companyID, name)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			name = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByName(ctx, companyID, name)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return name, nil
}

// applyFilter applies filter options to the query
func (r *GormContractRepository) applyFilter(query *gorm.DB, filter contract.ContractFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, ContractSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormContractRepository) applyFilterWithoutPagination(query *gorm.DB, filter contract.ContractFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR partner_name ILIKE ? OR apartment_number ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.ProjectName != nil {
		query = query.Where("project_name = ?", *filter.ProjectName)
	}
	if filter.AutoLateFee != nil {
		query = query.Where("auto_late_fee = ?", *filter.AutoLateFee)
	}
	if filter.StartFrom != nil {
		query = query.Where("start_date >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		query = query.Where("start_date <= ?", *filter.StartTo)
	}
	if filter.NameLike != nil {
		query = query.Where("name ILIKE ?", "%"+*filter.NameLike+"%")
	}
	return query
}

// toDomainContracts converts a slice of contract models to domain contracts
func toDomainContracts(contractModels []models.ContractModel) []contract.Contract {
	contracts := make([]contract.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = *contractModels[i].ToDomain()
	}
	return contracts
}

// Ensure GormContractRepository implements ContractRepository
var _ contract.ContractRepository = (*GormContractRepository)(nil)
