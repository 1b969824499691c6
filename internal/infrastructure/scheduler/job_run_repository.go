package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobRunRecord represents a record of a scheduled job execution
type JobRunRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID   uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	JobType     string     `gorm:"column:job_type;size:50;not null"`
	Status      string     `gorm:"column:last_run_status;size:20"`
	Error       string     `gorm:"column:last_error;type:text"`
	StartedAt   *time.Time `gorm:"column:last_run_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (JobRunRecord) TableName() string {
	return "scheduler_job_runs"
}

// JobRunRepository handles persistence of scheduler job run records
type JobRunRepository struct {
	db *gorm.DB
}

// NewJobRunRepository creates a new JobRunRepository
func NewJobRunRepository(db *gorm.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

// RecordJobStart records the start of a job execution
func (r *JobRunRepository) RecordJobStart(ctx context.Context, companyID uuid.UUID, jobType string) (uuid.UUID, error) {
	now := time.Now()
	record := &JobRunRecord{
		ID:        uuid.New(),
		CompanyID: companyID,
		JobType:   jobType,
		Status:    string(JobStatusRunning),
		StartedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// RecordJobComplete records the completion of a job
func (r *JobRunRepository) RecordJobComplete(ctx context.Context, runID uuid.UUID, success bool, errMsg string) error {
	now := time.Now()
	status := string(JobStatusSuccess)
	if !success {
		status = string(JobStatusFailed)
	}
	return r.db.WithContext(ctx).
		Model(&JobRunRecord{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"last_run_status": status,
			"last_error":      errMsg,
			"completed_at":    now,
			"updated_at":      now,
		}).Error
}

// LastRun returns the most recent run record for a company and job type
func (r *JobRunRepository) LastRun(ctx context.Context, companyID uuid.UUID, jobType string) (*JobRunRecord, error) {
	var record JobRunRecord
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND job_type = ?", companyID, jobType).
		Order("last_run_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
