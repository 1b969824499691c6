package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cronTickerInterval is the interval at which the cron trigger checks for execution
const cronTickerInterval = 1 * time.Minute

// CompanyProvider lists the companies periodic billing jobs run for
type CompanyProvider interface {
	ActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CronSpec is a parsed "minute hour day-of-month" schedule.
// DayOfMonth 0 means every day.
type CronSpec struct {
	Minute     int
	Hour       int
	DayOfMonth int
}

// Matches reports whether the spec fires at the given time
func (s CronSpec) Matches(now time.Time) bool {
	if now.Minute() != s.Minute || now.Hour() != s.Hour {
		return false
	}
	return s.DayOfMonth == 0 || now.Day() == s.DayOfMonth
}

// ParseCronSchedule parses a cron expression "minute hour day-of-month * *".
// Only the first three fields are honored; "*" in the day field means every
// day. Returns the fallback spec if the expression is empty.
func ParseCronSchedule(cronExpr string, fallback CronSpec) (CronSpec, error) {
	if cronExpr == "" {
		return fallback, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return fallback, fmt.Errorf("%w: expression %q has too few fields", ErrInvalidConfig, cronExpr)
	}

	spec := fallback
	if parts[0] != "*" {
		val, err := parseCronField(parts[0])
		if err != nil {
			return fallback, fmt.Errorf("%w: bad minute in %q", ErrInvalidConfig, cronExpr)
		}
		spec.Minute = val
	}
	if parts[1] != "*" {
		val, err := parseCronField(parts[1])
		if err != nil {
			return fallback, fmt.Errorf("%w: bad hour in %q", ErrInvalidConfig, cronExpr)
		}
		spec.Hour = val
	}
	spec.DayOfMonth = 0
	if len(parts) >= 3 && parts[2] != "*" {
		val, err := parseCronField(parts[2])
		if err != nil {
			return fallback, fmt.Errorf("%w: bad day-of-month in %q", ErrInvalidConfig, cronExpr)
		}
		spec.DayOfMonth = val
	}

	if spec.Minute < 0 || spec.Minute > 59 {
		return fallback, fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidConfig, spec.Minute)
	}
	if spec.Hour < 0 || spec.Hour > 23 {
		return fallback, fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidConfig, spec.Hour)
	}
	if spec.DayOfMonth < 0 || spec.DayOfMonth > 31 {
		return fallback, fmt.Errorf("%w: day-of-month must be 1-31, got %d", ErrInvalidConfig, spec.DayOfMonth)
	}

	return spec, nil
}

// parseCronField parses a numeric cron field
func parseCronField(s string) (int, error) {
	if s == "" {
		return 0, ErrInvalidConfig
	}
	val := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// BillingCronConfig holds configuration for the billing cron trigger
type BillingCronConfig struct {
	// Enabled indicates if the cron trigger is enabled
	Enabled bool
	// AccrualSchedule is when the late-fee accrual run fires
	AccrualSchedule CronSpec
	// ReminderSchedule is when due-date reminders go out
	ReminderSchedule CronSpec
	// JobTimeout is the maximum time a single job can run
	JobTimeout time.Duration
	// MaxConcurrentJobs is the maximum number of concurrent jobs
	MaxConcurrentJobs int
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the delay between retries
	RetryDelay time.Duration
}

// DefaultBillingCronConfig returns the default cron configuration:
// accrual on the 1st of each month shortly after midnight, reminders
// daily at 8am.
func DefaultBillingCronConfig() BillingCronConfig {
	return BillingCronConfig{
		Enabled:           true,
		AccrualSchedule:   CronSpec{Minute: 10, Hour: 0, DayOfMonth: 1},
		ReminderSchedule:  CronSpec{Minute: 0, Hour: 8},
		JobTimeout:        10 * time.Minute,
		MaxConcurrentJobs: 3,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// BillingCronScheduler fires the periodic billing jobs: monthly late-fee
// accrual and daily due-date reminders. Jobs fan out per company through
// the worker pool.
type BillingCronScheduler struct {
	config    BillingCronConfig
	companies CompanyProvider
	jobRepo   *JobRunRepository
	logger    *zap.Logger
	scheduler *Scheduler

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Last fire tracking, keyed by job type, to avoid double fires
	// within the same minute
	lastFired map[JobType]string
	lastRunAt *time.Time
}

// NewBillingCronScheduler creates a new billing cron scheduler
func NewBillingCronScheduler(
	config BillingCronConfig,
	executor JobExecutor,
	companies CompanyProvider,
	jobRepo *JobRunRepository,
	logger *zap.Logger,
) *BillingCronScheduler {
	poolConfig := WorkerPoolConfig{
		Enabled:           config.Enabled,
		MaxConcurrentJobs: config.MaxConcurrentJobs,
		JobTimeout:        config.JobTimeout,
		RetryAttempts:     config.RetryAttempts,
		RetryDelay:        config.RetryDelay,
	}

	return &BillingCronScheduler{
		config:    config,
		companies: companies,
		jobRepo:   jobRepo,
		logger:    logger,
		scheduler: NewScheduler(poolConfig, executor, logger),
		lastFired: make(map[JobType]string),
	}
}

// Start starts the cron scheduler
func (s *BillingCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Billing cron scheduler started",
		zap.Int("accrual_hour", s.config.AccrualSchedule.Hour),
		zap.Int("accrual_day", s.config.AccrualSchedule.DayOfMonth),
		zap.Int("reminder_hour", s.config.ReminderSchedule.Hour),
	)

	return nil
}

// Stop stops the cron scheduler
func (s *BillingCronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.Warn("Error stopping job worker pool", zap.Error(err))
		}
		s.logger.Info("Billing cron scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Billing cron scheduler stop timed out")
		return ctx.Err()
	}
}

// cronLoop runs the main cron loop
func (s *BillingCronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldFire(JobTypeLateFeeAccrual, s.config.AccrualSchedule, now) {
				s.runJobs(ctx, JobTypeLateFeeAccrual, now)
			}
			if s.shouldFire(JobTypeDueReminder, s.config.ReminderSchedule, now) {
				s.runJobs(ctx, JobTypeDueReminder, now)
			}
		}
	}
}

// shouldFire checks whether a schedule fires at the given time and has
// not already fired in this minute
func (s *BillingCronScheduler) shouldFire(jobType JobType, spec CronSpec, now time.Time) bool {
	if !spec.Matches(now) {
		return false
	}

	stamp := now.Format("2006-01-02T15:04")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFired[jobType] == stamp {
		return false
	}
	s.lastFired[jobType] = stamp
	return true
}

// runJobs submits one job of the given type per active company
func (s *BillingCronScheduler) runJobs(ctx context.Context, jobType JobType, asOf time.Time) {
	s.mu.Lock()
	now := time.Now()
	s.lastRunAt = &now
	s.mu.Unlock()

	companyIDs, err := s.companies.ActiveCompanyIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch companies for billing run",
			zap.String("job_type", string(jobType)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Scheduling billing jobs",
		zap.String("job_type", string(jobType)),
		zap.Int("company_count", len(companyIDs)),
	)

	for _, companyID := range companyIDs {
		var runID uuid.UUID
		if s.jobRepo != nil {
			var recordErr error
			runID, recordErr = s.jobRepo.RecordJobStart(ctx, companyID, string(jobType))
			if recordErr != nil {
				s.logger.Warn("Failed to record job start",
					zap.String("company_id", companyID.String()),
					zap.String("job_type", string(jobType)),
					zap.Error(recordErr),
				)
			}
		}

		job := NewJob(companyID, jobType, asOf, s.config.RetryAttempts)
		if err := s.scheduler.SubmitJob(job); err != nil {
			s.logger.Error("Failed to submit billing job",
				zap.String("company_id", companyID.String()),
				zap.String("job_type", string(jobType)),
				zap.Error(err),
			)
			if s.jobRepo != nil && runID != uuid.Nil {
				_ = s.jobRepo.RecordJobComplete(ctx, runID, false, err.Error())
			}
		}
	}
}

// TriggerManualRun triggers a run of the given job type for all companies.
// Uses a background context so the run survives the HTTP request that
// triggered it.
func (s *BillingCronScheduler) TriggerManualRun(ctx context.Context, jobType JobType) error {
	switch jobType {
	case JobTypeLateFeeAccrual, JobTypeDueReminder:
	default:
		return ErrInvalidJobType
	}

	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.runJobs(context.Background(), jobType, time.Now())
	return nil
}

// TriggerCompanyRun submits a job of the given type for a single company
func (s *BillingCronScheduler) TriggerCompanyRun(ctx context.Context, companyID uuid.UUID, jobType JobType, asOf time.Time) error {
	switch jobType {
	case JobTypeLateFeeAccrual, JobTypeDueReminder:
	default:
		return ErrInvalidJobType
	}

	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	return s.scheduler.ScheduleJob(companyID, jobType, asOf)
}

// GetStatus returns the current status of the cron scheduler
func (s *BillingCronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":           s.config.Enabled,
		"is_running":        s.isRunning,
		"accrual_schedule":  s.config.AccrualSchedule,
		"reminder_schedule": s.config.ReminderSchedule,
		"last_run_at":       s.lastRunAt,
		"job_types":         AllJobTypes(),
	}
}
