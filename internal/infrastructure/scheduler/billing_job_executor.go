package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	appcontract "github.com/condoerp/backend/internal/application/contract"
)

// BillingJobExecutor runs the periodic billing jobs against the
// application services
type BillingJobExecutor struct {
	lateFees  *appcontract.LateFeeService
	reminders *appcontract.ReminderService
	logger    *zap.Logger
}

// NewBillingJobExecutor creates a new billing job executor
func NewBillingJobExecutor(
	lateFees *appcontract.LateFeeService,
	reminders *appcontract.ReminderService,
	logger *zap.Logger,
) *BillingJobExecutor {
	return &BillingJobExecutor{
		lateFees:  lateFees,
		reminders: reminders,
		logger:    logger,
	}
}

// Execute dispatches a job to the matching application service
func (e *BillingJobExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeLateFeeAccrual:
		result, err := e.lateFees.RunAccrual(ctx, job.CompanyID, job.AsOf)
		if err != nil {
			return fmt.Errorf("late fee accrual run: %w", err)
		}
		e.logger.Info("Late fee accrual run finished",
			zap.String("company_id", job.CompanyID.String()),
			zap.Int("contracts_visited", result.ContractsVisited),
			zap.Int("contracts_skipped", result.ContractsSkipped),
			zap.String("total_fees_accrued", result.TotalFeesAccrued.String()),
		)
		return nil

	case JobTypeDueReminder:
		result, err := e.reminders.RunReminders(ctx, job.CompanyID, job.AsOf)
		if err != nil {
			return fmt.Errorf("due reminder run: %w", err)
		}
		e.logger.Info("Due reminder run finished",
			zap.String("company_id", job.CompanyID.String()),
			zap.Int("notices_sent", result.NoticesSent),
			zap.Int("notices_failed", result.NoticesFailed),
		)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrInvalidJobType, job.Type)
	}
}

// Ensure BillingJobExecutor implements JobExecutor
var _ JobExecutor = (*BillingJobExecutor)(nil)
