package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReminderService sends upcoming-due notices to partners. It reads contracts
// only; nothing here mutates state.
type ReminderService struct {
	contractRepo contract.ContractRepository
	notifier     contract.NotificationService
	daysAhead    int
	logger       *zap.Logger
}

// NewReminderService creates a new ReminderService. daysAhead is how far
// ahead of a due date a notice goes out.
func NewReminderService(
	contractRepo contract.ContractRepository,
	notifier contract.NotificationService,
	daysAhead int,
	logger *zap.Logger,
) *ReminderService {
	if daysAhead <= 0 {
		daysAhead = 7
	}
	return &ReminderService{
		contractRepo: contractRepo,
		notifier:     notifier,
		daysAhead:    daysAhead,
		logger:       logger,
	}
}

// RunReminders notifies partners of installments falling due within the
// configured window, overdue lines included.
func (s *ReminderService) RunReminders(ctx context.Context, companyID uuid.UUID, asOf time.Time) (*ReminderRunResponse, error) {
	horizon := asOf.AddDate(0, 0, s.daysAhead)
	contracts, err := s.contractRepo.FindWithOverdueLines(ctx, companyID, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts for reminders: %w", err)
	}

	response := &ReminderRunResponse{RunAt: asOf}

	for i := range contracts {
		c := &contracts[i]
		for _, line := range c.OutstandingLines() {
			if !line.DueDate.Before(horizon) {
				continue
			}
			days := int(line.DueDate.Sub(asOf).Hours() / 24)
			notice := contract.ReminderNotice{
				ContractName:    c.Name,
				PartnerID:       c.PartnerID,
				PartnerName:     c.PartnerName,
				LineName:        line.Name,
				DueDate:         line.DueDate,
				AmountDue:       line.LeftPayment,
				DaysUntilDue:    days,
				ProjectName:     c.ProjectName,
				ApartmentNumber: c.ApartmentNumber,
			}
			if err := s.notifier.SendPaymentReminder(ctx, notice); err != nil {
				s.logger.Warn("failed to send payment reminder",
					zap.String("contract", c.Name),
					zap.String("line", line.Name),
					zap.Error(err))
				response.NoticesFailed++
				continue
			}
			response.NoticesSent++
		}
	}

	s.logger.Info("reminder run finished",
		zap.Int("sent", response.NoticesSent),
		zap.Int("failed", response.NoticesFailed))

	return response, nil
}
