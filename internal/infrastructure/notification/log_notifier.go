// Package notification delivers partner-facing notices. The default
// implementation writes structured log entries the operations side tails;
// delivery channels (mail, SMS) plug in behind the same port.
package notification

import (
	"context"

	"github.com/condoerp/backend/internal/domain/contract"
	"go.uber.org/zap"
)

// LogNotifier implements the contract notification port by emitting a
// structured log entry per reminder.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendPaymentReminder notifies a partner of an upcoming installment
func (n *LogNotifier) SendPaymentReminder(_ context.Context, notice contract.ReminderNotice) error {
	n.logger.Info("Payment reminder",
		zap.String("contract", notice.ContractName),
		zap.String("partner_id", notice.PartnerID.String()),
		zap.String("partner", notice.PartnerName),
		zap.String("line", notice.LineName),
		zap.Time("due_date", notice.DueDate),
		zap.String("amount_due", notice.AmountDue.String()),
		zap.Int("days_until_due", notice.DaysUntilDue),
		zap.String("project", notice.ProjectName),
		zap.String("apartment", notice.ApartmentNumber))
	return nil
}

// Ensure LogNotifier implements the contract port
var _ contract.NotificationService = (*LogNotifier)(nil)
