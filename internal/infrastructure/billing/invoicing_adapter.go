package billing

import (
	"context"
	"errors"
	"time"

	domainbilling "github.com/condoerp/backend/internal/domain/billing"
	"github.com/condoerp/backend/internal/domain/contract"
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoicingAdapter implements the contract context's invoicing port on top of
// the billing repositories. The contract side asks for documents by kind; the
// adapter owns numbering and origin mapping.
type InvoicingAdapter struct {
	invoiceRepo domainbilling.InvoiceRepository
	logger      *zap.Logger
}

// NewInvoicingAdapter creates a new InvoicingAdapter
func NewInvoicingAdapter(invoiceRepo domainbilling.InvoiceRepository, logger *zap.Logger) *InvoicingAdapter {
	return &InvoicingAdapter{
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// originForKind maps a contract invoice kind to a billing origin
func originForKind(kind contract.InvoiceKind) (domainbilling.InvoiceOrigin, error) {
	switch kind {
	case contract.InvoiceKindPrimary:
		return domainbilling.OriginContract, nil
	case contract.InvoiceKindLateFee:
		return domainbilling.OriginLateFee, nil
	}
	return "", shared.NewDomainError("INVALID_KIND", "Unknown invoice kind: "+string(kind))
}

// IssueInvoice creates and posts an invoice, returning its ID
func (a *InvoicingAdapter) IssueInvoice(ctx context.Context, req contract.InvoiceRequest) (uuid.UUID, error) {
	origin, err := originForKind(req.Kind)
	if err != nil {
		return uuid.Nil, err
	}

	number, err := a.invoiceRepo.GenerateInvoiceNumber(ctx, req.CompanyID)
	if err != nil {
		return uuid.Nil, err
	}

	invoice, err := domainbilling.NewInvoice(req.CompanyID, number, origin,
		req.ContractID, req.PartnerID, req.JournalID,
		req.Description, req.Amount, time.Now(), req.DueDate)
	if err != nil {
		return uuid.Nil, err
	}

	if err := a.invoiceRepo.Save(ctx, invoice); err != nil {
		return uuid.Nil, err
	}

	a.logger.Info("Invoice issued",
		zap.String("number", invoice.Number),
		zap.String("origin", string(invoice.Origin)),
		zap.String("contract_id", req.ContractID.String()),
		zap.String("amount", req.Amount.String()))

	return invoice.ID, nil
}

// VoidInvoice cancels an open invoice
func (a *InvoicingAdapter) VoidInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := a.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return shared.ErrNotFound
	}

	if err := invoice.Void(); err != nil {
		return err
	}

	if err := a.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return err
	}

	a.logger.Info("Invoice voided", zap.String("number", invoice.Number))
	return nil
}

// AmendInvoiceAmount rewrites the amount of an open, unpaid invoice
func (a *InvoicingAdapter) AmendInvoiceAmount(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal) error {
	invoice, err := a.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return shared.ErrNotFound
	}

	if err := invoice.Amend(amount); err != nil {
		return err
	}

	if err := a.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return err
	}

	a.logger.Info("Invoice amended",
		zap.String("number", invoice.Number),
		zap.String("amount", amount.StringFixed(2)))
	return nil
}

// OpenFeeResiduals returns the residual of each open late-fee invoice of the
// contract, keyed by invoice ID
func (a *InvoicingAdapter) OpenFeeResiduals(ctx context.Context, contractID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	invoices, err := a.invoiceRepo.FindOpenFeeInvoices(ctx, contractID)
	if err != nil {
		return nil, err
	}
	residuals := make(map[uuid.UUID]decimal.Decimal, len(invoices))
	for i := range invoices {
		residuals[invoices[i].ID] = invoices[i].Residual
	}
	return residuals, nil
}

// HasUnpaidFeeInvoice reports whether the invoice exists and still carries a
// residual. A missing invoice is not unpaid; the accrual moves on.
func (a *InvoicingAdapter) HasUnpaidFeeInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	invoice, err := a.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if invoice == nil {
		return false, nil
	}
	return invoice.IsOpen() && invoice.Residual.GreaterThan(decimal.Zero), nil
}

// HasInvoiceInJournal reports whether the contract has at least one invoice
// in the given journal
func (a *InvoicingAdapter) HasInvoiceInJournal(ctx context.Context, contractID, journalID uuid.UUID) (bool, error) {
	return a.invoiceRepo.ExistsInJournal(ctx, contractID, journalID)
}

// RegisterInvoicePayment posts a payment amount against an invoice. Used for
// settlements recorded outside the allocation flow, so the payment reference
// is synthetic.
func (a *InvoicingAdapter) RegisterInvoicePayment(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal) error {
	invoice, err := a.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return shared.ErrNotFound
	}

	if err := invoice.ApplySettlement(uuid.New(), amount, time.Now(), "Direct settlement"); err != nil {
		return err
	}

	return a.invoiceRepo.SaveWithLock(ctx, invoice)
}

// Ensure InvoicingAdapter implements the contract port
var _ contract.InvoicingService = (*InvoicingAdapter)(nil)
