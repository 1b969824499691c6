package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/condoerp/backend/internal/domain/billing"
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockInvoiceRepository creates a GormInvoiceRepository with a mocked SQL connection
func newMockInvoiceRepository(t *testing.T) (*GormInvoiceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormInvoiceRepository(gormDB), mock, mockDB
}

func TestGormInvoiceRepository_FindByID(t *testing.T) {
	t.Run("finds existing invoice with settlements", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()
		companyID := uuid.New()
		contractID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "company_id", "number", "origin", "contract_id", "status", "total_amount", "residual", "settlements"}).
			AddRow(invoiceID, companyID, "INV-2026-00001", "CONTRACT", contractID, "OPEN",
				decimal.RequireFromString("50000"), decimal.RequireFromString("50000"), []byte(`[]`))

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnRows(rows)

		inv, err := repo.FindByID(context.Background(), invoiceID)

		assert.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, "INV-2026-00001", inv.Number)
		assert.Equal(t, billing.OriginContract, inv.Origin)
		assert.NotNil(t, inv.Settlements)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent invoice", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		inv, err := repo.FindByID(context.Background(), invoiceID)

		assert.Error(t, err)
		assert.Nil(t, inv)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindOpenFeeInvoices(t *testing.T) {
	t.Run("filters on origin and open status", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		contractID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "contract_id", "number", "origin", "status", "residual"}).
			AddRow(uuid.New(), contractID, "INV-2026-00003", "LATE_FEE", "OPEN", decimal.RequireFromString("200"))

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE contract_id = \$1 AND origin = \$2 AND status = \$3 ORDER BY due_date ASC`).
			WithArgs(contractID, "LATE_FEE", "OPEN").
			WillReturnRows(rows)

		invoices, err := repo.FindOpenFeeInvoices(context.Background(), contractID)

		assert.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, billing.OriginLateFee, invoices[0].Origin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_ExistsInJournal(t *testing.T) {
	t.Run("ignores voided invoices", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		contractID := uuid.New()
		journalID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE contract_id = \$1 AND journal_id = \$2 AND status <> \$3`).
			WithArgs(contractID, journalID, "CANCELLED").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsInJournal(context.Background(), contractID, journalID)

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	t.Run("rejects stale version", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		inv, err := billing.NewInvoice(uuid.New(), "INV-2026-00001", billing.OriginContract,
			uuid.New(), uuid.New(), uuid.New(), "Contract CT-2026-00001",
			decimal.RequireFromString("50000"), time.Now(), time.Now().AddDate(0, 4, 0))
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), inv)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_MODIFICATION", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_GenerateInvoiceNumber(t *testing.T) {
	t.Run("increments the highest number of the year", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()
		year := time.Now().Year()
		prefix := fmt.Sprintf("INV-%d-", year)

		rows := sqlmock.NewRows([]string{"id", "company_id", "number"}).
			AddRow(uuid.New(), companyID, prefix+"00041")

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE company_id = \$1 AND number LIKE \$2 ORDER BY number DESC.* LIMIT .*`).
			WithArgs(companyID, prefix+"%", 1).
			WillReturnRows(rows)

		number, err := repo.GenerateInvoiceNumber(context.Background(), companyID)

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00042", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
