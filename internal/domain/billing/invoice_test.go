package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestInvoice(t *testing.T, amount string) *Invoice {
	inv, err := NewInvoice(
		uuid.New(),
		"INV-2026-00001",
		OriginContract,
		uuid.New(),
		uuid.New(),
		uuid.New(),
		"Contract CT-2026-00001",
		decimal.RequireFromString(amount),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates open invoice", func(t *testing.T) {
		inv := createTestInvoice(t, "100000")

		assert.Equal(t, InvoiceStatusOpen, inv.Status)
		assert.True(t, inv.Residual.Equal(decimal.RequireFromString("100000")))
		assert.Empty(t, inv.Settlements)
		require.Len(t, inv.GetDomainEvents(), 1)
		assert.Equal(t, EventInvoiceIssued, inv.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "", OriginContract, uuid.New(), uuid.New(), uuid.New(), "", decimal.NewFromInt(100), time.Now(), time.Now())
		assert.Error(t, err)

		_, err = NewInvoice(uuid.New(), "INV-1", InvoiceOrigin("BAD"), uuid.New(), uuid.New(), uuid.New(), "", decimal.NewFromInt(100), time.Now(), time.Now())
		assert.Error(t, err)

		_, err = NewInvoice(uuid.New(), "INV-1", OriginContract, uuid.Nil, uuid.New(), uuid.New(), "", decimal.NewFromInt(100), time.Now(), time.Now())
		assert.Error(t, err)

		_, err = NewInvoice(uuid.New(), "INV-1", OriginContract, uuid.New(), uuid.New(), uuid.New(), "", decimal.Zero, time.Now(), time.Now())
		assert.Error(t, err)
	})

	t.Run("late fee invoice links its line", func(t *testing.T) {
		lineID := uuid.New()
		inv := createTestInvoice(t, "300").ForLine(lineID)

		require.NotNil(t, inv.LineID)
		assert.Equal(t, lineID, *inv.LineID)
	})
}

func TestInvoice_ApplySettlement(t *testing.T) {
	t.Run("partial settlement keeps invoice open", func(t *testing.T) {
		inv := createTestInvoice(t, "1000")

		err := inv.ApplySettlement(uuid.New(), decimal.RequireFromString("400"), time.Now(), "")
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusOpen, inv.Status)
		assert.True(t, inv.Residual.Equal(decimal.RequireFromString("600")))
		assert.Len(t, inv.Settlements, 1)
	})

	t.Run("full settlement closes the invoice", func(t *testing.T) {
		inv := createTestInvoice(t, "1000")

		err := inv.ApplySettlement(uuid.New(), decimal.RequireFromString("1000"), time.Now(), "")
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.Residual.IsZero())
	})

	t.Run("sub cent residual closes the invoice", func(t *testing.T) {
		inv := createTestInvoice(t, "1000")

		err := inv.ApplySettlement(uuid.New(), decimal.RequireFromString("999.995"), time.Now(), "")
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.Residual.IsZero())
	})

	t.Run("amount above residual is refused", func(t *testing.T) {
		inv := createTestInvoice(t, "1000")

		err := inv.ApplySettlement(uuid.New(), decimal.RequireFromString("1000.02"), time.Now(), "")
		require.Error(t, err)
		assert.True(t, inv.Residual.Equal(decimal.RequireFromString("1000")))
	})

	t.Run("closed invoice refuses payment", func(t *testing.T) {
		inv := createTestInvoice(t, "1000")
		require.NoError(t, inv.ApplySettlement(uuid.New(), decimal.RequireFromString("1000"), time.Now(), ""))

		err := inv.ApplySettlement(uuid.New(), decimal.RequireFromString("1"), time.Now(), "")
		require.Error(t, err)
	})
}

func TestInvoice_Amend(t *testing.T) {
	t.Run("rewrites the open amount", func(t *testing.T) {
		inv := createTestInvoice(t, "300")

		err := inv.Amend(decimal.RequireFromString("500"))
		require.NoError(t, err)

		assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("500")))
		assert.True(t, inv.Residual.Equal(decimal.RequireFromString("500")))
		assert.Equal(t, InvoiceStatusOpen, inv.Status)
	})

	t.Run("keeps settlements already applied", func(t *testing.T) {
		inv := createTestInvoice(t, "300")
		require.NoError(t, inv.ApplySettlement(uuid.New(), decimal.RequireFromString("100"), time.Now(), ""))

		err := inv.Amend(decimal.RequireFromString("250"))
		require.NoError(t, err)

		assert.True(t, inv.Residual.Equal(decimal.RequireFromString("150")))
		assert.Len(t, inv.Settlements, 1)
	})

	t.Run("amount matching the settled portion closes the invoice", func(t *testing.T) {
		inv := createTestInvoice(t, "300")
		require.NoError(t, inv.ApplySettlement(uuid.New(), decimal.RequireFromString("100"), time.Now(), ""))

		err := inv.Amend(decimal.RequireFromString("100"))
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.Residual.IsZero())
	})

	t.Run("amount below the settled portion is refused", func(t *testing.T) {
		inv := createTestInvoice(t, "300")
		require.NoError(t, inv.ApplySettlement(uuid.New(), decimal.RequireFromString("100"), time.Now(), ""))

		err := inv.Amend(decimal.RequireFromString("50"))
		require.Error(t, err)
		assert.True(t, inv.Residual.Equal(decimal.RequireFromString("200")))
	})

	t.Run("closed invoice refuses amendment", func(t *testing.T) {
		inv := createTestInvoice(t, "300")
		require.NoError(t, inv.Void())

		err := inv.Amend(decimal.RequireFromString("500"))
		require.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		inv := createTestInvoice(t, "300")

		err := inv.Amend(decimal.Zero)
		require.Error(t, err)
	})
}

func TestInvoice_Void(t *testing.T) {
	t.Run("voids untouched invoice", func(t *testing.T) {
		inv := createTestInvoice(t, "1000")

		err := inv.Void()
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.True(t, inv.Residual.IsZero())
	})

	t.Run("refused after a settlement", func(t *testing.T) {
		inv := createTestInvoice(t, "1000")
		require.NoError(t, inv.ApplySettlement(uuid.New(), decimal.RequireFromString("100"), time.Now(), ""))

		err := inv.Void()
		require.Error(t, err)
	})
}

func TestNewPayment(t *testing.T) {
	t.Run("records posted payment", func(t *testing.T) {
		p, err := NewPayment(uuid.New(), "PAY-2026-00001", uuid.New(), uuid.New(), uuid.New(),
			decimal.RequireFromString("9000"), "BNK-4411", time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		assert.Equal(t, PaymentStatusPosted, p.Status)
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventPaymentRecorded, p.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), "PAY-1", uuid.New(), uuid.New(), uuid.New(), decimal.Zero, "", time.Now())
		assert.Error(t, err)
	})
}

func TestPayment_Reverse(t *testing.T) {
	p, err := NewPayment(uuid.New(), "PAY-2026-00002", uuid.New(), uuid.New(), uuid.New(),
		decimal.RequireFromString("500"), "", time.Now())
	require.NoError(t, err)

	require.NoError(t, p.Reverse("captured twice"))
	assert.Equal(t, PaymentStatusReversed, p.Status)
	assert.NotNil(t, p.ReversedAt)

	err = p.Reverse("again")
	assert.Error(t, err)
}
