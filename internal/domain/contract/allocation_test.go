package contract

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Automatic Allocation Tests
// ============================================

func TestContract_ApplyPayment(t *testing.T) {
	t.Run("settles lines in due date order", func(t *testing.T) {
		c := createConfirmedContract(t)
		paymentID := uuid.New()

		// Covers the separation line (10000) and two installments (9000 each)
		result, err := c.ApplyPayment(decimal.RequireFromString("28000"), paymentID, nil)
		require.NoError(t, err)

		require.Len(t, result.Applications, 3)
		assert.Equal(t, 3, result.LinesSettled())
		assert.Equal(t, 0, result.LinesPartial())
		assert.True(t, result.Remainder.IsZero())

		assert.Equal(t, LineStatePaid, c.LineBySequence(0).State)
		assert.Equal(t, LineStatePaid, c.LineBySequence(1).State)
		assert.Equal(t, LineStatePaid, c.LineBySequence(2).State)
		assert.Equal(t, LineStateOpen, c.LineBySequence(3).State)

		assert.Equal(t, &paymentID, c.LineBySequence(1).PaymentID)
		assert.True(t, c.AmountPaid.Equal(decimal.RequireFromString("28000")))
		assert.True(t, c.AmountDueTotal.Equal(decimal.RequireFromString("72000")))
	})

	t.Run("trailing amount lands as partial on the next line", func(t *testing.T) {
		c := createConfirmedContract(t)

		result, err := c.ApplyPayment(decimal.RequireFromString("12500"), uuid.New(), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.LinesSettled())
		assert.Equal(t, 1, result.LinesPartial())

		line := c.LineBySequence(1)
		assert.Equal(t, LineStatePartial, line.State)
		assert.True(t, line.PartialPayment.Equal(decimal.RequireFromString("2500")))
		assert.True(t, line.LeftPayment.Equal(decimal.RequireFromString("6500")))
	})

	t.Run("full settle resets the accumulated partial payment", func(t *testing.T) {
		c := createConfirmedContract(t)

		_, err := c.ApplyPayment(decimal.RequireFromString("4000"), uuid.New(), nil)
		require.NoError(t, err)
		require.True(t, c.LineBySequence(0).PartialPayment.Equal(decimal.RequireFromString("4000")))

		_, err = c.ApplyPayment(decimal.RequireFromString("6000"), uuid.New(), nil)
		require.NoError(t, err)

		sep := c.LineBySequence(0)
		assert.Equal(t, LineStatePaid, sep.State)
		assert.True(t, sep.PartialPayment.IsZero())
		assert.True(t, sep.LeftPayment.IsZero())
	})

	t.Run("sub cent residual snaps to paid", func(t *testing.T) {
		c := createConfirmedContract(t)

		_, err := c.ApplyPayment(decimal.RequireFromString("9999.995"), uuid.New(), nil)
		require.NoError(t, err)

		sep := c.LineBySequence(0)
		assert.Equal(t, LineStatePaid, sep.State)
		assert.True(t, sep.LeftPayment.IsZero())
	})

	t.Run("fee residue is carved out before principal", func(t *testing.T) {
		c := createConfirmedContract(t)
		invoiceID := uuid.New()
		line := c.LineBySequence(0)
		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("300"), &invoiceID, time.Now()))

		residuals := map[uuid.UUID]decimal.Decimal{invoiceID: decimal.RequireFromString("300")}

		// Subtotal 10300 plus the 300 fee
		result, err := c.ApplyPayment(decimal.RequireFromString("10600"), uuid.New(), residuals)
		require.NoError(t, err)

		require.Len(t, result.Applications, 1)
		app := result.Applications[0]
		assert.True(t, app.FeeApplied.Equal(decimal.RequireFromString("300")))
		assert.True(t, app.PrincipalApplied.Equal(decimal.RequireFromString("10300")))
		assert.True(t, app.Settled)

		line = c.LineBySequence(0)
		assert.Equal(t, LineStatePaid, line.State)
		assert.True(t, line.LatePayment.IsZero())
		assert.True(t, line.LeftPayment.IsZero())
		assert.True(t, residuals[invoiceID].IsZero())
	})

	t.Run("fee does not shrink the installment residual", func(t *testing.T) {
		c := createConfirmedContract(t)
		invoiceID := uuid.New()
		line := c.LineBySequence(0)
		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("300"), &invoiceID, time.Now()))

		residuals := map[uuid.UUID]decimal.Decimal{invoiceID: decimal.RequireFromString("300")}

		// Covers the subtotal but not the fee on top of it
		result, err := c.ApplyPayment(decimal.RequireFromString("10300"), uuid.New(), residuals)
		require.NoError(t, err)

		app := result.Applications[0]
		assert.True(t, app.FeeApplied.Equal(decimal.RequireFromString("300")))
		assert.True(t, app.PrincipalApplied.Equal(decimal.RequireFromString("10000")))
		assert.False(t, app.Settled)

		line = c.LineBySequence(0)
		assert.Equal(t, LineStatePartial, line.State)
		assert.True(t, line.LeftPayment.Equal(decimal.RequireFromString("300")))
		assert.True(t, residuals[invoiceID].IsZero())
	})

	t.Run("partial payment pays the fee residue first", func(t *testing.T) {
		c := createConfirmedContract(t)
		invoiceID := uuid.New()
		line := c.LineBySequence(0)
		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("300"), &invoiceID, time.Now()))

		residuals := map[uuid.UUID]decimal.Decimal{invoiceID: decimal.RequireFromString("300")}

		result, err := c.ApplyPayment(decimal.RequireFromString("500"), uuid.New(), residuals)
		require.NoError(t, err)

		app := result.Applications[0]
		assert.True(t, app.FeeApplied.Equal(decimal.RequireFromString("300")))
		assert.True(t, app.PrincipalApplied.Equal(decimal.RequireFromString("200")))
		assert.False(t, app.Settled)

		line = c.LineBySequence(0)
		assert.Equal(t, LineStatePartial, line.State)
		assert.True(t, line.LatePayment.IsZero())
		// Only the post-fee remainder reduces the 10300 residual
		assert.True(t, line.LeftPayment.Equal(decimal.RequireFromString("10100")))
	})

	t.Run("payment consumed by the fee leaves the line open", func(t *testing.T) {
		c := createConfirmedContract(t)
		invoiceID := uuid.New()
		line := c.LineBySequence(0)
		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("300"), &invoiceID, time.Now()))

		residuals := map[uuid.UUID]decimal.Decimal{invoiceID: decimal.RequireFromString("300")}

		result, err := c.ApplyPayment(decimal.RequireFromString("300"), uuid.New(), residuals)
		require.NoError(t, err)

		app := result.Applications[0]
		assert.True(t, app.FeeApplied.Equal(decimal.RequireFromString("300")))
		assert.True(t, app.PrincipalApplied.IsZero())

		line = c.LineBySequence(0)
		assert.Equal(t, LineStateOpen, line.State)
		assert.True(t, line.LeftPayment.Equal(decimal.RequireFromString("10300")))
		assert.True(t, line.LatePayment.IsZero())
	})

	t.Run("overpayment is refused before any mutation", func(t *testing.T) {
		c := createConfirmedContract(t)

		_, err := c.ApplyPayment(decimal.RequireFromString("100000.01"), uuid.New(), nil)
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeAllocationOverflow)

		assert.True(t, c.AmountPaid.IsZero())
		assert.Equal(t, LineStateOpen, c.LineBySequence(0).State)
	})

	t.Run("exact payoff completes the schedule", func(t *testing.T) {
		c := createConfirmedContract(t)

		result, err := c.ApplyPayment(decimal.RequireFromString("100000"), uuid.New(), nil)
		require.NoError(t, err)

		assert.Equal(t, 11, result.LinesSettled())
		assert.True(t, result.Remainder.IsZero())
		assert.True(t, c.InstallmentsCompleted)
		assert.True(t, c.DoneFullyPayment())
		assert.True(t, c.AmountDueTotal.IsZero())
	})

	t.Run("conservation across applications", func(t *testing.T) {
		c := createConfirmedContract(t)
		amount := decimal.RequireFromString("33333.33")

		result, err := c.ApplyPayment(amount, uuid.New(), nil)
		require.NoError(t, err)

		assert.True(t, result.TotalApplied().Add(result.Remainder).Equal(amount))
		assert.True(t, c.AmountPaid.Equal(amount))
	})

	t.Run("refused on draft contract", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.BuildSchedule())

		_, err := c.ApplyPayment(decimal.RequireFromString("1000"), uuid.New(), nil)
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeInvalidTransition)
	})

	t.Run("refused with non-positive amount", func(t *testing.T) {
		c := createConfirmedContract(t)

		_, err := c.ApplyPayment(decimal.Zero, uuid.New(), nil)
		require.Error(t, err)
	})
}

// ============================================
// Manual Allocation Tests
// ============================================

func TestContract_ApplyManualPayment(t *testing.T) {
	t.Run("pays selected lines in order", func(t *testing.T) {
		c := createConfirmedContract(t)
		paymentID := uuid.New()

		selections := []ManualAllocation{
			{LineID: c.LineBySequence(1).ID, Amount: decimal.RequireFromString("9000")},
			{LineID: c.LineBySequence(0).ID, Amount: decimal.RequireFromString("10000")},
		}

		result, err := c.ApplyManualPayment(selections, paymentID, nil)
		require.NoError(t, err)

		assert.Equal(t, 2, result.LinesSettled())
		assert.Equal(t, LineStatePaid, c.LineBySequence(0).State)
		assert.Equal(t, LineStatePaid, c.LineBySequence(1).State)
		assert.True(t, c.AmountPaid.Equal(decimal.RequireFromString("19000")))
	})

	t.Run("skipping ahead of an unpaid installment is refused", func(t *testing.T) {
		c := createConfirmedContract(t)

		selections := []ManualAllocation{
			{LineID: c.LineBySequence(2).ID, Amount: decimal.RequireFromString("9000")},
		}

		_, err := c.ApplyManualPayment(selections, uuid.New(), nil)
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodePaymentOutOfOrder)
	})

	t.Run("the separation line never blocks sequencing", func(t *testing.T) {
		c := createConfirmedContract(t)

		selections := []ManualAllocation{
			{LineID: c.LineBySequence(1).ID, Amount: decimal.RequireFromString("9000")},
		}

		_, err := c.ApplyManualPayment(selections, uuid.New(), nil)
		require.NoError(t, err)
		assert.Equal(t, LineStateOpen, c.LineBySequence(0).State)
	})

	t.Run("earlier line covered by the same request unlocks later ones", func(t *testing.T) {
		c := createConfirmedContract(t)

		selections := []ManualAllocation{
			{LineID: c.LineBySequence(2).ID, Amount: decimal.RequireFromString("9000")},
			{LineID: c.LineBySequence(1).ID, Amount: decimal.RequireFromString("9000")},
		}

		_, err := c.ApplyManualPayment(selections, uuid.New(), nil)
		require.NoError(t, err)
		assert.Equal(t, LineStatePaid, c.LineBySequence(1).State)
		assert.Equal(t, LineStatePaid, c.LineBySequence(2).State)
	})

	t.Run("a partial cover of the earlier line does not unlock", func(t *testing.T) {
		c := createConfirmedContract(t)

		selections := []ManualAllocation{
			{LineID: c.LineBySequence(1).ID, Amount: decimal.RequireFromString("4500")},
			{LineID: c.LineBySequence(2).ID, Amount: decimal.RequireFromString("9000")},
		}

		_, err := c.ApplyManualPayment(selections, uuid.New(), nil)
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodePaymentOutOfOrder)

		// Nothing was applied
		assert.Equal(t, LineStateOpen, c.LineBySequence(1).State)
		assert.True(t, c.AmountPaid.IsZero())
	})

	t.Run("amount above the line residual is refused", func(t *testing.T) {
		c := createConfirmedContract(t)

		selections := []ManualAllocation{
			{LineID: c.LineBySequence(0).ID, Amount: decimal.RequireFromString("10000.02")},
		}

		_, err := c.ApplyManualPayment(selections, uuid.New(), nil)
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeAllocationOverflow)
	})

	t.Run("selection may cover the fee residue on top of the subtotal", func(t *testing.T) {
		c := createConfirmedContract(t)
		invoiceID := uuid.New()
		line := c.LineBySequence(0)
		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("300"), &invoiceID, time.Now()))

		residuals := map[uuid.UUID]decimal.Decimal{invoiceID: decimal.RequireFromString("300")}

		selections := []ManualAllocation{
			{LineID: line.ID, Amount: decimal.RequireFromString("10600")},
		}

		result, err := c.ApplyManualPayment(selections, uuid.New(), residuals)
		require.NoError(t, err)

		require.Len(t, result.Applications, 1)
		app := result.Applications[0]
		assert.True(t, app.FeeApplied.Equal(decimal.RequireFromString("300")))
		assert.True(t, app.Settled)
		assert.Equal(t, LineStatePaid, c.LineBySequence(0).State)

		// Anything past subtotal plus fee is still refused
		c2 := createConfirmedContract(t)
		invoiceID2 := uuid.New()
		line2 := c2.LineBySequence(0)
		require.NoError(t, c2.ApplyLateFee(line2.ID, decimal.RequireFromString("300"), &invoiceID2, time.Now()))
		residuals2 := map[uuid.UUID]decimal.Decimal{invoiceID2: decimal.RequireFromString("300")}

		_, err = c2.ApplyManualPayment([]ManualAllocation{
			{LineID: line2.ID, Amount: decimal.RequireFromString("10600.02")},
		}, uuid.New(), residuals2)
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeAllocationOverflow)
	})

	t.Run("partial amount leaves the line partial", func(t *testing.T) {
		c := createConfirmedContract(t)

		selections := []ManualAllocation{
			{LineID: c.LineBySequence(0).ID, Amount: decimal.RequireFromString("2500")},
		}

		result, err := c.ApplyManualPayment(selections, uuid.New(), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.LinesPartial())
		sep := c.LineBySequence(0)
		assert.Equal(t, LineStatePartial, sep.State)
		assert.True(t, sep.PartialPayment.Equal(decimal.RequireFromString("2500")))
	})

	t.Run("duplicate selection is refused", func(t *testing.T) {
		c := createConfirmedContract(t)
		id := c.LineBySequence(0).ID

		selections := []ManualAllocation{
			{LineID: id, Amount: decimal.RequireFromString("2500")},
			{LineID: id, Amount: decimal.RequireFromString("2500")},
		}

		_, err := c.ApplyManualPayment(selections, uuid.New(), nil)
		require.Error(t, err)
	})

	t.Run("unknown line is refused", func(t *testing.T) {
		c := createConfirmedContract(t)

		selections := []ManualAllocation{
			{LineID: uuid.New(), Amount: decimal.RequireFromString("2500")},
		}

		_, err := c.ApplyManualPayment(selections, uuid.New(), nil)
		require.Error(t, err)
	})

	t.Run("empty selection is refused", func(t *testing.T) {
		c := createConfirmedContract(t)

		_, err := c.ApplyManualPayment(nil, uuid.New(), nil)
		require.Error(t, err)
	})
}
