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
// State Tests
// ============================================

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		state   State
		isValid bool
	}{
		{StateDraft, true},
		{StateConfirmed, true},
		{StateDone, true},
		{StateCancelled, true},
		{State("INVALID"), false},
		{State(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.state.IsValid())
		})
	}
}

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state      State
		isTerminal bool
	}{
		{StateDraft, false},
		{StateConfirmed, false},
		{StateDone, true},
		{StateCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.state.IsTerminal())
		})
	}
}

// ============================================
// NewContract Tests
// ============================================

func TestNewContract(t *testing.T) {
	t.Run("creates draft contract with valid inputs", func(t *testing.T) {
		c := createTestContract(t)

		assert.Equal(t, StateDraft, c.State)
		assert.True(t, c.InitialTotal.Equal(decimal.RequireFromString("90000")))
		assert.Empty(t, c.Lines)
		assert.False(t, c.InstallmentsCompleted)
		assert.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventContractCreated, c.GetDomainEvents()[0].EventType())
	})

	t.Run("validation failures", func(t *testing.T) {
		valid := func() NewContractParams {
			return NewContractParams{
				CompanyID:        uuid.New(),
				Name:             "CT-2026-00001",
				PartnerID:        uuid.New(),
				InceptiveAmount:  decimal.RequireFromString("100000"),
				SeparationAmount: decimal.RequireFromString("10000"),
				PeriodCount:      10,
				IntervalMonths:   1,
				StartDate:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			}
		}

		tests := []struct {
			name   string
			mutate func(*NewContractParams)
		}{
			{"empty name", func(p *NewContractParams) { p.Name = "" }},
			{"nil company", func(p *NewContractParams) { p.CompanyID = uuid.Nil }},
			{"nil partner", func(p *NewContractParams) { p.PartnerID = uuid.Nil }},
			{"zero periods", func(p *NewContractParams) { p.PeriodCount = 0 }},
			{"zero interval", func(p *NewContractParams) { p.IntervalMonths = 0 }},
			{"zero inceptive", func(p *NewContractParams) { p.InceptiveAmount = decimal.Zero }},
			{"negative separation", func(p *NewContractParams) { p.SeparationAmount = decimal.RequireFromString("-1") }},
			{"separation above inceptive", func(p *NewContractParams) { p.SeparationAmount = decimal.RequireFromString("200000") }},
			{"negative rate", func(p *NewContractParams) { p.LateFeeRate = decimal.RequireFromString("-3") }},
			{"zero start date", func(p *NewContractParams) { p.StartDate = time.Time{} }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := valid()
				tt.mutate(&p)
				_, err := NewContract(p)
				assert.Error(t, err)
			})
		}
	})
}

// ============================================
// Lifecycle Tests
// ============================================

func TestContract_Confirm(t *testing.T) {
	t.Run("confirms draft contract with schedule", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.BuildSchedule())

		err := c.Confirm()
		require.NoError(t, err)

		assert.Equal(t, StateConfirmed, c.State)
	})

	t.Run("fails without a schedule", func(t *testing.T) {
		c := createTestContract(t)

		err := c.Confirm()
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeInvalidTransition)
	})

	t.Run("fails when already confirmed", func(t *testing.T) {
		c := createConfirmedContract(t)

		err := c.Confirm()
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeInvalidTransition)
	})
}

func TestContract_MarkDone(t *testing.T) {
	t.Run("completes once every line is paid", func(t *testing.T) {
		c := createConfirmedContract(t)
		_, err := c.ApplyPayment(c.TotalOutstanding(), uuid.New(), nil)
		require.NoError(t, err)
		require.True(t, c.InstallmentsCompleted)

		err = c.MarkDone(true)
		require.NoError(t, err)

		assert.Equal(t, StateDone, c.State)
	})

	t.Run("fails while installments remain outstanding", func(t *testing.T) {
		c := createConfirmedContract(t)

		err := c.MarkDone(true)
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeInvalidTransition)
	})

	t.Run("fails without a settlement journal invoice", func(t *testing.T) {
		c := createConfirmedContract(t)
		_, err := c.ApplyPayment(c.TotalOutstanding(), uuid.New(), nil)
		require.NoError(t, err)

		err = c.MarkDone(false)
		require.Error(t, err)
	})

	t.Run("fails in draft", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.BuildSchedule())

		err := c.MarkDone(true)
		require.Error(t, err)
	})

	t.Run("charged lines do not block completion", func(t *testing.T) {
		c := createConfirmedContract(t)

		// Accrue a fee on the last installment, settle everything else in full
		last := c.LineBySequence(10)
		require.NoError(t, c.ApplyLateFee(last.ID, decimal.RequireFromString("270"), nil, time.Now()))

		for _, line := range c.OutstandingLines() {
			if line.ID == last.ID {
				continue
			}
			line.settleFull(nil)
		}
		c.RecomputeTotals()

		err := c.MarkDone(true)
		require.NoError(t, err)
	})
}

func TestContract_Cancel(t *testing.T) {
	t.Run("cancels confirmed contract and its open lines", func(t *testing.T) {
		c := createConfirmedContract(t)

		err := c.Cancel()
		require.NoError(t, err)

		assert.Equal(t, StateCancelled, c.State)
		for _, line := range c.Lines {
			assert.Equal(t, LineStateCancel, line.State)
		}
	})

	t.Run("partially paid lines keep their state", func(t *testing.T) {
		c := createConfirmedContract(t)
		_, err := c.ApplyPayment(decimal.RequireFromString("4000"), uuid.New(), nil)
		require.NoError(t, err)

		require.NoError(t, c.Cancel())

		assert.Equal(t, LineStatePartial, c.Lines[0].State)
		for _, line := range c.Lines[1:] {
			assert.Equal(t, LineStateCancel, line.State)
		}
	})

	t.Run("refused once fully settled", func(t *testing.T) {
		c := createConfirmedContract(t)
		_, err := c.ApplyPayment(c.TotalOutstanding(), uuid.New(), nil)
		require.NoError(t, err)

		err = c.Cancel()
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeNothingToCancel)
	})

	t.Run("refused on a closed contract", func(t *testing.T) {
		c := createConfirmedContract(t)
		require.NoError(t, c.Cancel())

		err := c.Cancel()
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeInvalidTransition)
	})

	t.Run("cancelled totals exclude cancelled lines", func(t *testing.T) {
		c := createConfirmedContract(t)
		require.NoError(t, c.Cancel())

		assert.True(t, c.AmountTotal.IsZero())
		assert.True(t, c.AmountDueTotal.IsZero())
	})
}

func TestContract_ResetToDraft(t *testing.T) {
	t.Run("reopens confirmed contract and destroys the schedule", func(t *testing.T) {
		c := createConfirmedContract(t)

		err := c.ResetToDraft()
		require.NoError(t, err)

		assert.Equal(t, StateDraft, c.State)
		assert.Empty(t, c.Lines)
		assert.False(t, c.InstallmentsCompleted)
	})

	t.Run("refused after a partial payment", func(t *testing.T) {
		c := createConfirmedContract(t)
		_, err := c.ApplyPayment(decimal.RequireFromString("500"), uuid.New(), nil)
		require.NoError(t, err)

		err = c.ResetToDraft()
		require.Error(t, err)
		assertDomainCode(t, err, ErrCodeInvalidTransition)
	})

	t.Run("refused after a full line payment", func(t *testing.T) {
		c := createConfirmedContract(t)
		_, err := c.ApplyPayment(decimal.RequireFromString("10000"), uuid.New(), nil)
		require.NoError(t, err)

		err = c.ResetToDraft()
		require.Error(t, err)
	})

	t.Run("reopens cancelled contract", func(t *testing.T) {
		c := createConfirmedContract(t)
		require.NoError(t, c.Cancel())

		err := c.ResetToDraft()
		require.NoError(t, err)
		assert.Equal(t, StateDraft, c.State)
	})
}

// ============================================
// Roll-up Tests
// ============================================

func TestContract_RecomputeTotals(t *testing.T) {
	t.Run("due total clamps at zero on overpayment bookkeeping", func(t *testing.T) {
		c := createConfirmedContract(t)

		c.AmountPaid = decimal.RequireFromString("150000")
		c.RecomputeTotals()

		assert.True(t, c.AmountDueTotal.IsZero())
	})

	t.Run("invoice adjustment raises the due total", func(t *testing.T) {
		c := createTestContract(t)
		c.InvoiceAdjustment = decimal.RequireFromString("2500")
		require.NoError(t, c.BuildSchedule())

		assert.True(t, c.AmountDueTotal.Equal(decimal.RequireFromString("102500")))
	})

	t.Run("charges feed the totals", func(t *testing.T) {
		c := createConfirmedContract(t)
		line := c.LineBySequence(1)

		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("270"), nil, time.Now()))

		assert.True(t, c.AmountCharge.Equal(decimal.RequireFromString("270")))
		assert.True(t, c.AmountTotal.Equal(decimal.RequireFromString("100270")))
		assert.True(t, c.AmountDueTotal.Equal(decimal.RequireFromString("100270")))
	})
}

func TestContract_ApplyLateFee(t *testing.T) {
	t.Run("accrues fee and records history", func(t *testing.T) {
		c := createConfirmedContract(t)
		line := c.LineBySequence(2)
		invoiceID := uuid.New()

		err := c.ApplyLateFee(line.ID, decimal.RequireFromString("270"), &invoiceID, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		line = c.LineBySequence(2)
		assert.True(t, line.ChargeAmount.Equal(decimal.RequireFromString("270")))
		assert.True(t, line.LatePayment.Equal(decimal.RequireFromString("270")))
		assert.True(t, line.AmountSubtotal.Equal(decimal.RequireFromString("9270")))
		assert.Equal(t, &invoiceID, line.LateFeeInvoiceID)

		require.Len(t, c.History, 1)
		assert.Equal(t, line.ID, c.History[0].LineID)
		assert.True(t, c.History[0].Charge.Equal(decimal.RequireFromString("270")))
	})

	t.Run("second accrual accumulates charge but overwrites residue", func(t *testing.T) {
		c := createConfirmedContract(t)
		line := c.LineBySequence(2)

		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("270"), nil, time.Now()))
		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("278.10"), nil, time.Now()))

		line = c.LineBySequence(2)
		assert.True(t, line.ChargeAmount.Equal(decimal.RequireFromString("548.10")))
		assert.True(t, line.LatePayment.Equal(decimal.RequireFromString("278.10")))
		assert.Len(t, c.History, 2)
	})

	t.Run("refused on paid line", func(t *testing.T) {
		c := createConfirmedContract(t)
		_, err := c.ApplyPayment(decimal.RequireFromString("10000"), uuid.New(), nil)
		require.NoError(t, err)

		sep := c.LineBySequence(SeparationSequence)
		require.Equal(t, LineStatePaid, sep.State)

		err = c.ApplyLateFee(sep.ID, decimal.RequireFromString("100"), nil, time.Now())
		require.Error(t, err)
	})

	t.Run("refused with non-positive fee", func(t *testing.T) {
		c := createConfirmedContract(t)
		line := c.LineBySequence(1)

		err := c.ApplyLateFee(line.ID, decimal.Zero, nil, time.Now())
		require.Error(t, err)
	})

	t.Run("refused on unknown line", func(t *testing.T) {
		c := createConfirmedContract(t)

		err := c.ApplyLateFee(uuid.New(), decimal.RequireFromString("100"), nil, time.Now())
		require.Error(t, err)
	})
}

func TestContract_AmendLateFee(t *testing.T) {
	t.Run("replaces the unpaid charge in place", func(t *testing.T) {
		c := createConfirmedContract(t)
		line := c.LineBySequence(2)
		invoiceID := uuid.New()
		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("270"), &invoiceID, time.Now()))

		err := c.AmendLateFee(line.ID, decimal.RequireFromString("350"), time.Now())
		require.NoError(t, err)

		line = c.LineBySequence(2)
		assert.True(t, line.ChargeAmount.Equal(decimal.RequireFromString("350")))
		assert.True(t, line.LatePayment.Equal(decimal.RequireFromString("350")))
		assert.True(t, line.AmountSubtotal.Equal(decimal.RequireFromString("9350")))
		assert.Equal(t, &invoiceID, line.LateFeeInvoiceID)
		assert.Len(t, c.History, 2)
	})

	t.Run("refused without a linked fee invoice", func(t *testing.T) {
		c := createConfirmedContract(t)
		line := c.LineBySequence(2)

		err := c.AmendLateFee(line.ID, decimal.RequireFromString("350"), time.Now())
		require.Error(t, err)
	})

	t.Run("refused with non-positive fee", func(t *testing.T) {
		c := createConfirmedContract(t)
		line := c.LineBySequence(2)
		invoiceID := uuid.New()
		require.NoError(t, c.ApplyLateFee(line.ID, decimal.RequireFromString("270"), &invoiceID, time.Now()))

		err := c.AmendLateFee(line.ID, decimal.Zero, time.Now())
		require.Error(t, err)
	})
}

func TestContract_OutstandingLines(t *testing.T) {
	c := createConfirmedContract(t)

	lines := c.OutstandingLines()
	require.Len(t, lines, 11)

	for i := 1; i < len(lines); i++ {
		assert.False(t, lines[i].DueDate.Before(lines[i-1].DueDate))
	}

	// Settle the separation line; it drops out
	_, err := c.ApplyPayment(decimal.RequireFromString("10000"), uuid.New(), nil)
	require.NoError(t, err)

	lines = c.OutstandingLines()
	assert.Len(t, lines, 10)
	assert.Equal(t, 1, lines[0].Sequence)
}
