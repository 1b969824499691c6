package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), DOP)
		require.NoError(t, err)
		assert.Equal(t, "100.50 DOP", m.String())
	})

	t.Run("empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("333.34", DOP)
		require.NoError(t, err)
		assert.Equal(t, "333.34", m.StringFixed(2))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", DOP)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyDOPFromFloat(100.00)
	b := NewMoneyDOPFromFloat(33.33)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "133.33", sum.StringFixed(2))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "66.67", diff.StringFixed(2))
	})

	t.Run("currency mismatch", func(t *testing.T) {
		usd, _ := NewMoneyFromFloat(10, USD)
		_, err := a.Add(usd)
		assert.Error(t, err)
		_, err = a.Subtract(usd)
		assert.Error(t, err)
	})

	t.Run("divide by zero", func(t *testing.T) {
		_, err := a.Divide(decimal.Zero)
		assert.Error(t, err)
	})
}

func TestMoney_RoundHalfUp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"rounds half up", "333.335", "333.34"},
		{"rounds down below half", "333.334", "333.33"},
		{"exact two places unchanged", "100.10", "100.10"},
		{"negative rounds away from zero at half", "-333.335", "-333.34"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyDOPFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.RoundCurrency().StringFixed(2))
		})
	}
}

func TestMoney_IsSettled(t *testing.T) {
	tests := []struct {
		amount  float64
		settled bool
	}{
		{0.0, true},
		{0.009, true},
		{-0.009, true},
		{0.01, false},
		{-0.01, false},
		{5.00, false},
	}

	for _, tt := range tests {
		m := NewMoneyDOPFromFloat(tt.amount)
		assert.Equal(t, tt.settled, m.IsSettled(), "amount %v", tt.amount)
	}
}

func TestMoney_WithinTolerance(t *testing.T) {
	a := NewMoneyDOPFromFloat(100.00)
	b := NewMoneyDOPFromFloat(100.005)
	c := NewMoneyDOPFromFloat(100.02)

	ok, err := a.WithinTolerance(b)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.WithinTolerance(c)
	require.NoError(t, err)
	assert.False(t, ok)

	usd, _ := NewMoneyFromFloat(100, USD)
	_, err = a.WithinTolerance(usd)
	assert.Error(t, err)
}

func TestMoney_Allocate(t *testing.T) {
	t.Run("splits with remainder spread", func(t *testing.T) {
		m := NewMoneyDOPFromFloat(100.00)
		parts, err := m.Allocate(3)
		require.NoError(t, err)
		require.Len(t, parts, 3)

		total := ZeroDOP()
		for _, p := range parts {
			total = total.MustAdd(p)
		}
		assert.True(t, total.Equals(m), "parts should sum to the original amount")
	})

	t.Run("invalid parts", func(t *testing.T) {
		m := NewMoneyDOPFromFloat(100.00)
		_, err := m.Allocate(0)
		assert.Error(t, err)
	})
}

func TestMoney_CalculatePercentage(t *testing.T) {
	m := NewMoneyDOPFromFloat(200.00)
	fee := m.CalculatePercentage(decimal.NewFromFloat(10))
	assert.Equal(t, "20.00", fee.RoundCurrency().StringFixed(2))

	fee = m.CalculatePercentage(decimal.NewFromFloat(2.5))
	assert.Equal(t, "5.00", fee.RoundCurrency().StringFixed(2))
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyDOPFromFloat(150.75)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.50"))
	assert.Equal(t, "42.50", m.StringFixed(2))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(42))
}
