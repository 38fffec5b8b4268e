package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(10.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(10.50)))
	})

	t.Run("unsupported currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), Currency("EUR"))
		assert.Error(t, err)

		_, err = NewMoney(decimal.NewFromInt(1), Currency(""))
		assert.Error(t, err)
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("3.333", VES)
		require.NoError(t, err)
		assert.Equal(t, "3.333", m.Amount().String())

		_, err = NewMoneyFromString("not-a-number", VES)
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	ten := NewMoneyUSDFromFloat(10)
	three := NewMoneyUSDFromFloat(3)

	t.Run("add", func(t *testing.T) {
		sum, err := ten.Add(three)
		require.NoError(t, err)
		assert.Equal(t, "13.00", sum.StringFixed(2))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := ten.Subtract(three)
		require.NoError(t, err)
		assert.Equal(t, "7.00", diff.StringFixed(2))
	})

	t.Run("multiply keeps currency", func(t *testing.T) {
		m := three.Multiply(decimal.NewFromFloat(0.5))
		assert.Equal(t, USD, m.Currency())
		assert.Equal(t, "1.50", m.StringFixed(2))
	})

	t.Run("divide by zero rejected", func(t *testing.T) {
		_, err := ten.Divide(decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("currency mismatch rejected", func(t *testing.T) {
		bolivars := NewMoneyVES(decimal.NewFromInt(400))
		_, err := ten.Add(bolivars)
		assert.Error(t, err)
		_, err = ten.Subtract(bolivars)
		assert.Error(t, err)
		_, err = ten.GreaterThan(bolivars)
		assert.Error(t, err)
	})
}

func TestMoneyRounding(t *testing.T) {
	// half away from zero at 2 places
	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
	}
	for _, tc := range cases {
		m, err := NewMoneyFromString(tc.in, USD)
		require.NoError(t, err)
		assert.Equal(t, tc.want, m.Round(2).StringFixed(2), "round %s", tc.in)
	}
}

func TestMoneyDisplay(t *testing.T) {
	usd := NewMoneyUSDFromFloat(10)
	assert.Equal(t, "$10.00", usd.Display())

	ves := NewMoneyVES(decimal.NewFromInt(400))
	assert.Equal(t, "Bs. 400.00", ves.Display())
}

func TestCurrencyToggle(t *testing.T) {
	assert.Equal(t, VES, USD.Toggle())
	assert.Equal(t, USD, VES.Toggle())
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshal uses string amount", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(10.5)
		data, err := json.Marshal(m)
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":"10.5","currency":"USD"}`, string(data))
	})

	t.Run("round trip", func(t *testing.T) {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"400.00","currency":"VES"}`), &m))
		assert.Equal(t, VES, m.Currency())
		assert.Equal(t, "400.00", m.StringFixed(2))
	})

	t.Run("parse validates currency", func(t *testing.T) {
		_, err := ParseMoneyFromJSON([]byte(`{"amount":"1","currency":"XYZ"}`))
		assert.Error(t, err)
	})
}
