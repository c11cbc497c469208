package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		cents int64
	}{
		{"plain", "47.90", 4790},
		{"thousands", "1234.56", 123456},
		{"rounding half up", "0.005", 1},
		{"zero", "0", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.cents, FromDecimal(d).Cents())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	sum := FromCents(4790).Add(FromCents(15000))
	assert.Equal(t, int64(19790), sum.Cents())
	assert.Equal(t, "197.90", sum.Decimal().StringFixed(2))

	assert.True(t, Zero().IsZero())
	assert.False(t, sum.IsZero())
}

func TestMoney_Display(t *testing.T) {
	assert.Equal(t, "R$1.234,56", FromCents(123456).Display())
	assert.Equal(t, "R$0,00", Zero().Display())

	var nilMoney *Money
	assert.Equal(t, "R$0,00", nilMoney.Display())
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(FromCents(4790))
	require.NoError(t, err)
	assert.Equal(t, `"47.90"`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"1234.56"`), &m))
	assert.Equal(t, int64(123456), m.Cents())

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
	assert.Error(t, json.Unmarshal([]byte(`42`), &m))
}
