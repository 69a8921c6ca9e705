package binance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestQuantizeDown(t *testing.T) {
	tests := []struct {
		value     string
		increment string
		want      string
	}{
		{value: "123.456", increment: "0.01", want: "123.45"},
		{value: "0.0007", increment: "0.001", want: "0"},
		{value: "0.12345", increment: "0.0001", want: "0.1234"},
		{value: "50000.567", increment: "0.01", want: "50000.56"},
		{value: "50000.567", increment: "0.01000000", want: "50000.56"},
		{value: "10", increment: "0.5", want: "10"},
		{value: "0.3", increment: "0.1", want: "0.3"},
		{value: "7", increment: "5", want: "5"},
		{value: "-1.25", increment: "0.5", want: "-1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.value+"@"+tt.increment, func(t *testing.T) {
			got := QuantizeDown(decimal.RequireFromString(tt.value), decimal.RequireFromString(tt.increment))
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestQuantizeDownProperties(t *testing.T) {
	increments := []string{"0.00000001", "0.001", "0.01", "0.5", "1", "10"}
	values := []string{"0", "0.000000015", "0.0009", "1.23456789", "99.999", "12345.6789", "1000000"}

	for _, rawInc := range increments {
		inc := decimal.RequireFromString(rawInc)
		for _, rawValue := range values {
			value := decimal.RequireFromString(rawValue)
			got := QuantizeDown(value, inc)

			require.True(t, got.LessThanOrEqual(value), "%s@%s", rawValue, rawInc)
			require.True(t, value.Sub(got).LessThan(inc), "%s@%s", rawValue, rawInc)
			require.True(t, got.Mod(inc).IsZero(), "%s@%s", rawValue, rawInc)
			require.True(t, QuantizeDown(got, inc).Equal(got), "%s@%s", rawValue, rawInc)
		}
	}
}

func TestQuantizeDownNonPositiveIncrement(t *testing.T) {
	value := decimal.RequireFromString("1.2345")
	require.True(t, QuantizeDown(value, decimal.Zero).Equal(value))
	require.True(t, QuantizeDown(value, decimal.RequireFromString("-0.1")).Equal(value))
}
