package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "$0.00",
		"5":         "$5.00",
		"0.825825":  "$0.83",
		"999.995":   "$1,000.00",
		"1234567.8": "$1,234,567.80",
		"-50":       "-$50.00",
		"-0.001":    "$0.00",
		"100000":    "$100,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, Money(decimal.RequireFromString(in)), in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "8.25", Percent(decimal.RequireFromString("8.250")))
	assert.Equal(t, "10", Percent(decimal.NewFromInt(10)))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "03/07/2026", Date(time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)))
}
