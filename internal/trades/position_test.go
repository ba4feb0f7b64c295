package trades

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuyPosition(t *testing.T) {
	t.Run("WeightedAverage", func(t *testing.T) {
		qty, avg := buyPosition(decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.NewFromInt(200))
		assert.Equal(t, "20", qty.String())
		assert.Equal(t, "150", avg.String())
	})

	t.Run("AverageRoundedToCents", func(t *testing.T) {
		qty, avg := buyPosition(decimal.NewFromInt(3), decimal.RequireFromString("10.00"), decimal.NewFromInt(1), decimal.RequireFromString("10.05"))
		assert.Equal(t, "4", qty.String())
		// (30 + 10.05) / 4 = 10.0125
		assert.Equal(t, "10.01", avg.String())
	})
}

func TestSellPosition(t *testing.T) {
	remaining := sellPosition(decimal.NewFromInt(10), decimal.NewFromInt(4))
	assert.Equal(t, "6", remaining.String())
}
