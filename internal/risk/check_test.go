package risk

import (
	"testing"

	"lv-marginrisk/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTradeSellAlwaysPasses(t *testing.T) {
	s := testSnapshot("0", "0", "1.5")
	s.Profile.AllowMargin = false
	v := CheckTrade(s, instrument(types.BoardZ, false, "0"), types.TradeSideSell, decimal.NewFromInt(10), decimal.NewFromInt(100), true)
	assert.Nil(t, v)
}

func TestCheckTradeRuleOrder(t *testing.T) {
	qty := decimal.NewFromInt(10)
	price := decimal.NewFromInt(100)

	t.Run("MarginDisabledWinsFirst", func(t *testing.T) {
		s := testSnapshot("0", "100000", "1.5")
		s.Profile.AllowMargin = false
		// instrument also violates rules 2 and 3; rule 1 must win
		v := CheckTrade(s, instrument(types.BoardZ, false, "0"), types.TradeSideBuy, qty, price, true)
		require.NotNil(t, v)
		assert.Equal(t, RuleMarginDisabled, v.Rule)
	})

	t.Run("NotMarginable", func(t *testing.T) {
		s := testSnapshot("0", "100000", "1.5")
		v := CheckTrade(s, instrument(types.BoardZ, false, "0"), types.TradeSideBuy, qty, price, true)
		require.NotNil(t, v)
		assert.Equal(t, RuleNotMarginable, v.Rule)
	})

	t.Run("BoardZBlocked", func(t *testing.T) {
		s := testSnapshot("0", "100000", "1.5")
		v := CheckTrade(s, instrument(types.BoardZ, true, "0.5"), types.TradeSideBuy, qty, price, true)
		require.NotNil(t, v)
		assert.Equal(t, RuleBoardBlocked, v.Rule)
	})

	t.Run("ZeroRate", func(t *testing.T) {
		s := testSnapshot("0", "100000", "1.5")
		v := CheckTrade(s, instrument(types.BoardA, true, "0"), types.TradeSideBuy, qty, price, true)
		require.NotNil(t, v)
		assert.Equal(t, RuleZeroRate, v.Rule)
	})

	t.Run("ZeroRateAppliesToCashBuys", func(t *testing.T) {
		s := testSnapshot("0", "100000", "1.5")
		v := CheckTrade(s, instrument(types.BoardZ, true, "0.5"), types.TradeSideBuy, qty, price, false)
		require.NotNil(t, v)
		assert.Equal(t, RuleZeroRate, v.Rule)
	})
}

func TestCheckTradeExposure(t *testing.T) {
	t.Run("Exceeded", func(t *testing.T) {
		s := testSnapshot("0", "10000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "150"), // used 7500
		)
		// required: 100 * 100 * 0.5 = 5000 > available 2500
		v := CheckTrade(s, instrument(types.BoardA, true, "0.5"), types.TradeSideBuy, decimal.NewFromInt(100), decimal.NewFromInt(100), true)
		require.NotNil(t, v)
		assert.Equal(t, RuleExposureExceeded, v.Rule)
		assert.Equal(t, "5000", v.Required.String())
		assert.Equal(t, "2500", v.Available.String())
	})

	t.Run("ExactFitPasses", func(t *testing.T) {
		s := testSnapshot("0", "10000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "150"),
		)
		v := CheckTrade(s, instrument(types.BoardA, true, "0.5"), types.TradeSideBuy, decimal.NewFromInt(50), decimal.NewFromInt(100), true)
		assert.Nil(t, v)
	})

	t.Run("LeverageCapReducesRequired", func(t *testing.T) {
		s := testSnapshot("0", "10000", "0.25")
		// min(0.5, 0.25) = 0.25: required 100*100*0.25 = 2500
		v := CheckTrade(s, instrument(types.BoardA, true, "0.5"), types.TradeSideBuy, decimal.NewFromInt(100), decimal.NewFromInt(100), true)
		assert.Nil(t, v)
	})
}
