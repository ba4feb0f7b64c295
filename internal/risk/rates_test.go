package risk

import (
	"testing"

	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func instrument(board types.Board, marginable bool, rate string) model.Instrument {
	return model.Instrument{
		ID:           "ins-" + string(board),
		Symbol:       "SYM" + string(board),
		Board:        board,
		IsMarginable: marginable,
		MarginRate:   decimal.RequireFromString(rate),
	}
}

func TestEffectiveRate(t *testing.T) {
	t.Run("BoardA", func(t *testing.T) {
		rate := EffectiveRate(instrument(types.BoardA, true, "0.5"))
		assert.Equal(t, "0.5", rate.String())
	})

	t.Run("BoardBDiscounted", func(t *testing.T) {
		rate := EffectiveRate(instrument(types.BoardB, true, "0.4"))
		assert.Equal(t, "0.3", rate.String())
	})

	t.Run("BoardZBlocked", func(t *testing.T) {
		rate := EffectiveRate(instrument(types.BoardZ, true, "0.5"))
		assert.True(t, rate.IsZero())
	})

	t.Run("NotMarginable", func(t *testing.T) {
		rate := EffectiveRate(instrument(types.BoardA, false, "0.5"))
		assert.True(t, rate.IsZero())
	})
}

func TestStatusBands(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		utilization string
		want        types.RiskStatus
	}{
		{"0", types.RiskStatusSafe},
		{"49.99", types.RiskStatusSafe},
		{"50", types.RiskStatusWarning},
		{"69.99", types.RiskStatusWarning},
		{"70", types.RiskStatusMarginCall},
		{"84.99", types.RiskStatusMarginCall},
		{"85", types.RiskStatusForceSell},
		{"120", types.RiskStatusForceSell},
	}
	for _, tc := range cases {
		got := th.StatusFor(decimal.RequireFromString(tc.utilization))
		assert.Equal(t, tc.want, got, "utilization %s", tc.utilization)
	}
}
