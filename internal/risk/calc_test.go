package risk

import (
	"testing"

	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testSnapshot(cash, maxExposure, leverage string, positions ...PositionView) Snapshot {
	return Snapshot{
		Client: model.Client{
			ID:          "c1",
			CashBalance: decimal.RequireFromString(cash),
		},
		Profile: model.RiskProfile{
			ClientID:           "c1",
			AllowMargin:        true,
			LeverageMultiplier: decimal.RequireFromString(leverage),
			MaxExposure:        decimal.RequireFromString(maxExposure),
		},
		Positions: positions,
	}
}

func position(id string, in model.Instrument, qty, avgPrice string) PositionView {
	return PositionView{
		Position: model.Position{
			ID:           id,
			ClientID:     "c1",
			InstrumentID: in.ID,
			Quantity:     decimal.RequireFromString(qty),
			AvgPrice:     decimal.RequireFromString(avgPrice),
		},
		Instrument: in,
	}
}

func TestUsedExposure(t *testing.T) {
	t.Run("MixedBoards", func(t *testing.T) {
		s := testSnapshot("0", "100000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"), // 10000
			position("p2", instrument(types.BoardB, true, "1"), "40", "50"),     // 40*50*0.75 = 1500
			position("p3", instrument(types.BoardZ, true, "0.5"), "10", "100"),  // skipped
			position("p4", instrument(types.BoardA, false, "0.5"), "10", "100"), // skipped
		)
		assert.Equal(t, "11500", UsedExposure(s).String())
	})

	t.Run("LeverageCapsRate", func(t *testing.T) {
		s := testSnapshot("0", "100000", "0.3",
			position("p1", instrument(types.BoardA, true, "0.8"), "100", "100"),
		)
		// min(0.8, 0.3) = 0.3
		assert.Equal(t, "3000", UsedExposure(s).String())
	})

	t.Run("Empty", func(t *testing.T) {
		s := testSnapshot("0", "100000", "1.5")
		assert.True(t, UsedExposure(s).IsZero())
	})
}

func TestAvailableExposure(t *testing.T) {
	t.Run("Positive", func(t *testing.T) {
		s := testSnapshot("0", "15000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"),
		)
		assert.Equal(t, "5000", AvailableExposure(s).String())
	})

	t.Run("ClampedAtZero", func(t *testing.T) {
		s := testSnapshot("0", "5000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"),
		)
		assert.True(t, AvailableExposure(s).IsZero())
	})
}

func TestUtilization(t *testing.T) {
	t.Run("Percent", func(t *testing.T) {
		s := testSnapshot("0", "23000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"),
			position("p2", instrument(types.BoardB, true, "1"), "40", "50"),
		)
		assert.Equal(t, "50", Utilization(s).String())
	})

	t.Run("ZeroMaxExposure", func(t *testing.T) {
		s := testSnapshot("0", "0", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"),
		)
		assert.True(t, Utilization(s).IsZero())
	})

	t.Run("Above100NotClamped", func(t *testing.T) {
		s := testSnapshot("0", "5000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"),
		)
		assert.Equal(t, "200", Utilization(s).String())
	})
}

func TestRequiredLoan(t *testing.T) {
	t.Run("Shortfall", func(t *testing.T) {
		s := testSnapshot("4000", "100000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"),
		)
		assert.Equal(t, "6000", RequiredLoan(s).String())
	})

	t.Run("CashCovers", func(t *testing.T) {
		s := testSnapshot("20000", "100000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"),
		)
		assert.True(t, RequiredLoan(s).IsZero())
	})
}

func TestExposureMonotonicInQuantity(t *testing.T) {
	in := instrument(types.BoardA, true, "0.5")
	prev := decimal.Zero
	for _, qty := range []string{"10", "50", "100", "250"} {
		s := testSnapshot("0", "100000", "1.5", position("p1", in, qty, "200"))
		used := UsedExposure(s)
		assert.True(t, used.GreaterThanOrEqual(prev), "qty %s", qty)
		prev = used
	}
}

func TestMaxExposureFor(t *testing.T) {
	got := MaxExposureFor(decimal.RequireFromString("50000"), decimal.RequireFromString("50000"), decimal.RequireFromString("1.5"))
	assert.Equal(t, "150000", got.String())
}
