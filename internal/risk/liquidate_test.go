package risk

import (
	"testing"

	"lv-marginrisk/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanLiquidationSweep(t *testing.T) {
	th := DefaultThresholds()

	t.Run("QuarterStepsUntilBelowWarning", func(t *testing.T) {
		// 300 × 1000 × 0.5 = 150000 used against 150000 max: 100% utilization.
		s := testSnapshot("0", "150000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "300", "1000"),
		)
		fills := PlanLiquidation(s, th)
		require.Len(t, fills, 2)
		assert.Equal(t, "75", fills[0].Quantity.String())
		assert.Equal(t, "225", fills[0].Remaining.String())
		// 225 × 0.25 = 56.25 leaves 168.75: utilization 56.25, below 70
		assert.Equal(t, "56.25", fills[1].Quantity.String())
		assert.Equal(t, "168.75", fills[1].Remaining.String())
	})

	t.Run("HighestExposureFirst", func(t *testing.T) {
		s := testSnapshot("0", "10000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "10", "100"),  // 500
			position("p2", instrument(types.BoardA, true, "0.5"), "100", "200"), // 10000
		)
		fills := PlanLiquidation(s, th)
		require.NotEmpty(t, fills)
		assert.Equal(t, "p2", fills[0].PositionID)
	})

	t.Run("TieBreaksByCreationOrder", func(t *testing.T) {
		s := testSnapshot("0", "10000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"),
			position("p2", instrument(types.BoardA, true, "0.5"), "100", "200"),
		)
		fills := PlanLiquidation(s, th)
		require.NotEmpty(t, fills)
		assert.Equal(t, "p1", fills[0].PositionID)
	})

	t.Run("BelowWarningNoFills", func(t *testing.T) {
		s := testSnapshot("0", "100000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "100", "200"), // util 10
		)
		assert.Empty(t, PlanLiquidation(s, th))
	})

	t.Run("NoLeveragedExposureNoFills", func(t *testing.T) {
		// Board Z positions contribute nothing to used exposure, so there
		// is nothing to sweep.
		s := testSnapshot("0", "100", "1.5",
			position("p1", instrument(types.BoardZ, true, "0.5"), "100", "200"),
		)
		assert.Empty(t, PlanLiquidation(s, th))
	})

	t.Run("DustSellsWholePosition", func(t *testing.T) {
		// 0.0001 × 0.25 rounds to zero at 4 decimals: sell it all.
		s := testSnapshot("0", "0.01", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "0.0001", "1000"),
		)
		fills := PlanLiquidation(s, th)
		require.Len(t, fills, 1)
		assert.Equal(t, "0.0001", fills[0].Quantity.String())
		assert.True(t, fills[0].Remaining.IsZero())
	})

	t.Run("DoesNotMutateInput", func(t *testing.T) {
		s := testSnapshot("0", "150000", "1.5",
			position("p1", instrument(types.BoardA, true, "0.5"), "300", "1000"),
		)
		PlanLiquidation(s, th)
		assert.Equal(t, "300", s.Positions[0].Position.Quantity.String())
	})
}
