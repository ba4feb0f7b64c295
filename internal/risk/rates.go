package risk

import (
	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/types"

	"github.com/shopspring/decimal"
)

var boardBDiscount = decimal.RequireFromString("0.75")

// EffectiveRate derives the margin rate an instrument actually trades at:
// board Z and non-marginable instruments are hard-blocked, board B gets a
// 25% discount on the base rate, board A uses the base rate unchanged.
// The discounted B rate is kept at full precision; rounding happens once
// on the final monetary figures.
func EffectiveRate(in model.Instrument) decimal.Decimal {
	if !in.IsMarginable {
		return decimal.Zero
	}
	switch in.Board {
	case types.BoardA:
		return in.MarginRate
	case types.BoardB:
		return in.MarginRate.Mul(boardBDiscount)
	default:
		return decimal.Zero
	}
}

// Thresholds are the utilization band edges in percent. A value exactly at
// an edge belongs to the higher-risk band.
type Thresholds struct {
	Safe       decimal.Decimal
	Warning    decimal.Decimal
	MarginCall decimal.Decimal
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Safe:       decimal.NewFromInt(50),
		Warning:    decimal.NewFromInt(70),
		MarginCall: decimal.NewFromInt(85),
	}
}

func (t Thresholds) StatusFor(utilization decimal.Decimal) types.RiskStatus {
	switch {
	case utilization.LessThan(t.Safe):
		return types.RiskStatusSafe
	case utilization.LessThan(t.Warning):
		return types.RiskStatusWarning
	case utilization.LessThan(t.MarginCall):
		return types.RiskStatusMarginCall
	default:
		return types.RiskStatusForceSell
	}
}
