package risk

import (
	"lv-marginrisk/internal/model"
	"lv-marginrisk/internal/types"

	"github.com/shopspring/decimal"
)

// CheckTrade runs the pre-trade hard rules against a snapshot. SELL is
// risk-reducing and always passes. For BUY the rules run in fixed order
// and the first failure wins. The check is pure: no state is touched.
func CheckTrade(s Snapshot, in model.Instrument, side types.TradeSide, quantity, price decimal.Decimal, isMargin bool) *Violation {
	if side == types.TradeSideSell {
		return nil
	}
	if isMargin && !s.Profile.AllowMargin {
		return newViolation(RuleMarginDisabled, "margin trading is disabled for this client")
	}
	if isMargin && !in.IsMarginable {
		return newViolation(RuleNotMarginable, in.Symbol+" is not marginable")
	}
	if isMargin && in.Board == types.BoardZ {
		return newViolation(RuleBoardBlocked, in.Symbol+" board is not eligible for margin")
	}
	rate := decimal.Min(EffectiveRate(in), s.Profile.LeverageMultiplier)
	if !rate.GreaterThan(decimal.Zero) {
		return newViolation(RuleZeroRate, "effective margin rate is zero for "+in.Symbol)
	}
	tradeValue := quantity.Mul(price).Round(2)
	required := tradeValue.Mul(rate).Round(2)
	available := AvailableExposure(s)
	if required.GreaterThan(available) {
		return &Violation{
			Rule:      RuleExposureExceeded,
			Message:   "exposure exceeded",
			Required:  required,
			Available: available,
		}
	}
	return nil
}
