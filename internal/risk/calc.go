package risk

import (
	"lv-marginrisk/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PositionView is a position joined with its instrument reference data.
type PositionView struct {
	Position   model.Position
	Instrument model.Instrument
}

// Snapshot is the per-client state the engine computes over. It is loaded
// in one transaction so positions, profile and loan never disagree.
type Snapshot struct {
	Client    model.Client
	Profile   model.RiskProfile
	Positions []PositionView
	Loan      *model.MarginLoan
}

func positionExposure(p PositionView, leverageMultiplier decimal.Decimal) decimal.Decimal {
	rate := EffectiveRate(p.Instrument)
	if !rate.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	lev := decimal.Min(rate, leverageMultiplier)
	if !lev.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return p.Position.Quantity.Mul(p.Position.AvgPrice).Mul(lev)
}

// UsedExposure is Σ qty × avg_price × min(effective_rate, leverage_multiplier)
// across the client's positions, rounded half-up to cents.
func UsedExposure(s Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Positions {
		total = total.Add(positionExposure(p, s.Profile.LeverageMultiplier))
	}
	return total.Round(2)
}

func AvailableExposure(s Snapshot) decimal.Decimal {
	avail := s.Profile.MaxExposure.Sub(UsedExposure(s))
	if avail.LessThan(decimal.Zero) {
		return decimal.Zero.Round(2)
	}
	return avail.Round(2)
}

// Utilization is used/max in percent, 0 when max_exposure is 0. The value
// is not clamped above 100.
func Utilization(s Snapshot) decimal.Decimal {
	if !s.Profile.MaxExposure.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return UsedExposure(s).Div(s.Profile.MaxExposure).Mul(hundred).Round(2)
}

// RequiredLoan is the shortfall between exposure and cash the loan record
// must carry: max(0, used − cash).
func RequiredLoan(s Snapshot) decimal.Decimal {
	req := UsedExposure(s).Sub(s.Client.CashBalance)
	if req.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return req.Round(2)
}

// MaxExposureFor is (cash + collateral) × leverage_multiplier.
func MaxExposureFor(cash, collateral, leverageMultiplier decimal.Decimal) decimal.Decimal {
	return cash.Add(collateral).Mul(leverageMultiplier).Round(2)
}
