package risk

import "github.com/shopspring/decimal"

var quarter = decimal.RequireFromString("0.25")

// Fill is one forced-sell step produced by the liquidation sweep.
type Fill struct {
	PositionID   string
	InstrumentID string
	Symbol       string
	Quantity     decimal.Decimal
	Remaining    decimal.Decimal
}

// PlanLiquidation simulates the forced-sell sweep and returns the fills to
// apply. Each step picks the position with the highest current leveraged
// exposure (creation order breaks ties), sells 25% of its quantity rounded
// to 4 decimals (the whole remainder when that rounds to dust), and stops
// as soon as utilization drops below the WARNING band or nothing sellable
// is left. Running out of quantity before the threshold is reached is not
// an error; the plan just ends there.
func PlanLiquidation(s Snapshot, th Thresholds) []Fill {
	positions := make([]PositionView, len(s.Positions))
	copy(positions, s.Positions)
	work := s
	work.Positions = positions

	var fills []Fill
	for {
		if Utilization(work).LessThan(th.Warning) {
			break
		}
		best := -1
		bestExposure := decimal.Zero
		for i, p := range positions {
			if !p.Position.Quantity.GreaterThan(decimal.Zero) {
				continue
			}
			exposure := positionExposure(p, work.Profile.LeverageMultiplier)
			if !exposure.GreaterThan(decimal.Zero) {
				continue
			}
			if best == -1 || exposure.GreaterThan(bestExposure) {
				best = i
				bestExposure = exposure
			}
		}
		if best == -1 {
			break
		}
		held := positions[best].Position.Quantity
		sell := held.Mul(quarter).Round(4)
		if !sell.GreaterThan(decimal.Zero) || sell.GreaterThan(held) {
			sell = held
		}
		remaining := held.Sub(sell)
		if remaining.LessThan(decimal.Zero) {
			remaining = decimal.Zero
		}
		positions[best].Position.Quantity = remaining
		fills = append(fills, Fill{
			PositionID:   positions[best].Position.ID,
			InstrumentID: positions[best].Instrument.ID,
			Symbol:       positions[best].Instrument.Symbol,
			Quantity:     sell,
			Remaining:    remaining,
		})
	}
	return fills
}
