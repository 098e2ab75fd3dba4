package matching

import "estate_matcher/models"

const (
	belowMinTolerance = 0.2
	aboveMaxTolerance = 0.3
)

// ScoreBudget rates the listing price against the client's budget band.
// A contract type mismatch always scores 0.
func ScoreBudget(pricing models.PropertyPricing, budget models.Budget) int {
	if pricing.ContractType != budget.ContractType {
		return 0
	}

	price := pricing.Price()
	if price == nil || budget.Max == nil || *budget.Max <= 0 {
		return 50
	}

	p := *price
	hi := *budget.Max
	lo := 0.0
	if budget.Min != nil && *budget.Min > 0 {
		lo = *budget.Min
	}

	switch {
	case p >= lo && p <= hi:
		half := (hi - lo) / 2
		if half == 0 {
			return 100
		}
		dev := p - (lo + half)
		if dev < 0 {
			dev = -dev
		}
		return clamp(round(80+(1-dev/half)*20), 80, 100)

	case p < lo:
		allowed := lo * belowMinTolerance
		shortfall := lo - p
		if shortfall > allowed {
			return 0
		}
		return round(60 + (1-shortfall/allowed)*19)

	default:
		allowed := hi * aboveMaxTolerance
		excess := p - hi
		if excess > allowed {
			return 0
		}
		return round(40 + (1-excess/allowed)*39)
	}
}

// BudgetFlexibility rates how wide the client's band is relative to its
// average. An open band is fully flexible.
func BudgetFlexibility(budget models.Budget) int {
	if budget.Min == nil || budget.Max == nil || *budget.Min <= 0 || *budget.Max <= 0 {
		return 100
	}

	span := *budget.Max - *budget.Min
	avg := (*budget.Max + *budget.Min) / 2
	ratio := span / avg

	switch {
	case ratio >= 0.4:
		return 100
	case ratio >= 0.2:
		return clamp(round(34+(ratio-0.2)*165), 0, 100)
	default:
		return clamp(round(ratio*165), 0, 100)
	}
}
