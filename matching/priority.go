package matching

import "estate_matcher/models"

// ScorePriority encodes the agency's client-tier policy. It is not a measure
// of physical fit and is kept apart from the other matchers.
func ScorePriority(listing models.ListingStanding, client models.ClientStanding) int {
	score := tierBase(client.Level)
	if client.IsVerified {
		score += 20
	}
	score += alignmentBonus(listing, client)
	score += engagementBonus(client)
	return clamp(score, 0, 100)
}

func tierBase(level models.PriorityLevel) int {
	switch level {
	case models.PriorityVIP:
		return 40
	case models.PriorityHigh:
		return 30
	case models.PriorityMedium:
		return 20
	case models.PriorityLow:
		return 10
	}
	return 15
}

// alignmentBonus favours top tiers on exclusive or premium listings and mid
// tier clients on ordinary inventory.
func alignmentBonus(listing models.ListingStanding, client models.ClientStanding) int {
	if listing.IsExclusive || listing.IsPremium {
		switch client.Level {
		case models.PriorityVIP:
			return 20
		case models.PriorityHigh:
			return 15
		case models.PriorityMedium:
			return 10
		}
		return 5
	}

	bonus := 10
	switch client.Level {
	case models.PriorityVIP, models.PriorityHigh:
		bonus = 15
	case models.PriorityMedium:
		bonus = 20
	}

	// fresh listings go to responsive clients first
	if listing.DaysOnMarket != nil && *listing.DaysOnMarket <= 7 &&
		client.ResponseRate != nil && *client.ResponseRate >= 80 {
		bonus += 5
	}

	if bonus > 20 {
		return 20
	}
	return bonus
}

func engagementBonus(client models.ClientStanding) int {
	bonus := 0
	if client.HasPreApproval {
		bonus += 10
	}
	if client.ResponseRate != nil {
		rate := *client.ResponseRate
		if rate < 0 {
			rate = 0
		}
		if rate > 100 {
			rate = 100
		}
		bonus += round(rate / 100 * 10)
	} else {
		bonus += 5
	}
	if bonus > 20 {
		return 20
	}
	return bonus
}

// PropertyUrgency orders listings for outreach: open, premium and fresh
// listings first. Listings that cannot be offered score 0.
func PropertyUrgency(avail models.PropertyAvailability, listing models.ListingStanding) int {
	urgency := 50
	switch avail.Status {
	case models.StatusAvailable:
		urgency += 30
	case models.StatusDraft:
		urgency += 20
	case models.StatusOption:
		urgency += 10
	default:
		return 0
	}

	if listing.IsPremium || listing.IsExclusive {
		urgency += 20
	}

	if listing.DaysOnMarket != nil {
		switch d := *listing.DaysOnMarket; {
		case d <= 3:
			urgency += 15
		case d <= 7:
			urgency += 10
		case d <= 30:
			urgency += 5
		case d > 90:
			urgency -= 10
		}
	}

	return clamp(urgency, 0, 100)
}

// ClientUrgency orders clients for contact.
func ClientUrgency(client models.ClientStanding) int {
	urgency := 50
	switch client.Level {
	case models.PriorityVIP:
		urgency += 40
	case models.PriorityHigh:
		urgency += 30
	case models.PriorityMedium:
		urgency += 15
	}
	if client.IsVerified {
		urgency += 10
	}
	if client.HasPreApproval {
		urgency += 15
	}
	if client.PastInteractions != nil {
		switch n := *client.PastInteractions; {
		case n >= 10:
			urgency += 10
		case n >= 5:
			urgency += 5
		}
	}
	return clamp(urgency, 0, 100)
}
