package matching

import (
	"strings"

	"estate_matcher/identity"
	"estate_matcher/models"
)

// energyClassPoints is only consulted for eco conscious clients.
var energyClassPoints = map[string]int{
	"A+": 10,
	"A":  9,
	"B":  7,
	"C":  5,
	"D":  3,
	"E":  2,
	"F":  1,
	"G":  0,
}

// ScoreAffinity sums soft lifestyle points across critical factors, preferred
// amenities, nice-to-haves and energy efficiency. Groups the client said
// nothing about add nothing. The sum is not rescaled, so a client with a
// single stated preference tops out at that factor's own allowance.
func ScoreAffinity(am models.Amenities, life models.Lifestyle) int {
	if !life.Stated() {
		return 50
	}
	score := criticalFactors(am, life) +
		amenityFactors(am, life) +
		niceToHave(am, life) +
		environmental(am, life)
	return clamp(score, 0, 100)
}

func criticalFactors(am models.Amenities, life models.Lifestyle) int {
	score := 0

	if life.HasPets != nil {
		switch {
		case *life.HasPets && models.IsTrue(am.PetFriendly):
			score += 15
		case *life.HasPets:
			// deal breaker
		default:
			score += 10
		}
	}

	if life.NeedsParking != nil {
		switch {
		case *life.NeedsParking && models.IsTrue(am.HasParking):
			score += 10
		case *life.NeedsParking:
		default:
			score += 7
		}
	}

	if life.PrefersElevator != nil {
		switch {
		case *life.PrefersElevator && models.IsTrue(am.HasElevator):
			score += 8
		case *life.PrefersElevator:
			if am.Floor == nil || *am.Floor <= 2 {
				score += 4
			}
		default:
			score += 6
		}
	}

	if life.NeedsFurnished != nil {
		switch {
		case *life.NeedsFurnished && am.Furnished == models.FurnishedYes:
			score += 7
		case *life.NeedsFurnished && am.Furnished == models.FurnishedPartial:
			score += 4
		case *life.NeedsFurnished && am.Furnished == models.FurnishedNo:
		default:
			score += 5
		}
	}

	return score
}

func amenityFactors(am models.Amenities, life models.Lifestyle) int {
	score := 0

	if life.WantsOutdoorSpace != nil {
		outdoor := models.IsTrue(am.HasGarden) || models.IsTrue(am.HasTerrace) || models.IsTrue(am.HasBalcony)
		switch {
		case *life.WantsOutdoorSpace && outdoor:
			score += 12
		case *life.WantsOutdoorSpace:
			score += 3
		default:
			score += 8
		}
	}

	if life.WantsAmenities != nil {
		luxury := models.IsTrue(am.HasPool) || models.IsTrue(am.HasGym) || models.IsTrue(am.HasConcierge)
		switch {
		case *life.WantsAmenities && luxury:
			score += 10
		case *life.WantsAmenities:
			score += 2
		default:
			score += 7
		}
	}

	if life.PrefersModern != nil {
		switch {
		case *life.PrefersModern && (am.Condition == models.ConditionNew || am.Condition == models.ConditionExcellent):
			score += 8
		case *life.PrefersModern && am.Condition == models.ConditionToRenovate:
			score += 1
		default:
			score += 6
		}
	}

	return score
}

func niceToHave(am models.Amenities, life models.Lifestyle) int {
	score := 0

	if life.PrefersTopFloor != nil || life.PrefersGroundFloor != nil {
		switch {
		case am.Floor == nil:
			score += 5
		case models.IsTrue(life.PrefersTopFloor) && *am.Floor >= 4:
			score += 8
		case models.IsTrue(life.PrefersGroundFloor) && *am.Floor == 0:
			score += 8
		default:
			score += 5
		}
	}

	if len(life.PreferredExposition) > 0 {
		switch {
		case strings.TrimSpace(am.Exposition) == "":
			score += 5
		case expositionMatches(am.Exposition, life.PreferredExposition):
			score += 7
		default:
			score += 3
		}
	}

	if models.IsTrue(am.HasStorageRoom) {
		score += 5
	}

	return score
}

func expositionMatches(exposition string, preferred []string) bool {
	for _, p := range preferred {
		if identity.ContainsFold(exposition, p) {
			return true
		}
	}
	return false
}

func environmental(am models.Amenities, life models.Lifestyle) int {
	if life.EcoConscious == nil {
		return 0
	}
	if !*life.EcoConscious || strings.TrimSpace(am.EnergyClass) == "" {
		return 5
	}
	return EnergyClassScore(am.EnergyClass)
}

// EnergyClassScore maps an energy label to 0-10 points. Unknown labels get 5.
func EnergyClassScore(class string) int {
	key := strings.ToUpper(strings.ReplaceAll(class, " ", ""))
	if pts, ok := energyClassPoints[key]; ok {
		return pts
	}
	return 5
}
