package matching

import (
	"strings"

	"estate_matcher/identity"
	"estate_matcher/models"
)

// typeCategories buckets property type labels by substring. A label may fall
// in several buckets (an attico is both apartment-like and luxury).
var typeCategories = map[string][]string{
	"apartment":  {"appartamento", "attico", "loft", "monolocale", "bilocale", "trilocale", "apartment", "flat", "studio", "condo"},
	"house":      {"villa", "villetta", "casa indipendente", "casa a schiera", "detached", "townhouse", "cottage", "bungalow"},
	"commercial": {"negozio", "ufficio", "capannone", "laboratorio", "shop", "office"},
	"luxury":     {"attico", "villa", "loft", "penthouse", "mansion"},
}

const (
	exactTypePoints      = 50
	acceptableTypePoints = 30
	categoryTypePoints   = 20
	requiredPoints       = 30
	desiredPoints        = 20
	missingRequiredCap   = 40
)

// ScoreType rates the property type and feature list against the client's wishes.
func ScoreType(kind models.PropertyKind, prefs models.TypePreferences) int {
	score := 0

	switch {
	case identity.ContainsLabel(prefs.PreferredTypes, kind.PropertyType):
		score += exactTypePoints
	case identity.ContainsLabel(prefs.AcceptableTypes, kind.PropertyType):
		score += acceptableTypePoints
	case sharesCategory(kind.PropertyType, prefs.PreferredTypes):
		score += categoryTypePoints
	}

	if HasRequiredFeatures(kind.Features, prefs.RequiredFeatures) {
		score += requiredPoints
	} else {
		if score > missingRequiredCap {
			return missingRequiredCap
		}
		return score
	}

	score += desiredFeatureScore(kind.Features, prefs.DesiredFeatures)

	return clamp(score, 0, 100)
}

// HasRequiredFeatures reports whether every required feature occurs, by
// case-insensitive substring, in at least one of the property's features.
func HasRequiredFeatures(features, required []string) bool {
	for _, r := range required {
		if strings.TrimSpace(r) == "" {
			continue
		}
		if !hasFeature(features, r) {
			return false
		}
	}
	return true
}

func hasFeature(features []string, want string) bool {
	for _, f := range features {
		if identity.ContainsFold(f, want) {
			return true
		}
	}
	return false
}

func desiredFeatureScore(features, desired []string) int {
	if len(desired) == 0 {
		return desiredPoints / 2
	}
	if len(features) == 0 {
		return 0
	}

	matched := 0
	for _, d := range desired {
		if hasFeature(features, d) {
			matched++
		}
	}
	return round(float64(matched) / float64(len(desired)) * desiredPoints)
}

func categoriesOf(propertyType string) []string {
	normalized := identity.NormalizeLabel(propertyType)
	if normalized == "" {
		return nil
	}
	var cats []string
	for cat, labels := range typeCategories {
		for _, l := range labels {
			if strings.Contains(normalized, l) {
				cats = append(cats, cat)
				break
			}
		}
	}
	return cats
}

func sharesCategory(propertyType string, preferred []string) bool {
	own := categoriesOf(propertyType)
	if len(own) == 0 {
		return false
	}
	wanted := make(map[string]struct{})
	for _, p := range preferred {
		for _, c := range categoriesOf(p) {
			wanted[c] = struct{}{}
		}
	}
	for _, c := range own {
		if _, ok := wanted[c]; ok {
			return true
		}
	}
	return false
}
