package matching

import (
	"estate_matcher/identity"
	"estate_matcher/models"
)

const (
	defaultMaxDistanceKm = 50

	cityPoints     = 40
	zonePoints     = 30
	distancePoints = 30
)

// ScoreZone rates the location of a property against the client's search area.
func ScoreZone(loc models.PropertyLocation, prefs models.ZonePreferences) int {
	score := 0

	if identity.ContainsLabel(prefs.PreferredCities, loc.City) {
		score += cityPoints
	}
	if identity.ContainsLabel(prefs.PreferredZones, loc.Zone) {
		score += zonePoints
	}

	switch {
	case prefs.CenterLat != nil && prefs.CenterLng != nil:
		score += distanceScore(loc, prefs)
	case prefs.CenterLat == nil && prefs.CenterLng == nil:
		score += distancePoints / 2
	}

	return clamp(score, 0, 100)
}

func distanceScore(loc models.PropertyLocation, prefs models.ZonePreferences) int {
	if loc.Lat == nil || loc.Lng == nil {
		// unknown position, same half credit as an unknown centre
		return distancePoints / 2
	}

	maxKm := float64(defaultMaxDistanceKm)
	if prefs.MaxDistanceKm != nil && *prefs.MaxDistanceKm > 0 {
		maxKm = *prefs.MaxDistanceKm
	}

	d := HaversineKm(*loc.Lat, *loc.Lng, *prefs.CenterLat, *prefs.CenterLng)
	if d > maxKm {
		return 0
	}
	return round((1 - d/maxKm) * distancePoints)
}
