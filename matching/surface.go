package matching

import (
	"math"

	"estate_matcher/models"
)

type weightedScore struct {
	score  int
	weight float64
}

// ScoreSurface combines surface, rooms, bedrooms and bathrooms fit. Only the
// constraints the client stated are evaluated, and their weights are
// renormalised over what was evaluated.
func ScoreSurface(size models.PropertySize, req models.SizeRequirements) int {
	if req.Empty() {
		return 50
	}

	var parts []weightedScore
	if req.SurfaceMin != nil || req.SurfaceMax != nil {
		parts = append(parts, weightedScore{areaScore(size.Surface(), req.SurfaceMin, req.SurfaceMax), 0.4})
	}
	if req.RoomsMin != nil || req.RoomsMax != nil {
		parts = append(parts, weightedScore{roomsScore(size.Rooms, req.RoomsMin, req.RoomsMax), 0.3})
	}
	if req.BedroomsMin != nil {
		parts = append(parts, weightedScore{bedroomsScore(size.Bedrooms, *req.BedroomsMin), 0.2})
	}
	if req.BathroomsMin != nil {
		parts = append(parts, weightedScore{bathroomsScore(size.Bathrooms, *req.BathroomsMin), 0.1})
	}

	var total, weights float64
	for _, p := range parts {
		total += float64(p.score) * p.weight
		weights += p.weight
	}
	if weights == 0 {
		return 50
	}
	return clamp(round(total/weights), 0, 100)
}

func areaScore(surface, minPtr, maxPtr *float64) int {
	if surface == nil {
		return 50
	}
	s := *surface
	lo, hi := 0.0, math.Inf(1)
	if minPtr != nil && *minPtr > 0 {
		lo = *minPtr
	}
	if maxPtr != nil && *maxPtr > 0 {
		hi = *maxPtr
	}

	switch {
	case s >= lo && s <= hi:
		return 100
	case s < lo:
		allowed := lo * 0.15
		shortfall := lo - s
		if shortfall > allowed {
			return 0
		}
		return round(60 + (1-shortfall/allowed)*40)
	default:
		allowed := hi * 0.25
		excess := s - hi
		if excess > allowed {
			return 0
		}
		return round(70 + (1-excess/allowed)*30)
	}
}

func roomsScore(rooms, minPtr, maxPtr *int) int {
	if rooms == nil {
		return 50
	}
	r := *rooms
	lo, hi := 0, math.MaxInt
	if minPtr != nil {
		lo = *minPtr
	}
	if maxPtr != nil && *maxPtr > 0 {
		hi = *maxPtr
	}

	switch {
	case r >= lo && r <= hi:
		return 100
	case r < lo:
		if lo-r == 1 {
			return 50
		}
		return 0
	default:
		switch r - hi {
		case 1:
			return 80
		case 2:
			return 60
		}
		return 40
	}
}

func bedroomsScore(bedrooms *int, min int) int {
	if bedrooms == nil {
		return 50
	}
	b := *bedrooms
	if b >= min {
		switch b - min {
		case 0:
			return 100
		case 1:
			return 90
		case 2:
			return 80
		}
		return 70
	}
	if min-b == 1 {
		return 40
	}
	return 0
}

func bathroomsScore(bathrooms *int, min int) int {
	if bathrooms == nil {
		return 50
	}
	if min <= 0 {
		min = 1
	}
	b := *bathrooms
	if b >= min {
		return 100
	}
	if min-b == 1 {
		return 50
	}
	return 0
}
