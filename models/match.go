package models

import (
	"math"
	"time"

	"github.com/google/uuid"

	"estate_matcher/identity"
)

// Dimension is one of the seven scoring axes
type Dimension string

const (
	DimensionZone         Dimension = "zone"
	DimensionBudget       Dimension = "budget"
	DimensionType         Dimension = "type"
	DimensionSurface      Dimension = "surface"
	DimensionAvailability Dimension = "availability"
	DimensionPriority     Dimension = "priority"
	DimensionAffinity     Dimension = "affinity"
)

// Dimensions lists every axis in weight-table order.
var Dimensions = [...]Dimension{
	DimensionZone,
	DimensionBudget,
	DimensionType,
	DimensionSurface,
	DimensionAvailability,
	DimensionPriority,
	DimensionAffinity,
}

// Weight returns the fixed contribution of a dimension to the total score.
// The seven weights sum to 1.0.
func (d Dimension) Weight() float64 {
	switch d {
	case DimensionZone:
		return 0.25
	case DimensionBudget:
		return 0.20
	case DimensionType:
		return 0.15
	case DimensionSurface:
		return 0.15
	case DimensionAvailability:
		return 0.10
	case DimensionPriority:
		return 0.10
	case DimensionAffinity:
		return 0.05
	}
	return 0
}

// ScoreBreakdown holds one bounded 0-100 score per dimension.
type ScoreBreakdown struct {
	Zone         int `json:"zone"`
	Budget       int `json:"budget"`
	Type         int `json:"type"`
	Surface      int `json:"surface"`
	Availability int `json:"availability"`
	Priority     int `json:"priority"`
	Affinity     int `json:"affinity"`
}

func (b ScoreBreakdown) Get(d Dimension) int {
	switch d {
	case DimensionZone:
		return b.Zone
	case DimensionBudget:
		return b.Budget
	case DimensionType:
		return b.Type
	case DimensionSurface:
		return b.Surface
	case DimensionAvailability:
		return b.Availability
	case DimensionPriority:
		return b.Priority
	case DimensionAffinity:
		return b.Affinity
	}
	return 0
}

// WeightedTotal is the weighted sum of the breakdown rounded to 2 decimals.
func (b ScoreBreakdown) WeightedTotal() float64 {
	var total float64
	for _, d := range Dimensions {
		total += float64(b.Get(d)) * d.Weight()
	}
	return math.Round(total*100) / 100
}

// Quality is the bucketed label of a total score
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

func QualityOf(score float64) Quality {
	switch {
	case score >= 80:
		return QualityExcellent
	case score >= 60:
		return QualityGood
	case score >= 40:
		return QualityFair
	default:
		return QualityPoor
	}
}

// DefaultQualityThreshold is the total score from which a match is worth proposing
const DefaultQualityThreshold = 60

// MatchResult is the scored pairing of one property with one client.
// Build it with NewMatchResult; TotalScore is derived from Breakdown and is
// not meant to be changed afterwards.
type MatchResult struct {
	ID         uuid.UUID      `json:"id"`
	PropertyID uuid.UUID      `json:"property_id"`
	ClientID   uuid.UUID      `json:"client_id"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	TotalScore float64        `json:"total_score"`
	MatchedAt  time.Time      `json:"matched_at"`
}

func NewMatchResult(propertyID, clientID uuid.UUID, breakdown ScoreBreakdown, matchedAt time.Time) *MatchResult {
	return &MatchResult{
		ID:         identity.MatchKey(propertyID, clientID),
		PropertyID: propertyID,
		ClientID:   clientID,
		Breakdown:  breakdown,
		TotalScore: breakdown.WeightedTotal(),
		MatchedAt:  matchedAt,
	}
}

func (m *MatchResult) Quality() Quality {
	return QualityOf(m.TotalScore)
}

func (m *MatchResult) IsQualityMatch(threshold float64) bool {
	return m.TotalScore >= threshold
}

// WeakestDimension returns the lowest-scoring axis; ties go to the earlier axis.
func (m *MatchResult) WeakestDimension() Dimension {
	weakest := Dimensions[0]
	for _, d := range Dimensions[1:] {
		if m.Breakdown.Get(d) < m.Breakdown.Get(weakest) {
			weakest = d
		}
	}
	return weakest
}

// StrongestDimension returns the highest-scoring axis; ties go to the earlier axis.
func (m *MatchResult) StrongestDimension() Dimension {
	strongest := Dimensions[0]
	for _, d := range Dimensions[1:] {
		if m.Breakdown.Get(d) > m.Breakdown.Get(strongest) {
			strongest = d
		}
	}
	return strongest
}
