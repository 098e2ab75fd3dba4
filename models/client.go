package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Client is the preference bundle of one active contact looking for a property.
type Client struct {
	ID        uuid.UUID        `json:"id"`
	Zone      ZonePreferences  `json:"zone"`
	Budget    Budget           `json:"budget"`
	Type      TypePreferences  `json:"type"`
	Size      SizeRequirements `json:"size"`
	Timing    Timing           `json:"timing"`
	Standing  ClientStanding   `json:"standing"`
	Lifestyle Lifestyle        `json:"lifestyle"`
}

type ZonePreferences struct {
	PreferredCities []string `json:"preferred_cities"`
	PreferredZones  []string `json:"preferred_zones"`
	MaxDistanceKm   *float64 `json:"max_distance_km"`
	CenterLat       *float64 `json:"center_lat"`
	CenterLng       *float64 `json:"center_lng"`
}

type Budget struct {
	ContractType ContractType `json:"contract_type"`
	Min          *float64     `json:"min"`
	Max          *float64     `json:"max"`
}

type TypePreferences struct {
	PreferredTypes   []string `json:"preferred_types"`
	AcceptableTypes  []string `json:"acceptable_types"`
	RequiredFeatures []string `json:"required_features"`
	DesiredFeatures  []string `json:"desired_features"`
}

type SizeRequirements struct {
	SurfaceMin   *float64 `json:"surface_min"`
	SurfaceMax   *float64 `json:"surface_max"`
	RoomsMin     *int     `json:"rooms_min"`
	RoomsMax     *int     `json:"rooms_max"`
	BedroomsMin  *int     `json:"bedrooms_min"`
	BathroomsMin *int     `json:"bathrooms_min"`
}

// Empty reports whether the client stated no size constraint at all.
func (r SizeRequirements) Empty() bool {
	return r.SurfaceMin == nil && r.SurfaceMax == nil &&
		r.RoomsMin == nil && r.RoomsMax == nil &&
		r.BedroomsMin == nil && r.BathroomsMin == nil
}

type Timing struct {
	DesiredMoveIn   *time.Time `json:"desired_move_in"`
	FlexibilityDays *int       `json:"flexibility_days"` // ± days
	Urgency         Urgency    `json:"urgency"`
	CanWait         bool       `json:"can_wait"`
}

type ClientStanding struct {
	Level            PriorityLevel `json:"level"`
	IsVerified       bool          `json:"is_verified"`
	HasPreApproval   bool          `json:"has_pre_approval"`
	ResponseRate     *float64      `json:"response_rate"` // 0-100
	PastInteractions *int          `json:"past_interactions"`
}

type Lifestyle struct {
	HasPets             *bool    `json:"has_pets"`
	NeedsParking        *bool    `json:"needs_parking"`
	PrefersElevator     *bool    `json:"prefers_elevator"`
	WantsOutdoorSpace   *bool    `json:"wants_outdoor_space"`
	PrefersTopFloor     *bool    `json:"prefers_top_floor"`
	PrefersGroundFloor  *bool    `json:"prefers_ground_floor"`
	NeedsFurnished      *bool    `json:"needs_furnished"`
	PrefersModern       *bool    `json:"prefers_modern"`
	EcoConscious        *bool    `json:"eco_conscious"`
	WantsAmenities      *bool    `json:"wants_amenities"`
	PreferredExposition []string `json:"preferred_exposition"`
	SpecificNeeds       []string `json:"specific_needs"`
}

// Stated reports whether the client expressed any lifestyle preference.
// Free-text specific needs are carried along but never scored.
func (l Lifestyle) Stated() bool {
	return l.HasPets != nil || l.NeedsParking != nil || l.PrefersElevator != nil ||
		l.WantsOutdoorSpace != nil || l.PrefersTopFloor != nil || l.PrefersGroundFloor != nil ||
		l.NeedsFurnished != nil || l.PrefersModern != nil || l.EcoConscious != nil ||
		l.WantsAmenities != nil || len(l.PreferredExposition) > 0
}

func (c *Client) Validate() error {
	if c == nil || c.ID == uuid.Nil {
		return fmt.Errorf("client: %w", ErrMissingID)
	}
	if !c.Budget.ContractType.Valid() {
		return fmt.Errorf("client %s: unknown contract type %q", c.ID, c.Budget.ContractType)
	}
	return nil
}
