package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrMissingID = errors.New("missing identifier")

// Property is the attribute bundle of one catalog listing, as seen by the matchers.
// Nil pointers mean the attribute is unknown.
type Property struct {
	ID           uuid.UUID            `json:"id"`
	Location     PropertyLocation     `json:"location"`
	Pricing      PropertyPricing      `json:"pricing"`
	Kind         PropertyKind         `json:"kind"`
	Size         PropertySize         `json:"size"`
	Availability PropertyAvailability `json:"availability"`
	Listing      ListingStanding      `json:"listing"`
	Amenities    Amenities            `json:"amenities"`
}

type PropertyLocation struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	City     string   `json:"city"`
	Province string   `json:"province"`
	Zone     string   `json:"zone"`
}

type PropertyPricing struct {
	ContractType ContractType `json:"contract_type"`
	PriceSale    *float64     `json:"price_sale"`
	PriceRent    *float64     `json:"price_rent"`
}

// Price returns the price relevant to the listing's contract type, or nil
// when it is unknown or zero.
func (p PropertyPricing) Price() *float64 {
	var price *float64
	switch p.ContractType {
	case ContractSale:
		price = p.PriceSale
	case ContractRent:
		price = p.PriceRent
	}
	if price == nil || *price <= 0 {
		return nil
	}
	return price
}

type PropertyKind struct {
	PropertyType string   `json:"property_type"`
	Subtype      string   `json:"subtype"`
	Features     []string `json:"features"`
}

type PropertySize struct {
	SurfaceTotal    *float64 `json:"surface_total"`
	SurfaceInternal *float64 `json:"surface_internal"`
	Rooms           *int     `json:"rooms"`
	Bedrooms        *int     `json:"bedrooms"`
	Bathrooms       *int     `json:"bathrooms"`
}

// Surface prefers the internal surface and falls back to the total one.
func (s PropertySize) Surface() *float64 {
	if s.SurfaceInternal != nil && *s.SurfaceInternal > 0 {
		return s.SurfaceInternal
	}
	if s.SurfaceTotal != nil && *s.SurfaceTotal > 0 {
		return s.SurfaceTotal
	}
	return nil
}

type PropertyAvailability struct {
	Status            PropertyStatus `json:"status"`
	AvailableFrom     *time.Time     `json:"available_from"`
	EstimatedDelivery *time.Time     `json:"estimated_delivery"` // under construction
	IsImmediate       bool           `json:"is_immediate"`
}

// ReadyDate is the concrete date the property can be handed over, if any.
func (a PropertyAvailability) ReadyDate() *time.Time {
	if a.AvailableFrom != nil {
		return a.AvailableFrom
	}
	return a.EstimatedDelivery
}

// ListingStanding carries the commercial flags of a listing
type ListingStanding struct {
	IsExclusive  bool       `json:"is_exclusive"`
	IsPremium    bool       `json:"is_premium"`
	ViewsCount   *int       `json:"views_count"`
	DaysOnMarket *int       `json:"days_on_market"`
	CreatedAt    *time.Time `json:"created_at"`
}

type Amenities struct {
	HasElevator        *bool     `json:"has_elevator"`
	HasParking         *bool     `json:"has_parking"`
	HasGarden          *bool     `json:"has_garden"`
	HasTerrace         *bool     `json:"has_terrace"`
	HasBalcony         *bool     `json:"has_balcony"`
	HasPool            *bool     `json:"has_pool"`
	HasGym             *bool     `json:"has_gym"`
	HasConcierge       *bool     `json:"has_concierge"`
	HasStorageRoom     *bool     `json:"has_storage_room"`
	PetFriendly        *bool     `json:"pet_friendly"`
	HasAirConditioning *bool     `json:"has_air_conditioning"`
	HasHeating         *bool     `json:"has_heating"`
	EnergyClass        string    `json:"energy_class"` // A+, A, B ... G
	Floor              *int      `json:"floor"`
	Exposition         string    `json:"exposition"`
	Furnished          Furnished `json:"furnished"`
	Condition          Condition `json:"condition"`
}

// Validate rejects bundles the engine cannot score at all.
func (p *Property) Validate() error {
	if p == nil {
		return fmt.Errorf("property: %w", ErrMissingID)
	}
	if p.ID == uuid.Nil {
		return fmt.Errorf("property: %w", ErrMissingID)
	}
	if !p.Pricing.ContractType.Valid() {
		return fmt.Errorf("property %s: unknown contract type %q", p.ID, p.Pricing.ContractType)
	}
	if !p.Availability.Status.Valid() {
		return fmt.Errorf("property %s: unknown status %q", p.ID, p.Availability.Status)
	}
	return nil
}

// IsTrue reports whether an optional flag is set and true.
func IsTrue(b *bool) bool {
	return b != nil && *b
}

// IsFalse reports whether an optional flag is explicitly false.
func IsFalse(b *bool) bool {
	return b != nil && !*b
}
