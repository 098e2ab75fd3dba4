package matching

import (
	"time"

	"github.com/google/uuid"

	"estate_matcher/models"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int          { return &v }
func bptr(v bool) *bool        { return &v }
func tptr(t time.Time) *time.Time {
	return &t
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func testEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return testNow }), WithWorkers(4))
}

// milanoProperty is a sale apartment in central Milan.
func milanoProperty() *models.Property {
	return &models.Property{
		ID: uuid.New(),
		Location: models.PropertyLocation{
			Lat:  fptr(45.464),
			Lng:  fptr(9.19),
			City: "Milano",
			Zone: "Centro",
		},
		Pricing: models.PropertyPricing{
			ContractType: models.ContractSale,
			PriceSale:    fptr(250000),
		},
		Kind: models.PropertyKind{PropertyType: "apartment"},
		Size: models.PropertySize{
			SurfaceInternal: fptr(80),
			Rooms:           iptr(3),
		},
		Availability: models.PropertyAvailability{Status: models.StatusAvailable},
	}
}

// milanoClient is looking for exactly milanoProperty.
func milanoClient() *models.Client {
	return &models.Client{
		ID: uuid.New(),
		Zone: models.ZonePreferences{
			PreferredCities: []string{"Milano"},
			PreferredZones:  []string{"Centro"},
		},
		Budget: models.Budget{
			ContractType: models.ContractSale,
			Min:          fptr(240000),
			Max:          fptr(260000),
		},
		Type: models.TypePreferences{PreferredTypes: []string{"apartment"}},
		Size: models.SizeRequirements{
			SurfaceMin: fptr(75),
			SurfaceMax: fptr(85),
			RoomsMin:   iptr(3),
			RoomsMax:   iptr(3),
		},
	}
}
