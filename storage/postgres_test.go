package storage

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"estate_matcher/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int          { return &v }
func bptr(v bool) *bool        { return &v }

// openPostgres connects to the database named by TEST_DATABASE_URL or skips.
func openPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestPostgresRoundTrip(t *testing.T) {
	store := openPostgres(t)
	ctx := context.Background()

	created := time.Now().Add(-10 * 24 * time.Hour).UTC().Truncate(time.Second)
	p := &models.Property{
		ID:       uuid.New(),
		Location: models.PropertyLocation{Lat: fptr(45.464), Lng: fptr(9.19), City: "Milano", Zone: "Brera"},
		Pricing:  models.PropertyPricing{ContractType: models.ContractSale, PriceSale: fptr(480000)},
		Kind:     models.PropertyKind{PropertyType: "Attico", Features: []string{"terrazzo", "box"}},
		Size:     models.PropertySize{SurfaceInternal: fptr(110), Rooms: iptr(4), Bathrooms: iptr(2)},
		Availability: models.PropertyAvailability{
			Status: models.StatusAvailable, IsImmediate: true,
		},
		Listing:   models.ListingStanding{IsExclusive: true, CreatedAt: &created},
		Amenities: models.Amenities{HasElevator: bptr(true), EnergyClass: "A", Furnished: models.FurnishedNo},
	}
	require.NoError(t, store.UpsertProperty(ctx, p))

	got, err := store.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Kind.Features, got.Kind.Features)
	assert.Equal(t, models.StatusAvailable, got.Availability.Status)
	assert.True(t, models.IsTrue(got.Amenities.HasElevator))
	assert.Nil(t, got.Amenities.HasParking)
	require.NotNil(t, got.Listing.DaysOnMarket)
	assert.InDelta(t, 10, *got.Listing.DaysOnMarket, 1)

	c := &models.Client{
		ID:        uuid.New(),
		Zone:      models.ZonePreferences{PreferredCities: []string{"Milano"}},
		Budget:    models.Budget{ContractType: models.ContractSale, Max: fptr(500000)},
		Type:      models.TypePreferences{PreferredTypes: []string{"attico"}},
		Standing:  models.ClientStanding{Level: models.PriorityVIP},
		Lifestyle: models.Lifestyle{PrefersElevator: bptr(true)},
	}
	require.NoError(t, store.UpsertClient(ctx, c))

	gotClient, err := store.GetClient(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, gotClient)
	assert.Equal(t, []string{"Milano"}, gotClient.Zone.PreferredCities)
	assert.Equal(t, models.PriorityVIP, gotClient.Standing.Level)
	assert.True(t, models.IsTrue(gotClient.Lifestyle.PrefersElevator))

	clients, err := store.ListActiveClients(ctx, models.ContractSale, 500)
	require.NoError(t, err)
	assert.NotEmpty(t, clients)

	m := models.NewMatchResult(p.ID, c.ID, models.ScoreBreakdown{Zone: 70, Budget: 90}, time.Now().UTC())
	n, err := store.SaveMatches(ctx, []*models.MatchResult{m})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// a second save refreshes the same row
	m2 := models.NewMatchResult(p.ID, c.ID, models.ScoreBreakdown{Zone: 100, Budget: 100}, time.Now().UTC())
	_, err = store.SaveMatches(ctx, []*models.MatchResult{m2})
	require.NoError(t, err)

	top, err := store.TopMatchesForClient(ctx, c.ID, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, m.ID, top[0].ID)
	assert.Equal(t, 100, top[0].Breakdown.Zone)
}

func TestPostgresMissingRows(t *testing.T) {
	store := openPostgres(t)
	ctx := context.Background()

	p, err := store.GetProperty(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, p)

	c, err := store.GetClient(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDecodeJSON(t *testing.T) {
	var list []string
	require.NoError(t, decodeJSON(nil, &list))
	require.NoError(t, decodeJSON([]byte("null"), &list))
	assert.Nil(t, list)

	require.NoError(t, decodeJSON([]byte(`["garage","cantina"]`), &list))
	assert.Equal(t, []string{"garage", "cantina"}, list)

	assert.Error(t, decodeJSON([]byte(`["garage"`), &list))
}

func TestMatchableStatuses(t *testing.T) {
	assert.ElementsMatch(t, []string{"available", "draft", "option"}, matchableStatuses())
}

// fakeRow scans fixed column values; nil leaves the destination untouched.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.values {
		if v != nil {
			reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
		}
	}
	return nil
}

func contactRow(cities string) fakeRow {
	values := make([]any, 29)
	values[0] = uuid.New()
	values[1] = []byte(cities)
	values[6] = "sale"
	values[21] = "medium"
	values[23] = "high"
	return fakeRow{values: values}
}

func TestScanClientMalformedJSON(t *testing.T) {
	c, err := scanClient(contactRow(`["Milano"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Milano"}, c.Zone.PreferredCities)
	assert.Equal(t, models.ContractSale, c.Budget.ContractType)

	_, err = scanClient(contactRow(`["Milano"`))
	assert.ErrorIs(t, err, ErrMalformedRow)
	assert.ErrorContains(t, err, "preferred_cities")

	_, err = scanClient(fakeRow{err: errors.New("conn reset")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedRow)
}

func TestSkipMalformedRows(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := &PostgresStore{now: time.Now}
	store.SetLogger(zap.New(core))

	_, err := scanClient(contactRow(`{"not":"a list"}`))
	assert.True(t, store.skipMalformed("contacts", err))
	assert.False(t, store.skipMalformed("contacts", errors.New("conn reset")))
	assert.False(t, store.skipMalformed("contacts", nil))

	entries := logs.FilterMessage("skipping malformed row").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "contacts", entries[0].ContextMap()["table"])
}
