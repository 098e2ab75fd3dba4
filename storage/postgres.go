package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"estate_matcher/models"
)

// ErrMalformedRow marks a row whose columns scanned but whose enums or JSON
// lists did not decode. List queries skip such rows.
var ErrMalformedRow = errors.New("malformed row")

type PostgresStore struct {
	pool   *pgxpool.Pool
	now    func() time.Time
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool, now: time.Now, logger: zap.NewNop()}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger.Named("postgres")
}

// skipMalformed logs a row that only spoils itself and reports whether the
// surrounding list can go on without it.
func (s *PostgresStore) skipMalformed(table string, err error) bool {
	if !errors.Is(err, ErrMalformedRow) {
		return false
	}
	s.logger.Warn("skipping malformed row", zap.String("table", table), zap.Error(err))
	return true
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS properties (
	id UUID PRIMARY KEY,
	lat DOUBLE PRECISION,
	lng DOUBLE PRECISION,
	city TEXT NOT NULL DEFAULT '',
	province TEXT NOT NULL DEFAULT '',
	zone TEXT NOT NULL DEFAULT '',
	contract_type TEXT NOT NULL,
	price_sale DOUBLE PRECISION,
	price_rent DOUBLE PRECISION,
	property_type TEXT NOT NULL DEFAULT '',
	subtype TEXT NOT NULL DEFAULT '',
	features JSONB,
	surface_total DOUBLE PRECISION,
	surface_internal DOUBLE PRECISION,
	rooms INTEGER,
	bedrooms INTEGER,
	bathrooms INTEGER,
	status TEXT NOT NULL,
	available_from TIMESTAMPTZ,
	estimated_delivery TIMESTAMPTZ,
	is_immediate BOOLEAN NOT NULL DEFAULT FALSE,
	is_exclusive BOOLEAN NOT NULL DEFAULT FALSE,
	is_premium BOOLEAN NOT NULL DEFAULT FALSE,
	views_count INTEGER,
	days_on_market INTEGER,
	amenities JSONB,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS contacts (
	id UUID PRIMARY KEY,
	status TEXT NOT NULL DEFAULT 'active',
	preferred_cities JSONB,
	preferred_zones JSONB,
	max_distance_km DOUBLE PRECISION,
	center_lat DOUBLE PRECISION,
	center_lng DOUBLE PRECISION,
	contract_type TEXT NOT NULL,
	budget_min DOUBLE PRECISION,
	budget_max DOUBLE PRECISION,
	preferred_types JSONB,
	acceptable_types JSONB,
	required_features JSONB,
	desired_features JSONB,
	surface_min DOUBLE PRECISION,
	surface_max DOUBLE PRECISION,
	rooms_min INTEGER,
	rooms_max INTEGER,
	bedrooms_min INTEGER,
	bathrooms_min INTEGER,
	desired_move_in TIMESTAMPTZ,
	flexibility_days INTEGER,
	urgency TEXT NOT NULL DEFAULT '',
	can_wait BOOLEAN NOT NULL DEFAULT FALSE,
	priority_level TEXT NOT NULL DEFAULT '',
	is_verified BOOLEAN NOT NULL DEFAULT FALSE,
	has_pre_approval BOOLEAN NOT NULL DEFAULT FALSE,
	response_rate DOUBLE PRECISION,
	past_interactions INTEGER,
	lifestyle JSONB,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS matches (
	id UUID PRIMARY KEY,
	property_id UUID NOT NULL REFERENCES properties(id),
	client_id UUID NOT NULL REFERENCES contacts(id),
	total_score DOUBLE PRECISION NOT NULL,
	quality TEXT NOT NULL,
	zone_score INTEGER NOT NULL,
	budget_score INTEGER NOT NULL,
	type_score INTEGER NOT NULL,
	surface_score INTEGER NOT NULL,
	availability_score INTEGER NOT NULL,
	priority_score INTEGER NOT NULL,
	affinity_score INTEGER NOT NULL,
	matched_at TIMESTAMPTZ NOT NULL,
	UNIQUE (property_id, client_id)
);

CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status, contract_type);
CREATE INDEX IF NOT EXISTS idx_contacts_active ON contacts(status, contract_type);
CREATE INDEX IF NOT EXISTS idx_matches_client ON matches(client_id, total_score DESC);
`

// EnsureSchema creates the catalog tables when they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// Properties
// =============================================================================

const propertyColumns = `
	id, lat, lng, city, province, zone, contract_type, price_sale, price_rent,
	property_type, subtype, features, surface_total, surface_internal,
	rooms, bedrooms, bathrooms, status, available_from, estimated_delivery,
	is_immediate, is_exclusive, is_premium, views_count, days_on_market,
	amenities, created_at`

func (s *PostgresStore) scanProperty(row rowScanner) (*models.Property, error) {
	var (
		p                      models.Property
		contract, status       string
		features, amenitiesRaw []byte
	)
	err := row.Scan(
		&p.ID, &p.Location.Lat, &p.Location.Lng, &p.Location.City, &p.Location.Province, &p.Location.Zone,
		&contract, &p.Pricing.PriceSale, &p.Pricing.PriceRent,
		&p.Kind.PropertyType, &p.Kind.Subtype, &features,
		&p.Size.SurfaceTotal, &p.Size.SurfaceInternal,
		&p.Size.Rooms, &p.Size.Bedrooms, &p.Size.Bathrooms,
		&status, &p.Availability.AvailableFrom, &p.Availability.EstimatedDelivery,
		&p.Availability.IsImmediate, &p.Listing.IsExclusive, &p.Listing.IsPremium,
		&p.Listing.ViewsCount, &p.Listing.DaysOnMarket,
		&amenitiesRaw, &p.Listing.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Pricing.ContractType, err = models.ParseContractType(contract); err != nil {
		return nil, fmt.Errorf("%w: property %s: %w", ErrMalformedRow, p.ID, err)
	}
	if p.Availability.Status, err = models.ParsePropertyStatus(status); err != nil {
		return nil, fmt.Errorf("%w: property %s: %w", ErrMalformedRow, p.ID, err)
	}
	if err := decodeJSON(features, &p.Kind.Features); err != nil {
		return nil, fmt.Errorf("%w: property %s features: %w", ErrMalformedRow, p.ID, err)
	}
	if err := decodeJSON(amenitiesRaw, &p.Amenities); err != nil {
		return nil, fmt.Errorf("%w: property %s amenities: %w", ErrMalformedRow, p.ID, err)
	}
	if _, err := models.ParseFurnished(string(p.Amenities.Furnished)); err != nil {
		return nil, fmt.Errorf("%w: property %s: %w", ErrMalformedRow, p.ID, err)
	}
	if _, err := models.ParseCondition(string(p.Amenities.Condition)); err != nil {
		return nil, fmt.Errorf("%w: property %s: %w", ErrMalformedRow, p.ID, err)
	}

	if p.Listing.DaysOnMarket == nil && p.Listing.CreatedAt != nil {
		days := int(s.now().Sub(*p.Listing.CreatedAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
		p.Listing.DaysOnMarket = &days
	}

	return &p, nil
}

func (s *PostgresStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := s.scanProperty(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListCandidateProperties returns offerable properties for one contract type,
// newest first.
func (s *PostgresStore) ListCandidateProperties(ctx context.Context, contract models.ContractType, limit int) ([]*models.Property, error) {
	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE status = ANY($1) AND contract_type = $2
		ORDER BY created_at DESC
		LIMIT $3`

	return s.queryProperties(ctx, query, matchableStatuses(), string(contract), limit)
}

// ListMatchableProperties returns offerable properties of any contract type.
func (s *PostgresStore) ListMatchableProperties(ctx context.Context, limit int) ([]*models.Property, error) {
	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE status = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2`

	return s.queryProperties(ctx, query, matchableStatuses(), limit)
}

func (s *PostgresStore) queryProperties(ctx context.Context, query string, args ...any) ([]*models.Property, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []*models.Property
	for rows.Next() {
		p, err := s.scanProperty(rows)
		if s.skipMalformed("properties", err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

func (s *PostgresStore) UpsertProperty(ctx context.Context, p *models.Property) error {
	features, err := json.Marshal(p.Kind.Features)
	if err != nil {
		return err
	}
	amenities, err := json.Marshal(p.Amenities)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO properties (
			id, lat, lng, city, province, zone, contract_type, price_sale, price_rent,
			property_type, subtype, features, surface_total, surface_internal,
			rooms, bedrooms, bathrooms, status, available_from, estimated_delivery,
			is_immediate, is_exclusive, is_premium, views_count, days_on_market,
			amenities, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, COALESCE($27, NOW())
		)
		ON CONFLICT (id) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			city = EXCLUDED.city,
			province = EXCLUDED.province,
			zone = EXCLUDED.zone,
			contract_type = EXCLUDED.contract_type,
			price_sale = EXCLUDED.price_sale,
			price_rent = EXCLUDED.price_rent,
			property_type = EXCLUDED.property_type,
			subtype = EXCLUDED.subtype,
			features = EXCLUDED.features,
			surface_total = EXCLUDED.surface_total,
			surface_internal = EXCLUDED.surface_internal,
			rooms = EXCLUDED.rooms,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			status = EXCLUDED.status,
			available_from = EXCLUDED.available_from,
			estimated_delivery = EXCLUDED.estimated_delivery,
			is_immediate = EXCLUDED.is_immediate,
			is_exclusive = EXCLUDED.is_exclusive,
			is_premium = EXCLUDED.is_premium,
			views_count = EXCLUDED.views_count,
			days_on_market = EXCLUDED.days_on_market,
			amenities = EXCLUDED.amenities,
			updated_at = NOW()`

	_, err = s.pool.Exec(ctx, query,
		p.ID, p.Location.Lat, p.Location.Lng, p.Location.City, p.Location.Province, p.Location.Zone,
		string(p.Pricing.ContractType), p.Pricing.PriceSale, p.Pricing.PriceRent,
		p.Kind.PropertyType, p.Kind.Subtype, features,
		p.Size.SurfaceTotal, p.Size.SurfaceInternal, p.Size.Rooms, p.Size.Bedrooms, p.Size.Bathrooms,
		string(p.Availability.Status), p.Availability.AvailableFrom, p.Availability.EstimatedDelivery,
		p.Availability.IsImmediate, p.Listing.IsExclusive, p.Listing.IsPremium,
		p.Listing.ViewsCount, p.Listing.DaysOnMarket, amenities, p.Listing.CreatedAt,
	)
	return err
}

// =============================================================================
// Contacts
// =============================================================================

const clientColumns = `
	id, preferred_cities, preferred_zones, max_distance_km, center_lat, center_lng,
	contract_type, budget_min, budget_max,
	preferred_types, acceptable_types, required_features, desired_features,
	surface_min, surface_max, rooms_min, rooms_max, bedrooms_min, bathrooms_min,
	desired_move_in, flexibility_days, urgency, can_wait,
	priority_level, is_verified, has_pre_approval, response_rate, past_interactions,
	lifestyle`

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		c                                    models.Client
		cities, zones                        []byte
		preferred, acceptable, required, des []byte
		lifestyle                            []byte
		contract, urgency, level             string
	)
	err := row.Scan(
		&c.ID, &cities, &zones, &c.Zone.MaxDistanceKm, &c.Zone.CenterLat, &c.Zone.CenterLng,
		&contract, &c.Budget.Min, &c.Budget.Max,
		&preferred, &acceptable, &required, &des,
		&c.Size.SurfaceMin, &c.Size.SurfaceMax, &c.Size.RoomsMin, &c.Size.RoomsMax,
		&c.Size.BedroomsMin, &c.Size.BathroomsMin,
		&c.Timing.DesiredMoveIn, &c.Timing.FlexibilityDays, &urgency, &c.Timing.CanWait,
		&level, &c.Standing.IsVerified, &c.Standing.HasPreApproval,
		&c.Standing.ResponseRate, &c.Standing.PastInteractions,
		&lifestyle,
	)
	if err != nil {
		return nil, err
	}

	if c.Budget.ContractType, err = models.ParseContractType(contract); err != nil {
		return nil, fmt.Errorf("%w: contact %s: %w", ErrMalformedRow, c.ID, err)
	}
	if c.Timing.Urgency, err = models.ParseUrgency(urgency); err != nil {
		return nil, fmt.Errorf("%w: contact %s: %w", ErrMalformedRow, c.ID, err)
	}
	if c.Standing.Level, err = models.ParsePriorityLevel(level); err != nil {
		return nil, fmt.Errorf("%w: contact %s: %w", ErrMalformedRow, c.ID, err)
	}

	lists := []struct {
		name string
		raw  []byte
		dst  *[]string
	}{
		{"preferred_cities", cities, &c.Zone.PreferredCities},
		{"preferred_zones", zones, &c.Zone.PreferredZones},
		{"preferred_types", preferred, &c.Type.PreferredTypes},
		{"acceptable_types", acceptable, &c.Type.AcceptableTypes},
		{"required_features", required, &c.Type.RequiredFeatures},
		{"desired_features", des, &c.Type.DesiredFeatures},
	}
	for _, l := range lists {
		if err := decodeJSON(l.raw, l.dst); err != nil {
			return nil, fmt.Errorf("%w: contact %s %s: %w", ErrMalformedRow, c.ID, l.name, err)
		}
	}
	if err := decodeJSON(lifestyle, &c.Lifestyle); err != nil {
		return nil, fmt.Errorf("%w: contact %s lifestyle: %w", ErrMalformedRow, c.ID, err)
	}

	return &c, nil
}

func (s *PostgresStore) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM contacts WHERE id = $1`

	c, err := scanClient(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListActiveClients returns active contacts searching for one contract type,
// most recently updated first.
func (s *PostgresStore) ListActiveClients(ctx context.Context, contract models.ContractType, limit int) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + `
		FROM contacts
		WHERE status = 'active' AND contract_type = $1
		ORDER BY updated_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, string(contract), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if s.skipMalformed("contacts", err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *PostgresStore) UpsertClient(ctx context.Context, c *models.Client) error {
	lists := [][]string{
		c.Zone.PreferredCities, c.Zone.PreferredZones,
		c.Type.PreferredTypes, c.Type.AcceptableTypes, c.Type.RequiredFeatures, c.Type.DesiredFeatures,
	}
	encoded := make([][]byte, len(lists))
	for i, l := range lists {
		b, err := json.Marshal(l)
		if err != nil {
			return err
		}
		encoded[i] = b
	}
	lifestyle, err := json.Marshal(c.Lifestyle)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO contacts (
			id, preferred_cities, preferred_zones, max_distance_km, center_lat, center_lng,
			contract_type, budget_min, budget_max,
			preferred_types, acceptable_types, required_features, desired_features,
			surface_min, surface_max, rooms_min, rooms_max, bedrooms_min, bathrooms_min,
			desired_move_in, flexibility_days, urgency, can_wait,
			priority_level, is_verified, has_pre_approval, response_rate, past_interactions,
			lifestyle
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
		)
		ON CONFLICT (id) DO UPDATE SET
			preferred_cities = EXCLUDED.preferred_cities,
			preferred_zones = EXCLUDED.preferred_zones,
			max_distance_km = EXCLUDED.max_distance_km,
			center_lat = EXCLUDED.center_lat,
			center_lng = EXCLUDED.center_lng,
			contract_type = EXCLUDED.contract_type,
			budget_min = EXCLUDED.budget_min,
			budget_max = EXCLUDED.budget_max,
			preferred_types = EXCLUDED.preferred_types,
			acceptable_types = EXCLUDED.acceptable_types,
			required_features = EXCLUDED.required_features,
			desired_features = EXCLUDED.desired_features,
			surface_min = EXCLUDED.surface_min,
			surface_max = EXCLUDED.surface_max,
			rooms_min = EXCLUDED.rooms_min,
			rooms_max = EXCLUDED.rooms_max,
			bedrooms_min = EXCLUDED.bedrooms_min,
			bathrooms_min = EXCLUDED.bathrooms_min,
			desired_move_in = EXCLUDED.desired_move_in,
			flexibility_days = EXCLUDED.flexibility_days,
			urgency = EXCLUDED.urgency,
			can_wait = EXCLUDED.can_wait,
			priority_level = EXCLUDED.priority_level,
			is_verified = EXCLUDED.is_verified,
			has_pre_approval = EXCLUDED.has_pre_approval,
			response_rate = EXCLUDED.response_rate,
			past_interactions = EXCLUDED.past_interactions,
			lifestyle = EXCLUDED.lifestyle,
			updated_at = NOW()`

	_, err = s.pool.Exec(ctx, query,
		c.ID, encoded[0], encoded[1], c.Zone.MaxDistanceKm, c.Zone.CenterLat, c.Zone.CenterLng,
		string(c.Budget.ContractType), c.Budget.Min, c.Budget.Max,
		encoded[2], encoded[3], encoded[4], encoded[5],
		c.Size.SurfaceMin, c.Size.SurfaceMax, c.Size.RoomsMin, c.Size.RoomsMax,
		c.Size.BedroomsMin, c.Size.BathroomsMin,
		c.Timing.DesiredMoveIn, c.Timing.FlexibilityDays, string(c.Timing.Urgency), c.Timing.CanWait,
		string(c.Standing.Level), c.Standing.IsVerified, c.Standing.HasPreApproval,
		c.Standing.ResponseRate, c.Standing.PastInteractions,
		lifestyle,
	)
	return err
}

// =============================================================================
// Matches
// =============================================================================

// SaveMatches upserts results keyed on their deterministic match id, so a
// re-run refreshes scores instead of adding rows.
func (s *PostgresStore) SaveMatches(ctx context.Context, matches []*models.MatchResult) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO matches (
			id, property_id, client_id, total_score, quality,
			zone_score, budget_score, type_score, surface_score,
			availability_score, priority_score, affinity_score, matched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			total_score = EXCLUDED.total_score,
			quality = EXCLUDED.quality,
			zone_score = EXCLUDED.zone_score,
			budget_score = EXCLUDED.budget_score,
			type_score = EXCLUDED.type_score,
			surface_score = EXCLUDED.surface_score,
			availability_score = EXCLUDED.availability_score,
			priority_score = EXCLUDED.priority_score,
			affinity_score = EXCLUDED.affinity_score,
			matched_at = EXCLUDED.matched_at`

	batch := &pgx.Batch{}
	for _, m := range matches {
		b := m.Breakdown
		batch.Queue(query,
			m.ID, m.PropertyID, m.ClientID, m.TotalScore, string(m.Quality()),
			b.Zone, b.Budget, b.Type, b.Surface, b.Availability, b.Priority, b.Affinity,
			m.MatchedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	saved := 0
	for range matches {
		if _, err := results.Exec(); err != nil {
			return saved, fmt.Errorf("upsert match: %w", err)
		}
		saved++
	}
	return saved, nil
}

// TopMatchesForClient returns the stored matches of a client, best first.
func (s *PostgresStore) TopMatchesForClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*models.MatchResult, error) {
	query := `
		SELECT id, property_id, client_id, total_score,
			zone_score, budget_score, type_score, surface_score,
			availability_score, priority_score, affinity_score, matched_at
		FROM matches
		WHERE client_id = $1
		ORDER BY total_score DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.MatchResult
	for rows.Next() {
		var m models.MatchResult
		b := &m.Breakdown
		if err := rows.Scan(&m.ID, &m.PropertyID, &m.ClientID, &m.TotalScore,
			&b.Zone, &b.Budget, &b.Type, &b.Surface, &b.Availability, &b.Priority, &b.Affinity,
			&m.MatchedAt); err != nil {
			return nil, err
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

func matchableStatuses() []string {
	out := make([]string, len(models.MatchableStatuses))
	for i, st := range models.MatchableStatuses {
		out[i] = string(st)
	}
	return out
}

// decodeJSON leaves dst untouched for NULL or empty columns.
func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
