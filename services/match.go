package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"estate_matcher/matching"
	"estate_matcher/models"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrClientNotFound   = errors.New("client not found")
)

// DefaultCandidateLimit bounds how many candidates are fetched for one batch.
const DefaultCandidateLimit = 500

// PropertySource loads property bundles. Get returns nil, nil when the
// property does not exist.
type PropertySource interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListCandidateProperties(ctx context.Context, contract models.ContractType, limit int) ([]*models.Property, error)
}

// ClientSource loads client bundles. Get returns nil, nil when the client
// does not exist.
type ClientSource interface {
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListActiveClients(ctx context.Context, contract models.ContractType, limit int) ([]*models.Client, error)
}

// MatchSink persists scored pairings.
type MatchSink interface {
	SaveMatches(ctx context.Context, matches []*models.MatchResult) (int, error)
}

// MatchReport is the outcome of matching one anchor entity
type MatchReport struct {
	AnchorID   uuid.UUID             `json:"anchor_id"`
	Candidates int                   `json:"candidates"`
	Matches    []*models.MatchResult `json:"matches"`
	Stats      matching.Statistics   `json:"stats"`
	Saved      int                   `json:"saved"`
}

// MatchService fetches bundles, runs the engine and persists the results
type MatchService struct {
	properties     PropertySource
	clients        ClientSource
	sink           MatchSink
	engine         *matching.Engine
	logger         *zap.Logger
	candidateLimit int
}

// NewMatchService creates a MatchService. sink may be nil, in which case
// results are returned but not stored.
func NewMatchService(properties PropertySource, clients ClientSource, sink MatchSink, engine *matching.Engine, logger *zap.Logger) *MatchService {
	if engine == nil {
		engine = matching.NewEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{
		properties:     properties,
		clients:        clients,
		sink:           sink,
		engine:         engine,
		logger:         logger,
		candidateLimit: DefaultCandidateLimit,
	}
}

// SetCandidateLimit changes the per-batch candidate cap; non-positive values
// restore the default.
func (s *MatchService) SetCandidateLimit(n int) {
	if n <= 0 {
		n = DefaultCandidateLimit
	}
	s.candidateLimit = n
}

// FindMatchesForProperty ranks active clients for one property.
func (s *MatchService) FindMatchesForProperty(ctx context.Context, propertyID uuid.UUID, opts matching.Options) (*MatchReport, error) {
	property, err := s.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if property == nil {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, propertyID)
	}

	clients, err := s.clients.ListActiveClients(ctx, property.Pricing.ContractType, s.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	byClientUrgency(clients)
	matches, err := s.engine.CalculatePropertyMatches(ctx, property, clients, opts)
	if err != nil {
		return nil, fmt.Errorf("match property %s: %w", propertyID, err)
	}

	report := &MatchReport{
		AnchorID:   propertyID,
		Candidates: len(clients),
		Matches:    matches,
		Stats:      matching.GetMatchStatistics(matches),
	}
	if err := s.persist(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("property matched",
		zap.String("property_id", propertyID.String()),
		zap.Int("candidates", report.Candidates),
		zap.Int("matches", report.Stats.TotalMatches),
		zap.Float64("average_score", report.Stats.AverageScore),
	)
	return report, nil
}

// FindMatchesForClient ranks offerable properties for one client.
func (s *MatchService) FindMatchesForClient(ctx context.Context, clientID uuid.UUID, opts matching.Options) (*MatchReport, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	properties, err := s.properties.ListCandidateProperties(ctx, client.Budget.ContractType, s.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}

	byPropertyUrgency(properties)
	matches, err := s.engine.CalculateClientMatches(ctx, client, properties, opts)
	if err != nil {
		return nil, fmt.Errorf("match client %s: %w", clientID, err)
	}

	report := &MatchReport{
		AnchorID:   clientID,
		Candidates: len(properties),
		Matches:    matches,
		Stats:      matching.GetMatchStatistics(matches),
	}
	if err := s.persist(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("client matched",
		zap.String("client_id", clientID.String()),
		zap.Int("candidates", report.Candidates),
		zap.Int("matches", report.Stats.TotalMatches),
		zap.Float64("average_score", report.Stats.AverageScore),
	)
	return report, nil
}

// CalculateSpecificMatch scores a single pair. A nil result means no match.
func (s *MatchService) CalculateSpecificMatch(ctx context.Context, propertyID, clientID uuid.UUID, opts matching.Options) (*models.MatchResult, error) {
	property, err := s.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if property == nil {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, propertyID)
	}

	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	result, err := s.engine.CalculateMatch(property, client, opts)
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("property_id", propertyID.String()),
		zap.String("client_id", clientID.String()),
	}
	if result == nil {
		s.logger.Info("no match", fields...)
		return nil, nil
	}

	s.logger.Info("pair matched", append(fields,
		zap.Float64("score", result.TotalScore),
		zap.String("quality", string(result.Quality())),
		zap.String("weakest", string(result.WeakestDimension())),
	)...)
	return result, nil
}

func (s *MatchService) persist(ctx context.Context, report *MatchReport) error {
	if s.sink == nil || len(report.Matches) == 0 {
		return nil
	}
	saved, err := s.sink.SaveMatches(ctx, report.Matches)
	if err != nil {
		return fmt.Errorf("save matches: %w", err)
	}
	report.Saved = saved
	return nil
}

// Batches keep candidate order on equal scores, so candidates are put in
// contact order first.

func byClientUrgency(clients []*models.Client) {
	sort.SliceStable(clients, func(i, j int) bool {
		return matching.ClientUrgency(clients[i].Standing) > matching.ClientUrgency(clients[j].Standing)
	})
}

func byPropertyUrgency(props []*models.Property) {
	sort.SliceStable(props, func(i, j int) bool {
		return matching.PropertyUrgency(props[i].Availability, props[i].Listing) >
			matching.PropertyUrgency(props[j].Availability, props[j].Listing)
	})
}
