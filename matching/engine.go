package matching

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"estate_matcher/models"
)

const (
	DefaultMinScore   = 40
	DefaultMaxResults = 50

	// strict mode rejects listings priced above this multiple of the budget max
	strictPriceCeiling = 1.3
)

type Options struct {
	MinScore         float64 `yaml:"min_score" json:"min_score"`
	MaxResults       int     `yaml:"max_results" json:"max_results"`
	IncludeBreakdown bool    `yaml:"include_breakdown" json:"include_breakdown"`
	PrioritizeNew    bool    `yaml:"prioritize_new" json:"prioritize_new"` // reserved, no effect yet
	StrictMode       bool    `yaml:"strict_mode" json:"strict_mode"`
}

func DefaultOptions() Options {
	return Options{
		MinScore:         DefaultMinScore,
		MaxResults:       DefaultMaxResults,
		IncludeBreakdown: true,
	}
}

func (o Options) maxResults() int {
	if o.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return o.MaxResults
}

// Engine runs the seven matchers and combines them into ranked results.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	now     func() time.Time
	workers int
}

type EngineOption func(*Engine)

// WithClock fixes the reference time used for day arithmetic and MatchedAt.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithWorkers bounds the goroutines used by batch scoring.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now:     time.Now,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Breakdown scores one pair on every dimension without filtering.
func (e *Engine) Breakdown(p *models.Property, c *models.Client) models.ScoreBreakdown {
	return e.breakdownAt(p, c, e.now())
}

func (e *Engine) breakdownAt(p *models.Property, c *models.Client, asOf time.Time) models.ScoreBreakdown {
	return models.ScoreBreakdown{
		Zone:         ScoreZone(p.Location, c.Zone),
		Budget:       ScoreBudget(p.Pricing, c.Budget),
		Type:         ScoreType(p.Kind, c.Type),
		Surface:      ScoreSurface(p.Size, c.Size),
		Availability: ScoreAvailability(p.Availability, c.Timing, asOf),
		Priority:     ScorePriority(p.Listing, c.Standing),
		Affinity:     ScoreAffinity(p.Amenities, c.Lifestyle),
	}
}

// CalculateMatch scores one property against one client. A nil result with a
// nil error means no match: the pair failed the strict filter or scored
// below opts.MinScore. Errors are reserved for malformed bundles.
func (e *Engine) CalculateMatch(p *models.Property, c *models.Client, opts Options) (*models.MatchResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return e.match(p, c, opts), nil
}

func (e *Engine) match(p *models.Property, c *models.Client, opts Options) *models.MatchResult {
	if opts.StrictMode && !PassesStrictFilter(p, c) {
		return nil
	}

	now := e.now()
	result := models.NewMatchResult(p.ID, c.ID, e.breakdownAt(p, c, now), now)
	if result.TotalScore < opts.MinScore {
		return nil
	}
	return result
}

// PassesStrictFilter applies the hard criteria checked before scoring in
// strict mode.
func PassesStrictFilter(p *models.Property, c *models.Client) bool {
	if p.Pricing.ContractType != c.Budget.ContractType {
		return false
	}
	if p.Availability.Status.Closed() {
		return false
	}
	if price := p.Pricing.Price(); price != nil && c.Budget.Max != nil && *c.Budget.Max > 0 {
		if *price > *c.Budget.Max*strictPriceCeiling {
			return false
		}
	}
	if !HasRequiredFeatures(p.Kind.Features, c.Type.RequiredFeatures) {
		return false
	}
	if models.IsTrue(c.Lifestyle.HasPets) && models.IsFalse(p.Amenities.PetFriendly) {
		return false
	}
	if models.IsTrue(c.Lifestyle.NeedsFurnished) && p.Amenities.Furnished == models.FurnishedNo {
		return false
	}
	return true
}

// CalculatePropertyMatches ranks clients for one property.
func (e *Engine) CalculatePropertyMatches(ctx context.Context, p *models.Property, clients []*models.Client, opts Options) ([]*models.MatchResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return e.batch(ctx, len(clients), opts, func(i int) (*models.MatchResult, error) {
		c := clients[i]
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		return e.match(p, c, opts), nil
	})
}

// CalculateClientMatches ranks properties for one client.
func (e *Engine) CalculateClientMatches(ctx context.Context, c *models.Client, props []*models.Property, opts Options) ([]*models.MatchResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return e.batch(ctx, len(props), opts, func(i int) (*models.MatchResult, error) {
		p := props[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		return e.match(p, c, opts), nil
	})
}

// batch scores n candidates in parallel, then keeps the matches in input
// order before a stable sort so equal scores stay in candidate order.
func (e *Engine) batch(ctx context.Context, n int, opts Options, score func(int) (*models.MatchResult, error)) ([]*models.MatchResult, error) {
	slots := make([]*models.MatchResult, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := score(i)
			if err != nil {
				return err
			}
			slots[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]*models.MatchResult, 0, n)
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}

	// PrioritizeNew is accepted but does not change the ordering yet.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].TotalScore > results[b].TotalScore
	})

	if limit := opts.maxResults(); len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
