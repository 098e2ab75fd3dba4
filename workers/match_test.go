package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate_matcher/matching"
	"estate_matcher/models"
	"estate_matcher/services"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	props     []*models.Property
	err       error
	lastLimit int
}

func (f *fakeCatalog) ListMatchableProperties(ctx context.Context, limit int) ([]*models.Property, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Property, len(f.props))
	copy(out, f.props)
	return out, nil
}

type fakeMatcher struct {
	mu       sync.Mutex
	calls    []uuid.UUID
	failures map[uuid.UUID]error
	scores   map[uuid.UUID][]float64
}

func newFakeMatcher() *fakeMatcher {
	return &fakeMatcher{
		failures: make(map[uuid.UUID]error),
		scores:   make(map[uuid.UUID][]float64),
	}
}

func (f *fakeMatcher) report(id uuid.UUID) (*services.MatchReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if err := f.failures[id]; err != nil {
		return nil, err
	}
	var matches []*models.MatchResult
	for _, s := range f.scores[id] {
		// a uniform breakdown whose weighted total is s
		v := int(s)
		b := models.ScoreBreakdown{Zone: v, Budget: v, Type: v, Surface: v, Availability: v, Priority: v, Affinity: v}
		matches = append(matches, models.NewMatchResult(id, uuid.New(), b, testNow))
	}
	return &services.MatchReport{AnchorID: id, Matches: matches, Stats: matching.GetMatchStatistics(matches)}, nil
}

func (f *fakeMatcher) FindMatchesForProperty(ctx context.Context, id uuid.UUID, opts matching.Options) (*services.MatchReport, error) {
	return f.report(id)
}

func (f *fakeMatcher) FindMatchesForClient(ctx context.Context, id uuid.UUID, opts matching.Options) (*services.MatchReport, error) {
	return f.report(id)
}

func (f *fakeMatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeJournal struct {
	mu      sync.Mutex
	nextID  int64
	created []models.MatchRun
	updated []models.MatchRun
}

func (f *fakeJournal) CreateRun(run *models.MatchRun) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.created = append(f.created, *run)
	return f.nextID, nil
}

func (f *fakeJournal) UpdateRun(run *models.MatchRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, *run)
	return nil
}

func (f *fakeJournal) lastRun() models.MatchRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updated[len(f.updated)-1]
}

type fakeUploader struct {
	key    string
	report any
	err    error
}

func (f *fakeUploader) UploadReport(ctx context.Context, key string, report any) error {
	if f.err != nil {
		return f.err
	}
	f.key = key
	f.report = report
	return nil
}

type journalLine struct {
	runID   *int64
	level   models.LogLevel
	message string
}

func property(status models.PropertyStatus, premium bool) *models.Property {
	return &models.Property{
		ID:           uuid.New(),
		Pricing:      models.PropertyPricing{ContractType: models.ContractSale},
		Availability: models.PropertyAvailability{Status: status},
		Listing:      models.ListingStanding{IsPremium: premium},
	}
}

func newTestWorker(catalog Catalog, matcher Matcher, journal Journal) *MatchWorker {
	w := NewMatchWorker(catalog, matcher, journal, matching.DefaultOptions(), nil)
	w.SetClock(func() time.Time { return testNow })
	return w
}

func TestRunOnceOrdersByUrgency(t *testing.T) {
	option := property(models.StatusOption, false)
	draft := property(models.StatusDraft, false)
	premium := property(models.StatusAvailable, true)
	plain := property(models.StatusAvailable, false)

	catalog := &fakeCatalog{props: []*models.Property{option, draft, plain, premium}}
	matcher := newFakeMatcher()
	journal := &fakeJournal{}

	w := newTestWorker(catalog, matcher, journal)
	w.SetPropertyLimit(10)

	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, catalog.lastLimit)
	assert.Equal(t, []uuid.UUID{premium.ID, plain.ID, draft.ID, option.ID}, matcher.calls)
}

func TestRunOnceAggregatesAndCloses(t *testing.T) {
	a := property(models.StatusAvailable, false)
	b := property(models.StatusAvailable, false)
	c := property(models.StatusAvailable, false)

	matcher := newFakeMatcher()
	matcher.scores[a.ID] = []float64{85, 90}
	matcher.scores[b.ID] = []float64{75}
	matcher.failures[c.ID] = errors.New("boom")

	journal := &fakeJournal{}
	var lines []journalLine
	w := newTestWorker(&fakeCatalog{props: []*models.Property{a, b, c}}, matcher, journal)
	w.SetLogger(func(runID *int64, level models.LogLevel, source, message string) {
		lines = append(lines, journalLine{runID, level, message})
	})

	report, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, journal.created, 1)
	assert.Equal(t, models.RunStatusRunning, journal.created[0].Status)
	assert.Equal(t, TriggerCLI, journal.created[0].Trigger)

	run := journal.lastRun()
	assert.Equal(t, int64(1), run.ID)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.PropertiesScanned)
	assert.Equal(t, 3, run.MatchesFound)
	assert.Equal(t, 1, run.ErrorsCount)
	assert.InDelta(t, 83.33, run.AverageScore, 0.01)
	require.NotNil(t, run.FinishedAt)
	assert.Empty(t, run.ReportKey)

	require.Len(t, report.TopMatches, 3)
	assert.Equal(t, 90.0, report.TopMatches[0].TotalScore)
	assert.Equal(t, 75.0, report.TopMatches[2].TotalScore)
	assert.Equal(t, 1, report.Stats.GoodCount)

	require.NotEmpty(t, lines)
	last := lines[len(lines)-1]
	assert.Equal(t, models.LogLevelInfo, last.level)
	require.NotNil(t, last.runID)
	assert.Equal(t, int64(1), *last.runID)
	assert.Contains(t, last.message, "1 errors")
}

func TestRunOnceFailsWhenEveryPropertyErrors(t *testing.T) {
	a := property(models.StatusAvailable, false)
	b := property(models.StatusDraft, false)
	matcher := newFakeMatcher()
	matcher.failures[a.ID] = errors.New("db down")
	matcher.failures[b.ID] = errors.New("db down")

	journal := &fakeJournal{}
	w := newTestWorker(&fakeCatalog{props: []*models.Property{a, b}}, matcher, journal)

	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	run := journal.lastRun()
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Equal(t, 2, run.ErrorsCount)
}

func TestRunOnceEmptyCatalogCompletes(t *testing.T) {
	journal := &fakeJournal{}
	w := newTestWorker(&fakeCatalog{}, newFakeMatcher(), journal)

	report, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, journal.lastRun().Status)
	assert.Zero(t, report.Stats.TotalMatches)
	assert.Empty(t, report.TopMatches)
}

func TestRunOnceListError(t *testing.T) {
	journal := &fakeJournal{}
	w := newTestWorker(&fakeCatalog{err: errors.New("timeout")}, newFakeMatcher(), journal)

	_, err := w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list properties")
	assert.Equal(t, models.RunStatusFailed, journal.lastRun().Status)
}

func TestRunOnceCancelled(t *testing.T) {
	journal := &fakeJournal{}
	matcher := newFakeMatcher()
	w := newTestWorker(&fakeCatalog{props: []*models.Property{property(models.StatusAvailable, false)}}, matcher, journal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, matcher.callCount())
	assert.Equal(t, models.RunStatusFailed, journal.lastRun().Status)
}

func TestRunOnceUploadsReport(t *testing.T) {
	p := property(models.StatusAvailable, false)
	matcher := newFakeMatcher()
	matcher.scores[p.ID] = []float64{70}

	journal := &fakeJournal{}
	uploader := &fakeUploader{}
	w := newTestWorker(&fakeCatalog{props: []*models.Property{p}}, matcher, journal)
	w.SetUploader(uploader)

	report, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "match-reports/2025/03/01/run-1.json", uploader.key)
	assert.Same(t, report, uploader.report)
	assert.Equal(t, uploader.key, journal.lastRun().ReportKey)
	assert.Equal(t, uploader.key, report.Run.ReportKey)
}

func TestRunOnceUploadFailureKeepsRun(t *testing.T) {
	p := property(models.StatusAvailable, false)
	journal := &fakeJournal{}
	w := newTestWorker(&fakeCatalog{props: []*models.Property{p}}, newFakeMatcher(), journal)
	w.SetUploader(&fakeUploader{err: errors.New("access denied")})

	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	run := journal.lastRun()
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Empty(t, run.ReportKey)
}

func TestRunHonoursTriggerAndPause(t *testing.T) {
	p := property(models.StatusAvailable, false)
	matcher := newFakeMatcher()
	journal := &fakeJournal{}
	w := newTestWorker(&fakeCatalog{props: []*models.Property{p}}, matcher, journal)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, 0)
		close(done)
	}()

	w.Trigger()
	require.Eventually(t, func() bool { return matcher.callCount() == 1 }, time.Second, 5*time.Millisecond)

	w.Pause()
	assert.True(t, w.Paused())
	w.Trigger()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, matcher.callCount())

	w.Resume()
	w.Schedule()
	require.Eventually(t, func() bool { return matcher.callCount() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	journal.mu.Lock()
	defer journal.mu.Unlock()
	require.Len(t, journal.created, 2)
	assert.Equal(t, TriggerCommand, journal.created[0].Trigger)
	assert.Equal(t, TriggerSchedule, journal.created[1].Trigger)
}

func TestRematchTargets(t *testing.T) {
	propID, clientID := uuid.New(), uuid.New()
	matcher := newFakeMatcher()
	matcher.scores[propID] = []float64{80}
	matcher.failures[clientID] = services.ErrClientNotFound

	w := newTestWorker(&fakeCatalog{}, matcher, &fakeJournal{})

	report, err := w.RematchProperty(context.Background(), propID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stats.TotalMatches)

	_, err = w.RematchClient(context.Background(), clientID)
	assert.ErrorIs(t, err, services.ErrClientNotFound)
}

func TestJournalLog(t *testing.T) {
	var got []string
	fn := JournalLog(func(runID *int64, level models.LogLevel, message, source string) error {
		got = append(got, string(level)+"|"+source+"|"+message)
		return errors.New("disk full")
	}, nil)

	fn(nil, models.LogLevelWarn, "match_worker", "hello")
	assert.Equal(t, []string{"warn|match_worker|hello"}, got)
}
