package workers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"estate_matcher/matching"
	"estate_matcher/models"
	"estate_matcher/services"
	"estate_matcher/storage"
)

const (
	// DefaultPropertyLimit caps how many properties one full run re-matches.
	DefaultPropertyLimit = 500
	reportTopMatches     = 25
	logSource            = "match_worker"
)

// Run trigger sources recorded in the journal
const (
	TriggerSchedule = "schedule"
	TriggerCommand  = "command"
	TriggerCLI      = "cli"
)

// Catalog lists the properties a full run walks through
type Catalog interface {
	ListMatchableProperties(ctx context.Context, limit int) ([]*models.Property, error)
}

// Matcher is the slice of services.MatchService the worker drives
type Matcher interface {
	FindMatchesForProperty(ctx context.Context, propertyID uuid.UUID, opts matching.Options) (*services.MatchReport, error)
	FindMatchesForClient(ctx context.Context, clientID uuid.UUID, opts matching.Options) (*services.MatchReport, error)
}

// Journal records run bookkeeping. CreateRun returns the new run id.
type Journal interface {
	CreateRun(run *models.MatchRun) (int64, error)
	UpdateRun(run *models.MatchRun) error
}

type ReportUploader interface {
	UploadReport(ctx context.Context, key string, report any) error
}

// RunReport is the document exported at the end of a full run
type RunReport struct {
	Run        models.MatchRun       `json:"run"`
	Stats      matching.Statistics   `json:"stats"`
	TopMatches []*models.MatchResult `json:"top_matches"`
}

// MatchWorker re-matches the whole catalog on demand or on a ticker
type MatchWorker struct {
	catalog  Catalog
	matcher  Matcher
	journal  Journal
	uploader ReportUploader
	opts     matching.Options
	limit    int
	logger   *zap.Logger
	logFunc  LogFunc
	now      func() time.Time

	triggerCh chan string
	paused    atomic.Bool
	runMu     sync.Mutex
}

func NewMatchWorker(catalog Catalog, matcher Matcher, journal Journal, opts matching.Options, logger *zap.Logger) *MatchWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchWorker{
		catalog:   catalog,
		matcher:   matcher,
		journal:   journal,
		opts:      opts,
		limit:     DefaultPropertyLimit,
		logger:    logger.Named("match_worker"),
		logFunc:   NoOpLogger,
		now:       time.Now,
		triggerCh: make(chan string, 1),
	}
}

func (w *MatchWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// SetUploader enables report export at the end of each full run.
func (w *MatchWorker) SetUploader(u ReportUploader) {
	w.uploader = u
}

func (w *MatchWorker) SetPropertyLimit(n int) {
	if n <= 0 {
		n = DefaultPropertyLimit
	}
	w.limit = n
}

func (w *MatchWorker) SetClock(now func() time.Time) {
	w.now = now
}

// Trigger causes the worker to run immediately
func (w *MatchWorker) Trigger() {
	w.enqueue(TriggerCommand)
}

// Schedule is Trigger for timer-driven runs; the run is journaled as scheduled.
func (w *MatchWorker) Schedule() {
	w.enqueue(TriggerSchedule)
}

// enqueue drops the request when a run is already pending.
func (w *MatchWorker) enqueue(source string) {
	select {
	case w.triggerCh <- source:
	default:
	}
}

func (w *MatchWorker) Pause() {
	if !w.paused.Swap(true) {
		w.logger.Info("paused")
		w.logFunc(nil, models.LogLevelInfo, logSource, "worker paused")
	}
}

func (w *MatchWorker) Resume() {
	if w.paused.Swap(false) {
		w.logger.Info("resumed")
		w.logFunc(nil, models.LogLevelInfo, logSource, "worker resumed")
	}
}

func (w *MatchWorker) Paused() bool {
	return w.paused.Load()
}

// Run blocks until ctx is done, starting a full run on every trigger and,
// when interval is positive, on every tick. Paused workers skip both.
func (w *MatchWorker) Run(ctx context.Context, interval time.Duration) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		var source string
		select {
		case <-ctx.Done():
			w.logger.Info("stopping")
			return
		case <-tick:
			source = TriggerSchedule
		case source = <-w.triggerCh:
		}

		if w.Paused() {
			w.logger.Debug("run skipped while paused")
			continue
		}
		if _, err := w.run(ctx, source); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("run failed", zap.Error(err))
		}
	}
}

// RunOnce re-matches every matchable property, most urgent first, and closes
// the run in the journal. Per-property failures are counted, not returned; the
// run is marked failed only when every property errored.
func (w *MatchWorker) RunOnce(ctx context.Context) (*RunReport, error) {
	return w.run(ctx, TriggerCLI)
}

func (w *MatchWorker) run(ctx context.Context, source string) (*RunReport, error) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	run := &models.MatchRun{
		Trigger:   source,
		StartedAt: w.now(),
		Status:    models.RunStatusRunning,
	}
	id, err := w.journal.CreateRun(run)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	run.ID = id
	runLog := w.logger.With(zap.Int64("run_id", id))

	props, err := w.catalog.ListMatchableProperties(ctx, w.limit)
	if err != nil {
		w.finish(run, models.RunStatusFailed)
		w.logFunc(&id, models.LogLevelError, logSource, fmt.Sprintf("list properties: %v", err))
		return nil, fmt.Errorf("list properties: %w", err)
	}

	sort.SliceStable(props, func(i, j int) bool {
		return matching.PropertyUrgency(props[i].Availability, props[i].Listing) >
			matching.PropertyUrgency(props[j].Availability, props[j].Listing)
	})

	var all []*models.MatchResult
	for _, p := range props {
		if err := ctx.Err(); err != nil {
			w.finish(run, models.RunStatusFailed)
			return nil, err
		}

		report, err := w.matcher.FindMatchesForProperty(ctx, p.ID, w.opts)
		run.PropertiesScanned++
		if err != nil {
			run.ErrorsCount++
			runLog.Warn("property match failed", zap.String("property_id", p.ID.String()), zap.Error(err))
			w.logFunc(&id, models.LogLevelWarn, logSource, fmt.Sprintf("property %s: %v", p.ID, err))
			continue
		}
		all = append(all, report.Matches...)
	}

	stats := matching.GetMatchStatistics(all)
	run.MatchesFound = stats.TotalMatches
	run.AverageScore = stats.AverageScore

	status := models.RunStatusCompleted
	if len(props) > 0 && run.ErrorsCount == len(props) {
		status = models.RunStatusFailed
	}
	finished := w.now()
	run.FinishedAt = &finished
	run.Status = status

	result := &RunReport{Run: *run, Stats: stats, TopMatches: topMatches(all, reportTopMatches)}
	if w.uploader != nil {
		key := storage.ReportKey(run.ID, run.StartedAt)
		if err := w.uploader.UploadReport(ctx, key, result); err != nil {
			runLog.Warn("report upload failed", zap.String("key", key), zap.Error(err))
			w.logFunc(&id, models.LogLevelWarn, logSource, fmt.Sprintf("report upload: %v", err))
		} else {
			run.ReportKey = key
			result.Run.ReportKey = key
		}
	}

	if err := w.journal.UpdateRun(run); err != nil {
		return result, fmt.Errorf("update run: %w", err)
	}

	msg := fmt.Sprintf("run %s: %d properties, %d matches, %d errors",
		status, run.PropertiesScanned, run.MatchesFound, run.ErrorsCount)
	level := models.LogLevelInfo
	if status == models.RunStatusFailed {
		level = models.LogLevelError
	}
	w.logFunc(&id, level, logSource, msg)
	runLog.Info("run finished",
		zap.String("status", string(status)),
		zap.Int("properties", run.PropertiesScanned),
		zap.Int("matches", run.MatchesFound),
		zap.Float64("average_score", run.AverageScore),
		zap.Int("errors", run.ErrorsCount),
	)
	return result, nil
}

func (w *MatchWorker) finish(run *models.MatchRun, status models.RunStatus) {
	finished := w.now()
	run.FinishedAt = &finished
	run.Status = status
	if err := w.journal.UpdateRun(run); err != nil {
		w.logger.Error("update run", zap.Int64("run_id", run.ID), zap.Error(err))
	}
}

// RematchProperty re-runs matching for a single property.
func (w *MatchWorker) RematchProperty(ctx context.Context, id uuid.UUID) (*services.MatchReport, error) {
	report, err := w.matcher.FindMatchesForProperty(ctx, id, w.opts)
	if err != nil {
		w.logFunc(nil, models.LogLevelWarn, logSource, fmt.Sprintf("rematch property %s: %v", id, err))
		return nil, err
	}
	w.logFunc(nil, models.LogLevelInfo, logSource,
		fmt.Sprintf("rematch property %s: %d matches", id, report.Stats.TotalMatches))
	return report, nil
}

// RematchClient re-runs matching for a single client.
func (w *MatchWorker) RematchClient(ctx context.Context, id uuid.UUID) (*services.MatchReport, error) {
	report, err := w.matcher.FindMatchesForClient(ctx, id, w.opts)
	if err != nil {
		w.logFunc(nil, models.LogLevelWarn, logSource, fmt.Sprintf("rematch client %s: %v", id, err))
		return nil, err
	}
	w.logFunc(nil, models.LogLevelInfo, logSource,
		fmt.Sprintf("rematch client %s: %d matches", id, report.Stats.TotalMatches))
	return report, nil
}

func topMatches(all []*models.MatchResult, n int) []*models.MatchResult {
	top := make([]*models.MatchResult, len(all))
	copy(top, all)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].TotalScore > top[j].TotalScore
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}
