// Package digest assembles the daily intelligence snapshot: it fans out all
// collaborator fetches concurrently, resolves the reference day, and composes
// the scored streams, risk pulse, persona briefings, insight narrative and
// workflow recommendations into one DailySnapshot.
package digest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/annotations"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/briefing"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/insight"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/metrics"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/risk"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/store"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/streams"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/timeutil"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/updates"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/workflows"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/logging"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

const (
	defaultRecentWindowDays = 7
	defaultTodayLimit       = 50
	defaultRecentLimit      = 200
	defaultAuthorityDayCap  = 5
	defaultTimeout          = 15 * time.Second
	workflowFetchLimit      = 10

	// fallbackSliceLimit bounds the last-resort slice of the recent pool
	// used when no single day can be resolved.
	fallbackSliceLimit = 40
)

// Store is the read-only data-access collaborator the orchestrator fans out
// over. *store.Store satisfies it.
type Store interface {
	GetEnhancedUpdates(ctx context.Context, filters store.UpdateFilters) ([]models.RegulatoryUpdate, error)
	GetPinnedItems(ctx context.Context, userID string) ([]models.PinnedItem, error)
	GetSavedSearches(ctx context.Context, userID string) ([]models.SavedSearch, error)
	GetCustomAlerts(ctx context.Context, userID string) ([]models.CustomAlert, error)
	GetActiveProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListFeedbackScores(ctx context.Context, profileID string) ([]models.BehaviorSignal, error)
	ListAnnotations(ctx context.Context, statuses []string) ([]models.Annotation, error)
	ListWorkflows(ctx context.Context, userID string, limit int) ([]models.SavedWorkflow, error)
	GetWorkspaceStats(ctx context.Context) (models.WorkspaceStats, error)
}

// Options tunes one snapshot build.
type Options struct {
	Now               time.Time
	UserID            string
	Limit             int
	RecentLimit       int
	LimitPerAuthority int
	AuthorityDayCap   int
	RiskFloor         float64
	Timeout           time.Duration
}

// Builder owns the collaborators a snapshot is computed from.
type Builder struct {
	store   Store
	scorer  streams.Scorer
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewBuilder creates a snapshot builder. metrics may be nil in tests.
func NewBuilder(st Store, scorer streams.Scorer, logger logging.Logger, m *metrics.Metrics) *Builder {
	return &Builder{store: st, scorer: scorer, logger: logger, metrics: m}
}

var annotationStatuses = []string{
	models.AnnotationActionRequired,
	models.AnnotationAssigned,
	models.AnnotationTriage,
	models.AnnotationFlagged,
	models.AnnotationNote,
}

// BuildDailySnapshot computes one snapshot from current collaborator state.
// Every fetch degrades to an empty default on failure; the only error
// returned outward is both update fetches failing, which leaves nothing to
// build from.
func (b *Builder) BuildDailySnapshot(ctx context.Context, opts Options) (*models.DailySnapshot, error) {
	start := time.Now()

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	todayLimit := opts.Limit
	if todayLimit <= 0 {
		todayLimit = defaultTodayLimit
	}
	recentLimit := opts.RecentLimit
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	dayCap := opts.AuthorityDayCap
	if dayCap <= 0 {
		dayCap = defaultAuthorityDayCap
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		degraded []string

		today          []models.RegulatoryUpdate
		recent         []models.RegulatoryUpdate
		stats          models.WorkspaceStats
		pins           []models.PinnedItem
		searches       []models.SavedSearch
		alerts         []models.CustomAlert
		annots         []models.Annotation
		savedWorkflows []models.SavedWorkflow
		profile        *models.Profile

		todayErr, recentErr error
	)

	degrade := func(source string, err error) {
		if b.logger != nil {
			b.logger.WithError(err).WithField("source", source).Warn("Snapshot fetch degraded to empty")
		}
		if b.metrics != nil {
			b.metrics.FetchFailures.WithLabelValues(source).Inc()
		}
		mu.Lock()
		degraded = append(degraded, source)
		mu.Unlock()
	}

	dayStart := timeutil.StartOfDay(now)
	dayEnd := timeutil.EndOfDay(now)
	recentStart := timeutil.StartOfDay(timeutil.SubtractDays(now, defaultRecentWindowDays))

	var g errgroup.Group
	g.Go(func() error {
		var err error
		today, err = b.store.GetEnhancedUpdates(ctx, store.UpdateFilters{
			StartDate: &dayStart, EndDate: &dayEnd, Limit: todayLimit,
		})
		if err != nil {
			todayErr = err
			degrade("today_updates", err)
			today = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = b.store.GetEnhancedUpdates(ctx, store.UpdateFilters{
			StartDate: &recentStart, Limit: recentLimit,
		})
		if err != nil {
			recentErr = err
			degrade("recent_updates", err)
			recent = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = b.store.GetWorkspaceStats(ctx)
		if err != nil {
			degrade("workspace_stats", err)
			stats = models.WorkspaceStats{}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pins, err = b.store.GetPinnedItems(ctx, opts.UserID)
		if err != nil {
			degrade("pinned_items", err)
			pins = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		searches, err = b.store.GetSavedSearches(ctx, opts.UserID)
		if err != nil {
			degrade("saved_searches", err)
			searches = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		alerts, err = b.store.GetCustomAlerts(ctx, opts.UserID)
		if err != nil {
			degrade("custom_alerts", err)
			alerts = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		annots, err = b.store.ListAnnotations(ctx, annotationStatuses)
		if err != nil {
			degrade("annotations", err)
			annots = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		savedWorkflows, err = b.store.ListWorkflows(ctx, opts.UserID, workflowFetchLimit)
		if err != nil {
			degrade("workflows", err)
			savedWorkflows = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profile, err = b.store.GetActiveProfile(ctx, opts.UserID)
		if err != nil {
			profile = nil
			if !errors.Is(err, store.ErrNotFound) {
				degrade("profile", err)
			}
		}
		return nil
	})
	_ = g.Wait()

	if todayErr != nil && recentErr != nil {
		b.observeBuild(start, "error")
		return nil, fmt.Errorf("data access unavailable: %w", todayErr)
	}

	// Behavioural signals depend on the resolved profile.
	var signals []models.BehaviorSignal
	if profile != nil {
		var err error
		signals, err = b.store.ListFeedbackScores(ctx, profile.ID)
		if err != nil {
			degrade("feedback_scores", err)
			signals = nil
		}
	}

	referenceDate, primary := resolveReference(now, today, recent)

	recentPool := updates.EnforceDailyAuthorityCap(recent, dayCap)
	primary = updates.EnforceDailyAuthorityCap(primary, dayCap)

	pinnedSet := make(map[string]bool, len(pins))
	for _, p := range pins {
		pinnedSet[p.UpdateID] = true
	}

	buckets := streams.Build(ctx, primary, profile, pinnedSet, b.scorer, streams.Options{
		LimitPerAuthority: opts.LimitPerAuthority,
		ReferenceDate:     referenceDate,
	})
	allEntries := buckets.All()

	outstanding := annotations.CountOutstandingTasks(annots)

	pulse := risk.Compute(risk.Inputs{
		Today:            primary,
		RecentPool:       recentPool,
		ReferenceDate:    referenceDate,
		OutstandingTasks: outstanding,
		Floor:            opts.RiskFloor,
	})

	personas := briefing.BuildPersonaSnapshots(buckets, annots, referenceDate)
	personas = briefing.AttachBriefings(personas, allEntries, referenceDate)

	highImpact := highImpactOf(primary)
	authorityCount := countAuthorities(primary)
	deadlineCount := countUpcomingDeadlines(recentPool, referenceDate)

	focus, hasFocus := insight.SelectAuthorityFocus(allEntries, referenceDate)
	focusHeadline := ""
	if hasFocus {
		focusHeadline = focus.Best.Update.Headline
	}

	executiveSummary := insight.BuildExecutiveSummary(insight.SummaryInputs{
		FocusHeadline:    focusHeadline,
		HighImpactCount:  len(highImpact),
		AuthorityCount:   authorityCount,
		DeadlineCount:    deadlineCount,
		FocusAuthorities: authoritiesOf(highImpact),
	})
	hero := insight.BuildHeroInsight(focus, hasFocus, allEntries, executiveSummary, referenceDate)
	themes := insight.ComputeThemes(recentPool)
	timeline := annotations.BuildTimeline(recentPool, referenceDate)

	recommendations := workflows.Recommend(workflows.Inputs{
		Profile:         profile,
		BehaviourScores: signals,
		Streams:         buckets,
	})

	sort.Strings(degraded)

	snapshot := &models.DailySnapshot{
		GeneratedAt:      time.Now().UTC(),
		SnapshotDate:     timeutil.DayKey(referenceDate),
		RiskPulse:        pulse,
		FocusHeadline:    focusHeadline,
		HeroInsight:      hero,
		QuickStats:       models.QuickStats{TotalUpdates: len(primary), HighImpact: len(highImpact), ActiveAuthorities: authorityCount, UpcomingDeadlines: deadlineCount, OpenTasks: outstanding, Pins: len(pins)},
		ExecutiveSummary: executiveSummary,
		Streams:          buckets,
		Personas:         personas,
		RecommendedWorkflows: recommendations,
		Workspace: models.WorkspaceMeta{
			Stats:          stats,
			SavedSearches:  len(searches),
			CustomAlerts:   len(alerts),
			SavedWorkflows: len(savedWorkflows),
		},
		Timeline:        timeline,
		Themes:          themes,
		Profile:         profile,
		Layout:          layoutFor(buckets, timeline, themes),
		DegradedSources: degraded,
	}

	b.observeBuild(start, "ok")
	return snapshot, nil
}

func (b *Builder) observeBuild(start time.Time, status string) {
	if b.metrics == nil {
		return
	}
	b.metrics.SnapshotBuilds.WithLabelValues(status).Inc()
	b.metrics.SnapshotDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// resolveReference picks the reference day. An empty today window falls back
// to the most recent day present in the 7-day pool, then to a bounded slice
// of the pool itself.
func resolveReference(now time.Time, today, recent []models.RegulatoryUpdate) (time.Time, []models.RegulatoryUpdate) {
	if len(today) > 0 {
		return now, today
	}

	var bestTS int64
	for _, u := range recent {
		if ts := timeutil.UpdateTimestamp(u); ts > bestTS {
			bestTS = ts
		}
	}
	if bestTS > 0 {
		referenceDate := time.UnixMilli(bestTS).UTC()
		dayKey := timeutil.DayKey(referenceDate)
		var primary []models.RegulatoryUpdate
		for _, u := range recent {
			if t, ok := timeutil.ExtractUpdateDate(u); ok && timeutil.DayKey(t) == dayKey {
				primary = append(primary, u)
			}
		}
		if len(primary) > 0 {
			return referenceDate, primary
		}
	}

	if len(recent) > 0 {
		slice := recent
		if len(slice) > fallbackSliceLimit {
			slice = slice[:fallbackSliceLimit]
		}
		referenceDate := now
		if t, ok := timeutil.ExtractUpdateDate(slice[0]); ok {
			referenceDate = t
		}
		return referenceDate, slice
	}

	return now, nil
}

func highImpactOf(pool []models.RegulatoryUpdate) []models.RegulatoryUpdate {
	var out []models.RegulatoryUpdate
	for _, u := range pool {
		if updates.IsHighImpact(u) {
			out = append(out, u)
		}
	}
	return out
}

func countAuthorities(pool []models.RegulatoryUpdate) int {
	seen := make(map[string]bool)
	for _, u := range pool {
		seen[updates.AuthorityKey(u.Authority)] = true
	}
	return len(seen)
}

func countUpcomingDeadlines(pool []models.RegulatoryUpdate, referenceDate time.Time) int {
	n := 0
	for _, u := range pool {
		if _, ok := updates.UpcomingDeadline(u, referenceDate, updates.DefaultDeadlineWindowDays); ok {
			n++
		}
	}
	return n
}

func authoritiesOf(pool []models.RegulatoryUpdate) []string {
	var out []string
	seen := make(map[string]bool)
	for _, u := range pool {
		key := updates.AuthorityKey(u.Authority)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, u.Authority)
	}
	return out
}

// layoutFor selects which sections carry data. Consumers order and render.
func layoutFor(buckets models.StreamBuckets, timeline []models.TimelineEntry, themes []models.Theme) models.LayoutConfig {
	sections := []string{"risk_pulse", "hero_insight", "streams", "personas", "workflows", "workspace"}
	if len(timeline) > 0 {
		sections = append(sections, "timeline")
	}
	if len(themes) > 0 {
		sections = append(sections, "themes")
	}
	if len(buckets.All()) == 0 {
		sections = []string{"risk_pulse", "workspace"}
	}
	return models.LayoutConfig{Sections: sections, DefaultView: "daily"}
}
