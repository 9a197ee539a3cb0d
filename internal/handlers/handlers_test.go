package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/digest"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/store"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/cache"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

type fakeStore struct {
	mu      sync.Mutex
	updates []models.RegulatoryUpdate
	calls   int
}

func (f *fakeStore) GetEnhancedUpdates(context.Context, store.UpdateFilters) ([]models.RegulatoryUpdate, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.updates, nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) GetPinnedItems(context.Context, string) ([]models.PinnedItem, error) {
	return nil, nil
}

func (f *fakeStore) GetSavedSearches(context.Context, string) ([]models.SavedSearch, error) {
	return nil, nil
}

func (f *fakeStore) GetCustomAlerts(context.Context, string) ([]models.CustomAlert, error) {
	return nil, nil
}

func (f *fakeStore) GetActiveProfile(context.Context, string) (*models.Profile, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListFeedbackScores(context.Context, string) ([]models.BehaviorSignal, error) {
	return nil, nil
}

func (f *fakeStore) ListAnnotations(context.Context, []string) ([]models.Annotation, error) {
	return nil, nil
}

func (f *fakeStore) ListWorkflows(context.Context, string, int) ([]models.SavedWorkflow, error) {
	return nil, nil
}

func (f *fakeStore) GetWorkspaceStats(context.Context) (models.WorkspaceStats, error) {
	return models.WorkspaceStats{}, nil
}

type flatScorer struct{ score float64 }

func (s flatScorer) Score(context.Context, models.RegulatoryUpdate, *models.Profile) (float64, error) {
	return s.score, nil
}

func setupRouter(t *testing.T, fs *fakeStore, withCache bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var snapCache *cache.Cache
	if withCache {
		snapCache = cache.New(cache.Options{TTL: time.Minute}, cache.MetricsHooks{})
	}
	Init(digest.NewBuilder(fs, flatScorer{score: 80}, nil, nil), snapCache, nil, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set("user_id", uid)
		}
	})
	r.GET("/digest/daily", GetDailyDigest)
	r.POST("/digest/refresh", RefreshDailyDigest)
	return r
}

func sampleUpdate() models.RegulatoryUpdate {
	return models.RegulatoryUpdate{
		ID:          "u1",
		Headline:    "FCA finalises safeguarding rules",
		Authority:   "FCA",
		Urgency:     "High",
		ImpactLevel: "Significant",
		PublishedAt: models.NewFlexTime(time.Now().UTC().Add(-2 * time.Hour)),
	}
}

func TestGetDailyDigest_ReturnsSnapshot(t *testing.T) {
	fs := &fakeStore{updates: []models.RegulatoryUpdate{sampleUpdate()}}
	r := setupRouter(t, fs, false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/digest/daily", nil)
	req.Header.Set("X-Test-User", "user-1")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var snap models.DailySnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.NotEmpty(t, snap.SnapshotDate)
	assert.NotEmpty(t, snap.Streams.High)
	assert.GreaterOrEqual(t, len(snap.RecommendedWorkflows), 1)
}

func TestGetDailyDigest_RequiresUserContext(t *testing.T) {
	r := setupRouter(t, &fakeStore{}, false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/digest/daily", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetDailyDigest_RejectsBadParams(t *testing.T) {
	r := setupRouter(t, &fakeStore{}, false)

	for _, q := range []string{"date=10-03-2026", "limit=0", "limit=abc", "recent_limit=-1"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequestWithContext(context.Background(), "GET", "/digest/daily?"+q, nil)
		req.Header.Set("X-Test-User", "user-1")
		r.ServeHTTP(w, req)
		assert.Equalf(t, http.StatusBadRequest, w.Code, "query %q", q)
	}
}

func TestGetDailyDigest_CachesDefaultRequests(t *testing.T) {
	fs := &fakeStore{updates: []models.RegulatoryUpdate{sampleUpdate()}}
	r := setupRouter(t, fs, true)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequestWithContext(context.Background(), "GET", "/digest/daily", nil)
		req.Header.Set("X-Test-User", "user-1")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Two update fetches per build (today + recent), one build total.
	assert.Equal(t, 2, fs.callCount())
}

func TestRefreshDailyDigest_InvalidatesCache(t *testing.T) {
	fs := &fakeStore{updates: []models.RegulatoryUpdate{sampleUpdate()}}
	r := setupRouter(t, fs, true)

	get := func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequestWithContext(context.Background(), "GET", "/digest/daily", nil)
		req.Header.Set("X-Test-User", "user-1")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	get()
	assert.Equal(t, 2, fs.callCount())

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "POST", "/digest/refresh", nil)
	req.Header.Set("X-Test-User", "user-1")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	get()
	assert.Equal(t, 4, fs.callCount())
}

func TestGetDailyDigest_ExplicitDateBypassesCache(t *testing.T) {
	fs := &fakeStore{updates: []models.RegulatoryUpdate{sampleUpdate()}}
	r := setupRouter(t, fs, true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/digest/daily?date=2026-03-09", nil)
	req.Header.Set("X-Test-User", "user-1")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequestWithContext(context.Background(), "GET", "/digest/daily?date=2026-03-09", nil)
	req.Header.Set("X-Test-User", "user-1")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 4, fs.callCount())
}
