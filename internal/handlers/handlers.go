package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/digest"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/metrics"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/timeutil"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/cache"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/logging"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

var (
	builder        *digest.Builder
	snapshotCache  *cache.Cache
	logger         logging.Logger
	serviceMetrics *metrics.Metrics
)

// Init initializes the handlers package with the snapshot builder, cache and metrics
func Init(b *digest.Builder, c *cache.Cache, log logging.Logger, m *metrics.Metrics) {
	builder = b
	snapshotCache = c
	logger = log
	serviceMetrics = m
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetDailyDigest returns the caller's daily intelligence snapshot.
// Query params: date (YYYY-MM-DD), limit, recent_limit.
func GetDailyDigest(c *gin.Context) {
	start := time.Now()
	defer func() {
		if serviceMetrics != nil {
			serviceMetrics.SnapshotDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
		}
	}()

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User context required"})
		return
	}

	opts := digest.Options{UserID: userID}

	if rawDate := c.Query("date"); rawDate != "" {
		parsed, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid date format, expected YYYY-MM-DD"})
			return
		}
		opts.Now = parsed.UTC()
	}
	if rawLimit := c.Query("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		opts.Limit = limit
	}
	if rawRecent := c.Query("recent_limit"); rawRecent != "" {
		limit, err := strconv.Atoi(rawRecent)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid recent_limit"})
			return
		}
		opts.RecentLimit = limit
	}

	snapshot, err := loadSnapshot(c.Request.Context(), opts)
	if err != nil {
		if logger != nil {
			logger.WithError(err).WithField("user_id", userID).Error("Failed to build daily snapshot")
		}
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Snapshot temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// RefreshDailyDigest drops the caller's cached snapshot so the next read
// recomputes it.
func RefreshDailyDigest(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User context required"})
		return
	}

	if snapshotCache != nil {
		snapshotCache.Delete(snapshotKey(userID, time.Now().UTC()))
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

// WarmSnapshot precomputes the default snapshot for a user through the same
// cache path requests use. The scheduler calls this periodically.
func WarmSnapshot(ctx context.Context, userID string) error {
	_, err := loadSnapshot(ctx, digest.Options{UserID: userID})
	return err
}

// loadSnapshot serves default-shaped requests through the cache; requests
// with explicit limits or dates bypass it.
func loadSnapshot(ctx context.Context, opts digest.Options) (*models.DailySnapshot, error) {
	cacheable := snapshotCache != nil && opts.Now.IsZero() && opts.Limit == 0 && opts.RecentLimit == 0
	if !cacheable {
		return builder.BuildDailySnapshot(ctx, opts)
	}

	key := snapshotKey(opts.UserID, time.Now().UTC())
	return snapshotCache.Get(ctx, key, func(ctx context.Context, _ string) (*models.DailySnapshot, error) {
		return builder.BuildDailySnapshot(ctx, opts)
	})
}

func snapshotKey(userID string, now time.Time) string {
	return "digest:" + userID + ":" + timeutil.DayKey(now)
}
