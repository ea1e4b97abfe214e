package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/politics-watch/app/database"
	"github.com/lysyi3m/politics-watch/app/feed"
	"github.com/lysyi3m/politics-watch/app/tasks"
)

func NewHandler(seenRepo database.SeenRepository, hitRepo database.HitRepository,
	scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		seenRepo:  seenRepo,
		hitRepo:   hitRepo,
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) GetHitsFeed(c *gin.Context) {
	limit, ok := hitLimit(c)
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	hits, err := h.hitRepo.GetRecentHits(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_hits", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := feed.NewGenerator(selfLink(c), h.version).Run(hits)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(hits)))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if _, err := h.seenRepo.GetSeenCount(c.Request.Context()); err != nil {
		slog.Error("Database error", "operation", "health_check", "error", err)
		health["status"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	hitCount, err := h.hitRepo.GetHitCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_hit_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	seenCount, err := h.seenRepo.GetSeenCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_seen_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hits":    hitCount,
		"seen":    seenCount,
		"watch":   h.scheduler.Status(),
		"version": h.version,
	})
}

func (h *Handler) APIListHits(c *gin.Context) {
	limit, ok := hitLimit(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}

	hits, err := h.hitRepo.GetRecentHits(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_hits", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if hits == nil {
		hits = []database.Hit{}
	}

	c.JSON(http.StatusOK, gin.H{
		"hits":  hits,
		"total": len(hits),
	})
}

func (h *Handler) APIRunWatch(c *gin.Context) {
	if !h.scheduler.Trigger() {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "A watch run is already in progress",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Watch run started",
	})
}

// hitLimit reads the optional ?limit= query, capped at maxHitLimit.
func hitLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultHitLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, false
	}
	return min(limit, maxHitLimit), true
}

func selfLink(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)
}
