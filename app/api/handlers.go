package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/tube-comb/app/database"
	"github.com/lysyi3m/tube-comb/app/feed"
)

const (
	defaultProcessedLimit = 50
	maxProcessedLimit     = 1000
)

func NewHandler(configCache *feed.ConfigCache, processed database.ProcessedLog,
	summaries SummarySource, trigger RunTrigger, version string) *Handler {
	return &Handler{
		configCache: configCache,
		processed:   processed,
		summaries:   summaries,
		trigger:     trigger,
		version:     version,
		startedAt:   time.Now(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "ok",
		"version":               h.version,
		"timestamp":             time.Now().In(time.Local).Format(time.RFC3339),
		"uptime":                time.Since(h.startedAt).Round(time.Second).String(),
		"loaded_configurations": h.configCache.GetConfigCount(),
		"processed":             h.processed.Count(),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{
		"channels":         h.configCache.GetConfigCount(),
		"enabled_channels": len(h.configCache.GetEnabledConfigs()),
		"processed":        h.processed.Count(),
		"last_run":         nil,
	}

	if summary, ok := h.summaries.LastSummary(); ok {
		stats["last_run"] = gin.H{
			"run_id":      summary.RunID,
			"started_at":  summary.StartedAt,
			"finished_at": summary.FinishedAt,
			"channels":    summary.Channels,
			"recorded":    summary.Recorded,
			"skipped":     summary.Skipped,
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListChannels(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	channels := make([]gin.H, 0, len(configs))
	for _, channelConfig := range configs {
		channels = append(channels, gin.H{
			"id":        channelConfig.ID,
			"name":      channelConfig.Name,
			"reference": channelConfig.Reference,
			"enabled":   channelConfig.IsEnabled(),
			"policy":    channelConfig.Policy.Type,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"channels": channels,
		"total":    len(channels),
	})
}

func (h *Handler) APIGetChannel(c *gin.Context) {
	id := c.Param("id")

	channelConfig, err := h.configCache.GetConfig(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel configuration not found"})
		return
	}

	details := gin.H{
		"id":           channelConfig.ID,
		"name":         channelConfig.Name,
		"reference":    channelConfig.Reference,
		"listing_url":  channelConfig.ListingURL,
		"search_query": channelConfig.Query(),
		"enabled":      channelConfig.IsEnabled(),
		"policy":       channelConfig.Policy,
		"markers":      channelConfig.Markers,
	}

	if summary, ok := h.summaries.LastSummary(); ok {
		for _, out := range summary.Outcomes {
			if out.Channel == id {
				details["last_outcome"] = out
				break
			}
		}
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIReloadChannel(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.configCache.GetConfig(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel configuration not found"})
		return
	}

	channelConfig, err := h.configCache.LoadConfig(id)
	if err != nil {
		slog.Error("Error reloading configuration", "channel", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"channel": gin.H{
			"id":      channelConfig.ID,
			"name":    channelConfig.Name,
			"enabled": channelConfig.IsEnabled(),
			"policy":  channelConfig.Policy.Type,
		},
	})
}

func (h *Handler) APIListProcessed(c *gin.Context) {
	limit := defaultProcessedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxProcessedLimit)
	}

	entries, err := h.processed.Recorded(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_processed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if entries == nil {
		entries = []database.Entry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items": entries,
		"total": h.processed.Count(),
	})
}

func (h *Handler) GetProcessedFeed(c *gin.Context) {
	entries, err := h.processed.Recorded(c.Request.Context(), defaultProcessedLimit)
	if err != nil {
		slog.Error("Database error", "operation", "processed_feed", "error", err)
		c.String(http.StatusInternalServerError, "Database error")
		return
	}

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	selfLink := fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)

	rss := renderProcessedFeed(entries, selfLink, h.version, time.Now().In(time.Local))
	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, rss)
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	if !h.trigger.Trigger() {
		c.JSON(http.StatusConflict, gin.H{"error": "A run is already in progress"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "Run started"})
}
