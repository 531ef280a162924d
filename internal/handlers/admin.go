package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"real-estate-matching/internal/cleanup"
	"real-estate-matching/internal/config"
	"real-estate-matching/internal/database"
	"real-estate-matching/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db             *database.GormDB
	scheduler      *scheduler.Scheduler
	cleanupService *cleanup.Service
	cleanupConfig  config.CleanupConfig
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *database.GormDB, sched *scheduler.Scheduler, cleanupConfig config.CleanupConfig) *AdminHandler {
	return &AdminHandler{
		db:             db,
		scheduler:      sched,
		cleanupService: cleanup.NewService(db.DB()),
		cleanupConfig:  cleanupConfig,
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.db.GetStats(ctx)
	if err != nil {
		log.Printf("[admin] Failed to get stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	resp := gin.H{
		"tables": stats,
	}

	cleanupStats, err := h.cleanupService.GetStats(ctx, h.cleanupConfig.RetentionDays)
	if err != nil {
		log.Printf("[admin] Failed to get cleanup stats: %v", err)
	} else {
		resp["cleanup"] = cleanupStats
	}

	if h.scheduler != nil {
		resp["jobs"] = h.scheduler.Status()
	}

	c.JSON(http.StatusOK, resp)
}

// GetStateStats returns active listing counts by state
func (h *AdminHandler) GetStateStats(c *gin.Context) {
	limit := queryInt(c, "limit", 20)

	states, err := h.db.ListingsByState(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state_stats": states,
		"count":       len(states),
	})
}

// GetPriceDistribution returns the active listing price distribution
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	ranges, err := h.db.PriceDistribution(c.Request.Context(), database.DefaultPriceRanges())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"price_distribution": ranges,
	})
}

// TriggerFreshnessSweep runs the freshness sweep immediately
func (h *AdminHandler) TriggerFreshnessSweep(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not available"})
		return
	}

	log.Println("[admin] Manual freshness sweep requested")
	marked, err := h.scheduler.RunFreshnessSweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked_stale": marked})
}

// TriggerOrphanRepair provisions deal rooms for orphaned matches immediately
func (h *AdminHandler) TriggerOrphanRepair(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not available"})
		return
	}

	log.Println("[admin] Manual orphan repair requested")
	result, err := h.scheduler.RunOrphanRepair(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetJobStatus returns the scheduler job states
func (h *AdminHandler) GetJobStatus(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": h.scheduler.Status()})
}

// RunCleanup deletes archived "no" swipes
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int   `json:"retention_days"`
		MaxDeletionCount int   `json:"max_deletion_count"`
		DryRun           *bool `json:"dry_run"`
	}

	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := cleanup.OptionsFromConfig(h.cleanupConfig)
	if req.RetentionDays > 0 {
		opts.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		opts.MaxDeletionCount = req.MaxDeletionCount
	}
	// dry run unless the caller opts out
	opts.DryRun = req.DryRun == nil || *req.DryRun

	log.Printf("[admin] Running swipe cleanup (retention: %d days, max: %d, dry-run: %v)",
		opts.RetentionDays, opts.MaxDeletionCount, opts.DryRun)

	result, err := h.cleanupService.PhysicallyDelete(c.Request.Context(), opts)
	if err != nil {
		log.Printf("[admin] Cleanup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCleanupLogs returns recent cleanup log entries
func (h *AdminHandler) GetCleanupLogs(c *gin.Context) {
	limit := queryInt(c, "limit", 100)

	logs, err := h.cleanupService.GetRecentLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// queryInt reads a positive integer query parameter, falling back to def
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
