package handlers

import (
	"net/http"
	"time"

	"real-estate-matching/internal/auth"
	"real-estate-matching/internal/metrics"
	"real-estate-matching/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Router holds everything needed to register the HTTP routes
type Router struct {
	API        *APIHandler
	Admin      *AdminHandler
	Verifier   *auth.Verifier
	Limiter    ratelimit.Limiter
	AdminToken string
}

// Register attaches all routes to r
func (rt Router) Register(r *gin.Engine) {
	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api", auth.Middleware(rt.Verifier))
	{
		swipe := []gin.HandlerFunc{rt.API.RecordSwipe}
		if rt.Limiter != nil {
			swipe = append([]gin.HandlerFunc{RateLimit(rt.Limiter)}, swipe...)
		}
		api.POST("/swipes", swipe...)

		api.POST("/matchmake", rt.API.Matchmake)
		api.GET("/buyer-intents/:id/matches", rt.API.IntentMatches)
		api.GET("/requests", rt.API.ListRequests)
		api.GET("/deal-rooms/:id", rt.API.GetDealRoom)
	}

	if rt.Admin == nil {
		return
	}

	admin := r.Group("/api/admin", AdminAuth(rt.AdminToken))
	{
		// Statistics
		admin.GET("/stats", rt.Admin.GetStats)
		admin.GET("/state-stats", rt.Admin.GetStateStats)
		admin.GET("/price-distribution", rt.Admin.GetPriceDistribution)

		// Maintenance jobs
		admin.GET("/jobs", rt.Admin.GetJobStatus)
		admin.POST("/jobs/freshness-sweep", rt.Admin.TriggerFreshnessSweep)
		admin.POST("/jobs/repair-orphans", rt.Admin.TriggerOrphanRepair)

		// Rate limiter
		if reporter, ok := rt.Limiter.(interface{ GetStats() ratelimit.Stats }); ok {
			admin.GET("/ratelimit/stats", func(c *gin.Context) {
				c.JSON(http.StatusOK, reporter.GetStats())
			})
		}

		// Cleanup operations
		admin.POST("/cleanup/swipes", rt.Admin.RunCleanup)
		admin.GET("/cleanup/logs", rt.Admin.GetCleanupLogs)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
