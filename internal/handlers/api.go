package handlers

import (
	"errors"
	"log"
	"net/http"

	"real-estate-matching/internal/auth"
	"real-estate-matching/internal/matching"

	"github.com/gin-gonic/gin"
)

// APIHandler exposes the matching service over HTTP
type APIHandler struct {
	service *matching.Service
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(service *matching.Service) *APIHandler {
	return &APIHandler{service: service}
}

// RecordSwipe handles POST /api/swipes
func (h *APIHandler) RecordSwipe(c *gin.Context) {
	var req matching.SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_type, target_id, and direction are required"})
		return
	}

	result, err := h.service.RecordSwipe(c.Request.Context(), auth.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Matchmake handles POST /api/matchmake
func (h *APIHandler) Matchmake(c *gin.Context) {
	var req struct {
		BuyerIntentID string `json:"buyer_intent_id"`
	}
	// an empty body falls through to the service's validation
	_ = c.ShouldBindJSON(&req)

	h.matchmake(c, req.BuyerIntentID)
}

// IntentMatches handles GET /api/buyer-intents/:id/matches
func (h *APIHandler) IntentMatches(c *gin.Context) {
	h.matchmake(c, c.Param("id"))
}

func (h *APIHandler) matchmake(c *gin.Context, intentID string) {
	cards, err := h.service.Matchmake(c.Request.Context(), intentID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": cards,
		"count":    len(cards),
	})
}

// ListRequests handles GET /api/requests
func (h *APIHandler) ListRequests(c *gin.Context) {
	requests, err := h.service.ListRequests(c.Request.Context(), auth.ActorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// GetDealRoom handles GET /api/deal-rooms/:id
func (h *APIHandler) GetDealRoom(c *gin.Context) {
	detail, err := h.service.GetDealRoom(c.Request.Context(), auth.ActorID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// writeError maps a matching error to its HTTP status and body
func writeError(c *gin.Context, err error) {
	var me *matching.Error
	if !errors.As(err, &me) {
		log.Printf("[api] unexpected error on %s: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	switch me.Kind {
	case matching.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": me.Message})
	case matching.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": me.Message})
	case matching.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": me.Message})
	case matching.KindForbidden:
		body := gin.H{"error": me.Message}
		if me.Required > 0 {
			body["required_level"] = me.Required
			body["current_level"] = me.Current
		}
		c.JSON(http.StatusForbidden, body)
	default:
		log.Printf("[api] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": me.Message})
	}
}
