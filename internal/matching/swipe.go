package matching

import (
	"context"
	"log"

	"real-estate-matching/internal/events"
	"real-estate-matching/internal/metrics"
	"real-estate-matching/internal/models"
)

// SwipeRequest is the caller's input to RecordSwipe
type SwipeRequest struct {
	TargetType models.TargetType `json:"target_type"`
	TargetID   string            `json:"target_id"`
	Direction  models.Direction  `json:"direction"`
}

// SwipeResult is returned by RecordSwipe.
// Matched is true only when a deal room exists for the triple at the end of this call.
type SwipeResult struct {
	Swipe      *models.Swipe `json:"swipe"`
	Matched    bool          `json:"matched"`
	DealRoomID *string       `json:"deal_room_id"`
	IsRequest  bool          `json:"is_request"`
}

// Validate checks the request fields
func (r SwipeRequest) Validate() error {
	const op = "record swipe"
	if r.TargetType == "" || r.TargetID == "" || r.Direction == "" {
		return validationError(op, "target_type, target_id, and direction are required")
	}
	if !r.TargetType.Valid() {
		return validationError(op, "Invalid target_type")
	}
	if !r.Direction.Valid() {
		return validationError(op, "Invalid direction")
	}
	return nil
}

// RecordSwipe validates, gates and stores a swipe, then runs match detection when the
// swipe can complete a mutual acceptance. A gate rejection leaves no swipe row.
func (s *Service) RecordSwipe(ctx context.Context, actorID string, req SwipeRequest) (*SwipeResult, error) {
	const op = "record swipe"

	if actorID == "" {
		return nil, &Error{Kind: KindUnauthenticated, Op: op, Message: "Unauthorized"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, err := s.loadProfile(ctx, op, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Check(ctx, actor, req.TargetType, req.Direction); err != nil {
		log.Printf("[swipe] rejected actor=%s role=%s target=%s/%s: %v",
			actor.ID, actor.Role, req.TargetType, req.TargetID, err)
		return nil, err
	}

	swipe, err := s.store.UpsertSwipe(ctx, &models.Swipe{
		ActorID:    actor.ID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Direction:  req.Direction,
	})
	if err != nil {
		log.Printf("[swipe] store error actor=%s target=%s/%s: %v", actor.ID, req.TargetType, req.TargetID, err)
		return nil, storeError(op, "Failed to create swipe", err)
	}
	metrics.SwipesTotal.WithLabelValues(string(swipe.Direction), string(swipe.TargetType)).Inc()

	result := &SwipeResult{Swipe: swipe}
	if !swipe.IsYes() {
		return result, nil
	}

	var triple *Triple
	switch {
	case actor.IsSeller() && swipe.TargetType == models.TargetTypeBuyerIntent:
		triple, err = s.detectFromSeller(ctx, actor.ID, swipe.TargetID)
	case actor.IsBuyer() && swipe.TargetType == models.TargetTypeListing:
		result.IsRequest = true
		metrics.RequestsTotal.Inc()
		triple, err = s.detectFromBuyer(ctx, actor.ID, swipe.TargetID)
	}
	if err != nil {
		log.Printf("[swipe] detection failed actor=%s target=%s/%s: %v", actor.ID, swipe.TargetType, swipe.TargetID, err)
		return nil, err
	}

	if triple != nil {
		roomID, err := s.Provision(ctx, *triple)
		if err != nil {
			if KindOf(err) != KindPartialProvisioning {
				return nil, err
			}
			// the swipe is committed; report it with matched=false so the client can retry
			return result, nil
		}
		result.Matched = true
		result.DealRoomID = &roomID
	}

	if result.IsRequest && !result.Matched {
		s.publish(events.SubjectSwipeRequest, events.SwipeRequest{
			SwipeID:   swipe.ID,
			ListingID: swipe.TargetID,
			BuyerID:   actor.ID,
		})
	}

	log.Printf("[swipe] actor=%s target=%s/%s direction=%s matched=%v",
		actor.ID, swipe.TargetType, swipe.TargetID, swipe.Direction, result.Matched)
	return result, nil
}
