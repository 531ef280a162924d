package matching

import (
	"context"
	"errors"
	"log"
	"time"

	"real-estate-matching/internal/database"
	"real-estate-matching/internal/models"
)

// pendingRequestLimit bounds the seller inbox
const pendingRequestLimit = 200

// BuyerRequest is a buyer's yes on one of the seller's listings, awaiting the seller's decision
type BuyerRequest struct {
	SwipeID        string    `json:"swipe_id"`
	ListingID      string    `json:"listing_id"`
	BuyerID        string    `json:"buyer_id"`
	BuyerIntentIDs []string  `json:"buyer_intent_ids"`
	SwipedAt       time.Time `json:"swiped_at"`
}

// ListRequests returns the pending buyer requests on the seller's active listings
func (s *Service) ListRequests(ctx context.Context, sellerID string) ([]BuyerRequest, error) {
	const op = "list requests"

	seller, err := s.loadProfile(ctx, op, sellerID)
	if err != nil {
		return nil, err
	}

	pending, err := s.store.ListPendingRequests(ctx, seller.ID, pendingRequestLimit)
	if err != nil {
		log.Printf("[matching] %s seller=%s: %v", op, seller.ID, err)
		return nil, storeError(op, "Failed to fetch requests", err)
	}

	buyerIDs := make([]string, 0, len(pending))
	seen := make(map[string]bool)
	for _, p := range pending {
		if !seen[p.BuyerID] {
			seen[p.BuyerID] = true
			buyerIDs = append(buyerIDs, p.BuyerID)
		}
	}
	intents, err := s.store.ListActiveIntentIDsByBuyers(ctx, buyerIDs)
	if err != nil {
		log.Printf("[matching] %s seller=%s: %v", op, seller.ID, err)
		return nil, storeError(op, "Failed to fetch buyer intents", err)
	}

	requests := make([]BuyerRequest, 0, len(pending))
	for _, p := range pending {
		ids := intents[p.BuyerID]
		if ids == nil {
			ids = []string{}
		}
		requests = append(requests, BuyerRequest{
			SwipeID:        p.SwipeID,
			ListingID:      p.ListingID,
			BuyerID:        p.BuyerID,
			BuyerIntentIDs: ids,
			SwipedAt:       p.SwipedAt,
		})
	}
	return requests, nil
}

// GetDealRoom returns a deal room to one of its participants
func (s *Service) GetDealRoom(ctx context.Context, actorID, roomID string) (*database.DealRoomDetail, error) {
	const op = "get deal room"

	actor, err := s.loadProfile(ctx, op, actorID)
	if err != nil {
		return nil, err
	}

	detail, err := s.store.GetDealRoomDetail(ctx, roomID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(op, "Deal room not found", err)
	}
	if err != nil {
		log.Printf("[matching] %s room=%s: %v", op, roomID, err)
		return nil, storeError(op, "Failed to load deal room", err)
	}

	if !isParticipant(detail.Participants, actor.ID) && actor.Role != models.RoleSupport {
		return nil, &Error{Kind: KindForbidden, Op: op, Message: "Not a participant of this deal room"}
	}
	return detail, nil
}

func isParticipant(participants []models.DealParticipant, profileID string) bool {
	for _, p := range participants {
		if p.ProfileID == profileID {
			return true
		}
	}
	return false
}

// RepairResult summarizes a RepairOrphanedMatches run
type RepairResult struct {
	Scanned  int      `json:"scanned"`
	Repaired int      `json:"repaired"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// RepairOrphanedMatches provisions deal rooms for matches that were stored without one
func (s *Service) RepairOrphanedMatches(ctx context.Context) (*RepairResult, error) {
	const op = "repair orphaned matches"

	orphans, err := s.store.ListOrphanedMatches(ctx, s.cfg.OrphanRepairBatchSize)
	if err != nil {
		return nil, storeError(op, "Failed to list orphaned matches", err)
	}

	result := &RepairResult{Scanned: len(orphans)}
	for i := range orphans {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		roomID, err := s.ensureDealRoom(ctx, &orphans[i], "")
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Repaired++
		log.Printf("[matching] repaired match %s with deal room %s", orphans[i].ID, roomID)
	}
	return result, nil
}
