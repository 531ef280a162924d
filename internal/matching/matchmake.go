package matching

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"real-estate-matching/internal/database"
	"real-estate-matching/internal/metrics"
	"real-estate-matching/internal/models"
)

// ListingCard is one ranked listing returned by Matchmake
type ListingCard struct {
	Listing           models.Listing        `json:"listing"`
	Media             []models.ListingMedia `json:"media"`
	Score             float64               `json:"score"`
	Explanation       string                `json:"explanation"`
	CommuteEstMinutes *int                  `json:"commute_est_minutes,omitempty"`
}

// Matchmake scores every eligible listing against the buyer intent and returns them
// ordered by score, highest first. It performs no writes.
func (s *Service) Matchmake(ctx context.Context, intentID string) ([]ListingCard, error) {
	const op = "matchmake"
	start := time.Now()
	defer func() { metrics.MatchmakeDuration.Observe(time.Since(start).Seconds()) }()

	if intentID == "" {
		return nil, validationError(op, "buyer_intent_id is required")
	}

	intent, err := s.store.GetBuyerIntent(ctx, intentID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(op, "Buyer intent not found", err)
	}
	if err != nil {
		log.Printf("[matchmake] load intent %s: %v", intentID, err)
		return nil, storeError(op, "Failed to load buyer intent", err)
	}

	filter := database.CandidateFilter{
		Now:             s.now(),
		FreshnessWindow: s.cfg.GetFreshnessWindow(),
		Limit:           s.cfg.CandidateBatchSize,
	}
	if s.cfg.PrefilterByState {
		filter.States = intent.States()
	}

	listings, err := s.store.ListCandidateListings(ctx, filter)
	if err != nil {
		log.Printf("[matchmake] fetch candidates for intent %s: %v", intentID, err)
		return nil, storeError(op, "Failed to fetch listings", err)
	}
	metrics.MatchmakeCandidates.Observe(float64(len(listings)))

	ids := make([]string, len(listings))
	for i := range listings {
		ids[i] = listings[i].ID
	}
	media, err := s.store.ListMediaForListings(ctx, ids)
	if err != nil {
		log.Printf("[matchmake] fetch media for intent %s: %v", intentID, err)
		return nil, storeError(op, "Failed to fetch listing media", err)
	}

	cards := make([]ListingCard, 0, len(listings))
	for i := range listings {
		result := s.scorer.Score(intent, &listings[i])
		m := media[listings[i].ID]
		if m == nil {
			m = []models.ListingMedia{}
		}
		cards = append(cards, ListingCard{
			Listing:           listings[i],
			Media:             m,
			Score:             result.Score,
			Explanation:       result.Explanation,
			CommuteEstMinutes: result.CommuteMinutes,
		})
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Score > cards[j].Score
	})
	return cards, nil
}
