// Package matching implements the swipe, mutual-acceptance and deal room
// provisioning flow, plus the read paths that rank listings for a buyer.
package matching

import (
	"context"
	"errors"
	"log"
	"time"

	"real-estate-matching/internal/config"
	"real-estate-matching/internal/database"
	"real-estate-matching/internal/events"
	"real-estate-matching/internal/models"
	"real-estate-matching/internal/scoring"
)

// Store is the persistence the matching service depends on.
// *database.GormDB satisfies it.
type Store interface {
	VerifiedListingChecker

	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetBuyerIntent(ctx context.Context, id string) (*models.BuyerIntent, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)

	ListCandidateListings(ctx context.Context, f database.CandidateFilter) ([]models.Listing, error)
	ListMediaForListings(ctx context.Context, listingIDs []string) (map[string][]models.ListingMedia, error)
	ListActiveListingIDsBySeller(ctx context.Context, sellerID string) ([]string, error)
	ListActiveIntentIDsByBuyers(ctx context.Context, buyerIDs []string) (map[string][]string, error)

	UpsertSwipe(ctx context.Context, s *models.Swipe) (*models.Swipe, error)
	FindYesSwipesOnListings(ctx context.Context, actorID string, listingIDs []string) ([]models.Swipe, error)
	FindYesSwipesOnBuyerIntents(ctx context.Context, sellerID, buyerID string) ([]models.Swipe, error)
	ListPendingRequests(ctx context.Context, sellerID string, limit int) ([]database.PendingRequest, error)

	InsertMatch(ctx context.Context, m *models.Match) (*models.Match, bool, error)
	CreateDealRoom(ctx context.Context, seed database.DealRoomSeed) (*models.DealRoom, bool, error)
	GetDealRoomDetail(ctx context.Context, roomID string) (*database.DealRoomDetail, error)
	ListOrphanedMatches(ctx context.Context, limit int) ([]models.Match, error)
}

// Scorer rates a listing against a buyer intent
type Scorer interface {
	Score(intent *models.BuyerIntent, listing *models.Listing) scoring.Result
}

// Service runs the matching flows. It holds no per-request state; all shared
// state lives in the Store.
type Service struct {
	store     Store
	scorer    Scorer
	gate      *Gate
	publisher events.Publisher
	cfg       config.MatchingConfig
	now       func() time.Time
}

// NewService creates a matching service. A nil publisher disables events.
func NewService(store Store, scorer Scorer, publisher events.Publisher, cfg config.MatchingConfig) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     store,
		scorer:    scorer,
		gate:      NewGate(cfg.BuyerYesMinLevel, cfg.SellerYesMinLevel, store),
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// loadProfile resolves the acting profile
func (s *Service) loadProfile(ctx context.Context, op, actorID string) (*models.Profile, error) {
	if actorID == "" {
		return nil, &Error{Kind: KindUnauthenticated, Op: op, Message: "Unauthorized"}
	}
	profile, err := s.store.GetProfile(ctx, actorID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(op, "Profile not found", err)
	}
	if err != nil {
		log.Printf("[matching] %s: load profile actor=%s: %v", op, actorID, err)
		return nil, storeError(op, "Failed to load profile", err)
	}
	return profile, nil
}

func (s *Service) publish(subject string, event any) {
	if err := s.publisher.Publish(subject, event); err != nil {
		log.Printf("[matching] publish %s: %v", subject, err)
	}
}
