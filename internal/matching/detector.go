package matching

import (
	"context"
	"errors"
	"log"

	"real-estate-matching/internal/database"
	"real-estate-matching/internal/models"
)

// Triple identifies a mutual acceptance between a buyer and a seller over one listing
type Triple struct {
	ListingID     string
	BuyerID       string
	SellerID      string
	BuyerIntentID string
}

// detectFromSeller runs after a seller says yes to a buyer intent. It returns the triple
// for the first of the seller's active listings (by listing ID) the intent's buyer already
// said yes to, or nil. It never writes.
func (s *Service) detectFromSeller(ctx context.Context, sellerID, intentID string) (*Triple, error) {
	const op = "detect match"

	intent, err := s.store.GetBuyerIntent(ctx, intentID)
	if errors.Is(err, database.ErrNotFound) {
		log.Printf("[matching] seller=%s swiped on unknown intent %s", sellerID, intentID)
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, "Failed to load buyer intent", err)
	}

	listingIDs, err := s.store.ListActiveListingIDsBySeller(ctx, sellerID)
	if err != nil {
		return nil, storeError(op, "Failed to load seller listings", err)
	}
	if len(listingIDs) == 0 {
		return nil, nil
	}

	swipes, err := s.store.FindYesSwipesOnListings(ctx, intent.BuyerID, listingIDs)
	if err != nil {
		return nil, storeError(op, "Failed to load buyer swipes", err)
	}
	if len(swipes) == 0 {
		return nil, nil
	}

	return &Triple{
		ListingID:     swipes[0].TargetID,
		BuyerID:       intent.BuyerID,
		SellerID:      sellerID,
		BuyerIntentID: intent.ID,
	}, nil
}

// detectFromBuyer runs after a buyer says yes to a listing. It completes a match only if
// the listing is active and its seller has already said yes to one of the buyer's intents.
// It never writes.
func (s *Service) detectFromBuyer(ctx context.Context, buyerID, listingID string) (*Triple, error) {
	const op = "detect match"

	listing, err := s.store.GetListing(ctx, listingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, "Failed to load listing", err)
	}
	if listing.Status != models.ListingStatusActive {
		return nil, nil
	}

	swipes, err := s.store.FindYesSwipesOnBuyerIntents(ctx, listing.SellerID, buyerID)
	if err != nil {
		return nil, storeError(op, "Failed to load seller swipes", err)
	}
	if len(swipes) == 0 {
		return nil, nil
	}

	return &Triple{
		ListingID:     listing.ID,
		BuyerID:       buyerID,
		SellerID:      listing.SellerID,
		BuyerIntentID: swipes[0].TargetID,
	}, nil
}
