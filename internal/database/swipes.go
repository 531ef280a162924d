package database

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"real-estate-matching/internal/models"
)

// PendingRequest is a buyer's yes on a seller's active listing that has not become a match
type PendingRequest struct {
	SwipeID   string    `json:"swipe_id"`
	ListingID string    `json:"listing_id"`
	BuyerID   string    `json:"buyer_id"`
	SwipedAt  time.Time `json:"swiped_at"`
}

// UpsertSwipe inserts the swipe or overwrites the direction of the existing row for
// (actor_id, target_type, target_id), then returns the stored row.
// The unique index makes concurrent upserts of the same key converge on one row.
func (gdb *GormDB) UpsertSwipe(ctx context.Context, s *models.Swipe) (*models.Swipe, error) {
	db := gdb.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "actor_id"},
			{Name: "target_type"},
			{Name: "target_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return nil, wrapErr("upsert swipe", err)
	}

	var stored models.Swipe
	err = db.Where("actor_id = ? AND target_type = ? AND target_id = ?", s.ActorID, s.TargetType, s.TargetID).
		First(&stored).Error
	if err != nil {
		return nil, wrapErr("reload swipe", err)
	}
	return &stored, nil
}

// FindYesSwipesOnListings returns the actor's yes swipes on any of the listings, ordered by listing ID
func (gdb *GormDB) FindYesSwipesOnListings(ctx context.Context, actorID string, listingIDs []string) ([]models.Swipe, error) {
	if len(listingIDs) == 0 {
		return nil, nil
	}

	var swipes []models.Swipe
	err := gdb.db.WithContext(ctx).
		Where("actor_id = ? AND target_type = ? AND direction = ?", actorID, models.TargetTypeListing, models.DirectionYes).
		Where("target_id IN ?", listingIDs).
		Order("target_id ASC").
		Find(&swipes).Error
	if err != nil {
		return nil, wrapErr("find listing yes swipes", err)
	}
	return swipes, nil
}

// FindYesSwipesOnBuyerIntents returns the seller's yes swipes on any intent
// belonging to buyerID, ordered by intent ID
func (gdb *GormDB) FindYesSwipesOnBuyerIntents(ctx context.Context, sellerID, buyerID string) ([]models.Swipe, error) {
	db := gdb.db.WithContext(ctx)
	intentIDs := db.Model(&models.BuyerIntent{}).Select("id").Where("buyer_id = ?", buyerID)

	var swipes []models.Swipe
	err := db.
		Where("actor_id = ? AND target_type = ? AND direction = ?", sellerID, models.TargetTypeBuyerIntent, models.DirectionYes).
		Where("target_id IN (?)", intentIDs).
		Order("target_id ASC").
		Find(&swipes).Error
	if err != nil {
		return nil, wrapErr("find intent yes swipes", err)
	}
	return swipes, nil
}

// ListPendingRequests returns buyers' yes swipes on the seller's active listings
// that have no match for the (listing, buyer, seller) triple, newest first
func (gdb *GormDB) ListPendingRequests(ctx context.Context, sellerID string, limit int) ([]PendingRequest, error) {
	query := gdb.db.WithContext(ctx).
		Table("swipes").
		Select("swipes.id AS swipe_id, swipes.target_id AS listing_id, swipes.actor_id AS buyer_id, swipes.updated_at AS swiped_at").
		Joins("JOIN listings ON listings.id = swipes.target_id").
		Where("swipes.target_type = ? AND swipes.direction = ?", models.TargetTypeListing, models.DirectionYes).
		Where("listings.seller_id = ? AND listings.status = ?", sellerID, models.ListingStatusActive).
		Where("NOT EXISTS (SELECT 1 FROM matches WHERE matches.listing_id = swipes.target_id AND matches.buyer_id = swipes.actor_id AND matches.seller_id = listings.seller_id)").
		Order("swipes.updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var requests []PendingRequest
	if err := query.Scan(&requests).Error; err != nil {
		return nil, wrapErr("list pending requests", err)
	}
	return requests, nil
}
