package database

import (
	"context"
	"time"

	"real-estate-matching/internal/models"
)

// CandidateFilter selects listings eligible for scoring
type CandidateFilter struct {
	Now             time.Time
	FreshnessWindow time.Duration
	Limit           int
	// States optionally narrows candidates to listings in these states
	States []string
}

// CreateListing inserts a listing
func (gdb *GormDB) CreateListing(ctx context.Context, l *models.Listing) error {
	if l.Status == "" {
		l.Status = models.ListingStatusActive
	}
	if err := gdb.db.WithContext(ctx).Create(l).Error; err != nil {
		return wrapErr("create listing", err)
	}
	return nil
}

// CreateListingMedia inserts media rows for a listing
func (gdb *GormDB) CreateListingMedia(ctx context.Context, media []models.ListingMedia) error {
	if len(media) == 0 {
		return nil
	}
	if err := gdb.db.WithContext(ctx).Create(&media).Error; err != nil {
		return wrapErr("create listing media", err)
	}
	return nil
}

// GetListing retrieves a listing by ID
func (gdb *GormDB) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := gdb.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, wrapErr("get listing", err)
	}
	return &listing, nil
}

// ListCandidateListings returns active, verified, fresh listings, newest first.
// A listing that was never freshness-verified is eligible.
func (gdb *GormDB) ListCandidateListings(ctx context.Context, f CandidateFilter) ([]models.Listing, error) {
	cutoff := f.Now.Add(-f.FreshnessWindow).UTC()

	query := gdb.db.WithContext(ctx).
		Where("status = ? AND listing_verified = ?", models.ListingStatusActive, true).
		Where("freshness_verified_at IS NULL OR freshness_verified_at > ?", cutoff)
	if len(f.States) > 0 {
		query = query.Where("state IN ?", f.States)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var listings []models.Listing
	if err := query.Order("created_at DESC").Order("id ASC").Find(&listings).Error; err != nil {
		return nil, wrapErr("list candidate listings", err)
	}
	return listings, nil
}

// ListMediaForListings returns media grouped by listing, each group ordered by order_index
func (gdb *GormDB) ListMediaForListings(ctx context.Context, listingIDs []string) (map[string][]models.ListingMedia, error) {
	grouped := make(map[string][]models.ListingMedia, len(listingIDs))
	if len(listingIDs) == 0 {
		return grouped, nil
	}

	var media []models.ListingMedia
	err := gdb.db.WithContext(ctx).
		Where("listing_id IN ?", listingIDs).
		Order("listing_id ASC").Order("order_index ASC").
		Find(&media).Error
	if err != nil {
		return nil, wrapErr("list listing media", err)
	}

	for _, m := range media {
		grouped[m.ListingID] = append(grouped[m.ListingID], m)
	}
	return grouped, nil
}

// ListActiveListingIDsBySeller returns the IDs of the seller's active listings, newest first
func (gdb *GormDB) ListActiveListingIDsBySeller(ctx context.Context, sellerID string) ([]string, error) {
	var ids []string
	err := gdb.db.WithContext(ctx).Model(&models.Listing{}).
		Where("seller_id = ? AND status = ?", sellerID, models.ListingStatusActive).
		Order("created_at DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, wrapErr("list seller listings", err)
	}
	return ids, nil
}

// MarkStaleListings moves active listings whose freshness verification is at or before cutoff to stale.
// Listings never freshness-verified are left alone.
func (gdb *GormDB) MarkStaleListings(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	result := gdb.db.WithContext(ctx).Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive).
		Where("freshness_verified_at IS NOT NULL AND freshness_verified_at <= ?", cutoff).
		Update("status", models.ListingStatusStale)
	if result.Error != nil {
		return 0, wrapErr("mark stale listings", result.Error)
	}
	return result.RowsAffected, nil
}
