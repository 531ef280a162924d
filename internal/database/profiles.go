package database

import (
	"context"

	"real-estate-matching/internal/models"
)

// CreateProfile inserts a profile
func (gdb *GormDB) CreateProfile(ctx context.Context, p *models.Profile) error {
	if err := gdb.db.WithContext(ctx).Create(p).Error; err != nil {
		return wrapErr("create profile", err)
	}
	return nil
}

// GetProfile retrieves a profile by ID
func (gdb *GormDB) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := gdb.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, wrapErr("get profile", err)
	}
	return &profile, nil
}

// SetVerificationLevel updates a profile's verification level
func (gdb *GormDB) SetVerificationLevel(ctx context.Context, id string, level int) error {
	result := gdb.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		Update("verification_level", level)
	if result.Error != nil {
		return wrapErr("set verification level", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapErr("set verification level", ErrNotFound)
	}
	return nil
}

// SellerHasVerifiedListing reports whether the seller owns at least one verified listing
func (gdb *GormDB) SellerHasVerifiedListing(ctx context.Context, sellerID string) (bool, error) {
	var count int64
	err := gdb.db.WithContext(ctx).Model(&models.Listing{}).
		Where("seller_id = ? AND listing_verified = ?", sellerID, true).
		Count(&count).Error
	if err != nil {
		return false, wrapErr("check verified listing", err)
	}
	return count > 0, nil
}
