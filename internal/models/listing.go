package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ListingStatus is the lifecycle state of a listing
type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusPending ListingStatus = "pending"
	ListingStatusSold    ListingStatus = "sold"
	ListingStatusStale   ListingStatus = "stale"
)

// Listing is a property offered by a seller
type Listing struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	SellerID    string `gorm:"type:varchar(36);not null;index" json:"seller_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// location
	Lat   float64 `gorm:"not null" json:"lat"`
	Lng   float64 `gorm:"not null" json:"lng"`
	City  string  `gorm:"type:varchar(100)" json:"city,omitempty"`
	State string  `gorm:"type:varchar(50);index" json:"state,omitempty"`
	Zip   string  `gorm:"type:varchar(20)" json:"zip,omitempty"`

	// attributes used for scoring
	Price        float64                     `gorm:"not null" json:"price"`
	Beds         int                         `gorm:"not null;default:0" json:"beds"`
	Baths        float64                     `gorm:"not null;default:0" json:"baths"`
	Sqft         *int                        `json:"sqft,omitempty"`
	PropertyType string                      `gorm:"type:varchar(50);index" json:"property_type"`
	Features     datatypes.JSONSlice[string] `json:"features"`

	Status              ListingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ListingVerified     bool          `gorm:"not null" json:"listing_verified"`
	FreshnessVerifiedAt *time.Time    `json:"freshness_verified_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate assigns an ID when the caller did not
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = newID()
	}
	return nil
}

// IsFresh reports whether the listing's freshness verification is inside the window.
// A listing that was never freshness-verified counts as fresh.
func (l *Listing) IsFresh(now time.Time, window time.Duration) bool {
	if l.FreshnessVerifiedAt == nil {
		return true
	}
	return l.FreshnessVerifiedAt.After(now.Add(-window))
}

// MediaType is the kind of a listing media asset
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// ListingMedia is one photo or video attached to a listing
type ListingMedia struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ListingID   string    `gorm:"type:varchar(36);not null;index:idx_listing_media_order,priority:1" json:"listing_id"`
	StoragePath string    `gorm:"type:text;not null" json:"storage_path"`
	MediaType   MediaType `gorm:"type:varchar(10);not null" json:"media_type"`
	OrderIndex  int       `gorm:"not null;default:0;index:idx_listing_media_order,priority:2" json:"order_index"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (ListingMedia) TableName() string {
	return "listing_media"
}

// BeforeCreate assigns an ID when the caller did not
func (m *ListingMedia) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return nil
}
