package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Area is a named place a buyer is searching in
type Area struct {
	Name  string `json:"name,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Zip   string `json:"zip,omitempty"`
}

// CommuteAnchor is a point a buyer commutes to
type CommuteAnchor struct {
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	MaxMinutes int     `json:"max_minutes,omitempty"`
}

// BuyerIntent is a buyer's search profile
type BuyerIntent struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id"`
	BuyerID string `gorm:"type:varchar(36);not null;index" json:"buyer_id"`

	BudgetMin *float64 `json:"budget_min,omitempty"`
	BudgetMax *float64 `json:"budget_max,omitempty"`
	BedsMin   int      `gorm:"not null;default:0" json:"beds_min"`
	BathsMin  float64  `gorm:"not null;default:0" json:"baths_min"`

	PropertyTypes  datatypes.JSONSlice[string]        `json:"property_types"`
	MustHaves      datatypes.JSONSlice[string]        `json:"must_haves"`
	Dealbreakers   datatypes.JSONSlice[string]        `json:"dealbreakers"`
	Areas          datatypes.JSONSlice[Area]          `json:"areas"`
	CommuteAnchors datatypes.JSONSlice[CommuteAnchor] `json:"commute_anchors"`

	Active         bool `gorm:"not null;index" json:"active"`
	Verified       bool `gorm:"not null" json:"verified"`
	ReadinessScore int  `gorm:"not null;default:0" json:"readiness_score"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (BuyerIntent) TableName() string {
	return "buyer_intents"
}

// BeforeCreate assigns an ID when the caller did not
func (b *BuyerIntent) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = newID()
	}
	return nil
}

// States returns the distinct non-empty states named by the intent's areas
func (b *BuyerIntent) States() []string {
	seen := make(map[string]bool)
	var states []string
	for _, a := range b.Areas {
		if a.State == "" || seen[a.State] {
			continue
		}
		seen[a.State] = true
		states = append(states, a.State)
	}
	return states
}
