package models

import (
	"time"

	"gorm.io/gorm"
)

// TargetType is what a swipe points at
type TargetType string

const (
	TargetTypeListing     TargetType = "listing"
	TargetTypeBuyerIntent TargetType = "buyer_intent"
)

// Valid reports whether t is a known target type
func (t TargetType) Valid() bool {
	return t == TargetTypeListing || t == TargetTypeBuyerIntent
}

// Direction is the decision a swipe records
type Direction string

const (
	DirectionYes Direction = "yes"
	DirectionNo  Direction = "no"
)

// Valid reports whether d is a known direction
func (d Direction) Valid() bool {
	return d == DirectionYes || d == DirectionNo
}

// Swipe is one actor's current decision about one target.
// (actor_id, target_type, target_id) is unique; a repeat swipe overwrites direction.
type Swipe struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	ActorID    string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_swipes_actor_target,priority:1" json:"actor_id"`
	TargetType TargetType `gorm:"type:varchar(20);not null;uniqueIndex:idx_swipes_actor_target,priority:2" json:"target_type"`
	TargetID   string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_swipes_actor_target,priority:3;index" json:"target_id"`
	Direction  Direction  `gorm:"type:varchar(10);not null" json:"direction"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime;index" json:"updated_at"`
}

// TableName specifies the table name
func (Swipe) TableName() string {
	return "swipes"
}

// BeforeCreate assigns an ID when the caller did not
func (s *Swipe) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}
	return nil
}

// IsYes reports whether the swipe is an acceptance
func (s *Swipe) IsYes() bool {
	return s.Direction == DirectionYes
}
