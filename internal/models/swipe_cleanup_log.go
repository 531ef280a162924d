package models

import "time"

// SwipeCleanupLog records a swipe physically removed by the archive cleanup
type SwipeCleanupLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SwipeID   string    `gorm:"type:varchar(36);not null;index" json:"swipe_id"`
	ActorID   string    `gorm:"type:varchar(36);not null" json:"actor_id"`
	TargetID  string    `gorm:"type:varchar(36);not null" json:"target_id"`
	SwipedAt  time.Time `json:"swiped_at"`
	DeletedAt time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
	Reason    string    `gorm:"type:varchar(50);not null" json:"reason"`
}

// TableName specifies the table name
func (SwipeCleanupLog) TableName() string {
	return "swipe_cleanup_logs"
}

// Cleanup reason constants
const (
	CleanupReasonArchivedNo = "archived_no_swipe"
	CleanupReasonManual     = "manual_deletion"
)
