package models

import (
	"time"

	"gorm.io/gorm"
)

// Match is the durable record of mutual acceptance for a (listing, buyer, seller) triple
type Match struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ListingID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_matches_triple,priority:1" json:"listing_id"`
	BuyerID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_matches_triple,priority:2;index" json:"buyer_id"`
	SellerID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_matches_triple,priority:3;index" json:"seller_id"`
	MatchScore  float64   `gorm:"not null" json:"match_score"`
	Explanation string    `gorm:"type:text" json:"explanation"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Match) TableName() string {
	return "matches"
}

// BeforeCreate assigns an ID when the caller did not
func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return nil
}

// DealRoomStatus is the progress of a deal
type DealRoomStatus string

const (
	DealRoomStatusMatched       DealRoomStatus = "matched"
	DealRoomStatusTouring       DealRoomStatus = "touring"
	DealRoomStatusOfferMade     DealRoomStatus = "offer_made"
	DealRoomStatusUnderContract DealRoomStatus = "under_contract"
	DealRoomStatusClosed        DealRoomStatus = "closed"
	DealRoomStatusCancelled     DealRoomStatus = "cancelled"
)

// DealRoom is the shared workspace created for a match. At most one exists per match.
type DealRoom struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	MatchID   string         `gorm:"type:varchar(36);not null;uniqueIndex" json:"match_id"`
	Status    DealRoomStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (DealRoom) TableName() string {
	return "deal_rooms"
}

// BeforeCreate assigns an ID when the caller did not
func (d *DealRoom) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = newID()
	}
	return nil
}

// DealParticipant links a profile to a deal room under a role
type DealParticipant struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	DealRoomID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_participants_room_profile,priority:1" json:"deal_room_id"`
	ProfileID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_participants_room_profile,priority:2;index" json:"profile_id"`
	RoleInDeal Role      `gorm:"type:varchar(20);not null" json:"role_in_deal"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (DealParticipant) TableName() string {
	return "deal_participants"
}

// BeforeCreate assigns an ID when the caller did not
func (p *DealParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

// Conversation is the message thread of a deal room
type Conversation struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	DealRoomID string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"deal_room_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate assigns an ID when the caller did not
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

// TaskStatus is the completion state of a deal task
type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "todo"
	TaskStatusDoing TaskStatus = "doing"
	TaskStatusDone  TaskStatus = "done"
)

// TaskCategory groups deal tasks by stage
type TaskCategory string

const (
	TaskCategoryPreOffer     TaskCategory = "pre_offer"
	TaskCategoryDueDiligence TaskCategory = "due_diligence"
	TaskCategoryFinancing    TaskCategory = "financing"
	TaskCategoryClosing      TaskCategory = "closing"
	TaskCategoryGeneral      TaskCategory = "general"
)

// Task is a to-do item inside a deal room
type Task struct {
	ID                string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	DealRoomID        string       `gorm:"type:varchar(36);not null;index:idx_tasks_room_order,priority:1" json:"deal_room_id"`
	AssigneeProfileID string       `gorm:"type:varchar(36);not null;index" json:"assignee_profile_id"`
	Title             string       `gorm:"type:varchar(255);not null" json:"title"`
	Description       string       `gorm:"type:text" json:"description,omitempty"`
	Status            TaskStatus   `gorm:"type:varchar(20);not null" json:"status"`
	Category          TaskCategory `gorm:"type:varchar(20);not null" json:"category"`
	OrderIndex        int          `gorm:"not null;default:0;index:idx_tasks_room_order,priority:2" json:"order_index"`
	DueAt             *time.Time   `json:"due_at,omitempty"`
	CreatedAt         time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Task) TableName() string {
	return "tasks"
}

// BeforeCreate assigns an ID when the caller did not
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = newID()
	}
	return nil
}
