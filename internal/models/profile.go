package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is a profile's marketplace role
type Role string

const (
	RoleBuyer       Role = "buyer"
	RoleSeller      Role = "seller"
	RoleBuyerAgent  Role = "buyer_agent"
	RoleSellerAgent Role = "seller_agent"
	RoleSupport     Role = "support"
)

// Profile is a marketplace participant
type Profile struct {
	ID                string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Role              Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	DisplayName       string `gorm:"type:varchar(255)" json:"display_name,omitempty"`
	VerificationLevel int    `gorm:"not null;default:0" json:"verification_level"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Profile) TableName() string {
	return "profiles"
}

// BeforeCreate assigns an ID when the caller did not
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

// IsBuyer reports whether the profile swipes on listings
func (p *Profile) IsBuyer() bool {
	return p.Role == RoleBuyer
}

// IsSeller reports whether the profile swipes on buyer intents
func (p *Profile) IsSeller() bool {
	return p.Role == RoleSeller
}
