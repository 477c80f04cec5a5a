package groups

import (
	"time"
)

// Membership roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Group is the collective identity that owns all content.
type Group struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Zones       string    `json:"zones"`
	AvatarURL   string    `json:"avatar_url"`
	CoverURL    string    `json:"cover_url"`
	CreatedBy   string    `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupMember grants a user a role within a group. One row per
// (group, user) pair; the composite unique index enforces it.
type GroupMember struct {
	ID       string    `json:"id" gorm:"primaryKey;type:uuid"`
	GroupID  string    `json:"group_id" gorm:"type:uuid;not null;uniqueIndex:idx_group_user"`
	UserID   string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_group_user"`
	Role     string    `json:"role" gorm:"not null;default:'member'"`
	JoinedAt time.Time `json:"joined_at"`
}
