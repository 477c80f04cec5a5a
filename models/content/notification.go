package content

import (
	"time"
)

// Notification types.
const (
	NotificationLike              = "like"
	NotificationComment           = "comment"
	NotificationConnectionRequest = "connection_request"
	NotificationFollow            = "follow"
	NotificationCommunityCreated  = "community_created"
	NotificationEventPublished    = "event_published"
)

// Notification is addressed to a group, not a user.
type Notification struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid"`
	RecipientGroupID string    `json:"recipient_group_id" gorm:"type:uuid;not null;index"`
	SenderGroupID    string    `json:"sender_group_id" gorm:"type:uuid"`
	Type             string    `json:"type" gorm:"not null"`
	Content          string    `json:"content" gorm:"type:text"`
	PostID           string    `json:"post_id" gorm:"type:uuid"`
	EventID          string    `json:"event_id" gorm:"type:uuid"`
	CommunityID      string    `json:"community_id" gorm:"type:uuid"`
	Read             bool      `json:"read" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at"`
}
