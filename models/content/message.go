package content

import (
	"time"
)

// Message is sent from one group to either another group or a
// community. Exactly one of RecipientGroupID and CommunityID is set.
type Message struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid"`
	SenderGroupID    string    `json:"sender_group_id" gorm:"type:uuid;not null;index"`
	RecipientGroupID string    `json:"recipient_group_id" gorm:"type:uuid;index"`
	CommunityID      string    `json:"community_id" gorm:"type:uuid;index"`
	Content          string    `json:"content" gorm:"type:text;not null"`
	CreatedAt        time.Time `json:"created_at"`
}
