package content

import (
	"time"
)

// StoryTTL is how long stories and notes remain visible after
// creation. Expiry is a read-time predicate: expired rows are
// filtered from listings, never deleted.
const StoryTTL = 24 * time.Hour

// Story is an ephemeral image published by a group.
type Story struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	GroupID   string    `json:"group_id" gorm:"type:uuid;not null;index"`
	ImageURL  string    `json:"image_url" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
