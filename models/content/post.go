// Package content holds the group-owned content kinds: posts,
// ephemeral stories and notes, events with visibility tiers,
// communities, messages and notifications.
package content

import (
	"time"
)

// Post is a permanent text and/or image publication by a group.
// Counters are only ever mutated by atomic increments at the store.
type Post struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	GroupID       string    `json:"group_id" gorm:"type:uuid;not null;index"`
	Content       string    `json:"content" gorm:"type:text"`
	ImageURL      string    `json:"image_url"`
	LikesCount    int64     `json:"likes_count" gorm:"default:0"`
	CommentsCount int64     `json:"comments_count" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
