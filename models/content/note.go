package content

import (
	"time"
)

// MaxNoteLength bounds note text, counted in runes.
const MaxNoteLength = 80

// Note is a short ephemeral status line published by a group. Same
// expiry semantics as Story.
type Note struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	GroupID   string    `json:"group_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"type:varchar(80);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
