package content

import (
	"time"
)

// Event visibility tiers. Open events expose location and ticket
// details to any reader; request events withhold them until access is
// approved.
const (
	VisibilityOpen    = "open"
	VisibilityRequest = "request"
)

// Event access request states.
const (
	AccessPending  = "pending"
	AccessApproved = "approved"
)

// Event is a scheduled happening published by a group.
type Event struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	GroupID      string    `json:"group_id" gorm:"type:uuid;not null;index"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description" gorm:"type:text"`
	EventDate    time.Time `json:"event_date" gorm:"not null;index"`
	Location     string    `json:"location"`
	LocationLink string    `json:"location_link"`
	TicketLink   string    `json:"ticket_link"`
	FlyerURL     string    `json:"flyer_url"`
	Visibility   string    `json:"visibility" gorm:"not null;default:'open'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Redact blanks the sensitive fields of a request-tier event. Open
// events are returned unchanged.
func (e Event) Redact() Event {
	if e.Visibility != VisibilityRequest {
		return e
	}
	e.Location = ""
	e.LocationLink = ""
	e.TicketLink = ""
	return e
}

// EventAccess is the approval state of one principal for one
// request-tier event. One row per (event, user) pair.
type EventAccess struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	EventID   string    `json:"event_id" gorm:"type:uuid;not null;uniqueIndex:idx_event_user"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_event_user"`
	Status    string    `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
