// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"tangle-backend/models/content"
	"tangle-backend/models/groups"
	"tangle-backend/models/users"
)

// Sentinel errors every backend maps its driver failures onto.
var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means the write violated a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// PostFilter narrows post listings. Zero values mean "no filter".
type PostFilter struct {
	GroupID string
}

// EventFilter narrows event listings. Zero values mean "no filter".
type EventFilter struct {
	GroupID    string
	Visibility string
}

// Store is the persistence collaborator. It makes no cross-call
// transactional guarantees; the only multi-statement atomicity it
// offers is CreateGroup, which inserts the group and its founding
// admin membership together.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *users.User) error
	GetUserByEmail(ctx context.Context, email string) (*users.User, error)
	GetUserByID(ctx context.Context, id string) (*users.User, error)

	// Groups and membership.
	CreateGroup(ctx context.Context, group *groups.Group, founderID string) error
	GetGroup(ctx context.Context, id string) (*groups.Group, error)
	AddMember(ctx context.Context, member *groups.GroupMember) error
	GetMembership(ctx context.Context, groupID, userID string) (*groups.GroupMember, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]groups.Group, []groups.GroupMember, error)
	ListMembers(ctx context.Context, groupID string) ([]groups.GroupMember, error)

	// Posts.
	CreatePost(ctx context.Context, post *content.Post) error
	ListPosts(ctx context.Context, filter PostFilter) ([]content.Post, error)
	IncrementPostLikes(ctx context.Context, postID string) (*content.Post, error)

	// Stories. ListStories returns only rows with ExpiresAt after now.
	CreateStory(ctx context.Context, story *content.Story) error
	ListStories(ctx context.Context, now time.Time) ([]content.Story, error)

	// Events and access approvals.
	CreateEvent(ctx context.Context, event *content.Event) error
	GetEvent(ctx context.Context, id string) (*content.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]content.Event, error)
	RequestEventAccess(ctx context.Context, access *content.EventAccess) error
	GetEventAccess(ctx context.Context, eventID, userID string) (*content.EventAccess, error)
	ApproveEventAccess(ctx context.Context, eventID, userID string) error

	// Notes. ListNotes returns only rows with ExpiresAt after now.
	CreateNote(ctx context.Context, note *content.Note) error
	ListNotes(ctx context.Context, now time.Time) ([]content.Note, error)

	// Communities.
	CreateCommunity(ctx context.Context, community *content.Community) error
	ListCommunities(ctx context.Context) ([]content.Community, error)

	// Messages.
	CreateMessage(ctx context.Context, message *content.Message) error
	ListMessages(ctx context.Context, groupID string) ([]content.Message, error)

	// Notifications.
	CreateNotification(ctx context.Context, notification *content.Notification) error
	ListNotifications(ctx context.Context, recipientGroupID string) ([]content.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientGroupID string) error
	DeleteNotification(ctx context.Context, id, recipientGroupID string) error

	// Close releases any resources held by the store.
	Close() error
}
