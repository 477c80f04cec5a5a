// Package memstore implements storage.Store in process memory. It
// backs handler tests, where the swappable-backend seam in
// storage.Store replaces a database with deterministic state.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tangle-backend/models/content"
	"tangle-backend/models/groups"
	"tangle-backend/models/users"
	"tangle-backend/storage"
)

// Ensure MemStore implements storage.Store.
var _ storage.Store = (*MemStore)(nil)

// MemStore keeps every table as an insertion-ordered slice, so
// creation-time ties preserve insertion order under stable sorts.
type MemStore struct {
	mu sync.Mutex

	users         []users.User
	groups        []groups.Group
	members       []groups.GroupMember
	posts         []content.Post
	stories       []content.Story
	events        []content.Event
	access        []content.EventAccess
	notes         []content.Note
	communities   []content.Community
	messages      []content.Message
	notifications []content.Notification
}

// New returns an empty store.
func New() *MemStore {
	return &MemStore{}
}

// Close is a no-op; memory needs no teardown.
func (s *MemStore) Close() error {
	return nil
}

func newID() string {
	return uuid.New().String()
}

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = newID()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

func (s *MemStore) CreateUser(_ context.Context, user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return storage.ErrDuplicate
		}
	}
	stamp(&user.ID, &user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	s.users = append(s.users, *user)
	return nil
}

func (s *MemStore) GetUserByEmail(_ context.Context, email string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemStore) GetUserByID(_ context.Context, id string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemStore) CreateGroup(_ context.Context, group *groups.Group, founderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&group.ID, &group.CreatedAt)
	group.UpdatedAt = group.CreatedAt
	group.CreatedBy = founderID
	s.groups = append(s.groups, *group)
	s.members = append(s.members, groups.GroupMember{
		ID:       newID(),
		GroupID:  group.ID,
		UserID:   founderID,
		Role:     groups.RoleAdmin,
		JoinedAt: group.CreatedAt,
	})
	return nil
}

func (s *MemStore) GetGroup(_ context.Context, id string) (*groups.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.ID == id {
			group := g
			return &group, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemStore) AddMember(_ context.Context, member *groups.GroupMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.GroupID == member.GroupID && m.UserID == member.UserID {
			return storage.ErrDuplicate
		}
	}
	if member.ID == "" {
		member.ID = newID()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	s.members = append(s.members, *member)
	return nil
}

func (s *MemStore) GetMembership(_ context.Context, groupID, userID string) (*groups.GroupMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.GroupID == groupID && m.UserID == userID {
			member := m
			return &member, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemStore) ListGroupsForUser(_ context.Context, userID string) ([]groups.Group, []groups.GroupMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	memberships := []groups.GroupMember{}
	result := []groups.Group{}
	for _, m := range s.members {
		if m.UserID != userID {
			continue
		}
		memberships = append(memberships, m)
		for _, g := range s.groups {
			if g.ID == m.GroupID {
				result = append(result, g)
			}
		}
	}
	return result, memberships, nil
}

func (s *MemStore) ListMembers(_ context.Context, groupID string) ([]groups.GroupMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := []groups.GroupMember{}
	for _, m := range s.members {
		if m.GroupID == groupID {
			members = append(members, m)
		}
	}
	return members, nil
}

func (s *MemStore) CreatePost(_ context.Context, post *content.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&post.ID, &post.CreatedAt)
	post.UpdatedAt = post.CreatedAt
	s.posts = append(s.posts, *post)
	return nil
}

func (s *MemStore) ListPosts(_ context.Context, filter storage.PostFilter) ([]content.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := []content.Post{}
	for _, p := range s.posts {
		if filter.GroupID != "" && p.GroupID != filter.GroupID {
			continue
		}
		posts = append(posts, p)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *MemStore) IncrementPostLikes(_ context.Context, postID string) (*content.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].LikesCount++
			post := s.posts[i]
			return &post, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemStore) CreateStory(_ context.Context, story *content.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&story.ID, &story.CreatedAt)
	s.stories = append(s.stories, *story)
	return nil
}

func (s *MemStore) ListStories(_ context.Context, now time.Time) ([]content.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stories := []content.Story{}
	for _, st := range s.stories {
		if st.ExpiresAt.After(now) {
			stories = append(stories, st)
		}
	}
	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].CreatedAt.After(stories[j].CreatedAt)
	})
	return stories, nil
}

func (s *MemStore) CreateEvent(_ context.Context, event *content.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&event.ID, &event.CreatedAt)
	event.UpdatedAt = event.CreatedAt
	s.events = append(s.events, *event)
	return nil
}

func (s *MemStore) GetEvent(_ context.Context, id string) (*content.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id {
			event := e
			return &event, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemStore) ListEvents(_ context.Context, filter storage.EventFilter) ([]content.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := []content.Event{}
	for _, e := range s.events {
		if filter.GroupID != "" && e.GroupID != filter.GroupID {
			continue
		}
		if filter.Visibility != "" && e.Visibility != filter.Visibility {
			continue
		}
		events = append(events, e)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventDate.Before(events[j].EventDate)
	})
	return events, nil
}

func (s *MemStore) RequestEventAccess(_ context.Context, access *content.EventAccess) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.access {
		if a.EventID == access.EventID && a.UserID == access.UserID {
			return nil
		}
	}
	stamp(&access.ID, &access.CreatedAt)
	access.UpdatedAt = access.CreatedAt
	if access.Status == "" {
		access.Status = content.AccessPending
	}
	s.access = append(s.access, *access)
	return nil
}

func (s *MemStore) GetEventAccess(_ context.Context, eventID, userID string) (*content.EventAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.access {
		if a.EventID == eventID && a.UserID == userID {
			access := a
			return &access, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemStore) ApproveEventAccess(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.access {
		if s.access[i].EventID == eventID && s.access[i].UserID == userID {
			s.access[i].Status = content.AccessApproved
			s.access[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *MemStore) CreateNote(_ context.Context, note *content.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&note.ID, &note.CreatedAt)
	s.notes = append(s.notes, *note)
	return nil
}

func (s *MemStore) ListNotes(_ context.Context, now time.Time) ([]content.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := []content.Note{}
	for _, n := range s.notes {
		if n.ExpiresAt.After(now) {
			notes = append(notes, n)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

func (s *MemStore) CreateCommunity(_ context.Context, community *content.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&community.ID, &community.CreatedAt)
	s.communities = append(s.communities, *community)
	return nil
}

func (s *MemStore) ListCommunities(_ context.Context) ([]content.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	communities := make([]content.Community, len(s.communities))
	copy(communities, s.communities)
	sort.SliceStable(communities, func(i, j int) bool {
		return communities[i].CreatedAt.After(communities[j].CreatedAt)
	})
	return communities, nil
}

func (s *MemStore) CreateMessage(_ context.Context, message *content.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&message.ID, &message.CreatedAt)
	s.messages = append(s.messages, *message)
	return nil
}

func (s *MemStore) ListMessages(_ context.Context, groupID string) ([]content.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := []content.Message{}
	for _, m := range s.messages {
		if m.SenderGroupID == groupID || m.RecipientGroupID == groupID {
			messages = append(messages, m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (s *MemStore) CreateNotification(_ context.Context, notification *content.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&notification.ID, &notification.CreatedAt)
	s.notifications = append(s.notifications, *notification)
	return nil
}

func (s *MemStore) ListNotifications(_ context.Context, recipientGroupID string) ([]content.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notifications := []content.Notification{}
	for _, n := range s.notifications {
		if n.RecipientGroupID == recipientGroupID {
			notifications = append(notifications, n)
		}
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (s *MemStore) MarkNotificationRead(_ context.Context, id, recipientGroupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].RecipientGroupID == recipientGroupID {
			s.notifications[i].Read = true
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *MemStore) DeleteNotification(_ context.Context, id, recipientGroupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].RecipientGroupID == recipientGroupID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}
