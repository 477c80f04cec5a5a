package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tangle-backend/models/content"
	"tangle-backend/storage"
)

func (s *GormStore) CreatePost(ctx context.Context, post *content.Post) error {
	stamp(&post.ID, &post.CreatedAt)
	post.UpdatedAt = post.CreatedAt
	return translate(s.db.WithContext(ctx).Create(post).Error)
}

func (s *GormStore) ListPosts(ctx context.Context, filter storage.PostFilter) ([]content.Post, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if filter.GroupID != "" {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	var posts []content.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

// IncrementPostLikes bumps the counter atomically at the database and
// returns the updated row.
func (s *GormStore) IncrementPostLikes(ctx context.Context, postID string) (*content.Post, error) {
	result := s.db.WithContext(ctx).
		Model(&content.Post{}).
		Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1))
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	var post content.Post
	if err := s.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *GormStore) CreateStory(ctx context.Context, story *content.Story) error {
	stamp(&story.ID, &story.CreatedAt)
	return translate(s.db.WithContext(ctx).Create(story).Error)
}

func (s *GormStore) ListStories(ctx context.Context, now time.Time) ([]content.Story, error) {
	var stories []content.Story
	err := s.db.WithContext(ctx).
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Find(&stories).Error
	if err != nil {
		return nil, translate(err)
	}
	return stories, nil
}

func (s *GormStore) CreateEvent(ctx context.Context, event *content.Event) error {
	stamp(&event.ID, &event.CreatedAt)
	event.UpdatedAt = event.CreatedAt
	return translate(s.db.WithContext(ctx).Create(event).Error)
}

func (s *GormStore) GetEvent(ctx context.Context, id string) (*content.Event, error) {
	var event content.Event
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (s *GormStore) ListEvents(ctx context.Context, filter storage.EventFilter) ([]content.Event, error) {
	query := s.db.WithContext(ctx).Order("event_date ASC")
	if filter.GroupID != "" {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	if filter.Visibility != "" {
		query = query.Where("visibility = ?", filter.Visibility)
	}
	var events []content.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, translate(err)
	}
	return events, nil
}

// RequestEventAccess is idempotent: a second request for the same
// (event, user) pair leaves the existing row untouched.
func (s *GormStore) RequestEventAccess(ctx context.Context, access *content.EventAccess) error {
	stamp(&access.ID, &access.CreatedAt)
	access.UpdatedAt = access.CreatedAt
	if access.Status == "" {
		access.Status = content.AccessPending
	}
	err := s.db.WithContext(ctx).Create(access).Error
	if translate(err) == storage.ErrDuplicate {
		return nil
	}
	return translate(err)
}

func (s *GormStore) GetEventAccess(ctx context.Context, eventID, userID string) (*content.EventAccess, error) {
	var access content.EventAccess
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&access).Error
	if err != nil {
		return nil, translate(err)
	}
	return &access, nil
}

func (s *GormStore) ApproveEventAccess(ctx context.Context, eventID, userID string) error {
	result := s.db.WithContext(ctx).
		Model(&content.EventAccess{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Updates(map[string]interface{}{
			"status":     content.AccessApproved,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateNote(ctx context.Context, note *content.Note) error {
	stamp(&note.ID, &note.CreatedAt)
	return translate(s.db.WithContext(ctx).Create(note).Error)
}

func (s *GormStore) ListNotes(ctx context.Context, now time.Time) ([]content.Note, error) {
	var notes []content.Note
	err := s.db.WithContext(ctx).
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, translate(err)
	}
	return notes, nil
}

func (s *GormStore) CreateCommunity(ctx context.Context, community *content.Community) error {
	stamp(&community.ID, &community.CreatedAt)
	return translate(s.db.WithContext(ctx).Create(community).Error)
}

func (s *GormStore) ListCommunities(ctx context.Context) ([]content.Community, error) {
	var communities []content.Community
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&communities).Error
	if err != nil {
		return nil, translate(err)
	}
	return communities, nil
}

func (s *GormStore) CreateMessage(ctx context.Context, message *content.Message) error {
	stamp(&message.ID, &message.CreatedAt)
	return translate(s.db.WithContext(ctx).Create(message).Error)
}

// ListMessages returns both directions for a group, oldest first.
func (s *GormStore) ListMessages(ctx context.Context, groupID string) ([]content.Message, error) {
	var messages []content.Message
	err := s.db.WithContext(ctx).
		Where("sender_group_id = ? OR recipient_group_id = ?", groupID, groupID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, translate(err)
	}
	return messages, nil
}

func (s *GormStore) CreateNotification(ctx context.Context, notification *content.Notification) error {
	stamp(&notification.ID, &notification.CreatedAt)
	return translate(s.db.WithContext(ctx).Create(notification).Error)
}

func (s *GormStore) ListNotifications(ctx context.Context, recipientGroupID string) ([]content.Notification, error) {
	var notifications []content.Notification
	err := s.db.WithContext(ctx).
		Where("recipient_group_id = ?", recipientGroupID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, translate(err)
	}
	return notifications, nil
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, id, recipientGroupID string) error {
	result := s.db.WithContext(ctx).
		Model(&content.Notification{}).
		Where("id = ? AND recipient_group_id = ?", id, recipientGroupID).
		Update("read", true)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteNotification(ctx context.Context, id, recipientGroupID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND recipient_group_id = ?", id, recipientGroupID).
		Delete(&content.Notification{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
