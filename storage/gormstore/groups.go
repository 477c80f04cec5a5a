package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tangle-backend/models/groups"
)

// CreateGroup inserts the group and its founding admin membership in
// one transaction, so a group is never observable without an admin.
func (s *GormStore) CreateGroup(ctx context.Context, group *groups.Group, founderID string) error {
	stamp(&group.ID, &group.CreatedAt)
	group.UpdatedAt = group.CreatedAt
	group.CreatedBy = founderID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		founder := groups.GroupMember{
			ID:       newID(),
			GroupID:  group.ID,
			UserID:   founderID,
			Role:     groups.RoleAdmin,
			JoinedAt: group.CreatedAt,
		}
		return tx.Create(&founder).Error
	})
	return translate(err)
}

func (s *GormStore) GetGroup(ctx context.Context, id string) (*groups.Group, error) {
	var group groups.Group
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (s *GormStore) AddMember(ctx context.Context, member *groups.GroupMember) error {
	if member.ID == "" {
		member.ID = newID()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	return translate(s.db.WithContext(ctx).Create(member).Error)
}

func (s *GormStore) GetMembership(ctx context.Context, groupID, userID string) (*groups.GroupMember, error) {
	var member groups.GroupMember
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (s *GormStore) ListGroupsForUser(ctx context.Context, userID string) ([]groups.Group, []groups.GroupMember, error) {
	var memberships []groups.GroupMember
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, nil, translate(err)
	}
	if len(memberships) == 0 {
		return []groups.Group{}, memberships, nil
	}

	ids := make([]string, len(memberships))
	for i, m := range memberships {
		ids[i] = m.GroupID
	}
	var result []groups.Group
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&result).Error; err != nil {
		return nil, nil, translate(err)
	}
	return result, memberships, nil
}

func (s *GormStore) ListMembers(ctx context.Context, groupID string) ([]groups.GroupMember, error) {
	var members []groups.GroupMember
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, translate(err)
	}
	return members, nil
}
