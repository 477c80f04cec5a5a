package gormstore

import (
	"context"

	"tangle-backend/models/users"
)

func (s *GormStore) CreateUser(ctx context.Context, user *users.User) error {
	stamp(&user.ID, &user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	var user users.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
