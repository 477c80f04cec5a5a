package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tangle-backend/models/content"
	"tangle-backend/models/groups"
	"tangle-backend/models/users"
)

// OpenDB connects to Postgres and migrates the schema. TranslateError
// lets unique violations surface as gorm.ErrDuplicatedKey instead of
// driver-specific errors.
func OpenDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&users.User{},
		&groups.Group{},
		&groups.GroupMember{},
		&content.Post{},
		&content.Story{},
		&content.Event{},
		&content.EventAccess{},
		&content.Note{},
		&content.Community{},
		&content.Message{},
		&content.Notification{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
