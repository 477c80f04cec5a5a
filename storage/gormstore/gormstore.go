// Package gormstore implements storage.Store on GORM over Postgres.
package gormstore

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tangle-backend/storage"
)

// Ensure GormStore implements storage.Store.
var _ storage.Store = (*GormStore)(nil)

// GormStore implements storage.Store using a GORM database handle.
type GormStore struct {
	db *gorm.DB
}

// New wraps an already-open GORM handle. The handle must be opened
// with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps GORM errors onto the storage sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrDuplicate
	default:
		return err
	}
}

func newID() string {
	return uuid.New().String()
}

// stamp fills in the id and creation time unless the caller already
// decided them (the lifecycle coordinator sets creation time itself
// when it derives an expiry from it).
func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = newID()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}
