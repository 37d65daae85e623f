package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storefront/console/internal/domain/notification"
	"github.com/storefront/console/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVStore implements notification.Store on a gorm database
type KVStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewKVStore creates a KVStore. The kv_entries table must exist.
func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

// ErrEmptyKey is returned for an empty storage key
var ErrEmptyKey = errors.New("storage key cannot be empty")

// Get returns the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where(&models.KVEntry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Put replaces the value stored under key
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	entry := models.KVEntry{Key: key, Value: value, UpdatedAt: s.now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	err := s.db.WithContext(ctx).Where(&models.KVEntry{Key: key}).Delete(&models.KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

var _ notification.Store = (*KVStore)(nil)
