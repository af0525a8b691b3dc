package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Blob is the row model backing DatabaseStore.
type Blob struct {
	Key       string `gorm:"column:blob_key;primaryKey;size:512"`
	Data      []byte
	UpdatedAt time.Time
}

func (Blob) TableName() string { return "pike_blobs" }

// DatabaseStore keeps blobs as rows in a SQL table.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore migrates the blob table and returns the store.
func NewDatabaseStore(conn *gorm.DB) (*DatabaseStore, error) {
	if conn == nil {
		return nil, errors.New("database connection not configured")
	}
	if err := conn.AutoMigrate(&Blob{}); err != nil {
		return nil, err
	}
	return &DatabaseStore{db: conn}, nil
}

func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	var row Blob
	err = s.db.WithContext(ctx).Where("blob_key = ?", cleaned).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Data, nil
}

func (s *DatabaseStore) Put(ctx context.Context, key string, data []byte) error {
	cleaned, err := CleanKey(key)
	if err != nil {
		return err
	}
	row := Blob{Key: cleaned, Data: data, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

func (s *DatabaseStore) Exists(ctx context.Context, key string) (bool, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return false, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&Blob{}).Where("blob_key = ?", cleaned).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *DatabaseStore) Delete(ctx context.Context, key string) error {
	cleaned, err := CleanKey(key)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("blob_key = ?", cleaned).Delete(&Blob{}).Error
}

var _ Store = (*DatabaseStore)(nil)
