package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is a single row of the key-value table.
type kvEntry struct {
	Key   []byte `gorm:"column:k;primaryKey"`
	Value []byte `gorm:"column:v"`
}

func (kvEntry) TableName() string { return "kv" }

// SQLiteDB implements DB on top of a single SQLite table through GORM.
type SQLiteDB struct {
	db *gorm.DB
}

// NewSQLite opens (or creates) a SQLite database file at path.
func NewSQLite(path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// Get retrieves a value by key. Returns ErrNotFound if the key does not exist.
func (s *SQLiteDB) Get(key []byte) ([]byte, error) {
	var e kvEntry
	err := s.db.Where("k = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	return cloneBytes(e.Value), nil
}

// Put stores a key-value pair, replacing any existing value.
func (s *SQLiteDB) Put(key, value []byte) error {
	e := kvEntry{Key: cloneBytes(key), Value: cloneBytes(value)}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("sqlite put: %w", err)
	}
	return nil
}

// Delete removes a key.
func (s *SQLiteDB) Delete(key []byte) error {
	if err := s.db.Where("k = ?", key).Delete(&kvEntry{}).Error; err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLiteDB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
