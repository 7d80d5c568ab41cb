package db

import (
	"context"
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/u16-io/FindPangram/model"
	"go.uber.org/zap"
)

// GormStore keeps pangrams in a sqlite table through gorm.
type GormStore struct {
	DB     *gorm.DB
	logger *zap.Logger
}

// OpenSQLite opens (or creates) the sqlite file at path and migrates the schema.
// ":memory:" gives a throwaway database.
func OpenSQLite(path string, logger *zap.Logger) (*GormStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrUnsupportedURL)
	}
	conn, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// every new connection would see a fresh empty database
		conn.DB().SetMaxOpenConns(1)
	}
	if err := conn.AutoMigrate(&model.Pangram{}).Error; err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	logger.Info("Connected to sqlite", zap.String("path", path))
	return &GormStore{DB: conn, logger: logger}, nil
}

// Create inserts p as a new row.
func (s *GormStore) Create(ctx context.Context, p *model.Pangram) error {
	if err := s.DB.Create(p).Error; err != nil {
		return err
	}
	return nil
}

// List returns every row, newest first. Rows with the same created_at come
// back in reverse insertion order.
func (s *GormStore) List(ctx context.Context) ([]model.Pangram, error) {
	var ps []model.Pangram
	if err := s.DB.Order("created_at desc").Order("rowid desc").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// Ping checks that the sqlite handle is usable.
func (s *GormStore) Ping(ctx context.Context) error {
	return s.DB.DB().PingContext(ctx)
}

// Close closes the sqlite handle.
func (s *GormStore) Close() error {
	return s.DB.Close()
}
