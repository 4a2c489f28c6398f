package session

import (
	"errors"
	"time"

	"github.com/gofiber/storage/mysql/v2"
	"github.com/gofiber/storage/postgres/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/catalog-admin/catalog-admin/internal/config"
	"github.com/catalog-admin/catalog-admin/internal/db/dsn"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
)

// Table holds the sessions on every engine.
const Table = "sessions"

// NewStorage returns the session storage for the configured engine.
// MySQL and PostgreSQL use the gofiber storage drivers, sqlite keeps
// sessions in a gorm table on db.
func NewStorage(cfg *config.Config, db *gorm.DB) (Storage, error) {
	switch cfg.DB.Engine {
	case config.EngineMySQL:
		return mysql.New(mysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         Table,
		}), nil
	case config.EnginePostgres:
		return postgres.New(postgres.Config{
			ConnectionURI: dsn.URI(cfg),
			Table:         Table,
		}), nil
	case config.EngineSQLite:
		return NewGormStorage(db)
	default:
		return nil, config.ErrUnknownDBEngine
	}
}

// GormStorage stores sessions in the sessions table through gorm.
type GormStorage struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStorage returns a gorm backed Storage. The sessions table must be migrated.
func NewGormStorage(db *gorm.DB) (*GormStorage, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}

	return &GormStorage{db: db, now: time.Now}, nil
}

// Get returns the value of key, or nil when it is missing or expired.
func (s *GormStorage) Get(key string) ([]byte, error) {
	var row models.Session

	err := s.db.Where(&models.Session{Key: key}).
		Where("expires_at = 0 OR expires_at > ?", s.now().Unix()).
		Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}

	if row.Key == "" {
		return nil, nil
	}

	return row.Value, nil
}

// Set stores val under key. A zero exp never expires.
func (s *GormStorage) Set(key string, val []byte, exp time.Duration) error {
	row := models.Session{Key: key, Value: val}
	if exp > 0 {
		row.ExpiresAt = s.now().Add(exp).Unix()
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&row).Error
}

// Delete removes key.
func (s *GormStorage) Delete(key string) error {
	return s.db.Delete(&models.Session{Key: key}).Error
}

// GC removes expired sessions.
func (s *GormStorage) GC() error {
	return s.db.Where("expires_at <> 0 AND expires_at <= ?", s.now().Unix()).Delete(&models.Session{}).Error
}
