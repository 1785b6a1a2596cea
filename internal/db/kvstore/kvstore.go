// Package kvstore provides the key/value storage used for SIWE nonces and cached responses.
//
// Production deployments use the gofiber storage driver matching the database
// engine. The GORM-backed Storage serves sqlite and tests.
package kvstore

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/mysql/v2"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoAgora/go-agora/internal/config"
	"github.com/GoAgora/go-agora/internal/db/dsn"
	"github.com/GoAgora/go-agora/internal/db/models"
)

const (
	// Table is the table of the KV model.
	Table = "kv_storage"
	// DriverTable is the table owned by the gofiber storage drivers, its columns are k, v and e.
	DriverTable = "fiber_storage"
	// GCInterval is how often expired keys are removed.
	GCInterval = 10 * time.Second
)

// Taker is a storage able to remove a live key and report it in one statement.
type Taker interface {
	Take(key string) (bool, error)
}

// Storage is a fiber.Storage on top of the KV model.
type Storage struct {
	db   *gorm.DB
	now  func() time.Time
	done chan struct{}
	stop sync.Once
}

var (
	_ fiber.Storage = (*Storage)(nil)
	_ Taker         = (*Storage)(nil)
	_ Taker         = (*driverStorage)(nil)
)

// New returns a Storage using db.
func New(db *gorm.DB) *Storage {
	return &Storage{db: db, now: time.Now, done: make(chan struct{})}
}

// Open returns the storage for the configured engine.
func Open(cfg *config.Config, db *gorm.DB) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return &driverStorage{
			Storage: postgres.New(postgres.Config{
				ConnectionURI: dsn.URI(cfg),
				Table:         DriverTable,
				GCInterval:    GCInterval,
			}),
			db: db,
		}
	case config.EngineSQLite:
		s := New(db)
		go s.gcTicker(GCInterval)

		return s
	default:
		return &driverStorage{
			Storage: mysql.New(mysql.Config{
				ConnectionURI: dsn.Create(cfg),
				Table:         DriverTable,
				GCInterval:    GCInterval,
			}),
			db: db,
		}
	}
}

// driverStorage adds Take to a gofiber storage driver, running on the shared database.
type driverStorage struct {
	fiber.Storage
	db *gorm.DB
}

// Take deletes key if it is live and reports whether it did.
func (s *driverStorage) Take(key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	res := s.db.Exec("DELETE FROM "+DriverTable+" WHERE k = ? AND (e = 0 OR e > ?)", key, time.Now().Unix())

	return res.RowsAffected == 1, res.Error
}

// Get returns the value of key, nil for a missing or expired key.
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var kv models.KV

	err := s.db.Where(&models.KV{Key: key}).First(&kv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if kv.ExpiresAt != 0 && kv.ExpiresAt <= s.now().Unix() {
		return nil, nil
	}

	return kv.Value, nil
}

// Set stores val under key. A zero exp never expires.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	kv := models.KV{Key: key, Value: val}
	if exp > 0 {
		kv.ExpiresAt = s.now().Add(exp).Unix()
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&kv).Error
}

// Delete removes key.
func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}

	return s.db.Where(&models.KV{Key: key}).Delete(&models.KV{}).Error
}

// Take deletes key if it is live and reports whether it did.
// Concurrent callers for one key see true at most once.
func (s *Storage) Take(key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	res := s.db.Where(&models.KV{Key: key}).
		Where("expires_at = 0 OR expires_at > ?", s.now().Unix()).
		Delete(&models.KV{})

	return res.RowsAffected == 1, res.Error
}

// Reset removes every key.
func (s *Storage) Reset() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.KV{}).Error
}

// GC removes expired keys.
func (s *Storage) GC() error {
	return s.db.Where("expires_at <> 0 AND expires_at <= ?", s.now().Unix()).Delete(&models.KV{}).Error
}

// Close stops the GC ticker. The database is owned by the caller.
func (s *Storage) Close() error {
	s.stop.Do(func() { close(s.done) })
	return nil
}

func (s *Storage) gcTicker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.GC(); err != nil {
				log.Warn().Err(err).Msg("kv storage gc failed")
			}
		}
	}
}
