package database

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 15
	maxBackoff      = 10 * time.Second
)

// NewPostgres connects to PostgreSQL, retrying with exponential backoff
// while the server comes up.
func NewPostgres(dsn string) (*gorm.DB, error) {
	var err error

	log.Printf("Attempting to connect to database...")

	for i := 1; i <= connectAttempts; i++ {
		var db *gorm.DB
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					log.Printf("Database connected (attempt %d)", i)
					return db, nil
				}
			} else {
				err = dbErr
			}
		}

		log.Printf("Attempt %d failed: %v", i, err)
		if i < connectAttempts {
			time.Sleep(Backoff(i))
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, err)
}

// Backoff returns the wait after the given failed attempt: 1s, 2s, 4s, 8s,
// then capped at 10s.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 5 {
		return maxBackoff
	}
	wait := time.Duration(1<<uint(attempt-1)) * time.Second
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}

// AutoMigrateTables creates or updates the tables of the given models.
func AutoMigrateTables(db *gorm.DB, models ...interface{}) error {
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model: %w", err)
		}
	}
	return nil
}
