// Package store opens and migrates the portal's local database. The CMS
// owns content and reader accounts; this database only carries what the
// portal itself issues: sessions, provider links, staff accounts.
package store

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/khobor/portal/auth"
)

// Open opens the sqlite database at path.
func Open(path string, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the portal tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&auth.Session{},
		&auth.ProviderLink{},
		&auth.Staff{},
	)
}
