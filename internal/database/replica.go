package database

import (
	"fmt"

	"agora/internal/config"
	"agora/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ReadDB is the read replica connection. Nil when no replica is configured.
var ReadDB *gorm.DB

// InitReadDB opens a connection to the configured read replica, if any.
// Read-heavy queries go through GetReadDB so deployments without a replica
// transparently use the primary.
func InitReadDB(cfg *config.Config) error {
	if !cfg.HasReadReplica() {
		ReadDB = nil
		return nil
	}

	dsn := buildDSN(cfg.DBReadHost, cfg.DBReadPort, cfg.DBReadUser, cfg.DBReadPassword, cfg.DBName, cfg.DBSSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to read replica: %w", err)
	}

	configurePool(db, cfg)
	ReadDB = db
	middleware.Logger.Info("Read replica connected successfully")
	return nil
}

// GetReadDB returns the read replica connection, or nil when none is configured.
// Callers fall back to the primary on nil.
func GetReadDB() *gorm.DB {
	return ReadDB
}
