package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alwanly/forkauthority-polls/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewSQLiteDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// several processes may share the file; wait on locks instead of failing
		if !strings.Contains(path, "?") {
			path += "?_busy_timeout=5000&_journal_mode=WAL"
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	// sqlite allows a single writer; one connection also keeps :memory: databases shared
	conn.SetMaxOpenConns(1)

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	models := []interface{}{
		&models.Document{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	conn, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return conn.Close()
}
