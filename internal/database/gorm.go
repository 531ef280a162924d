package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"real-estate-matching/internal/config"
	"real-estate-matching/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist
var ErrNotFound = errors.New("record not found")

// GormDB is the GORM-backed store for every matching table
type GormDB struct {
	db *gorm.DB
}

// Open connects to the database selected by cfg.Type and verifies the connection
func Open(cfg config.DatabaseConfig, logLevel string) (*GormDB, error) {
	var (
		dialector gorm.Dialector
		pool      *sql.DB
		err       error
	)
	switch cfg.Type {
	case "mysql":
		dialector = openMySQL(cfg.MySQL)
	case "sqlite":
		dialector = openSQLite(cfg.SQLite)
	case "postgres", "":
		dialector, pool, err = openPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("database: unsupported type %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(logLevel)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("database: open %s: %w", cfg.Type, err)
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	if cfg.Type == "sqlite" && isMemoryPath(cfg.SQLite.Path) {
		// every new connection to :memory: is a separate, empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("database: ping %s: %w", cfg.Type, err)
	}

	return &GormDB{db: db}, nil
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Profile{},
		&models.Listing{},
		&models.ListingMedia{},
		&models.BuyerIntent{},
		&models.Swipe{},
		&models.Match{},
		&models.DealRoom{},
		&models.DealParticipant{},
		&models.Conversation{},
		&models.Task{},
		&models.SwipeCleanupLog{},
	)
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "info", "warn", "warning":
		return logger.Warn
	case "silent":
		return logger.Silent
	default:
		return logger.Error
	}
}

// wrapErr prefixes err with the failing operation and maps missing rows to ErrNotFound
func wrapErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("database: %s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("database: %s: %w", op, err)
}
