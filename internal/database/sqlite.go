package database

import (
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"real-estate-matching/internal/config"
)

func openSQLite(cfg config.SQLiteConfig) gorm.Dialector {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if !isMemoryPath(path) && !strings.Contains(path, "?") {
		path += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	return sqlite.Open(path)
}

func isMemoryPath(path string) bool {
	return path == "" || strings.Contains(path, ":memory:")
}
