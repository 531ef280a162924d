package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"real-estate-matching/internal/config"
)

// openPostgres opens the connection pool through lib/pq and hands it to GORM.
// The caller owns the returned pool until GORM has been opened on it.
func openPostgres(cfg config.PostgresConfig) (gorm.Dialector, *sql.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("database: open postgres: %w", err)
	}

	return postgres.New(postgres.Config{Conn: conn}), conn, nil
}
