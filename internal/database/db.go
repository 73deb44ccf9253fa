package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/clinicpulse/clinicpulse/internal/logging"
)

// DB is the process-wide connection pool, set by Connect.
var DB *sql.DB

// Connect opens the pool named by DATABASE_URL and verifies it with a ping.
func Connect() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return Open(databaseURL)
}

// Open sets DB to a verified pool for databaseURL.
func Open(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	logging.L().Info("database connected")
	return nil
}

// Close releases the pool. Safe to call when Connect never succeeded.
func Close() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}
