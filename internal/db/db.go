// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var DB *sql.DB

// Init opens the Postgres pool and verifies it with a ping.
func Init(dsn string, logger *zap.Logger) error {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping DB: %w", err)
	}

	DB = conn
	logger.Info("connected to database")
	return nil
}

// Migrate creates the tables if they do not exist yet.
func Migrate(conn *sql.DB) error {
	for _, m := range migrations {
		if _, err := conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
