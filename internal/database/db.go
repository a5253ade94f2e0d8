package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables the service needs if they do not exist
// yet.  A manufacturer row is one document: the scalar columns plus the
// products JSON array it owns.  The version column guards concurrent
// read-modify-write cycles over that array.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            CHAR(36)     NOT NULL,
			username      VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at    DATETIME     NOT NULL,
			updated_at    DATETIME     NOT NULL,
			PRIMARY KEY (id),
			UNIQUE KEY uq_users_username (username)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS manufacturers (
			id         CHAR(36)     NOT NULL,
			name       VARCHAR(255) NOT NULL,
			buyer      VARCHAR(255) NOT NULL,
			currency   VARCHAR(64)  NOT NULL DEFAULT '',
			products   JSON         NOT NULL,
			version    BIGINT       NOT NULL DEFAULT 1,
			created_at DATETIME     NOT NULL,
			updated_at DATETIME     NOT NULL,
			PRIMARY KEY (id),
			UNIQUE KEY uq_manufacturers_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
