// Package db owns the SQLite database: schema migrations, the admin seed and
// the user and book stores.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bookhive/crypto"
	"bookhive/models"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrNotFoundOrWrongState = errors.New("not found or already in that state")
	ErrDuplicateID          = errors.New("book id already exists")
	ErrUsernameTaken        = errors.New("username already exists")
)

// Default admin account created by Setup.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return conn, nil
}

// Setup applies pending migrations and seeds the default admin. It is safe to run repeatedly.
func Setup(ctx context.Context, conn *sql.DB, logger *zap.Logger) error {
	if err := Migrate(conn); err != nil {
		return err
	}

	var count int
	err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", DefaultAdminUsername).Scan(&count)
	if err != nil {
		return fmt.Errorf("check for admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = conn.ExecContext(ctx, "INSERT OR IGNORE INTO users (username, password_hash, role) VALUES (?, ?, ?)",
		DefaultAdminUsername, hash, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	logger.Info("default admin created", zap.String("username", DefaultAdminUsername))
	return nil
}

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == code
}
