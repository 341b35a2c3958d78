package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookhive/models"

	"github.com/mattn/go-sqlite3"
)

// UserStore reads and writes the users table.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(conn *sql.DB) *UserStore {
	return &UserStore{db: conn}
}

// Create inserts a user. The UNIQUE constraint on username decides races
// between concurrent signups; the loser gets ErrUsernameTaken.
func (s *UserStore) Create(ctx context.Context, username, passwordHash, role string) (models.User, error) {
	result, err := s.db.ExecContext(ctx, "INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)",
		username, passwordHash, role)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintUnique) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("last insert id: %w", err)
	}
	return models.User{ID: int(id), Username: username, PasswordHash: passwordHash, Role: role}, nil
}

// GetByUsername matches the username exactly, case-sensitively.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, "SELECT id, username, password_hash, role FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE username = ?", passwordHash, username)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
