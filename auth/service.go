package auth

import (
	"context"
	"errors"
	"fmt"

	"bookhive/crypto"
	"bookhive/db"
	"bookhive/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
)

// UserRepository is the subset of db.UserStore the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash, role string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// Authenticate succeeds only if username, password and role all match. The
// error does not say which one was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password, role string) (Identity, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return Identity{}, err
	}

	// Always run bcrypt so unknown usernames take as long as wrong passwords.
	targetHash := user.PasswordHash
	if err != nil {
		targetHash = crypto.DummyHash
	}
	match := crypto.CheckPasswordHash(password, targetHash)

	if err != nil || !match || user.Role != role {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// CreateStudent registers a student account. Returns db.ErrUsernameTaken if the name is in use.
func (s *Service) CreateStudent(ctx context.Context, username, password string) (models.User, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return models.User{}, err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, username, hash, models.RoleStudent)
}

func (s *Service) ChangePassword(ctx context.Context, username, password string) error {
	if err := ValidateCredentials(username, password); err != nil {
		return err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, username, hash)
}

// ValidateCredentials only checks presence; there is no strength rule.
func ValidateCredentials(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	return nil
}
