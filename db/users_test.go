package db

import (
	"context"
	"errors"
	"testing"

	"bookhive/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_Create(t *testing.T) {
	store := NewUserStore(tempDB(t))
	ctx := context.Background()

	u, err := store.Create(ctx, "alice", "hash", models.RoleStudent)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, models.RoleStudent, u.Role)

	_, err = store.Create(ctx, "alice", "other", models.RoleStudent)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// Usernames are case-sensitive.
	_, err = store.Create(ctx, "Alice", "hash", models.RoleStudent)
	assert.NoError(t, err)
}

func TestUserStore_GetByUsername(t *testing.T) {
	store := NewUserStore(tempDB(t))
	ctx := context.Background()
	_, err := store.Create(ctx, "bob", "hash", models.RoleStudent)
	require.NoError(t, err)

	u, err := store.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = store.GetByUsername(ctx, "BOB")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_UpdatePassword(t *testing.T) {
	store := NewUserStore(tempDB(t))
	ctx := context.Background()

	require.NoError(t, store.UpdatePassword(ctx, DefaultAdminUsername, "new-hash"))
	u, err := store.GetByUsername(ctx, DefaultAdminUsername)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", u.PasswordHash)

	assert.ErrorIs(t, store.UpdatePassword(ctx, "ghost", "x"), ErrNotFound)
}

func TestUserStore_CreateDatabaseError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	dbErr := errors.New("disk I/O error")
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("carol", "hash", models.RoleStudent).
		WillReturnError(dbErr)

	_, err = NewUserStore(conn).Create(context.Background(), "carol", "hash", models.RoleStudent)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
