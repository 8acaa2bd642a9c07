package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersCreateConflict(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "anna", "hash", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := NewUsers(db).Create(context.Background(), "anna", "hash")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUsersCreateReturnsStoredRow(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2025, 1, 9, 8, 30, 0, 123000, time.UTC)
	mock.ExpectQuery("INSERT INTO users .+ RETURNING id, username, password_hash, created_at").
		WithArgs(sqlmock.AnyArg(), "anna", "hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("u1", "anna", "hash", created))

	u, err := NewUsers(db).Create(context.Background(), "anna", "hash")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, created, u.CreatedAt)
}

func TestUsersByUsername(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM users WHERE username = ").WithArgs("anna").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("u1", "anna", "hash", created))

	u, err := NewUsers(db).ByUsername(context.Background(), "anna")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)

	mock.ExpectQuery("FROM users WHERE username = ").WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))
	_, err = NewUsers(db).ByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
