package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todo-bills/internal/models"
)

const userColumns = `id, username, password_hash, created_at`

// Users stores accounts.
type Users struct {
	db  *sql.DB
	now func() time.Time
}

// NewUsers returns a Users repository over db.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db, now: time.Now}
}

// Create inserts a user. A taken username is ErrConflict.
func (r *Users) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		uuid.New().String(), username, passwordHash, r.now()).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", mapErr(err))
	}
	return &u, nil
}

// ByUsername loads a user for login.
func (r *Users) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user by username: %w", mapErr(err))
	}
	return &u, nil
}
