package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todo-bills/internal/models"
	"todo-bills/pkg/logger"
)

const todoColumns = `id, user_id, title, description, due_date, completed, created_at, updated_at`

// Todos stores todos in Postgres.
type Todos struct {
	db  *sql.DB
	now func() time.Time
}

// NewTodos returns a Todos repository over db.
func NewTodos(db *sql.DB) *Todos {
	return &Todos{db: db, now: time.Now}
}

func scanTodo(row rowScanner) (*models.Todo, error) {
	var (
		t    models.Todo
		desc sql.NullString
		due  sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &desc, &due, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Description = fromNullString(desc)
	t.DueDate = fromNullDate(due)
	return &t, nil
}

// List returns the owner's todos: open first, then by due date (undated last),
// then newest first.
func (r *Todos) List(ctx context.Context, ownerID string) ([]models.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = $1
		 ORDER BY completed ASC, due_date ASC NULLS LAST, created_at DESC`, ownerID)
	if err != nil {
		logger.Error(ctx, "Repository list todos failed", "error", err)
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()
	todos := []models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			logger.Error(ctx, "Repository scan todo failed", "error", err)
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

// Get loads one todo by id regardless of owner.
func (r *Todos) Get(ctx context.Context, id string) (*models.Todo, error) {
	t, err := scanTodo(r.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

// Create inserts a new todo owned by ownerID and returns the row as stored.
func (r *Todos) Create(ctx context.Context, ownerID string, in models.NewTodo) (*models.Todo, error) {
	now := r.now()
	t, err := scanTodo(r.db.QueryRowContext(ctx,
		`INSERT INTO todos (id, user_id, title, description, due_date, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)
		 RETURNING `+todoColumns,
		uuid.New().String(), ownerID, in.Title, nullString(in.Description), dateArg(in.DueDate), now, now))
	if err != nil {
		logger.Error(ctx, "Repository create todo failed", "error", err)
		return nil, fmt.Errorf("create todo: %w", mapErr(err))
	}
	return t, nil
}

// Update applies the set fields of p and returns the stored row.
func (r *Todos) Update(ctx context.Context, id string, p models.TodoPatch) (*models.Todo, error) {
	var s setList
	if p.Title.Set {
		s.add("title", p.Title.Value)
	}
	if p.Description.Set {
		s.add("description", nullString(p.Description.Ptr()))
	}
	if p.DueDate.Set {
		s.add("due_date", dateArg(p.DueDate.Ptr()))
	}
	if p.Completed.Set {
		s.add("completed", p.Completed.Value)
	}
	s.add("updated_at", r.now())
	q, args := s.statement("todos", id, todoColumns)
	t, err := scanTodo(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		err = mapErr(err)
		if !errors.Is(err, ErrNotFound) {
			logger.Error(ctx, "Repository update todo failed", "error", err, "id", id)
		}
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return t, nil
}

// Delete removes a todo by id. A missing row is ErrNotFound.
func (r *Todos) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		logger.Error(ctx, "Repository delete todo failed", "error", err, "id", id)
		return fmt.Errorf("delete todo: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete todo: %w", ErrNotFound)
	}
	return nil
}
