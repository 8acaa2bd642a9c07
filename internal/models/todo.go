package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// Todo is a task owned by one user.
type Todo struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	DueDate     *civil.Date `json:"dueDate"`
	Completed   bool        `json:"completed"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Open reports whether the todo still needs attention.
func (t Todo) Open() bool { return !t.Completed }

// NewTodo is a validated create payload.
type NewTodo struct {
	Title       string
	Description *string
	DueDate     *civil.Date
}

// TodoPatch is a validated partial update. Unset fields are left untouched;
// set-but-null fields clear the column.
type TodoPatch struct {
	Title       Optional[string]
	Description Optional[string]
	DueDate     Optional[civil.Date]
	Completed   Optional[bool]
}
