package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-bills/internal/models"
	"todo-bills/internal/repository"
	"todo-bills/internal/validation"
)

// ListTodos returns the caller's todos, open first, then by due date, then newest.
func (h *Handlers) ListTodos(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	h.serveList(c, models.KindTodo, uid, "Failed to fetch todos", func(ctx context.Context) (any, error) {
		return h.Todos.List(ctx, uid)
	})
}

// CreateTodo validates the body and stores a todo owned by the caller.
func (h *Handlers) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := owner(c)
	if !ok {
		return
	}
	var body validation.TodoCreate
	if !bindJSON(c, &body) {
		return
	}
	in, err := h.Validator.Todo(body)
	if ve, ok := validation.AsErrors(err); ok {
		badRequest(c, ve)
		return
	}
	todo, err := h.Todos.Create(ctx, uid, in)
	if err != nil {
		internalError(c, "Failed to create todo", err)
		return
	}
	h.changed(ctx, models.KindTodo, models.ActionCreate, todo.ID, uid)
	c.JSON(http.StatusCreated, todo)
}

// ownedTodo loads a todo and checks it belongs to uid, writing 404/403/500 otherwise.
func (h *Handlers) ownedTodo(c *gin.Context, uid, id, failMsg string) bool {
	todo, err := h.Todos.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		notFound(c, "Todo")
		return false
	case err != nil:
		internalError(c, failMsg, err)
		return false
	case todo.UserID != uid:
		forbidden(c)
		return false
	}
	return true
}

// UpdateTodo applies a partial update; absent fields are left untouched.
func (h *Handlers) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := owner(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var body validation.TodoUpdate
	if !bindJSON(c, &body) {
		return
	}
	patch, err := h.Validator.TodoPatch(body)
	if ve, ok := validation.AsErrors(err); ok {
		badRequest(c, ve)
		return
	}
	if !h.ownedTodo(c, uid, id, "Failed to update todo") {
		return
	}
	todo, err := h.Todos.Update(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		notFound(c, "Todo")
		return
	}
	if err != nil {
		internalError(c, "Failed to update todo", err)
		return
	}
	h.changed(ctx, models.KindTodo, models.ActionUpdate, id, uid)
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo removes one of the caller's todos.
func (h *Handlers) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := owner(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.ownedTodo(c, uid, id, "Failed to delete todo") {
		return
	}
	err := h.Todos.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		notFound(c, "Todo")
		return
	}
	if err != nil {
		internalError(c, "Failed to delete todo", err)
		return
	}
	h.changed(ctx, models.KindTodo, models.ActionDelete, id, uid)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
