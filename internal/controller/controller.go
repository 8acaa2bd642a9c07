package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"todo-bills/internal/auth"
	"todo-bills/internal/cache"
	"todo-bills/internal/middleware"
	"todo-bills/internal/models"
	"todo-bills/internal/validation"
	"todo-bills/pkg/logger"
)

// TodoStore is the todo side of the Record Store.
type TodoStore interface {
	List(ctx context.Context, ownerID string) ([]models.Todo, error)
	Get(ctx context.Context, id string) (*models.Todo, error)
	Create(ctx context.Context, ownerID string, in models.NewTodo) (*models.Todo, error)
	Update(ctx context.Context, id string, p models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id string) error
}

// BillStore is the bill side of the Record Store.
type BillStore interface {
	List(ctx context.Context, ownerID string) ([]models.Bill, error)
	Get(ctx context.Context, id string) (*models.Bill, error)
	Create(ctx context.Context, ownerID string, in models.NewBill) (*models.Bill, error)
	Update(ctx context.Context, id string, p models.BillPatch) (*models.Bill, error)
	Delete(ctx context.Context, id string) (string, error)
}

// UserStore holds accounts.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
}

// ListCache caches encoded lists per kind and owner. Set stores only while
// the generation read by Version is current; Invalidate advances it.
type ListCache interface {
	Get(ctx context.Context, kind, ownerID string) ([]byte, bool)
	Version(ctx context.Context, kind, ownerID string) (int64, bool)
	Set(ctx context.Context, kind, ownerID string, gen int64, b []byte) bool
	Invalidate(ctx context.Context, kind, ownerID string)
}

// EventPublisher announces successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
}

// ReadyCheck is one dependency probed by /ready.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handlers serves the HTTP API. Every store call gets the caller's identity
// explicitly; nothing reads ambient session state.
type Handlers struct {
	Todos     TodoStore
	Bills     BillStore
	Users     UserStore
	Cache     ListCache
	Events    EventPublisher
	Validator *validation.Validator
	Tokens    *auth.Tokens

	// BillOwnershipCheck makes bill update/delete verify the owner like todos do.
	BillOwnershipCheck bool
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
	Location      *time.Location
	Now           func() time.Time
	ReadyChecks   []ReadyCheck

	lists singleflight.Group

	genMu sync.Mutex
	gens  map[string]uint64
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handlers) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.Local
}

// owner returns the caller's identity or writes 401.
func owner(c *gin.Context) (string, bool) {
	id, ok := middleware.Identity(c)
	if !ok {
		unauthorized(c)
	}
	return id, ok
}

// bindJSON decodes the body into dst or writes 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, validation.DecodeError(err))
		return false
	}
	return true
}

// generation counts this process's mutations of one owner's list. List reads
// only share a store load with reads of the same generation.
func (h *Handlers) generation(key string) uint64 {
	h.genMu.Lock()
	defer h.genMu.Unlock()
	return h.gens[key]
}

func (h *Handlers) bumpGeneration(key string) {
	h.genMu.Lock()
	defer h.genMu.Unlock()
	if h.gens == nil {
		h.gens = make(map[string]uint64)
	}
	h.gens[key]++
}

// changed drops the owner's cached list and announces the mutation.
// Publishing is best effort.
func (h *Handlers) changed(ctx context.Context, kind, action, id, ownerID string) {
	h.bumpGeneration(cache.Key(kind, ownerID))
	h.Cache.Invalidate(ctx, kind, ownerID)
	ev := models.ChangeEvent{Kind: kind, Action: action, ID: id, OwnerID: ownerID, At: h.now()}
	if err := h.Events.Publish(ctx, ev); err != nil {
		logger.Warn(ctx, "Publish change event failed", "error", err, "kind", kind, "id", id)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
