package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"todo-bills/internal/models"
	"todo-bills/internal/repository"
)

var fixedNow = time.Date(2025, time.January, 9, 15, 30, 0, 0, time.UTC)

type memTodos struct {
	mu    sync.Mutex
	items map[string]*models.Todo
	lists int
	err   error
}

func newMemTodos() *memTodos { return &memTodos{items: map[string]*models.Todo{}} }

func (m *memTodos) List(_ context.Context, ownerID string) ([]models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Todo{}
	for _, t := range m.items {
		if t.UserID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTodos) Get(_ context.Context, id string) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("get todo: %w", repository.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *memTodos) Create(_ context.Context, ownerID string, in models.NewTodo) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &models.Todo{
		ID: uuid.New().String(), UserID: ownerID, Title: in.Title,
		Description: in.Description, DueDate: in.DueDate,
		CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	m.items[t.ID] = t
	cp := *t
	return &cp, nil
}

func (m *memTodos) Update(_ context.Context, id string, p models.TodoPatch) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Ptr()
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Ptr()
	}
	if p.Completed.Set {
		t.Completed = p.Completed.Value
	}
	cp := *t
	return &cp, nil
}

func (m *memTodos) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memBills struct {
	mu    sync.Mutex
	items map[string]*models.Bill
}

func newMemBills() *memBills { return &memBills{items: map[string]*models.Bill{}} }

func (m *memBills) List(_ context.Context, ownerID string) ([]models.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Bill{}
	for _, b := range m.items {
		if b.UserID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBills) Get(_ context.Context, id string) (*models.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBills) Create(_ context.Context, ownerID string, in models.NewBill) (*models.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &models.Bill{
		ID: uuid.New().String(), UserID: ownerID, Title: in.Title,
		Description: in.Description, Amount: in.Amount, DueDate: in.DueDate,
		Attachments: in.Attachments, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	m.items[b.ID] = b
	cp := *b
	return &cp, nil
}

// Update mirrors the paid/paidDate rules of the SQL repository.
func (m *memBills) Update(_ context.Context, id string, p models.BillPatch) (*models.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("update bill: %w", repository.ErrNotFound)
	}
	if p.Title.Set {
		b.Title = p.Title.Value
	}
	if p.Amount.Set {
		b.Amount = p.Amount.Value
	}
	switch {
	case p.Paid.Set && p.Paid.Value:
		if p.PaidDate.Valid {
			b.PaidDate = p.PaidDate.Ptr()
		} else if !b.Paid || b.PaidDate == nil {
			now := fixedNow
			b.PaidDate = &now
		}
		b.Paid = true
	case p.Paid.Set:
		b.Paid, b.PaidDate = false, nil
	case p.PaidDate.Set && b.Paid:
		b.PaidDate = p.PaidDate.Ptr()
	}
	cp := *b
	return &cp, nil
}

func (m *memBills) Delete(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return "", fmt.Errorf("delete bill: %w", repository.ErrNotFound)
	}
	delete(m.items, id)
	return b.UserID, nil
}

type memUsers struct {
	mu    sync.Mutex
	items map[string]*models.User
}

func newMemUsers() *memUsers { return &memUsers{items: map[string]*models.User{}} }

func (m *memUsers) Create(_ context.Context, username, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[username]; ok {
		return nil, fmt.Errorf("create user: %w", repository.ErrConflict)
	}
	u := &models.User{ID: uuid.New().String(), Username: username, PasswordHash: hash, CreatedAt: fixedNow}
	m.items[username] = u
	return u, nil
}

func (m *memUsers) ByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

type recordingCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	gens        map[string]int64
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{data: map[string][]byte{}, gens: map[string]int64{}}
}

func (r *recordingCache) Get(_ context.Context, kind, ownerID string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.data[kind+":"+ownerID]
	return b, ok
}

func (r *recordingCache) Version(_ context.Context, kind, ownerID string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[kind+":"+ownerID], true
}

func (r *recordingCache) Set(_ context.Context, kind, ownerID string, gen int64, b []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gens[kind+":"+ownerID] != gen {
		return false
	}
	r.data[kind+":"+ownerID] = b
	return true
}

func (r *recordingCache) Invalidate(_ context.Context, kind, ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, kind+":"+ownerID)
	r.gens[kind+":"+ownerID]++
	r.invalidated = append(r.invalidated, kind+":"+ownerID)
}

type recordingEvents struct {
	mu     sync.Mutex
	events []models.ChangeEvent
	err    error
}

func (r *recordingEvents) Publish(_ context.Context, ev models.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

var errBoom = errors.New("boom")

// stallingTodos holds the first List call after loading, until released.
type stallingTodos struct {
	*memTodos
	stalled atomic.Bool
	loaded  chan struct{}
	release chan struct{}
}

func newStallingTodos(inner *memTodos) *stallingTodos {
	return &stallingTodos{memTodos: inner, loaded: make(chan struct{}), release: make(chan struct{})}
}

func (s *stallingTodos) List(ctx context.Context, ownerID string) ([]models.Todo, error) {
	list, err := s.memTodos.List(ctx, ownerID)
	if s.stalled.CompareAndSwap(false, true) {
		close(s.loaded)
		<-s.release
	}
	return list, err
}
