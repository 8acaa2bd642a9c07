package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todo-bills/internal/models"
	"todo-bills/pkg/logger"
)

const billColumns = `id, user_id, title, description, amount, due_date, paid, paid_date, attachments, created_at, updated_at`

// Bills stores bills in Postgres.
type Bills struct {
	db  *sql.DB
	now func() time.Time
}

// NewBills returns a Bills repository over db.
func NewBills(db *sql.DB) *Bills {
	return &Bills{db: db, now: time.Now}
}

// encodeAttachments serializes the list into the single text column.
func encodeAttachments(list []string) (any, error) {
	if len(list) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func decodeAttachments(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(ns.String), &list); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	return list, nil
}

func scanBill(row rowScanner) (*models.Bill, error) {
	var (
		b       models.Bill
		desc    sql.NullString
		due     sql.NullTime
		paidAt  sql.NullTime
		attachs sql.NullString
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Title, &desc, &b.Amount, &due, &b.Paid, &paidAt, &attachs, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	list, err := decodeAttachments(attachs)
	if err != nil {
		return nil, err
	}
	b.Description = fromNullString(desc)
	b.DueDate = fromNullDate(due)
	b.PaidDate = fromNullTime(paidAt)
	b.Attachments = list
	return &b, nil
}

// List returns the owner's bills: unpaid first, then by due date (undated
// last), then newest first.
func (r *Bills) List(ctx context.Context, ownerID string) ([]models.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE user_id = $1
		 ORDER BY paid ASC, due_date ASC NULLS LAST, created_at DESC`, ownerID)
	if err != nil {
		logger.Error(ctx, "Repository list bills failed", "error", err)
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()
	bills := []models.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			logger.Error(ctx, "Repository scan bill failed", "error", err)
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

// Get loads one bill by id regardless of owner.
func (r *Bills) Get(ctx context.Context, id string) (*models.Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

// Create inserts a new unpaid bill owned by ownerID and returns the row as
// stored, so amount scale and timestamp precision match later reads.
func (r *Bills) Create(ctx context.Context, ownerID string, in models.NewBill) (*models.Bill, error) {
	attachs, err := encodeAttachments(in.Attachments)
	if err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}
	now := r.now()
	b, err := scanBill(r.db.QueryRowContext(ctx,
		`INSERT INTO bills (id, user_id, title, description, amount, due_date, paid, paid_date, attachments, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE, NULL, $7, $8, $9)
		 RETURNING `+billColumns,
		uuid.New().String(), ownerID, in.Title, nullString(in.Description), in.Amount, dateArg(in.DueDate), attachs, now, now))
	if err != nil {
		logger.Error(ctx, "Repository create bill failed", "error", err)
		return nil, fmt.Errorf("create bill: %w", mapErr(err))
	}
	return b, nil
}

// Update applies the set fields of p in one statement and returns the stored
// row. paid_date follows paid: paying an unpaid bill stamps it (with the
// given paidDate or now), unpaying clears it, and a paidDate sent alone only
// sticks to a bill that is already paid.
func (r *Bills) Update(ctx context.Context, id string, p models.BillPatch) (*models.Bill, error) {
	now := r.now()
	var s setList
	if p.Title.Set {
		s.add("title", p.Title.Value)
	}
	if p.Description.Set {
		s.add("description", nullString(p.Description.Ptr()))
	}
	if p.Amount.Set {
		s.add("amount", p.Amount.Value)
	}
	if p.DueDate.Set {
		s.add("due_date", dateArg(p.DueDate.Ptr()))
	}
	switch {
	case p.Paid.Set && p.Paid.Value:
		s.add("paid", true)
		if p.PaidDate.Valid {
			s.add("paid_date", p.PaidDate.Value)
		} else {
			s.expr("paid_date", "CASE WHEN paid AND paid_date IS NOT NULL THEN paid_date ELSE "+s.arg(now)+"::timestamptz END")
		}
	case p.Paid.Set:
		s.add("paid", false)
		s.add("paid_date", nil)
	case p.PaidDate.Set:
		var v any
		if p.PaidDate.Valid {
			v = p.PaidDate.Value
		}
		s.expr("paid_date", "CASE WHEN paid THEN "+s.arg(v)+"::timestamptz ELSE NULL END")
	}
	if p.Attachments.Set {
		attachs, err := encodeAttachments(p.Attachments.Value)
		if err != nil {
			return nil, fmt.Errorf("update bill: %w", err)
		}
		s.add("attachments", attachs)
	}
	s.add("updated_at", now)
	q, args := s.statement("bills", id, billColumns)
	b, err := scanBill(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		err = mapErr(err)
		if !errors.Is(err, ErrNotFound) {
			logger.Error(ctx, "Repository update bill failed", "error", err, "id", id)
		}
		return nil, fmt.Errorf("update bill: %w", err)
	}
	return b, nil
}

// Delete removes a bill by id and returns the owner it belonged to. A
// missing row is ErrNotFound.
func (r *Bills) Delete(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx, `DELETE FROM bills WHERE id = $1 RETURNING user_id`, id).Scan(&ownerID)
	if err != nil {
		err = mapErr(err)
		if !errors.Is(err, ErrNotFound) {
			logger.Error(ctx, "Repository delete bill failed", "error", err, "id", id)
		}
		return "", fmt.Errorf("delete bill: %w", err)
	}
	return ownerID, nil
}
