// Package repository is the Record Store boundary: raw SQL over lib/pq.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no row matches the id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned on a unique constraint violation.
	ErrConflict = errors.New("record already exists")
)

const uniqueViolation = "23505"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// dateArg sends a calendar date as YYYY-MM-DD so the DATE column never sees a zone.
func dateArg(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func fromNullDate(nt sql.NullTime) *civil.Date {
	if !nt.Valid {
		return nil
	}
	d := civil.DateOf(nt.Time)
	return &d
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// setList builds the SET clause of a partial UPDATE.
type setList struct {
	sets []string
	args []any
}

// arg appends a bind value and returns its placeholder.
func (s *setList) arg(v any) string {
	s.args = append(s.args, v)
	return fmt.Sprintf("$%d", len(s.args))
}

func (s *setList) add(column string, v any) {
	s.sets = append(s.sets, column+" = "+s.arg(v))
}

func (s *setList) expr(column, expr string) {
	s.sets = append(s.sets, column+" = "+expr)
}

// statement renders UPDATE table SET ... WHERE id = $n RETURNING columns.
func (s *setList) statement(table, id, columns string) (string, []any) {
	where := s.arg(id)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = %s RETURNING %s",
		table, strings.Join(s.sets, ", "), where, columns), s.args
}
