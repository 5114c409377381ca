// internal/repository/query.go
package repository

import (
	"fmt"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListQuery is the paging and filtering input shared by admin list endpoints.
type ListQuery struct {
	Page   int
	Limit  int
	Status string
}

// Normalize clamps page and limit. fallbackLimit applies when Limit is unset.
func (q ListQuery) Normalize(fallbackLimit int) ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = fallbackLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pages is ceil(total/limit).
func Pages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// where accumulates "AND col=$n" filters on top of WHERE 1=1.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

func (w *where) String() string {
	return "WHERE 1=1" + strings.Join(w.clauses, "")
}

// page appends LIMIT/OFFSET placeholders and returns the full argument list.
func (w *where) page(q ListQuery) (string, []any) {
	n := len(w.args)
	args := append(append([]any{}, w.args...), q.Limit, q.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}
