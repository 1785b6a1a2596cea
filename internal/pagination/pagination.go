// Package pagination implements limit/offset pagination with a has_next lookahead.
package pagination

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	// DefaultLimit is used when the request has no limit.
	DefaultLimit = 10
	// MaxLimit caps the page size.
	MaxLimit = 50
)

// ErrInvalidParams is returned for a non numeric or negative limit or offset.
var ErrInvalidParams = errors.New("limit and offset must be non negative integers")

// Params is a requested page.
type Params struct {
	Limit  int
	Offset int
}

// Meta describes a returned page.
type Meta struct {
	HasNext       bool `json:"has_next"`
	TotalReturned int  `json:"total_returned"`
	NextOffset    int  `json:"next_offset"`
}

// Result is one page of T.
type Result[T any] struct {
	Meta Meta `json:"meta"`
	Data []T  `json:"data"`
}

// New returns params with the limit clamped to [1, MaxLimit].
func New(limit, offset int) Params {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// FromCtx reads the limit and offset query parameters.
func FromCtx(c *fiber.Ctx) (Params, error) {
	limit, err := queryInt(c, "limit", DefaultLimit)
	if err != nil {
		return Params{}, err
	}

	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return Params{}, err
	}

	return New(limit, offset), nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, ErrInvalidParams
	}

	return v, nil
}

// Apply adds the page window to a query. One extra row is fetched to detect a next page.
func (p Params) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(p.Limit + 1).Offset(p.Offset)
}

// Paginate cuts rows fetched with Apply down to the page and fills Meta.
func Paginate[T any](p Params, rows []T) Result[T] {
	hasNext := len(rows) > p.Limit
	if hasNext {
		rows = rows[:p.Limit]
	}

	if rows == nil {
		rows = []T{}
	}

	return Result[T]{
		Meta: Meta{
			HasNext:       hasNext,
			TotalReturned: len(rows),
			NextOffset:    p.Offset + len(rows),
		},
		Data: rows,
	}
}

// Slice pages an in-memory slice.
func Slice[T any](p Params, all []T) Result[T] {
	if p.Offset >= len(all) {
		return Paginate[T](p, nil)
	}

	end := p.Offset + p.Limit + 1
	if end > len(all) {
		end = len(all)
	}

	return Paginate(p, all[p.Offset:end])
}

// Query runs db with the page window applied and returns the page.
func Query[T any](db *gorm.DB, p Params) (Result[T], error) {
	var rows []T

	if err := p.Apply(db).Find(&rows).Error; err != nil {
		return Result[T]{}, err
	}

	return Paginate(p, rows), nil
}

// Map converts the rows of a page.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := Result[U]{Meta: r.Meta, Data: make([]U, len(r.Data))}

	for i := range r.Data {
		out.Data[i] = fn(r.Data[i])
	}

	return out
}
