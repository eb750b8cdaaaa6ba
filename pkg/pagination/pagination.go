package pagination

import "fmt"

// Limits applied to Params.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params selects one page of a collection. Pages are 1-based.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns the first page at the default limit.
func DefaultParams() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// NewParams validates page and limit.
func NewParams(page, limit int) (Params, error) {
	if page < 1 {
		return Params{}, fmt.Errorf("page must be at least 1, got %d", page)
	}
	if limit < 1 || limit > MaxLimit {
		return Params{}, fmt.Errorf("limit must be between 1 and %d, got %d", MaxLimit, limit)
	}
	return Params{Page: page, Limit: limit}, nil
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of a collection together with its position.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// Paginate returns the page of items selected by params. A page past the end
// has no data but still reports the totals.
func Paginate[T any](items []T, params Params) Page[T] {
	total := len(items)
	totalPages := total / params.Limit
	if total%params.Limit > 0 {
		totalPages++
	}

	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)

	return Page[T]{
		Data:       append([]T{}, items[start:end]...),
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}
}
