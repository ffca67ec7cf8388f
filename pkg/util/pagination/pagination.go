package pagination

import "math"

// Defaults applied when the request omits or mangles page/limit.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds normalized pagination request parameters.
type Params struct {
	Page  int
	Limit int
}

// Meta is the pagination block returned alongside list responses.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewParams clamps page to >= 1 and limit to (0, maxLimit], falling back to
// defaultLimit when limit is not positive.
func NewParams(page, limit, defaultLimit, maxLimit int) Params {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// NewMeta builds the response metadata for a page of total rows.
func NewMeta(p Params, total int64) Meta {
	totalPages := 0
	if p.Limit > 0 && total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
