package blog

import "math"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is a 1 based page request
type Page struct {
	Page  int
	Limit int
}

// Normalize applies defaults, clamps the limit to [1, MaxPageLimit] and
// caps the page so its offset fits in an int.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Limit == 0:
		p.Limit = DefaultPageLimit
	case p.Limit < 1:
		p.Limit = 1
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	// keeps Offset from overflowing
	if maxPage := math.MaxInt / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// Offset is the number of rows to skip
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// Pagination describes a page in list responses
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func NewPagination(page Page, total int) Pagination {
	page = page.Normalize()
	return Pagination{
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(page.Limit))),
	}
}
