package model

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a normalized page/limit pair.
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps the requested page and limit; non-positive values fall
// back to the defaults and limit never exceeds MaxLimit.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Pagination is the metadata block returned with every list.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Paginate describes total rows split into pages of p.Limit.
func (p Page) Paginate(total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}
