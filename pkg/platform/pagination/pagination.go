// Package pagination normalizes page/limit query parameters for list
// endpoints.
package pagination

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a normalized page request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps raw page/limit values into valid bounds. Zero or
// negative inputs fall back to defaults; limits above MaxLimit are capped.
func Normalize(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset converts the page number into a row offset.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}
