package entity

const (
	DefaultPageSize = 5
	MaxPageSize     = 10
)

// Page is a 1-based page request.
type Page struct {
	Page int
	Size int
}

// Normalize applies the default size and clamps to MaxPageSize.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Size
}

type PageResult[T any] struct {
	Items []T
	Total int64
	Page  Page
}
