package model

// Default pagination values used by the backend services.
const (
	DefaultPageNum  = 1
	DefaultPageSize = 10
)

// Page is a 1-based page request.
type Page struct {
	Num  int
	Size int
}

// DefaultPage returns the first page with the default size.
func DefaultPage() Page {
	return Page{Num: DefaultPageNum, Size: DefaultPageSize}
}

// Offset returns the number of records to skip.
func (p Page) Offset() int {
	if p.Num < 1 {
		return 0
	}
	return (p.Num - 1) * p.Size
}
