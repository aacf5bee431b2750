package domain

// PaginatedResult wraps a page of items with its position in the full result set.
type PaginatedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewPaginatedResult builds a PaginatedResult.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return PaginatedResult[T]{Items: items, Total: total, Page: page, Limit: limit}
}

// TotalPages returns the number of pages for the given total and limit.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
