package search

// Result is one page of a search plus the total match count.
type Result[T any] struct {
	Values   []T   `json:"values"`
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// NewResult wraps a page of values.
func NewResult[T any](values []T, count int64, page, pageSize int) *Result[T] {
	return &Result[T]{Values: values, Count: count, Page: page, PageSize: pageSize}
}

// Pages returns ceil(Count / PageSize), or 0 when PageSize is not positive.
func (r *Result[T]) Pages() int64 {
	if r.PageSize <= 0 {
		return 0
	}
	size := int64(r.PageSize)
	return (r.Count + size - 1) / size
}

// Transform maps the values of r with fn, keeping count and paging.
func Transform[T, U any](r *Result[T], fn func([]T) []U) *Result[U] {
	return &Result[U]{
		Values:   fn(r.Values),
		Count:    r.Count,
		Page:     r.Page,
		PageSize: r.PageSize,
	}
}

// Map applies fn to each value of r, keeping count and paging.
func Map[T, U any](r *Result[T], fn func(T) U) *Result[U] {
	return Transform(r, func(values []T) []U {
		out := make([]U, len(values))
		for i, v := range values {
			out[i] = fn(v)
		}
		return out
	})
}
