package domain

// ListParams selects one page of a collection.
type ListParams struct {
	First  int
	Offset int
	Search string
}

// Page is one slice of a collection plus the size of the whole collection.
type Page[T any] struct {
	Items      []*T
	TotalCount int
}
