package models

type SortingOrder string

const (
	SortingOrderAsc  SortingOrder = "ASC"
	SortingOrderDesc SortingOrder = "DESC"
)

func SortingOrderFromString(s string) SortingOrder {
	switch s {
	case "asc", "ASC":
		return SortingOrderAsc
	default:
		return SortingOrderDesc
	}
}

const (
	DEFAULT_PAGE_SIZE = 10
	MAX_PAGE_SIZE     = 100
)

type PaginationAndSorting[SortField any] struct {
	Page     int
	PageSize int
	Sorting  SortField
	Order    SortingOrder
}

func (p PaginationAndSorting[SortField]) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Normalized clamps the page and page size to usable values
func (p PaginationAndSorting[SortField]) Normalized() PaginationAndSorting[SortField] {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DEFAULT_PAGE_SIZE
	}
	if p.PageSize > MAX_PAGE_SIZE {
		p.PageSize = MAX_PAGE_SIZE
	}
	if p.Order == "" {
		p.Order = SortingOrderDesc
	}
	return p
}

type Paginated[T any] struct {
	Data        []T
	CurrentPage int
	PageSize    int
	Total       int
}
