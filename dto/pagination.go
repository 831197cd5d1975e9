package dto

import "github.com/invoicebox/backend/models"

type PaginationAndSorting struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Sorting  string `form:"sorting"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func AdaptPaginationAndSorting[SortField any](
	input PaginationAndSorting,
	sortingFrom func(string) SortField,
) models.PaginationAndSorting[SortField] {
	return models.PaginationAndSorting[SortField]{
		Page:     input.Page,
		PageSize: input.PageSize,
		Sorting:  sortingFrom(input.Sorting),
		Order:    models.SortingOrderFromString(input.Order),
	}
}

type Paginated[T any] struct {
	Items       []T  `json:"items"`
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"has_next_page"`
}

func AdaptPaginated[T, U any](page models.Paginated[T], adapter func(T) U) Paginated[U] {
	items := make([]U, 0, len(page.Data))
	for _, item := range page.Data {
		items = append(items, adapter(item))
	}
	return Paginated[U]{
		Items:       items,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
		Total:       page.Total,
		HasNextPage: page.CurrentPage*page.PageSize < page.Total,
	}
}
