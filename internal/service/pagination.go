package service

import "github.com/noah-isme/consultation-api/internal/models"

// DefaultPageSize applies when a caller does not request a page size.
const DefaultPageSize = 20

// Paginate slices items into a page. Out-of-range pages clamp into [1, totalPages] and
// totalPages is at least 1. The returned items never alias the input.
func Paginate[T any](items []T, page, pageSize int) models.PageResult[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return models.PageResult[T]{
		Items: pageItems,
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalCount: total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}
