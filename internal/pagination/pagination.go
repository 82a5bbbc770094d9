// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pagination slices an already ordered list into pages. Out-of-range
// page requests snap to the nearest valid page instead of failing.
package pagination

import "strconv"

// DefaultPageSize is used when a caller passes a page size below 1.
const DefaultPageSize = 10

// Result is one page of items plus navigation metadata.
type Result[T any] struct {
	Items           []T  `json:"items"`
	Total           int  `json:"total"`
	TotalPages      int  `json:"totalPages"`
	CurrentPage     int  `json:"currentPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Paginate returns the window of items for requestedPage. TotalPages is at
// least 1 even for an empty list, and CurrentPage is clamped into
// [1, TotalPages]. Items is never nil.
func Paginate[T any](items []T, requestedPage, pageSize int) Result[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := max(1, (total+pageSize-1)/pageSize)
	currentPage := min(max(1, requestedPage), totalPages)

	start := min((currentPage-1)*pageSize, total)
	end := min(start+pageSize, total)

	window := make([]T, end-start)
	copy(window, items[start:end])

	return Result[T]{
		Items:           window,
		Total:           total,
		TotalPages:      totalPages,
		CurrentPage:     currentPage,
		HasNextPage:     currentPage < totalPages,
		HasPreviousPage: currentPage > 1,
	}
}

// ParsePage parses a ?page= query value. Anything that is not a positive
// integer yields 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Pages returns the 1-based page numbers for rendering a pager.
func (r Result[T]) Pages() []int {
	pages := make([]int, r.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// PrevPage returns the previous page number, or 1 on the first page.
func (r Result[T]) PrevPage() int {
	return max(1, r.CurrentPage-1)
}

// NextPage returns the next page number, or TotalPages on the last page.
func (r Result[T]) NextPage() int {
	return min(r.TotalPages, r.CurrentPage+1)
}
