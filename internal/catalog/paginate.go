package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPageSize = errors.New("page size must be positive")
	ErrPageOutOfRange  = errors.New("page out of range")
)

// TotalPages is ceil(count/pageSize), never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Paginate returns the 1-indexed page of items and the total number of pages.
// Pages outside [1, totalPages] are rejected; callers clamp before asking.
func Paginate[T any](items []T, page, pageSize int) ([]T, int, error) {
	if pageSize <= 0 {
		return nil, 0, ErrInvalidPageSize
	}
	total := TotalPages(len(items), pageSize)
	if page < 1 || page > total {
		return nil, total, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, total)
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, total, nil
}

// ClampPage resets a page that is not in [1, totalPages] to the first page.
func ClampPage(page, totalPages int) int {
	if page < 1 || page > totalPages {
		return 1
	}
	return page
}

// PageLink is one entry of a pagination strip. Ellipsis entries have no number.
type PageLink struct {
	Number   int  `json:"number,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

const ellipsisThreshold = 7

// PageNumbers lays out the pagination strip: every page when there are few,
// otherwise the first and last page around a window of current-1..current+1.
func PageNumbers(current, total int) []PageLink {
	links := make([]PageLink, 0, ellipsisThreshold)
	add := func(n int) {
		links = append(links, PageLink{Number: n, Current: n == current})
	}

	if total <= ellipsisThreshold {
		for i := 1; i <= total; i++ {
			add(i)
		}
		return links
	}

	add(1)
	if current > 3 {
		links = append(links, PageLink{Ellipsis: true})
	}
	start := max(2, current-1)
	end := min(total-1, current+1)
	for i := start; i <= end; i++ {
		add(i)
	}
	if current < total-2 {
		links = append(links, PageLink{Ellipsis: true})
	}
	add(total)
	return links
}
