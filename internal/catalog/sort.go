package catalog

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"radiolink/catalog/internal/domain"
)

// Sort returns a new slice ordered by key. The default order is sortOrder
// ascending with the newest product first on ties. Equal elements keep their
// input order, so sorting twice yields the same result.
func Sort(products []domain.Product, key domain.SortKey) []domain.Product {
	sorted := slices.Clone(products)
	if sorted == nil {
		sorted = []domain.Product{}
	}

	switch key {
	case domain.SortNameAsc, domain.SortNameDesc:
		// collators keep internal buffers and are not safe for concurrent use
		col := collate.New(language.English)
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			if key == domain.SortNameDesc {
				return col.CompareString(b.Title, a.Title)
			}
			return col.CompareString(a.Title, b.Title)
		})
	case domain.SortNewest:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case domain.SortOldest:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	default:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			if c := compareFloat(a.Order(), b.Order()); c != 0 {
				return c
			}
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return sorted
}

// SortProjects orders projects by sortOrder ascending, newest first on ties.
func SortProjects(projects []domain.Project) []domain.Project {
	sorted := slices.Clone(projects)
	slices.SortStableFunc(sorted, func(a, b domain.Project) int {
		if c := compareFloat(a.Order(), b.Order()); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
