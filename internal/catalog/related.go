package catalog

import "radiolink/catalog/internal/domain"

// Related picks up to limit other products of the same sub category, in
// default order.
func Related(products []domain.Product, product *domain.Product, limit int) []domain.Product {
	if product.SubCategory == "" || limit <= 0 {
		return []domain.Product{}
	}

	candidates := make([]domain.Product, 0)
	for _, p := range products {
		if p.ID != product.ID && p.SubCategory == product.SubCategory {
			candidates = append(candidates, p)
		}
	}
	sorted := Sort(candidates, domain.SortDefault)
	return sorted[:min(limit, len(sorted))]
}

// FindBySlug returns the product with the given slug.
func FindBySlug(products []domain.Product, slug string) (*domain.Product, bool) {
	for i := range products {
		if products[i].Slug == slug {
			return &products[i], true
		}
	}
	return nil, false
}

// FindByID returns the product with the given id.
func FindByID(products []domain.Product, id string) (*domain.Product, bool) {
	for i := range products {
		if products[i].ID == id {
			return &products[i], true
		}
	}
	return nil, false
}
