package catalog

import (
	"radiolink/catalog/internal/domain"
	"radiolink/catalog/internal/taxonomy"
)

// Matches reports whether every set level of f equals the product's value at
// that level.
func Matches(p *domain.Product, f domain.Filter) bool {
	want := f.Fields()
	have := p.Classification().Fields()
	for i := range want {
		if want[i] != "" && want[i] != have[i] {
			return false
		}
	}
	return true
}

// Filter returns the products matching f, keeping their input order. The
// input slice is not modified.
func Filter(products []domain.Product, f domain.Filter) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for i := range products {
		if Matches(&products[i], f) {
			out = append(out, products[i])
		}
	}
	return out
}

// Count returns the number of products matching f.
func Count(products []domain.Product, f domain.Filter) int {
	n := 0
	for i := range products {
		if Matches(&products[i], f) {
			n++
		}
	}
	return n
}

// NodeCounts holds the product count of every taxonomy node.
type NodeCounts map[domain.CategoryID]int

// Enabled reports whether a node has products; empty nodes are rendered
// disabled and cannot be selected.
func (c NodeCounts) Enabled(id domain.CategoryID) bool {
	return c[id] > 0
}

// CountNodes computes the badge count of every node of the tree, filtering by
// the node's full path. Call it when the product collection changes, not per
// request.
func CountNodes(tree *taxonomy.Tree, products []domain.Product) NodeCounts {
	counts := make(NodeCounts, tree.Len())
	tree.Walk(func(n taxonomy.Node, path []domain.CategoryID) {
		counts[n.ID] = Count(products, domain.FilterFromPath(path...))
	})
	return counts
}
