package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"radiolink/catalog/internal/catalog"
	"radiolink/catalog/internal/client"
	"radiolink/catalog/internal/domain"
	"radiolink/catalog/internal/taxonomy"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidStatus   = errors.New("unknown project status")
)

// Listing is one page of products.
type Listing struct {
	Items      []domain.Product   `json:"items"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
	Total      int                `json:"total"`
	Pages      []catalog.PageLink `json:"pages"`
	Sort       domain.SortKey     `json:"sort"`
	Title      string             `json:"title,omitempty"`
	Filter     *domain.Filter     `json:"filter,omitempty"`
}

// ListAll pages through the whole catalog. Pages outside the valid range show
// the first page.
func (s *Service) ListAll(sort domain.SortKey, page int) (*Listing, error) {
	return s.list(s.snapshot().products, sort, page)
}

// ListCategory resolves a category path and pages through its products.
// Unknown paths fail with taxonomy.ErrNotFound.
func (s *Service) ListCategory(segments []string, sort domain.SortKey, page int) (*Listing, error) {
	res, err := s.tree.Resolve(segments)
	if err != nil {
		log.Debugf("Category path %q not found", strings.Join(segments, "/"))
		s.metrics.ObserveResolve(false)
		return nil, err
	}
	s.metrics.ObserveResolve(true)

	listing, err := s.list(catalog.Filter(s.snapshot().products, res.Filter), sort, page)
	if err != nil {
		return nil, err
	}
	listing.Title = res.Title
	listing.Filter = &res.Filter
	return listing, nil
}

func (s *Service) list(products []domain.Product, sort domain.SortKey, page int) (*Listing, error) {
	sorted := catalog.Sort(products, sort)
	page = catalog.ClampPage(page, catalog.TotalPages(len(sorted), s.pageSize))

	items, totalPages, err := catalog.Paginate(sorted, page, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to paginate: %w", err)
	}

	return &Listing{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		Total:      len(sorted),
		Pages:      catalog.PageNumbers(page, totalPages),
		Sort:       sort,
	}, nil
}

// CategoryNode is a taxonomy node with its product count, as shown in the
// sidebar.
type CategoryNode struct {
	ID       domain.CategoryID `json:"id"`
	Label    string            `json:"label"`
	Level    domain.Level      `json:"level"`
	Path     string            `json:"path"`
	Count    int               `json:"count"`
	Disabled bool              `json:"disabled"`
	Children []CategoryNode    `json:"children"`
}

// Categories returns the whole taxonomy annotated with the counts of the
// current snapshot.
func (s *Service) Categories() []CategoryNode {
	counts := s.snapshot().counts

	var build func(nodes []taxonomy.Node, prefix string) []CategoryNode
	build = func(nodes []taxonomy.Node, prefix string) []CategoryNode {
		out := make([]CategoryNode, 0, len(nodes))
		for _, n := range nodes {
			path := prefix + "/" + n.ID.String()
			out = append(out, CategoryNode{
				ID:       n.ID,
				Label:    s.tree.Label(n.ID),
				Level:    n.Level,
				Path:     path,
				Count:    counts[n.ID],
				Disabled: !counts.Enabled(n.ID),
				Children: build(s.tree.Children(n.ID), path),
			})
		}
		return out
	}
	return build(s.tree.Roots(), "")
}

// ProductDetail is a product page.
type ProductDetail struct {
	Product domain.Product   `json:"product"`
	Related []domain.Product `json:"related"`
}

// Product looks a product up by slug. Products published after the last
// refresh are fetched from the CMS directly; while the CMS is down a slug
// missing from the served catalog is not found.
func (s *Service) Product(ctx context.Context, slug string) (*ProductDetail, error) {
	products := s.snapshot().products

	product, ok := catalog.FindBySlug(products, slug)
	if !ok {
		fetched, err := s.client.FetchProductBySlug(ctx, slug)
		if errors.Is(err, client.ErrUnavailable) {
			log.Warnf("⚠️ CMS unavailable, product %s not in served catalog: %v", slug, err)
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, slug)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up product %s: %w", slug, err)
		}
		if fetched == nil || !fetched.Complete() {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, slug)
		}
		product = fetched
	}

	return &ProductDetail{
		Product: *product,
		Related: catalog.Related(products, product, s.relatedLimit),
	}, nil
}

// ProductByID returns the snapshot of a product in the current catalog.
func (s *Service) ProductByID(id string) (domain.Product, error) {
	product, ok := catalog.FindByID(s.snapshot().products, id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return *product, nil
}

// Projects lists projects, all of them when status is empty.
func (s *Service) Projects(status domain.ProjectStatus) ([]domain.Project, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	projects := make([]domain.Project, 0)
	for _, p := range s.snapshot().projects {
		if status == "" || p.Status == status {
			projects = append(projects, p)
		}
	}
	return projects, nil
}
