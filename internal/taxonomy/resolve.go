package taxonomy

import (
	"errors"
	"strings"

	"radiolink/catalog/internal/domain"
)

// ErrNotFound means a path does not name a node of the tree.
var ErrNotFound = errors.New("category not found")

// TitleSeparator joins node labels in a breadcrumb title.
const TitleSeparator = " - "

// Resolution is a validated category path.
type Resolution struct {
	Filter domain.Filter `json:"filter"`
	Title  string        `json:"title"`
	Nodes  []Node        `json:"nodes"`
}

// Leaf is the deepest node of the resolution.
func (r *Resolution) Leaf() Node {
	return r.Nodes[len(r.Nodes)-1]
}

// Resolve walks the tree one segment at a time. The first segment must be a
// top-level node and every following segment a declared child of the node
// before it. Paths that are empty, longer than the tree depth, or that continue
// below a leaf fail with ErrNotFound.
func (t *Tree) Resolve(segments []string) (*Resolution, error) {
	if len(segments) == 0 || len(segments) > domain.MaxDepth {
		return nil, ErrNotFound
	}

	res := &Resolution{Nodes: make([]Node, 0, len(segments))}
	labels := make([]string, 0, len(segments))
	candidates := t.roots

	for level, segment := range segments {
		id, ok := match(candidates, segment)
		if !ok {
			return nil, ErrNotFound
		}
		node, _ := t.Node(id)
		res.Nodes = append(res.Nodes, node)
		res.Filter = res.Filter.With(domain.Level(level), node.ID)
		labels = append(labels, t.Label(node.ID))
		candidates = node.Children
	}

	res.Title = strings.Join(labels, TitleSeparator)
	return res, nil
}

func match(candidates []domain.CategoryID, segment string) (domain.CategoryID, bool) {
	for _, id := range candidates {
		if string(id) == segment {
			return id, true
		}
	}
	return "", false
}
