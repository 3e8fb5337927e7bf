package taxonomy

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"radiolink/catalog/internal/domain"
)

// Node is one entry of the category tree.
type Node struct {
	ID       domain.CategoryID   `json:"id"`
	Label    string              `json:"label"`
	Level    domain.Level        `json:"level"`
	Parent   domain.CategoryID   `json:"parent,omitempty"`
	Children []domain.CategoryID `json:"children,omitempty"`
}

// IsLeaf reports whether the node declares no children.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Entry declares a node and its children when building a Tree.
type Entry struct {
	ID       domain.CategoryID
	Label    string
	Children []Entry
}

// Tree is an immutable category tree stored as an arena of nodes. Node ids are
// unique across the whole tree.
type Tree struct {
	nodes []Node
	roots []domain.CategoryID
	index map[domain.CategoryID]int
}

// New builds a tree from top-level entries.
func New(entries ...Entry) (*Tree, error) {
	t := &Tree{
		nodes: make([]Node, 0),
		roots: make([]domain.CategoryID, 0, len(entries)),
		index: make(map[domain.CategoryID]int),
	}
	for _, entry := range entries {
		if err := t.add(entry, "", domain.LevelCategory); err != nil {
			return nil, err
		}
		t.roots = append(t.roots, entry.ID)
	}
	return t, nil
}

// MustNew is New for statically declared trees.
func MustNew(entries ...Entry) *Tree {
	t, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tree) add(entry Entry, parent domain.CategoryID, level domain.Level) error {
	if entry.ID == "" {
		return errors.New("taxonomy: node with empty id")
	}
	if int(level) >= domain.MaxDepth {
		return fmt.Errorf("taxonomy: node %s is deeper than %d levels", entry.ID, domain.MaxDepth)
	}
	if _, exists := t.index[entry.ID]; exists {
		return fmt.Errorf("taxonomy: duplicate node id %s", entry.ID)
	}

	children := make([]domain.CategoryID, 0, len(entry.Children))
	for _, child := range entry.Children {
		children = append(children, child.ID)
	}

	t.index[entry.ID] = len(t.nodes)
	t.nodes = append(t.nodes, Node{
		ID:       entry.ID,
		Label:    entry.Label,
		Level:    level,
		Parent:   parent,
		Children: children,
	})

	for _, child := range entry.Children {
		if err := t.add(child, entry.ID, level+1); err != nil {
			return err
		}
	}
	return nil
}

// Roots returns the top-level nodes in declaration order.
func (t *Tree) Roots() []Node {
	return t.lookup(t.roots)
}

// Children returns the declared children of id in order. Unknown ids have none.
func (t *Tree) Children(id domain.CategoryID) []Node {
	n, ok := t.Node(id)
	if !ok {
		return nil
	}
	return t.lookup(n.Children)
}

// Node returns the node with the given id.
func (t *Tree) Node(id domain.CategoryID) (Node, bool) {
	i, ok := t.index[id]
	if !ok {
		return Node{}, false
	}
	return t.nodes[i], true
}

// Len is the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Label returns the human readable label of id, generating one when the id is
// unknown or declared without a label.
func (t *Tree) Label(id domain.CategoryID) string {
	if n, ok := t.Node(id); ok && n.Label != "" {
		return n.Label
	}
	return FallbackLabel(id.String())
}

// Path returns the ids from the top level down to id, inclusive.
func (t *Tree) Path(id domain.CategoryID) []domain.CategoryID {
	n, ok := t.Node(id)
	if !ok {
		return nil
	}
	path := []domain.CategoryID{n.ID}
	for n.Parent != "" {
		n, _ = t.Node(n.Parent)
		path = append([]domain.CategoryID{n.ID}, path...)
	}
	return path
}

// Walk visits every node depth first in declaration order together with the
// path leading to it.
func (t *Tree) Walk(fn func(n Node, path []domain.CategoryID)) {
	var visit func(ids []domain.CategoryID, prefix []domain.CategoryID)
	visit = func(ids []domain.CategoryID, prefix []domain.CategoryID) {
		for _, n := range t.lookup(ids) {
			path := append(append([]domain.CategoryID(nil), prefix...), n.ID)
			fn(n, path)
			visit(n.Children, path)
		}
	}
	visit(t.roots, nil)
}

func (t *Tree) lookup(ids []domain.CategoryID) []Node {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := t.Node(id); ok {
			out = append(out, n)
		}
	}
	return out
}

var separators = strings.NewReplacer("-", " ", "_", " ")

// FallbackLabel turns a slug like "apx-series" into "Apx Series".
func FallbackLabel(slug string) string {
	words := strings.Fields(separators.Replace(slug))
	return cases.Title(language.English).String(strings.Join(words, " "))
}
