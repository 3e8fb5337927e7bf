package domain

// CategoryID identifies a taxonomy node. The same value is stored on products
// at the level the node lives on.
type CategoryID string

func (c CategoryID) String() string {
	return string(c)
}

// Level is the depth of a taxonomy node, starting at LevelCategory.
type Level int

const (
	LevelCategory          Level = iota // mainCategory
	LevelSubCategory                    // subCategory
	LevelSubSubCategory                 // subSubCategory
	LevelSubSubSubCategory              // subSubSubCategory
)

// MaxDepth is the number of classification levels a product carries.
const MaxDepth = 4

// Filter is the active category selection. An empty field imposes no
// constraint. Set fields must not leave gaps: a value at level N implies a
// value at every level below N.
type Filter struct {
	Category          CategoryID `json:"category,omitempty"`
	SubCategory       CategoryID `json:"subCategory,omitempty"`
	SubSubCategory    CategoryID `json:"subSubCategory,omitempty"`
	SubSubSubCategory CategoryID `json:"subSubSubCategory,omitempty"`
}

// FilterFromPath builds a filter from an ordered list of node ids, one per
// level. Ids beyond MaxDepth are ignored.
func FilterFromPath(path ...CategoryID) Filter {
	var f Filter
	for i, id := range path {
		f = f.With(Level(i), id)
	}
	return f
}

// With returns a copy of f with the given level set.
func (f Filter) With(level Level, id CategoryID) Filter {
	switch level {
	case LevelCategory:
		f.Category = id
	case LevelSubCategory:
		f.SubCategory = id
	case LevelSubSubCategory:
		f.SubSubCategory = id
	case LevelSubSubSubCategory:
		f.SubSubSubCategory = id
	}
	return f
}

// Fields returns the four levels in order.
func (f Filter) Fields() [MaxDepth]CategoryID {
	return [MaxDepth]CategoryID{f.Category, f.SubCategory, f.SubSubCategory, f.SubSubSubCategory}
}

// Depth is the number of leading levels that are set.
func (f Filter) Depth() int {
	depth := 0
	for _, id := range f.Fields() {
		if id == "" {
			break
		}
		depth++
	}
	return depth
}

// Valid reports whether the set levels are contiguous from the top.
func (f Filter) Valid() bool {
	seenEmpty := false
	for _, id := range f.Fields() {
		if id == "" {
			seenEmpty = true
			continue
		}
		if seenEmpty {
			return false
		}
	}
	return true
}

// IsZero reports whether no level is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Path returns the set levels as an ordered list.
func (f Filter) Path() []CategoryID {
	fields := f.Fields()
	return append([]CategoryID(nil), fields[:f.Depth()]...)
}
