package domain

import "fmt"

// SortKey selects the listing order.
type SortKey string

const (
	SortDefault  SortKey = "default"
	SortNameAsc  SortKey = "name-asc"
	SortNameDesc SortKey = "name-desc"
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
)

var SortKeys = []SortKey{
	SortDefault,
	SortNameAsc,
	SortNameDesc,
	SortNewest,
	SortOldest,
}

func (k SortKey) String() string {
	return string(k)
}

// ParseSortKey maps a query value to a sort key. An empty value is the default order.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortDefault, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}
