package model

import (
	"sort"

	"github.com/maruel/natural"
)

// SortItems orders a mixed listing the way browsers expect: departments and
// folders ahead of documents, each group in natural name order.
func SortItems(items []BrowseItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ac, bc := a.IsFolder || a.IsDepartment, b.IsFolder || b.IsDepartment
		if ac != bc {
			return ac
		}
		return natural.Less(a.Name, b.Name)
	})
}
