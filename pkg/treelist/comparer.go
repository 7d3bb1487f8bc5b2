package treelist

import "sort"

// Comparator orders two models. It returns a negative value when a sorts
// before b, zero when they are equal, and a positive value otherwise. The
// engine never inspects models itself; all ordering comes through here.
type Comparator[M comparable] func(a, b M) int

// Chain combines comparators into one: later comparators break ties left by
// earlier ones. Nil entries are skipped.
func Chain[M comparable](cmps ...Comparator[M]) Comparator[M] {
	return func(a, b M) int {
		for _, cmp := range cmps {
			if cmp == nil {
				continue
			}
			if r := cmp(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// BranchComparer adapts a model Comparator to compare Branch wrappers. It is
// the only bridge between host-level ordering (columns, fields, whatever the
// host sorts by) and the engine's internal sibling ordering.
type BranchComparer[M comparable] struct {
	cmp Comparator[M]
}

// NewBranchComparer wraps cmp for use on branches.
func NewBranchComparer[M comparable](cmp Comparator[M]) BranchComparer[M] {
	return BranchComparer[M]{cmp: cmp}
}

// Compare orders two branches by their models.
func (c BranchComparer[M]) Compare(a, b *Branch[M]) int {
	return c.cmp(a.model, b.model)
}

// sortBranches stably sorts siblings in place with the given comparator.
// Stability preserves the provider's order among equal models.
func sortBranches[M comparable](branches []*Branch[M], cmp Comparator[M]) {
	if cmp == nil || len(branches) < 2 {
		return
	}
	bc := NewBranchComparer(cmp)
	sort.SliceStable(branches, func(i, j int) bool {
		return bc.Compare(branches[i], branches[j]) < 0
	})
}
