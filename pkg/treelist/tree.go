package treelist

import "slices"

// NotFound is the sentinel index returned by structural operations when the
// model is unknown, invisible, or the operation does not apply (expanding an
// already-expanded branch, collapsing a collapsed one). These are normal
// outcomes, not errors.
const NotFound = -1

// Tree owns the collection of root branches (via a synthetic always-expanded
// trunk), the model→Branch ownership map, the current flat sequence of
// visible models, and the model→index map kept consistent with it. It
// implements the index-addressable contract a virtualized list consumes:
// Count, ObjectAt, IndexOf are O(1); structural commands splice incrementally
// where possible and rebuild wholesale where nearly everything changes.
//
// The flat list and the index map are mutually consistent whenever a public
// operation returns.
type Tree[M comparable] struct {
	provider Provider[M]

	trunk    *Branch[M]
	branches map[M]*Branch[M]

	objects []M
	indexes map[M]int

	modelFilter ModelFilter[M]
	listFilter  ListFilter[M]
	comparator  Comparator[M]

	// onChildrenFetched is invoked after a branch fetches its children.
	// Installed by CheckPropagator so freshly fetched children can inherit a
	// definite parent check state.
	onChildrenFetched func(parent M, children []M)
}

// NewTree creates an empty tree over the given provider.
func NewTree[M comparable](provider Provider[M]) *Tree[M] {
	t := &Tree[M]{
		provider: provider,
		branches: make(map[M]*Branch[M]),
		indexes:  make(map[M]int),
	}
	t.trunk = &Branch[M]{tree: t, trunk: true, expanded: true, fetched: true}
	return t
}

// getOrCreateBranch returns the branch for model, creating it on first
// reference. At most one Branch ever exists per live model: re-referencing a
// model reparents its existing Branch, which is how expansion state survives
// structural churn. Branches are never purged from the map, even when their
// model stops being reachable.
func (t *Tree[M]) getOrCreateBranch(parent *Branch[M], model M) *Branch[M] {
	br, ok := t.branches[model]
	if !ok {
		br = &Branch[M]{tree: t, model: model}
		t.branches[model] = br
	}
	br.parent = parent
	return br
}

// Branch returns the branch owning model, or nil if the model has never been
// referenced. Renderers use it to read level, expansion and connector flags.
func (t *Tree[M]) Branch(model M) *Branch[M] { return t.branches[model] }

// Count returns the number of currently visible rows.
func (t *Tree[M]) Count() int { return len(t.objects) }

// ObjectAt returns the model at flat index i, or false when out of range.
func (t *Tree[M]) ObjectAt(i int) (M, bool) {
	if i < 0 || i >= len(t.objects) {
		var zero M
		return zero, false
	}
	return t.objects[i], true
}

// IndexOf returns the flat index of model, or NotFound when it is not
// currently visible.
func (t *Tree[M]) IndexOf(model M) int {
	if i, ok := t.indexes[model]; ok {
		return i
	}
	return NotFound
}

// IsExpanded reports whether model's branch is currently expanded.
func (t *Tree[M]) IsExpanded(model M) bool {
	br, ok := t.branches[model]
	return ok && br.expanded
}

// Roots returns the current root models in order.
func (t *Tree[M]) Roots() []M {
	out := make([]M, 0, len(t.trunk.children))
	for _, br := range t.trunk.children {
		out = append(out, br.model)
	}
	return out
}

// SetRoots replaces the root set. Existing branches are reused per model, so
// expansion state of previously seen models — roots and descendants alike —
// carries over; each reused root starts a fresh cache generation and
// refetches its children on the next expansion or rebuild.
func (t *Tree[M]) SetRoots(models []M) {
	t.trunk.children = t.trunk.children[:0]
	for _, m := range models {
		br := t.getOrCreateBranch(t.trunk, m)
		br.ClearCachedInfo()
		t.trunk.children = append(t.trunk.children, br)
	}
	sortBranches(t.trunk.children, t.comparator)
	t.rebuildAll()
}

// AddRoots appends models to the root set and rebuilds.
func (t *Tree[M]) AddRoots(models []M) {
	for _, m := range models {
		br := t.getOrCreateBranch(t.trunk, m)
		br.ClearCachedInfo()
		t.trunk.children = append(t.trunk.children, br)
	}
	sortBranches(t.trunk.children, t.comparator)
	t.rebuildAll()
}

// RemoveRoots removes the given models from the root set and rebuilds. The
// branches stay in the ownership map so their state is restored if the model
// is re-added.
func (t *Tree[M]) RemoveRoots(models []M) {
	doomed := make(map[M]bool, len(models))
	for _, m := range models {
		doomed[m] = true
	}
	kept := t.trunk.children[:0]
	for _, br := range t.trunk.children {
		if !doomed[br.model] {
			kept = append(kept, br)
		}
	}
	t.trunk.children = kept
	t.rebuildAll()
}

// ReplaceRoot swaps the root at position i for model and rebuilds. Out of
// range positions are ignored.
func (t *Tree[M]) ReplaceRoot(i int, model M) {
	if i < 0 || i >= len(t.trunk.children) {
		return
	}
	br := t.getOrCreateBranch(t.trunk, model)
	br.ClearCachedInfo()
	t.trunk.children[i] = br
	t.rebuildAll()
}

// Expand expands model's branch: children are fetched once per cache
// generation, sorted with the active comparator, and the branch's flattened
// filtered subtree is spliced into the flat list immediately after its row.
// Returns the branch's flat index, or NotFound when the model is unknown,
// already expanded, not expandable, or not currently visible (the expansion
// is still remembered in that last case).
func (t *Tree[M]) Expand(model M) int {
	br, ok := t.branches[model]
	if !ok || br.expanded || !br.CanExpand() {
		return NotFound
	}
	br.FetchChildren()
	sortBranches(br.children, t.comparator)
	br.expanded = true

	idx, visible := t.indexes[model]
	if !visible {
		return NotFound
	}
	if t.listFilter != nil {
		t.rebuildAll()
		return t.IndexOf(model)
	}
	t.objects = slices.Insert(t.objects, idx+1, br.Flatten()...)
	t.rebuildIndexesFrom(idx + 1)
	return idx
}

// Collapse collapses model's branch, removing its contiguous range of
// visible descendants from the flat list. Fetched children stay cached; only
// the expansion flag changes. Returns the branch's flat index, or NotFound
// under the mirrored conditions of Expand.
func (t *Tree[M]) Collapse(model M) int {
	br, ok := t.branches[model]
	if !ok || !br.expanded {
		return NotFound
	}
	// Descendant count must be taken before the flag flips.
	count := br.NumberVisibleDescendents()
	br.expanded = false

	idx, visible := t.indexes[model]
	if !visible {
		return NotFound
	}
	if t.listFilter != nil {
		t.rebuildAll()
		return t.IndexOf(model)
	}
	for _, m := range t.objects[idx+1 : idx+1+count] {
		delete(t.indexes, m)
	}
	t.objects = slices.Delete(t.objects, idx+1, idx+1+count)
	t.rebuildIndexesFrom(idx + 1)
	return idx
}

// ExpandAll expands every expandable branch, fetching as it goes, then
// rebuilds the whole flat list. Nearly every branch changes, so there is no
// incremental variant.
func (t *Tree[M]) ExpandAll() {
	t.trunk.setExpandedRecursive(true)
	t.rebuildAll()
}

// CollapseAll collapses every branch and rebuilds. Fetched children remain
// cached.
func (t *Tree[M]) CollapseAll() {
	t.trunk.setExpandedRecursive(false)
	t.rebuildAll()
}

// RebuildChildren forces a refetch of one branch's children: the cache
// generation is invalidated, children are refetched and resorted if the
// branch is expanded, and the visible range is respliced exactly as Expand
// and Collapse do. Used when the host knows the underlying model changed its
// children. Returns the branch's flat index, or NotFound when the model is
// unknown or not expandable.
func (t *Tree[M]) RebuildChildren(model M) int {
	br, ok := t.branches[model]
	if !ok || !br.CanExpand() {
		return NotFound
	}
	idx, visible := t.indexes[model]
	count := 0
	if visible {
		count = br.NumberVisibleDescendents()
	}

	br.ClearCachedInfo()
	if br.expanded {
		br.FetchChildren()
		sortBranches(br.children, t.comparator)
	}

	if !visible {
		return NotFound
	}
	if t.listFilter != nil {
		t.rebuildAll()
		return t.IndexOf(model)
	}
	for _, m := range t.objects[idx+1 : idx+1+count] {
		delete(t.indexes, m)
	}
	t.objects = slices.Delete(t.objects, idx+1, idx+1+count)
	t.objects = slices.Insert(t.objects, idx+1, br.Flatten()...)
	t.rebuildIndexesFrom(idx + 1)
	return idx
}

// Reveal makes model visible by expanding its ancestor chain, outermost
// first, and returns model's flat index. Returns NotFound when no ancestor
// path leads to a visible row (for example the model's root is not part of
// the tree).
func (t *Tree[M]) Reveal(model M) int {
	if i, ok := t.indexes[model]; ok {
		return i
	}
	var chain []M
	for cur := model; ; {
		parent, ok := t.provider.Parent(cur)
		if !ok {
			break
		}
		chain = append(chain, parent)
		cur = parent
	}
	// Expand from the root end inward.
	for i := len(chain) - 1; i >= 0; i-- {
		t.Expand(chain[i])
	}
	return t.IndexOf(model)
}

// Sort installs cmp as the active sibling comparator and recursively
// reorders every branch's children, then rebuilds the whole flat list. The
// sort is stable; use Chain to add secondary tie-breaks.
func (t *Tree[M]) Sort(cmp Comparator[M]) {
	t.SortWith(cmp, nil)
}

// SortWith sorts with primary, breaking ties with secondary.
func (t *Tree[M]) SortWith(primary, secondary Comparator[M]) {
	if secondary != nil {
		t.comparator = Chain(primary, secondary)
	} else {
		t.comparator = primary
	}
	// Sibling order is about to change; the first-branch flag no longer
	// means anything until the next flatten.
	t.trunk.clearFirstBranchFlags()
	t.trunk.Sort(t.comparator)
	t.rebuildAll()
}

// SetFilters installs the model filter and list filter and rebuilds. Either
// may be nil.
func (t *Tree[M]) SetFilters(modelFilter ModelFilter[M], listFilter ListFilter[M]) {
	t.modelFilter = modelFilter
	t.listFilter = listFilter
	t.rebuildAll()
}

// OnChildrenFetched installs a hook invoked after any branch fetches its
// children.
func (t *Tree[M]) OnChildrenFetched(hook func(parent M, children []M)) {
	t.onChildrenFetched = hook
}

// CachedChildren returns the already-fetched children of model. The second
// result is false when the model is unknown or its children have not been
// fetched this cache generation; no fetch is triggered.
func (t *Tree[M]) CachedChildren(model M) ([]M, bool) {
	br, ok := t.branches[model]
	if !ok || !br.fetched {
		return nil, false
	}
	out := make([]M, 0, len(br.children))
	for _, child := range br.children {
		out = append(out, child.model)
	}
	return out, true
}

// rebuildAll recomputes the flat list and index map from scratch.
func (t *Tree[M]) rebuildAll() {
	t.objects = t.trunk.Flatten()
	if t.listFilter != nil {
		t.objects = t.listFilter(t.objects)
	}
	t.indexes = make(map[M]int, len(t.objects))
	t.rebuildIndexesFrom(0)
}

// rebuildIndexesFrom renumbers the index map from position start to the end
// of the flat list. Entries for removed rows must already be deleted.
func (t *Tree[M]) rebuildIndexesFrom(start int) {
	for i := start; i < len(t.objects); i++ {
		t.indexes[t.objects[i]] = i
	}
}
