package treelist

// Branch owns the subtree rooted at one model: its cached children, its
// expansion state, and the presentation flags a renderer needs for connector
// lines. Branches are created and owned by a Tree; hosts only ever hold
// read-only references obtained from Tree.Branch.
//
// Expansion state lives here and the Tree keeps every Branch in its
// model→Branch map for the tree's lifetime, so a branch that becomes
// invisible (an ancestor collapses, SetRoots swaps the root set) remembers
// whether it was expanded. Re-expanding the ancestor restores the descendant
// view without re-instruction.
type Branch[M comparable] struct {
	tree     *Tree[M]
	parent   *Branch[M]
	model    M
	children []*Branch[M]

	expanded bool
	fetched  bool

	// trunk marks the synthetic always-expanded container whose children are
	// the tree's roots. The trunk has no model and is never rendered.
	trunk bool

	// Presentation flags, valid after the most recent flatten. They exist
	// purely for connector-line rendering and never influence the engine.
	firstBranch bool
	lastChild   bool
	onlyBranch  bool
}

// Model returns the model this branch wraps. Undefined for the trunk.
func (b *Branch[M]) Model() M { return b.model }

// Parent returns the parent branch, or nil for the trunk. Root branches
// return the trunk.
func (b *Branch[M]) Parent() *Branch[M] { return b.parent }

// IsExpanded reports whether the branch is currently expanded.
func (b *Branch[M]) IsExpanded() bool { return b.expanded }

// IsFirstBranch reports whether this was the first root in the most recent
// flatten.
func (b *Branch[M]) IsFirstBranch() bool { return b.firstBranch }

// IsLastChild reports whether this was the last surviving sibling at its
// level in the most recent flatten.
func (b *Branch[M]) IsLastChild() bool { return b.lastChild }

// IsOnlyBranch reports whether this was the only surviving sibling at its
// level in the most recent flatten.
func (b *Branch[M]) IsOnlyBranch() bool { return b.onlyBranch }

// Level returns the nesting depth: 0 for roots, -1 for the trunk sentinel.
func (b *Branch[M]) Level() int {
	if b.trunk {
		return -1
	}
	return b.parent.Level() + 1
}

// CanExpand reports whether the branch can be expanded right now. The trunk
// always can; everything else asks the host's expandability predicate.
func (b *Branch[M]) CanExpand() bool {
	if b.trunk {
		return true
	}
	return b.tree.provider.CanExpand(b.model)
}

// Visible reports whether the branch appears in the flat sequence: roots are
// always visible, everything else is visible iff its parent is visible and
// expanded.
func (b *Branch[M]) Visible() bool {
	if b.trunk {
		return true
	}
	if b.parent == nil {
		return false
	}
	return b.parent.expanded && b.parent.Visible()
}

// ClearCachedInfo discards the cached children and resets the fetched flag,
// starting a new cache generation. The child Branch objects themselves stay
// alive in the tree's map so their expansion state survives a refetch.
func (b *Branch[M]) ClearCachedInfo() {
	b.children = nil
	b.fetched = false
}

// FetchChildren populates the child-branch list from the host provider. It
// is a no-op if the children were already fetched this cache generation.
// Existing Branch objects are reused per model, so a refetch keeps descendant
// expansion state.
func (b *Branch[M]) FetchChildren() {
	if b.fetched {
		return
	}
	b.fetched = true
	if b.trunk {
		// Trunk children are the roots, installed explicitly by the tree.
		return
	}
	if !b.tree.provider.CanExpand(b.model) {
		return
	}
	models := b.tree.provider.Children(b.model)
	b.children = b.children[:0]
	for _, m := range models {
		b.children = append(b.children, b.tree.getOrCreateBranch(b, m))
	}
	if hook := b.tree.onChildrenFetched; hook != nil {
		hook(b.model, models)
	}
}

// ensureFetched fetches and sorts children when the branch is expanded but
// its cache generation was invalidated (SetRoots, RebuildChildren). Keeps an
// expanded branch's subtree reconstructible during whole-list rebuilds.
func (b *Branch[M]) ensureFetched() {
	if b.fetched {
		return
	}
	b.FetchChildren()
	sortBranches(b.children, b.tree.comparator)
}

// ChildBranches returns the cached children, fetched or not. Mostly useful
// to renderers and tests; structural code goes through FilteredChildBranches.
func (b *Branch[M]) ChildBranches() []*Branch[M] { return b.children }

// passesFilter reports whether the branch's own model is accepted by the
// active model filter.
func (b *Branch[M]) passesFilter() bool {
	f := b.tree.modelFilter
	if f == nil {
		return true
	}
	return f(b.model)
}

// hasFilteredDescendants reports whether any already-fetched descendant is
// accepted by the active model filter. It deliberately does not force a
// fetch: probing unfetched subtrees would defeat lazy loading.
func (b *Branch[M]) hasFilteredDescendants() bool {
	for _, child := range b.children {
		if child.passesFilter() || child.hasFilteredDescendants() {
			return true
		}
	}
	return false
}

// isIncluded reports whether the branch survives filtering: its model is
// accepted, or some filtered descendant keeps it reachable.
func (b *Branch[M]) isIncluded() bool {
	return b.passesFilter() || b.hasFilteredDescendants()
}

// FilteredChildBranches returns the children that survive the active model
// filter. A collapsed branch reports no children at all; an expanded branch
// with no filter reports all of them.
func (b *Branch[M]) FilteredChildBranches() []*Branch[M] {
	if !b.expanded && !b.trunk {
		return nil
	}
	b.ensureFetched()
	if b.tree.modelFilter == nil {
		return b.children
	}
	var out []*Branch[M]
	for _, child := range b.children {
		if child.isIncluded() {
			out = append(out, child)
		}
	}
	return out
}

// NumberVisibleDescendents returns how many rows this branch currently
// contributes below itself: 0 when collapsed, otherwise each surviving child
// plus that child's own visible descendants. This count is what Expand and
// Collapse splice in and out of the flat list.
func (b *Branch[M]) NumberVisibleDescendents() int {
	if !b.expanded && !b.trunk {
		return 0
	}
	n := 0
	for _, child := range b.FilteredChildBranches() {
		n += 1 + child.NumberVisibleDescendents()
	}
	return n
}

// Flatten returns the branch's visible descendants as an ordered model
// sequence. The branch's own model is not included.
func (b *Branch[M]) Flatten() []M {
	var out []M
	if b.expanded || b.trunk {
		b.FlattenOnto(&out)
	}
	return out
}

// FlattenOnto appends every surviving child's model, each followed by its own
// flattened descendants when expanded. As the last step it marks the last
// surviving sibling at this level, which is why the flags are only valid
// after filtering and sorting have been applied.
func (b *Branch[M]) FlattenOnto(out *[]M) {
	children := b.FilteredChildBranches()
	only := len(children) == 1
	for i, child := range children {
		child.firstBranch = b.trunk && i == 0
		child.lastChild = false
		child.onlyBranch = only
		*out = append(*out, child.model)
		if child.expanded {
			child.FlattenOnto(out)
		}
	}
	if n := len(children); n > 0 {
		children[n-1].lastChild = true
	}
}

// Sort stably reorders this branch's children with cmp, then recurses into
// every child for a full-subtree re-sort. Collapsed children are sorted too,
// so re-expanding shows the current order.
func (b *Branch[M]) Sort(cmp Comparator[M]) {
	sortBranches(b.children, cmp)
	for _, child := range b.children {
		child.Sort(cmp)
	}
}

// clearFirstBranchFlags resets the first-branch flag across the subtree.
// Called before a re-sort, since sibling order is about to change.
func (b *Branch[M]) clearFirstBranchFlags() {
	b.firstBranch = false
	for _, child := range b.children {
		child.clearFirstBranchFlags()
	}
}

// setExpandedRecursive expands or collapses the whole subtree. Expanding
// fetches and sorts children as it descends.
func (b *Branch[M]) setExpandedRecursive(expanded bool) {
	if expanded {
		if !b.trunk && !b.CanExpand() {
			return
		}
		if !b.trunk {
			b.expanded = true
		}
		b.ensureFetched()
		for _, child := range b.children {
			child.setExpandedRecursive(true)
		}
		return
	}
	if !b.trunk {
		b.expanded = false
	}
	for _, child := range b.children {
		child.setExpandedRecursive(false)
	}
}
