package treelist

// CheckState is the tri-state value of a hierarchical checkbox. Non-leaf
// states are derived from descendants; leaf states are whatever the host
// says they are.
type CheckState uint8

const (
	// Unchecked means the model, and for branches every resolved
	// descendant, is unchecked.
	Unchecked CheckState = iota
	// Checked means the model, and for branches every resolved descendant,
	// is checked.
	Checked
	// Indeterminate means a branch has descendants in mixed states, or a
	// descendant whose state cannot be resolved.
	Indeterminate
)

// String returns a short name for the state.
func (s CheckState) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// CheckStore is the host-owned storage for per-model check states. State
// returns false when the model has no resolvable state yet.
type CheckStore[M comparable] interface {
	State(model M) (CheckState, bool)
	SetState(model M, state CheckState)
}

// CheckPropagator keeps ancestor tri-state checkboxes consistent with
// descendant state. Setting a definite state cascades down through the
// tree's cached children; every distinct ancestor of the changed models is
// then recomputed exactly once, deepest first, so a shallower ancestor
// always sees already-finalized children.
//
// The propagator installs itself as the tree's children-fetched hook, so
// children fetched after their parent was checked or unchecked inherit the
// parent's then-current state (unless they already have one of their own).
//
// Like the rest of the engine, a propagator belongs to a single goroutine.
type CheckPropagator[M comparable] struct {
	tree  *Tree[M]
	store CheckStore[M]

	// refresh, when set, is called once per batch with every model whose
	// state changed, so the host can re-render the affected rows.
	refresh func(changed []M)

	// active is the in-flight propagation batch. A SetState arriving while a
	// batch runs — typically the store's setter calling back into the
	// propagator — is absorbed into that batch instead of cascading again.
	active *propagation[M]
}

// propagation is the explicit per-batch context carried through the cascade
// call chain.
type propagation[M comparable] struct {
	changed []M
	seen    map[M]bool
}

func (p *propagation[M]) note(model M) {
	if !p.seen[model] {
		p.seen[model] = true
		p.changed = append(p.changed, model)
	}
}

// NewCheckPropagator wires a propagator to tree and store. The refresh
// callback may be nil.
func NewCheckPropagator[M comparable](tree *Tree[M], store CheckStore[M], refresh func(changed []M)) *CheckPropagator[M] {
	p := &CheckPropagator[M]{tree: tree, store: store, refresh: refresh}
	tree.OnChildrenFetched(p.childrenFetched)
	return p
}

// SetState sets model's check state, cascading and recomputing ancestors.
func (p *CheckPropagator[M]) SetState(model M, state CheckState) {
	p.SetStates([]M{model}, state)
}

// SetStates sets the same state on several models in one batch. The distinct
// ancestors across all models are recomputed exactly once each, deepest
// first.
func (p *CheckPropagator[M]) SetStates(models []M, state CheckState) {
	if p.active != nil {
		// Re-entrant write-back during an in-flight batch: record the state,
		// suppress the cascade.
		for _, m := range models {
			p.write(p.active, m, state)
		}
		return
	}
	run := &propagation[M]{seen: make(map[M]bool)}
	p.active = run
	defer func() { p.active = nil }()

	for _, m := range models {
		p.cascade(run, m, state)
	}
	p.recomputeAncestors(run, models)

	if p.refresh != nil && len(run.changed) > 0 {
		p.refresh(run.changed)
	}
}

// write records a state without cascading.
func (p *CheckPropagator[M]) write(run *propagation[M], model M, state CheckState) {
	p.store.SetState(model, state)
	run.note(model)
}

// cascade assigns state to model and, for a definite state, to every cached
// descendant. Unfetched children are skipped here; they inherit on fetch via
// childrenFetched.
func (p *CheckPropagator[M]) cascade(run *propagation[M], model M, state CheckState) {
	p.write(run, model, state)
	if state == Indeterminate {
		return
	}
	children, ok := p.tree.CachedChildren(model)
	if !ok {
		return
	}
	for _, child := range children {
		p.cascade(run, child, state)
	}
}

// recomputeAncestors recomputes every distinct ancestor of the changed
// models, deepest first: collect each model's ancestor chain, reverse it so
// it reads shallow-to-deep, flatten and de-duplicate keeping the first
// occurrence, then walk the result backwards. A shallower ancestor is
// therefore always recomputed after every deeper one it depends on.
func (p *CheckPropagator[M]) recomputeAncestors(run *propagation[M], models []M) {
	var ordered []M
	picked := make(map[M]bool)
	for _, m := range models {
		var chain []M // nearest ancestor first
		for cur := m; ; {
			parent, ok := p.tree.provider.Parent(cur)
			if !ok {
				break
			}
			chain = append(chain, parent)
			cur = parent
		}
		for i := len(chain) - 1; i >= 0; i-- { // shallow to deep
			if a := chain[i]; !picked[a] {
				picked[a] = true
				ordered = append(ordered, a)
			}
		}
	}
	for i := len(ordered) - 1; i >= 0; i-- { // deep to shallow
		p.recompute(run, ordered[i])
	}
}

// recompute derives one branch's state from its children: Checked when every
// resolved child is checked, Unchecked when every one is unchecked,
// Indeterminate for mixed or unresolvable children. Models without cached
// children are left alone. The result is written back through SetState — the
// same entry point hosts use — where the active batch absorbs it.
func (p *CheckPropagator[M]) recompute(run *propagation[M], model M) {
	children, ok := p.tree.CachedChildren(model)
	if !ok || len(children) == 0 {
		return
	}
	allChecked, allUnchecked := true, true
	for _, child := range children {
		st, ok := p.store.State(child)
		if !ok {
			allChecked, allUnchecked = false, false
			break
		}
		switch st {
		case Checked:
			allUnchecked = false
		case Unchecked:
			allChecked = false
		default:
			allChecked, allUnchecked = false, false
		}
	}
	next := Indeterminate
	switch {
	case allChecked:
		next = Checked
	case allUnchecked:
		next = Unchecked
	}
	if cur, ok := p.store.State(model); ok && cur == next {
		return
	}
	p.SetState(model, next)
}

// childrenFetched applies deferred cascading: children fetched after their
// parent acquired a definite state inherit that state, unless they already
// have one recorded.
func (p *CheckPropagator[M]) childrenFetched(parent M, children []M) {
	st, ok := p.store.State(parent)
	if !ok || st == Indeterminate {
		return
	}
	var inherit []M
	for _, child := range children {
		if _, has := p.store.State(child); !has {
			inherit = append(inherit, child)
		}
	}
	if len(inherit) > 0 {
		p.SetStates(inherit, st)
	}
}
