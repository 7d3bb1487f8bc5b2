// Package treelist projects a lazily-populated hierarchy into a flat,
// randomly-indexable sequence suitable for a virtualized list view.
//
// The engine is generic over the model type M. Models are opaque: the engine
// never copies or mutates them, it only keys maps on them. M must be
// comparable; hosts that want reference identity use pointer models, hosts
// that want value identity use value models. A model must never appear as a
// descendant of itself — cycles are a precondition violation and lead to
// unbounded recursion.
//
// All operations assume a single logical owner goroutine. There is no
// internal locking.
package treelist

// Provider supplies the hierarchy to the engine. It is implemented by the
// host; the engine calls it lazily.
type Provider[M comparable] interface {
	// CanExpand reports whether the model currently has (or may have)
	// children worth fetching.
	CanExpand(model M) bool

	// Children returns the ordered children of model. It is invoked only
	// when CanExpand(model) is true, and at most once per cache generation
	// for a given branch. The call is synchronous and not cancellable; the
	// host is responsible for keeping it fast.
	Children(model M) []M

	// Parent returns the parent of model, or false when model is a root.
	// Used for ancestor-chain walks (Reveal, checkbox propagation).
	Parent(model M) (M, bool)
}

// ModelFilter decides whether a single model is included in the flattened
// output. A model rejected by the filter is still shown when any of its
// (recursively filtered) descendants is accepted, so deep matches stay
// reachable.
type ModelFilter[M comparable] func(model M) bool

// ListFilter post-processes the whole flattened sequence. When a ListFilter
// is installed, structural operations fall back to whole-list rebuilds
// because the engine cannot predict which rows the filter keeps.
type ListFilter[M comparable] func(models []M) []M
