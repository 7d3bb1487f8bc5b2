package treelist

import (
	"fmt"
	"slices"
	"testing"
)

// mapStore is a CheckStore recording every write so tests can assert
// propagation order.
type mapStore struct {
	states map[string]CheckState
	log    []string
}

func newMapStore() *mapStore {
	return &mapStore{states: make(map[string]CheckState)}
}

func (s *mapStore) State(m string) (CheckState, bool) {
	st, ok := s.states[m]
	return st, ok
}

func (s *mapStore) SetState(m string, st CheckState) {
	s.states[m] = st
	s.log = append(s.log, fmt.Sprintf("%s=%s", m, st))
}

func (s *mapStore) mustState(t *testing.T, m string, want CheckState) {
	t.Helper()
	st, ok := s.states[m]
	if !ok {
		t.Fatalf("%s has no state, want %s", m, want)
	}
	if st != want {
		t.Errorf("state of %s = %s, want %s", m, st, want)
	}
}

// checkboxFixture builds R → (A → (A1, A2), B) fully expanded, with a
// propagator attached.
func checkboxFixture(t *testing.T) (*Tree[string], *mapStore, *CheckPropagator[string]) {
	t.Helper()
	p := newFakeProvider(map[string][]string{
		"R": {"A", "B"},
		"A": {"A1", "A2"},
	})
	tree := NewTree[string](p)
	store := newMapStore()
	propagator := NewCheckPropagator[string](tree, store, nil)
	tree.SetRoots([]string{"R"})
	tree.ExpandAll()
	return tree, store, propagator
}

func TestCascadeDownward(t *testing.T) {
	_, store, propagator := checkboxFixture(t)
	propagator.SetState("R", Checked)

	for _, m := range []string{"R", "A", "B", "A1", "A2"} {
		store.mustState(t, m, Checked)
	}
}

func TestIndeterminateDoesNotCascade(t *testing.T) {
	_, store, propagator := checkboxFixture(t)
	propagator.SetState("A", Indeterminate)

	store.mustState(t, "A", Indeterminate)
	if _, ok := store.State("A1"); ok {
		t.Error("indeterminate must not cascade to children")
	}
}

func TestUpwardRecompute(t *testing.T) {
	cases := []struct {
		name   string
		a1, a2 CheckState
		want   CheckState
	}{
		{"all checked", Checked, Checked, Checked},
		{"all unchecked", Unchecked, Unchecked, Unchecked},
		{"mixed", Checked, Unchecked, Indeterminate},
		{"child indeterminate", Checked, Indeterminate, Indeterminate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, store, propagator := checkboxFixture(t)
			propagator.SetState("A1", tc.a1)
			propagator.SetState("A2", tc.a2)
			store.mustState(t, "A", tc.want)
		})
	}
}

func TestUnresolvableChildMakesIndeterminate(t *testing.T) {
	_, store, propagator := checkboxFixture(t)
	// Only A1 gets a state; A2 stays unresolved.
	propagator.SetState("A1", Checked)
	store.mustState(t, "A", Indeterminate)
}

func TestRecomputeReachesAllAncestors(t *testing.T) {
	_, store, propagator := checkboxFixture(t)
	propagator.SetState("A1", Checked)
	propagator.SetState("A2", Checked)
	propagator.SetState("B", Checked)

	store.mustState(t, "A", Checked)
	store.mustState(t, "R", Checked)
}

func TestBatchRecomputesDeepestFirst(t *testing.T) {
	_, store, propagator := checkboxFixture(t)
	propagator.SetState("B", Checked)
	store.log = nil

	// Changing A1 and A2 together must recompute A before R, and each of
	// them exactly once.
	propagator.SetStates([]string{"A1", "A2"}, Checked)

	var recomputed []string
	for _, entry := range store.log {
		if entry == "A=checked" || entry == "R=checked" {
			recomputed = append(recomputed, entry)
		}
	}
	want := []string{"A=checked", "R=checked"}
	if !slices.Equal(recomputed, want) {
		t.Errorf("ancestor recompute log = %v, want %v (deepest first, once each)", recomputed, want)
	}
}

func TestRefreshReportsChangedModels(t *testing.T) {
	p := newFakeProvider(map[string][]string{"R": {"A", "B"}})
	tree := NewTree[string](p)
	store := newMapStore()
	var batches [][]string
	propagator := NewCheckPropagator[string](tree, store, func(changed []string) {
		batches = append(batches, slices.Clone(changed))
	})
	tree.SetRoots([]string{"R"})
	tree.Expand("R")

	propagator.SetState("R", Checked)
	if len(batches) != 1 {
		t.Fatalf("refresh called %d times, want 1", len(batches))
	}
	for _, m := range []string{"R", "A", "B"} {
		if !slices.Contains(batches[0], m) {
			t.Errorf("refresh batch %v missing %s", batches[0], m)
		}
	}
}

// reentrantStore writes back into the propagator from SetState, as a host
// whose on-change setter feeds the same entry point would.
type reentrantStore struct {
	*mapStore
	propagator *CheckPropagator[string]
}

func (s *reentrantStore) SetState(m string, st CheckState) {
	prev, had := s.states[m]
	s.mapStore.SetState(m, st)
	if s.propagator != nil && (!had || prev != st) {
		// Echo the change back through the public entry point.
		s.propagator.SetState(m, st)
	}
}

func TestReentrantCascadeIsAbsorbed(t *testing.T) {
	p := newFakeProvider(map[string][]string{
		"R": {"A", "B"},
		"A": {"A1", "A2"},
	})
	tree := NewTree[string](p)
	store := &reentrantStore{mapStore: newMapStore()}
	propagator := NewCheckPropagator[string](tree, store, nil)
	store.propagator = propagator
	tree.SetRoots([]string{"R"})
	tree.ExpandAll()

	// Without the guard this recurses forever.
	propagator.SetState("R", Checked)
	for _, m := range []string{"R", "A", "B", "A1", "A2"} {
		store.mustState(t, m, Checked)
	}
}

func TestDeferredCascadeOnFetch(t *testing.T) {
	p := newFakeProvider(map[string][]string{
		"R": {"A", "B"},
		"A": {"A1", "A2"},
	})
	tree := NewTree[string](p)
	store := newMapStore()
	propagator := NewCheckPropagator[string](tree, store, nil)
	tree.SetRoots([]string{"R"})

	// R's children are not fetched yet; only R changes.
	propagator.SetState("R", Checked)
	store.mustState(t, "R", Checked)
	if _, ok := store.State("A"); ok {
		t.Fatal("unfetched children must not receive a state yet")
	}

	// Fetching R's children applies the deferred inheritance.
	tree.Expand("R")
	store.mustState(t, "A", Checked)
	store.mustState(t, "B", Checked)

	// Same again one level down.
	tree.Expand("A")
	store.mustState(t, "A1", Checked)
	store.mustState(t, "A2", Checked)
}

func TestFetchDoesNotOverrideRecordedState(t *testing.T) {
	p := newFakeProvider(map[string][]string{"R": {"A", "B"}})
	tree := NewTree[string](p)
	store := newMapStore()
	propagator := NewCheckPropagator[string](tree, store, nil)
	tree.SetRoots([]string{"R"})

	store.states["A"] = Unchecked
	propagator.SetState("R", Checked)
	tree.Expand("R")

	// B inherits; A keeps its own recorded state.
	store.mustState(t, "B", Checked)
	store.mustState(t, "A", Unchecked)
}

func TestCheckStateString(t *testing.T) {
	cases := map[CheckState]string{
		Unchecked:     "unchecked",
		Checked:       "checked",
		Indeterminate: "indeterminate",
		CheckState(9): "unknown",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("CheckState(%d).String() = %q, want %q", st, got, want)
		}
	}
}
