package ui

import (
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/treelist"
)

// CheckStore is the in-memory per-session storage of check states the
// propagator reads and writes. Nodes the user never touched have no state at
// all, which is how unfetched subtrees stay out of ancestor recomputation.
type CheckStore struct {
	states map[*model.Node]treelist.CheckState
}

// NewCheckStore returns an empty store.
func NewCheckStore() *CheckStore {
	return &CheckStore{states: make(map[*model.Node]treelist.CheckState)}
}

// State returns the recorded state of n, or false when there is none.
func (s *CheckStore) State(n *model.Node) (treelist.CheckState, bool) {
	st, ok := s.states[n]
	return st, ok
}

// SetState records the state of n.
func (s *CheckStore) SetState(n *model.Node, st treelist.CheckState) {
	s.states[n] = st
}

// Checked returns every node currently in the Checked state.
func (s *CheckStore) Checked() []*model.Node {
	var out []*model.Node
	for n, st := range s.states {
		if st == treelist.Checked {
			out = append(out, n)
		}
	}
	return out
}
