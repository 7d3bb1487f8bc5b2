package datasource

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// LoadJSONL reads a JSON-lines file, one Node per line. Blank lines are
// skipped; a malformed line aborts the load with its line number.
func LoadJSONL(path string) ([]model.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	var nodes []model.Node
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var n model.Node
		if err := json.Unmarshal(line, &n); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		if n.ID == "" {
			return nil, fmt.Errorf("%s line %d: node without id", path, lineNo)
		}
		nodes = append(nodes, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return nodes, nil
}

// MemoryProvider serves a fully loaded hierarchy from memory. It implements
// treelist.Provider[*model.Node] and is what JSONL sources are wrapped in.
// Sibling order follows file order unless ranks say otherwise.
//
// Identity: one *Node per ID for the provider's lifetime. Reload overwrites
// node contents in place, so engine state keyed on the pointers survives.
type MemoryProvider struct {
	path     string
	byID     map[string]*model.Node
	children map[string][]*model.Node
	roots    []*model.Node
}

// NewMemoryProvider indexes nodes by ID and parent. Nodes referencing a
// missing parent are treated as roots rather than dropped.
func NewMemoryProvider(nodes []model.Node) *MemoryProvider {
	p := &MemoryProvider{byID: make(map[string]*model.Node, len(nodes))}
	p.index(nodes)
	return p
}

// OpenJSONL loads a JSONL file into a reloadable provider.
func OpenJSONL(path string) (*MemoryProvider, error) {
	nodes, err := LoadJSONL(path)
	if err != nil {
		return nil, err
	}
	p := NewMemoryProvider(nodes)
	p.path = path
	return p, nil
}

// Path returns the backing file, or "" for purely in-memory providers.
func (p *MemoryProvider) Path() string { return p.path }

// Reload re-reads the backing file. Nodes keep their pointer identity per
// ID; removed IDs simply stop being reachable.
func (p *MemoryProvider) Reload() error {
	if p.path == "" {
		return fmt.Errorf("provider has no backing file")
	}
	nodes, err := LoadJSONL(p.path)
	if err != nil {
		return err
	}
	p.index(nodes)
	return nil
}

// index rebuilds the parent/child maps, reusing existing *Node pointers per
// ID so identity is stable across reloads.
func (p *MemoryProvider) index(nodes []model.Node) {
	p.children = make(map[string][]*model.Node)
	p.roots = nil

	seen := make(map[string]bool, len(nodes))
	owned := make([]*model.Node, 0, len(nodes))
	for i := range nodes {
		n := nodes[i]
		if seen[n.ID] {
			debug.Log("duplicate node id %s, keeping first occurrence", n.ID)
			continue
		}
		seen[n.ID] = true
		existing, ok := p.byID[n.ID]
		if ok {
			*existing = n
		} else {
			existing = &n
			p.byID[n.ID] = existing
		}
		owned = append(owned, existing)
	}
	for _, n := range owned {
		if n.ParentID == "" {
			p.roots = append(p.roots, n)
			continue
		}
		if !seen[n.ParentID] {
			debug.Log("node %s references missing parent %s, treating as root", n.ID, n.ParentID)
			p.roots = append(p.roots, n)
			continue
		}
		p.children[n.ParentID] = append(p.children[n.ParentID], n)
	}
	sortSiblings(p.roots)
	for id := range p.children {
		sortSiblings(p.children[id])
	}
}

// sortSiblings applies the default rank-then-id order, stably, so file order
// survives among equal ranks.
func sortSiblings(nodes []*model.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return model.CompareByRank(nodes[i], nodes[j]) < 0
	})
}

// Roots returns the top-level nodes in order.
func (p *MemoryProvider) Roots() []*model.Node { return p.roots }

// Node returns the node with the given ID, or nil.
func (p *MemoryProvider) Node(id string) *model.Node { return p.byID[id] }

// Len returns the total number of distinct nodes.
func (p *MemoryProvider) Len() int { return len(p.byID) }

// CanExpand reports whether n has children.
func (p *MemoryProvider) CanExpand(n *model.Node) bool {
	if n == nil {
		return false
	}
	return len(p.children[n.ID]) > 0
}

// Children returns the ordered children of n.
func (p *MemoryProvider) Children(n *model.Node) []*model.Node {
	if n == nil {
		return nil
	}
	return p.children[n.ID]
}

// Parent returns the parent of n, or false for roots.
func (p *MemoryProvider) Parent(n *model.Node) (*model.Node, bool) {
	if n == nil || n.ParentID == "" {
		return nil, false
	}
	parent, ok := p.byID[n.ParentID]
	return parent, ok
}
