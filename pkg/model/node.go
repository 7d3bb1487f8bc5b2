// Package model defines the hierarchical records the arbor browser displays.
//
// The treelist engine treats nodes as opaque models; everything it needs is
// reachable through a data source's Provider implementation. Identity is the
// *Node pointer: data sources must hand out exactly one *Node per ID.
package model

import "time"

// Kind categorizes a node.
type Kind string

const (
	// KindGroup is an interior node expected to have children.
	KindGroup Kind = "group"
	// KindItem is a leaf.
	KindItem Kind = "item"
)

// Node is one record in a hierarchy. ParentID is empty for roots. Rank
// orders siblings when no explicit sort is active; ties fall back to ID.
type Node struct {
	ID        string    `json:"id" yaml:"id"`
	ParentID  string    `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Title     string    `json:"title" yaml:"title"`
	Kind      Kind      `json:"kind,omitempty" yaml:"kind,omitempty"`
	Rank      int       `json:"rank,omitempty" yaml:"rank,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`

	// HasChildren is a hint from the data source so expandability checks do
	// not require fetching the children themselves.
	HasChildren bool `json:"has_children,omitempty" yaml:"has_children,omitempty"`
}

// IsGroup reports whether the node is an interior node.
func (n *Node) IsGroup() bool { return n.Kind == KindGroup }

// CompareByRank orders two nodes by rank, then ID. This is the default
// sibling order used by the browser.
func CompareByRank(a, b *Node) int {
	if a.Rank != b.Rank {
		if a.Rank < b.Rank {
			return -1
		}
		return 1
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

// CompareByTitle orders two nodes alphabetically by title, then ID.
func CompareByTitle(a, b *Node) int {
	switch {
	case a.Title < b.Title:
		return -1
	case a.Title > b.Title:
		return 1
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

// CompareByCreated orders two nodes oldest first, then ID.
func CompareByCreated(a, b *Node) int {
	switch {
	case a.CreatedAt.Before(b.CreatedAt):
		return -1
	case a.CreatedAt.After(b.CreatedAt):
		return 1
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
