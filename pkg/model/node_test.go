package model

import (
	"testing"
	"time"
)

func TestCompareByRank(t *testing.T) {
	low := &Node{ID: "b", Rank: 1}
	high := &Node{ID: "a", Rank: 2}
	tieA := &Node{ID: "a", Rank: 1}

	if got := CompareByRank(low, high); got >= 0 {
		t.Errorf("CompareByRank(rank 1, rank 2) = %d, want < 0", got)
	}
	if got := CompareByRank(high, low); got <= 0 {
		t.Errorf("CompareByRank(rank 2, rank 1) = %d, want > 0", got)
	}
	if got := CompareByRank(tieA, low); got >= 0 {
		t.Errorf("equal ranks must fall back to ID: got %d, want < 0", got)
	}
	if got := CompareByRank(low, low); got != 0 {
		t.Errorf("CompareByRank(x, x) = %d, want 0", got)
	}
}

func TestCompareByTitle(t *testing.T) {
	alpha := &Node{ID: "2", Title: "Alpha"}
	beta := &Node{ID: "1", Title: "Beta"}
	alphaTwin := &Node{ID: "1", Title: "Alpha"}

	if got := CompareByTitle(alpha, beta); got >= 0 {
		t.Errorf("CompareByTitle(Alpha, Beta) = %d, want < 0", got)
	}
	if got := CompareByTitle(alphaTwin, alpha); got >= 0 {
		t.Errorf("equal titles must fall back to ID: got %d, want < 0", got)
	}
}

func TestCompareByCreated(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	old := &Node{ID: "b", CreatedAt: base}
	young := &Node{ID: "a", CreatedAt: base.Add(time.Hour)}
	oldTwin := &Node{ID: "a", CreatedAt: base}

	if got := CompareByCreated(old, young); got >= 0 {
		t.Errorf("older node should sort first: got %d", got)
	}
	if got := CompareByCreated(oldTwin, old); got >= 0 {
		t.Errorf("equal times must fall back to ID: got %d, want < 0", got)
	}
}

func TestIsGroup(t *testing.T) {
	if !(&Node{Kind: KindGroup}).IsGroup() {
		t.Error("group node should report IsGroup")
	}
	if (&Node{Kind: KindItem}).IsGroup() {
		t.Error("item node should not report IsGroup")
	}
	if (&Node{}).IsGroup() {
		t.Error("untyped node should not report IsGroup")
	}
}
