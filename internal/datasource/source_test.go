package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"nodes.jsonl", "notes.txt", "nodes.db"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nodes.db.d"), 0o755); err != nil {
		t.Fatal(err)
	}

	sources, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("found %d sources, want 2: %v", len(sources), sources)
	}
	byType := make(map[SourceType]Source)
	for _, s := range sources {
		byType[s.Type] = s
	}
	if _, ok := byType[SourceTypeSQLite]; !ok {
		t.Error("nodes.db not discovered")
	}
	if _, ok := byType[SourceTypeJSONL]; !ok {
		t.Error("nodes.jsonl not discovered")
	}
	if byType[SourceTypeSQLite].Priority <= byType[SourceTypeJSONL].Priority {
		t.Error("sqlite should outrank jsonl")
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestSelectPrefersNewest(t *testing.T) {
	dir := t.TempDir()
	dbPath := seedDB(t, testNodes())
	jsonlPath := filepath.Join(dir, "nodes.jsonl")
	if err := os.WriteFile(jsonlPath, []byte(`{"id":"r","title":"Root"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	sources := []Source{
		{Type: SourceTypeSQLite, Path: dbPath, Priority: prioritySQLite, ModTime: now.Add(-time.Hour).UnixNano()},
		{Type: SourceTypeJSONL, Path: jsonlPath, Priority: priorityJSONL, ModTime: now.UnixNano()},
	}
	best, err := Select(context.Background(), sources)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if best.Type != SourceTypeJSONL {
		t.Errorf("selected %s, want the newer jsonl source", best.Type)
	}
	if best.NodeCount != 1 {
		t.Errorf("NodeCount = %d, want 1", best.NodeCount)
	}
}

func TestSelectPriorityBreaksTies(t *testing.T) {
	dir := t.TempDir()
	dbPath := seedDB(t, testNodes())
	jsonlPath := filepath.Join(dir, "nodes.jsonl")
	if err := os.WriteFile(jsonlPath, []byte(`{"id":"r","title":"Root"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	mod := time.Now().UnixNano()
	sources := []Source{
		{Type: SourceTypeJSONL, Path: jsonlPath, Priority: priorityJSONL, ModTime: mod},
		{Type: SourceTypeSQLite, Path: dbPath, Priority: prioritySQLite, ModTime: mod},
	}
	best, err := Select(context.Background(), sources)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if best.Type != SourceTypeSQLite {
		t.Errorf("selected %s, want sqlite on equal mtimes", best.Type)
	}
}

func TestSelectSkipsInvalidSources(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "nodes.db")
	if err := os.WriteFile(badPath, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	jsonlPath := filepath.Join(dir, "nodes.jsonl")
	if err := os.WriteFile(jsonlPath, []byte(`{"id":"r","title":"Root"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	sources := []Source{
		// The broken database is newer but must lose to the valid jsonl.
		{Type: SourceTypeSQLite, Path: badPath, Priority: prioritySQLite, ModTime: now.UnixNano()},
		{Type: SourceTypeJSONL, Path: jsonlPath, Priority: priorityJSONL, ModTime: now.Add(-time.Hour).UnixNano()},
	}
	best, err := Select(context.Background(), sources)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if best.Type != SourceTypeJSONL {
		t.Errorf("selected %s, want the valid jsonl source", best.Type)
	}
}

func TestSelectNoSources(t *testing.T) {
	if _, err := Select(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty source list")
	}
}

func TestSelectAllInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.db")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	sources := []Source{{Type: SourceTypeSQLite, Path: path, Priority: prioritySQLite}}
	if _, err := Select(context.Background(), sources); err == nil {
		t.Fatal("expected error when no source validates")
	}
}

func TestSourceString(t *testing.T) {
	s := Source{Type: SourceTypeJSONL, Path: "/tmp/nodes.jsonl", Valid: true, NodeCount: 3}
	if got := s.String(); got == "" {
		t.Fatal("String() should not be empty")
	}
	bad := Source{Type: SourceTypeSQLite, Path: "/tmp/nodes.db", ValidationError: "boom"}
	if got := bad.String(); got == "" {
		t.Fatal("String() should describe invalid sources")
	}
}
