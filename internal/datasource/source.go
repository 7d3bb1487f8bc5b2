// Package datasource discovers, validates and opens the data behind an arbor
// session. A directory can carry the hierarchy as a SQLite database
// (nodes.db) or as a JSONL file (nodes.jsonl); the freshest valid source
// wins, with SQLite preferred on ties.
package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

// SourceType identifies the kind of data source.
type SourceType string

const (
	// SourceTypeSQLite is a SQLite database (nodes.db).
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSONL is a JSON-lines file (nodes.jsonl).
	SourceTypeJSONL SourceType = "jsonl"
)

// Priority values for source types (higher = preferred on equal mtimes).
const (
	prioritySQLite = 100
	priorityJSONL  = 50
)

// wellKnownNames maps the file names probed during discovery to their type.
var wellKnownNames = map[string]SourceType{
	"nodes.db":    SourceTypeSQLite,
	"nodes.jsonl": SourceTypeJSONL,
}

// Source is one candidate source of hierarchy data.
type Source struct {
	Type     SourceType
	Path     string
	Priority int
	ModTime  int64 // unix nanos, for selection ordering
	Size     int64

	// Valid indicates the source passed validation; ValidationError says why
	// it did not.
	Valid           bool
	ValidationError string
	// NodeCount is the number of nodes found during validation.
	NodeCount int
}

// String returns a human-readable description of the source.
func (s Source) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s %s (%d nodes, %s)", s.Type, s.Path, s.NodeCount, status)
}

// Discover finds candidate sources in dir. Candidates are returned
// unvalidated; Select validates and picks one.
func Discover(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read data directory: %w", err)
	}
	var sources []Source
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		st, known := wellKnownNames[e.Name()]
		if !known {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		prio := priorityJSONL
		if st == SourceTypeSQLite {
			prio = prioritySQLite
		}
		sources = append(sources, Source{
			Type:     st,
			Path:     filepath.Join(dir, e.Name()),
			Priority: prio,
			ModTime:  info.ModTime().UnixNano(),
			Size:     info.Size(),
		})
	}
	return sources, nil
}

// Select validates all candidates concurrently and returns the best valid
// one: newest modification time first, priority as the tie-break.
func Select(ctx context.Context, sources []Source) (Source, error) {
	if len(sources) == 0 {
		return Source{}, fmt.Errorf("no data sources found")
	}

	validated := make([]Source, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			validated[i] = validate(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Source{}, err
	}

	sort.SliceStable(validated, func(i, j int) bool {
		a, b := validated[i], validated[j]
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.ModTime != b.ModTime {
			return a.ModTime > b.ModTime
		}
		return a.Priority > b.Priority
	})

	best := validated[0]
	if !best.Valid {
		return Source{}, fmt.Errorf("no valid data source: %s", best.ValidationError)
	}
	return best, nil
}

// validate checks that a source can actually be opened and counted.
func validate(src Source) Source {
	switch src.Type {
	case SourceTypeSQLite:
		n, err := countSQLiteNodes(src.Path)
		if err != nil {
			src.ValidationError = err.Error()
			return src
		}
		src.NodeCount = n
	case SourceTypeJSONL:
		nodes, err := LoadJSONL(src.Path)
		if err != nil {
			src.ValidationError = err.Error()
			return src
		}
		src.NodeCount = len(nodes)
	default:
		src.ValidationError = fmt.Sprintf("unknown source type %q", src.Type)
		return src
	}
	src.Valid = true
	return src
}
