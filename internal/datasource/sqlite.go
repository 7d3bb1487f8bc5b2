package datasource

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// SQLiteProvider serves a hierarchy straight from a SQLite database, one
// parent at a time. It implements treelist.Provider[*model.Node]: children
// are queried on demand, which is what makes deep databases cheap to browse.
//
// Identity: the provider hands out exactly one *Node per ID, cached for the
// provider's lifetime, so the engine's maps stay coherent across refetches.
type SQLiteProvider struct {
	db   *sql.DB
	path string

	byID    map[string]*model.Node
	hasKids map[string]bool
}

// OpenSQLite opens path read-only and verifies the nodes table exists.
func OpenSQLite(path string) (*SQLiteProvider, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA temp_store = MEMORY"); err != nil {
		// Non-fatal; read performance only.
		debug.Log("sqlite pragma failed: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("not a nodes database: %w", err)
	}
	return &SQLiteProvider{
		db:      db,
		path:    path,
		byID:    make(map[string]*model.Node),
		hasKids: make(map[string]bool),
	}, nil
}

// Close closes the underlying database.
func (p *SQLiteProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Path returns the database path.
func (p *SQLiteProvider) Path() string { return p.path }

// Invalidate drops the expandability cache. Called when the database file
// changed on disk; node identity is kept so tree state survives the reload.
func (p *SQLiteProvider) Invalidate() {
	p.hasKids = make(map[string]bool)
}

// Roots returns the nodes without a parent, in rank order.
func (p *SQLiteProvider) Roots() ([]*model.Node, error) {
	return p.queryNodes("SELECT id, parent_id, title, kind, rank, created_at FROM nodes WHERE parent_id IS NULL OR parent_id = '' ORDER BY rank, id")
}

// CanExpand reports whether the node has children in the database. Results
// are cached until Invalidate.
func (p *SQLiteProvider) CanExpand(n *model.Node) bool {
	if n == nil {
		return false
	}
	if has, ok := p.hasKids[n.ID]; ok {
		return has
	}
	var one int
	err := p.db.QueryRow("SELECT EXISTS(SELECT 1 FROM nodes WHERE parent_id = ?)", n.ID).Scan(&one)
	if err != nil {
		debug.Log("sqlite CanExpand(%s): %v", n.ID, err)
		return false
	}
	has := one == 1
	p.hasKids[n.ID] = has
	return has
}

// Children returns the ordered children of n. Query errors surface as an
// empty child list; the engine has no error channel here and an unreadable
// database will already have failed loudly elsewhere.
func (p *SQLiteProvider) Children(n *model.Node) []*model.Node {
	if n == nil {
		return nil
	}
	nodes, err := p.queryNodes("SELECT id, parent_id, title, kind, rank, created_at FROM nodes WHERE parent_id = ? ORDER BY rank, id", n.ID)
	if err != nil {
		debug.Log("sqlite Children(%s): %v", n.ID, err)
		return nil
	}
	return nodes
}

// Parent returns the parent of n, or false for roots.
func (p *SQLiteProvider) Parent(n *model.Node) (*model.Node, bool) {
	if n == nil || n.ParentID == "" {
		return nil, false
	}
	if cached, ok := p.byID[n.ParentID]; ok {
		return cached, true
	}
	nodes, err := p.queryNodes("SELECT id, parent_id, title, kind, rank, created_at FROM nodes WHERE id = ?", n.ParentID)
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}

// queryNodes runs a node query and maps rows through the identity cache.
func (p *SQLiteProvider) queryNodes(query string, args ...any) ([]*model.Node, error) {
	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Node
	for rows.Next() {
		var (
			id, title      string
			parentID, kind sql.NullString
			rank           sql.NullInt64
			createdAt      sql.NullString
		)
		if err := rows.Scan(&id, &parentID, &title, &kind, &rank, &createdAt); err != nil {
			return nil, err
		}
		node, ok := p.byID[id]
		if !ok {
			node = &model.Node{ID: id}
			p.byID[id] = node
		}
		node.Title = title
		if parentID.Valid {
			node.ParentID = parentID.String
		}
		if kind.Valid {
			node.Kind = model.Kind(kind.String)
		} else {
			node.Kind = model.KindItem
		}
		if rank.Valid {
			node.Rank = int(rank.Int64)
		}
		if createdAt.Valid {
			if ts, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
				node.CreatedAt = ts
			}
		}
		out = append(out, node)
	}
	return out, rows.Err()
}

// countSQLiteNodes counts rows for source validation without building a
// provider.
func countSQLiteNodes(path string) (int, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return 0, fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&n); err != nil {
		return 0, fmt.Errorf("not a nodes database: %w", err)
	}
	return n, nil
}

// InitSchema creates the nodes table in a fresh database. Used by tests and
// by tools that seed demo data.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS nodes (
			id         TEXT PRIMARY KEY,
			parent_id  TEXT,
			title      TEXT NOT NULL,
			kind       TEXT,
			rank       INTEGER DEFAULT 0,
			created_at TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
	`)
	return err
}

// InsertNodes writes nodes into db inside one transaction.
func InsertNodes(db *sql.DB, nodes []model.Node) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO nodes (id, parent_id, title, kind, rank, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, n := range nodes {
		var created any
		if !n.CreatedAt.IsZero() {
			created = n.CreatedAt.Format(time.RFC3339)
		}
		if _, err := stmt.Exec(n.ID, n.ParentID, n.Title, string(n.Kind), n.Rank, created); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
