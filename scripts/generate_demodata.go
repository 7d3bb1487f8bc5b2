//go:build ignore

// generate_demodata.go creates demo hierarchies for trying out the browser
// and for benchmarking.
// Usage: go run scripts/generate_demodata.go [dir]
//
// Creates in dir (default testdata/demo):
//
//	small.jsonl   (~100 nodes, 3 levels)
//	medium.jsonl  (~1000 nodes, 4 levels)
//	large.jsonl   (~5000 nodes, 5 levels)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/arbor/pkg/model"
)

type dataset struct {
	name    string
	roots   int
	perNode int
	depth   int
}

var datasets = []dataset{
	{"small", 4, 4, 2},
	{"medium", 10, 4, 3},
	{"large", 12, 4, 4},
}

func main() {
	dir := filepath.Join("testdata", "demo")
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, ds := range datasets {
		path := filepath.Join(dir, ds.name+".jsonl")
		nodes := generate(ds)
		if err := writeJSONL(path, nodes); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d nodes)\n", path, len(nodes))
	}
}

func generate(ds dataset) []model.Node {
	var nodes []model.Node
	counter := 0
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var grow func(parentID string, level int)
	grow = func(parentID string, level int) {
		if level > ds.depth {
			return
		}
		for i := 0; i < ds.perNode; i++ {
			counter++
			id := fmt.Sprintf("n%05d", counter)
			kind := model.KindItem
			if level < ds.depth {
				kind = model.KindGroup
			}
			nodes = append(nodes, model.Node{
				ID:        id,
				ParentID:  parentID,
				Title:     fmt.Sprintf("Node %d (level %d)", counter, level),
				Kind:      kind,
				Rank:      i,
				CreatedAt: base.Add(time.Duration(counter) * time.Minute),
			})
			grow(id, level+1)
		}
	}

	for i := 0; i < ds.roots; i++ {
		counter++
		id := fmt.Sprintf("r%03d", i)
		nodes = append(nodes, model.Node{
			ID:        id,
			Title:     fmt.Sprintf("Root %d", i),
			Kind:      model.KindGroup,
			Rank:      i,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		grow(id, 1)
	}
	return nodes
}

func writeJSONL(path string, nodes []model.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, n := range nodes {
		if err := enc.Encode(n); err != nil {
			return err
		}
	}
	return nil
}
