package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vanderheijden86/arbor/internal/datasource"
	"github.com/vanderheijden86/arbor/pkg/config"
	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/treelist"
	"github.com/vanderheijden86/arbor/pkg/ui"
	"github.com/vanderheijden86/arbor/pkg/version"
	"github.com/vanderheijden86/arbor/pkg/watcher"
)

// source bundles whichever provider backs the session with the operations
// main needs uniformly.
type source struct {
	provider    treelist.Provider[*model.Node]
	path        string
	roots       func() ([]*model.Node, error)
	invalidate  func()
	close       func() error
	description string
}

func main() {
	dbPath := flag.String("db", "", "Browse a SQLite nodes database")
	jsonlPath := flag.String("data", "", "Browse a JSONL nodes file")
	dir := flag.String("dir", ".", "Directory to discover a data source in (when --db/--data are unset)")
	watch := flag.Bool("watch", true, "Reload when the data file changes")
	expandLevel := flag.Int("expand-level", -1, "Initial depth to expand (-1 = from config)")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	showVersion := flag.Bool("version", false, "Show version")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Println("Usage: arbor [options]")
		fmt.Println("\nA terminal browser for hierarchical node data.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *showVersion {
		fmt.Printf("arbor %s\n", version.Version)
		os.Exit(0)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "arbor is a terminal application; stdout is not a terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		// Invalid config falls back to defaults; say so and continue.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if *expandLevel >= 0 {
		cfg.UI.ExpandLevel = *expandLevel
	}

	src, err := openSource(*dbPath, *jsonlPath, *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer src.close()
	debug.Log("using %s", src.description)

	roots, err := src.roots()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading roots: %v\n", err)
		os.Exit(1)
	}

	theme := ui.DefaultTheme(lipgloss.DefaultRenderer())
	m := ui.NewModel(src.provider, roots, cfg, theme)
	m = m.SetReload(func() ([]*model.Node, error) {
		src.invalidate()
		return src.roots()
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	if *watch && cfg.Watch.Enabled {
		w := watcher.New(src.path,
			watcher.WithDebounce(cfg.Watch.Debounce),
			watcher.WithOnChange(func() { p.Send(ui.FileChangedMsg{}) }),
			watcher.WithOnError(func(err error) { debug.Log("watch error: %v", err) }),
		)
		if err := w.Start(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot watch %s: %v\n", src.path, err)
		} else {
			defer w.Stop()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openSource resolves the data source: explicit flags first, discovery in
// dir otherwise.
func openSource(dbPath, jsonlPath, dir string) (*source, error) {
	switch {
	case dbPath != "" && jsonlPath != "":
		return nil, fmt.Errorf("--db and --data are mutually exclusive")
	case dbPath != "":
		return openSQLiteSource(dbPath)
	case jsonlPath != "":
		return openJSONLSource(jsonlPath)
	}

	candidates, err := datasource.Discover(dir)
	if err != nil {
		return nil, err
	}
	best, err := datasource.Select(context.Background(), candidates)
	if err != nil {
		return nil, fmt.Errorf("%w (looked in %s)", err, dir)
	}
	if best.Type == datasource.SourceTypeSQLite {
		return openSQLiteSource(best.Path)
	}
	return openJSONLSource(best.Path)
}

func openSQLiteSource(path string) (*source, error) {
	p, err := datasource.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return &source{
		provider:    p,
		path:        path,
		roots:       p.Roots,
		invalidate:  p.Invalidate,
		close:       p.Close,
		description: fmt.Sprintf("sqlite source %s", path),
	}, nil
}

func openJSONLSource(path string) (*source, error) {
	p, err := datasource.OpenJSONL(path)
	if err != nil {
		return nil, err
	}
	return &source{
		provider: p,
		path:     path,
		roots: func() ([]*model.Node, error) {
			return p.Roots(), nil
		},
		invalidate: func() {
			if err := p.Reload(); err != nil {
				debug.Log("reload failed: %v", err)
			}
		},
		close:       func() error { return nil },
		description: fmt.Sprintf("jsonl source %s", path),
	}, nil
}
