// Package ui implements the arbor terminal browser: a bubbletea program that
// consumes the treelist engine through its virtual-list contract (Count,
// ObjectAt, IndexOf) and renders only the rows inside the viewport window.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/arbor/pkg/config"
	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/treelist"
)

// FileChangedMsg is sent by the host (via Program.Send) when the watched
// data file changed on disk.
type FileChangedMsg struct{}

// sortField enumerates the sibling orderings the browser can cycle through.
type sortField int

const (
	sortRank sortField = iota
	sortTitle
	sortCreated
	numSortFields
)

func (f sortField) String() string {
	switch f {
	case sortTitle:
		return "title"
	case sortCreated:
		return "created"
	default:
		return "rank"
	}
}

func (f sortField) comparator() treelist.Comparator[*model.Node] {
	switch f {
	case sortTitle:
		return model.CompareByTitle
	case sortCreated:
		return model.CompareByCreated
	default:
		return model.CompareByRank
	}
}

// Model is the bubbletea model for the browser.
type Model struct {
	tree       *treelist.Tree[*model.Node]
	checks     *CheckStore
	propagator *treelist.CheckPropagator[*model.Node]
	provider   treelist.Provider[*model.Node]

	theme Theme
	cfg   config.Config

	width  int
	height int
	cursor int
	offset int

	sort        sortField
	filterInput textinput.Model
	filtering   bool
	filterQuery string

	status string

	// reload re-queries the data source for roots; wired by the host so R
	// and file-change events can rebuild the tree.
	reload func() ([]*model.Node, error)
}

// NewModel builds a browser over provider with the given roots.
func NewModel(provider treelist.Provider[*model.Node], roots []*model.Node, cfg config.Config, theme Theme) Model {
	tree := treelist.NewTree(provider)
	checks := NewCheckStore()
	propagator := treelist.NewCheckPropagator(tree, checks, func(changed []*model.Node) {
		debug.Log("checkbox propagation touched %d rows", len(changed))
	})

	ti := textinput.New()
	ti.Placeholder = "filter by title or id"
	ti.CharLimit = 128

	m := Model{
		tree:        tree,
		checks:      checks,
		propagator:  propagator,
		provider:    provider,
		theme:       theme,
		cfg:         cfg,
		filterInput: ti,
	}
	tree.SetRoots(roots)
	m.expandToLevel(cfg.UI.ExpandLevel)
	return m
}

// SetReload installs the root re-query callback.
func (m Model) SetReload(fn func() ([]*model.Node, error)) Model {
	m.reload = fn
	return m
}

// Tree exposes the underlying engine (tests, host wiring).
func (m Model) Tree() *treelist.Tree[*model.Node] { return m.tree }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// SetSize updates the available dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureCursorVisible()
}

// SelectedNode returns the node under the cursor, or nil.
func (m Model) SelectedNode() *model.Node {
	n, ok := m.tree.ObjectAt(m.cursor)
	if !ok {
		return nil
	}
	return n
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case FileChangedMsg:
		return m.reloadRoots("data file changed, reloaded"), nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilterInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// updateFilterInput routes keys to the filter prompt while it is focused.
func (m Model) updateFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		m.applyFilter(m.filterInput.Value())
		return m, nil
	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.applyFilter("")
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "g", "home":
		m.cursor = 0
		m.ensureCursorVisible()
	case "G", "end":
		m.cursor = m.tree.Count() - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.ensureCursorVisible()
	case "ctrl+d", "pgdown":
		m.moveCursor(m.bodyHeight() / 2)
	case "ctrl+u", "pgup":
		m.moveCursor(-m.bodyHeight() / 2)

	case "l", "right", "enter":
		m = m.expandSelected()
	case "h", "left":
		m = m.collapseSelected()
	case "E":
		m.tree.ExpandAll()
		m.clampCursor()
		m.status = "expanded all"
	case "C":
		m.tree.CollapseAll()
		m.clampCursor()
		m.status = "collapsed all"

	case " ", "x":
		m = m.toggleCheck()

	case "s":
		m.sort = (m.sort + 1) % numSortFields
		m.tree.SortWith(m.sort.comparator(), model.CompareByRank)
		m.clampCursor()
		m.status = fmt.Sprintf("sorted by %s", m.sort)

	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case "r":
		if n := m.SelectedNode(); n != nil {
			m.tree.RebuildChildren(n)
			m.clampCursor()
			m.status = fmt.Sprintf("refreshed children of %s", n.ID)
		}
	case "R":
		m = m.reloadRoots("reloaded")

	case "y":
		if n := m.SelectedNode(); n != nil {
			if err := clipboard.WriteAll(n.ID); err != nil {
				m.status = fmt.Sprintf("yank failed: %v", err)
			} else {
				m.status = fmt.Sprintf("yanked %s", n.ID)
			}
		}
	}
	return m, nil
}

// expandSelected expands the cursor node, or steps into its first child when
// it is already expanded.
func (m Model) expandSelected() Model {
	n := m.SelectedNode()
	if n == nil {
		return m
	}
	if m.tree.Expand(n) == treelist.NotFound && m.tree.IsExpanded(n) {
		if m.cursor+1 < m.tree.Count() {
			m.cursor++
			m.ensureCursorVisible()
		}
	}
	return m
}

// collapseSelected collapses the cursor node, or jumps to its parent when it
// is already collapsed or a leaf.
func (m Model) collapseSelected() Model {
	n := m.SelectedNode()
	if n == nil {
		return m
	}
	if m.tree.Collapse(n) != treelist.NotFound {
		m.clampCursor()
		return m
	}
	if parent, ok := m.provider.Parent(n); ok {
		if idx := m.tree.IndexOf(parent); idx != treelist.NotFound {
			m.cursor = idx
			m.ensureCursorVisible()
		}
	}
	return m
}

// toggleCheck flips the cursor node between checked and unchecked; an
// indeterminate or unset node becomes checked. Propagation cascades down and
// recomputes ancestors.
func (m Model) toggleCheck() Model {
	if !m.cfg.UI.ShowCheckboxes {
		return m
	}
	n := m.SelectedNode()
	if n == nil {
		return m
	}
	next := treelist.Checked
	if cur, ok := m.checks.State(n); ok && cur == treelist.Checked {
		next = treelist.Unchecked
	}
	m.propagator.SetState(n, next)
	return m
}

// applyFilter installs (or clears) the title/id substring filter.
func (m *Model) applyFilter(query string) {
	query = strings.TrimSpace(query)
	m.filterQuery = query
	if query == "" {
		m.tree.SetFilters(nil, nil)
		m.clampCursor()
		m.status = "filter cleared"
		return
	}
	q := strings.ToLower(query)
	m.tree.SetFilters(func(n *model.Node) bool {
		return strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.ID), q)
	}, nil)
	m.clampCursor()
	m.status = fmt.Sprintf("filter: %q (%d rows)", query, m.tree.Count())
}

// reloadRoots re-queries the data source and rebuilds the tree, preserving
// the cursor by node identity where possible.
func (m Model) reloadRoots(status string) Model {
	if m.reload == nil {
		return m
	}
	selected := m.SelectedNode()
	roots, err := m.reload()
	if err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return m
	}
	m.tree.SetRoots(roots)
	if selected != nil {
		if idx := m.tree.Reveal(selected); idx != treelist.NotFound {
			m.cursor = idx
		}
	}
	m.clampCursor()
	m.status = status
	return m
}

// expandToLevel expands every branch shallower than level.
func (m *Model) expandToLevel(level int) {
	if level <= 0 {
		return
	}
	var expand func(n *model.Node, depth int)
	expand = func(n *model.Node, depth int) {
		if depth >= level {
			return
		}
		m.tree.Expand(n)
		if children, ok := m.tree.CachedChildren(n); ok {
			for _, child := range children {
				expand(child, depth+1)
			}
		}
	}
	for _, root := range m.tree.Roots() {
		expand(root, 0)
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if max := m.tree.Count() - 1; m.cursor > max {
		m.cursor = max
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

// bodyHeight returns the number of rows available for tree content.
func (m Model) bodyHeight() int {
	h := m.height - 2 // header and footer
	if h < 1 {
		h = 1
	}
	return h
}

// ensureCursorVisible scrolls the window so the cursor row is inside it.
func (m *Model) ensureCursorVisible() {
	body := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+body {
		m.offset = m.cursor - body + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// visibleRange returns the half-open row range to render.
func (m Model) visibleRange() (start, end int) {
	count := m.tree.Count()
	if count == 0 {
		return 0, 0
	}
	start = m.offset
	if start < 0 {
		start = 0
	}
	end = start + m.bodyHeight()
	if end > count {
		end = count
		start = end - m.bodyHeight()
		if start < 0 {
			start = 0
		}
	}
	return start, end
}
