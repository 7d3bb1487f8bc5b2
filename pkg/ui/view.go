package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/treelist"
)

// View implements tea.Model with windowed rendering: only the rows inside
// the viewport are formatted, so output cost is O(viewport), not O(tree).
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	if m.tree.Count() == 0 {
		sb.WriteString(m.theme.dimStyle().Render("  no rows — press / to change the filter, R to reload"))
		sb.WriteString("\n")
	} else {
		start, end := m.visibleRange()
		for i := start; i < end; i++ {
			n, ok := m.tree.ObjectAt(i)
			if !ok {
				continue
			}
			sb.WriteString(m.renderRow(n, i == m.cursor))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(m.renderFooter())
	return sb.String()
}

// renderHeader shows the row count, sort order and active filter.
func (m Model) renderHeader() string {
	title := m.theme.headerStyle().Render("arbor")
	info := fmt.Sprintf("%d rows · sort:%s", m.tree.Count(), m.sort)
	if m.filterQuery != "" {
		info += fmt.Sprintf(" · filter:%q", m.filterQuery)
	}
	return title + "  " + m.theme.dimStyle().Render(info)
}

// renderFooter shows the filter prompt while typing, otherwise the status
// line or key hints.
func (m Model) renderFooter() string {
	if m.filtering {
		return "/" + m.filterInput.View()
	}
	if m.status != "" {
		return m.theme.dimStyle().Render(m.status)
	}
	return m.theme.dimStyle().Render("j/k move · l/h expand/collapse · E/C all · space check · s sort · / filter · y yank · q quit")
}

// renderRow formats one visible node: connector prefix, expand indicator,
// checkbox, title.
func (m Model) renderRow(n *model.Node, selected bool) string {
	br := m.tree.Branch(n)
	line := m.treePrefix(br) + m.expandIndicator(br) + m.checkbox(n) + n.Title

	width := m.width
	if width <= 0 {
		width = 80
	}
	line = truncate(line, width)
	if selected {
		return m.theme.selectedStyle().Render(padRight(line, width))
	}
	return m.theme.rowStyle().Render(line)
}

// treePrefix draws the connector lines leading to a row. Ancestors that were
// the last child at their level contribute open space; the node itself gets
// an elbow or a tee depending on its own last-child flag. The flags come
// from the engine's most recent flatten, after filtering and sorting.
func (m Model) treePrefix(br *treelist.Branch[*model.Node]) string {
	if br == nil {
		return ""
	}
	var parts []string
	for a := br.Parent(); a != nil && a.Level() >= 1; a = a.Parent() {
		if a.IsLastChild() {
			parts = append(parts, "   ")
		} else {
			parts = append(parts, "│  ")
		}
	}
	// The walk collected innermost-first.
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString(parts[i])
	}
	if br.Level() > 0 {
		if br.IsLastChild() {
			sb.WriteString("└─ ")
		} else {
			sb.WriteString("├─ ")
		}
	}
	return sb.String()
}

// expandIndicator shows whether a row can be opened.
func (m Model) expandIndicator(br *treelist.Branch[*model.Node]) string {
	if br == nil || !br.CanExpand() {
		return "  "
	}
	if br.IsExpanded() {
		return "▼ "
	}
	return "▶ "
}

// checkbox renders the tri-state glyph, or nothing when checkboxes are off.
func (m Model) checkbox(n *model.Node) string {
	if !m.cfg.UI.ShowCheckboxes {
		return ""
	}
	glyph := "[ ] "
	if st, ok := m.checks.State(n); ok {
		switch st {
		case treelist.Checked:
			glyph = "[x] "
		case treelist.Indeterminate:
			glyph = "[~] "
		}
	}
	return m.theme.checkStyle().Render(glyph)
}
