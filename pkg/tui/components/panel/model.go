// Package panel defines the framed picker panels of the dashboard sidebar.
package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/fedash/pkg/tui/theme"
)

// DiagnosticPrefix marks list entries that report a failed listing.
const DiagnosticPrefix = "Error: "

// Model renders a titled list with a cursor and a selected entry.
type Model struct {
	title    string
	items    []string
	selected string
	cursor   int
	focused  bool
	empty    string
	th       theme.PanelTheme
}

// New returns an empty panel.
func New(title, empty string, th theme.PanelTheme) Model {
	return Model{title: title, empty: empty, th: th}
}

// SetItems replaces the entries and marks selected. The cursor follows the
// selection when there is one.
func (m *Model) SetItems(items []string, selected string) {
	m.items = append([]string(nil), items...)
	m.selected = selected
	m.cursor = 0
	for i, it := range m.items {
		if it == selected {
			m.cursor = i
			break
		}
	}
}

// Items returns the entries.
func (m Model) Items() []string { return m.items }

// Selected returns the selected entry.
func (m Model) Selected() string { return m.selected }

// Focus marks the panel focused.
func (m *Model) Focus() { m.focused = true }

// Blur marks the panel unfocused.
func (m *Model) Blur() { m.focused = false }

// Focused reports whether the panel has focus.
func (m Model) Focused() bool { return m.focused }

// Up moves the cursor up.
func (m *Model) Up() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// Down moves the cursor down.
func (m *Model) Down() {
	if m.cursor < len(m.items)-1 {
		m.cursor++
	}
}

// Current returns the entry under the cursor. Diagnostic entries are not
// selectable and report false.
func (m Model) Current() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return "", false
	}
	it := m.items[m.cursor]
	if strings.HasPrefix(it, DiagnosticPrefix) {
		return "", false
	}
	return it, true
}

// View renders the panel at the given outer width.
func (m Model) View(width int) string {
	frame := m.th.Frame
	if m.focused {
		frame = m.th.FocusedFrame
	}
	inner := max(width-frame.GetHorizontalFrameSize(), 1)

	lines := []string{m.th.Title.Render(m.title)}
	if len(m.items) == 0 {
		lines = append(lines, m.th.Label.Render(m.empty))
	}
	for i, it := range m.items {
		marker := "  "
		style := m.th.Item
		switch {
		case strings.HasPrefix(it, DiagnosticPrefix):
			style = m.th.Diagnostic
		case it == m.selected:
			marker = "● "
			style = m.th.Selected
		}
		line := truncate(marker+it, inner)
		if m.focused && i == m.cursor {
			style = style.Inherit(m.th.Cursor)
		}
		lines = append(lines, style.Render(line))
	}
	return frame.Width(max(width-frame.GetHorizontalBorderSize(), 1)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
