// Package eventviewer renders the dashboard's activity log: one line per
// controller event, newest first.
package eventviewer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/fedash/pkg/session"
)

// Level indicates the severity of a logged event.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Entry is one line of the log.
type Entry struct {
	Timestamp time.Time
	Source    string
	Summary   string
	Level     Level
}

// FromEvent turns a controller event into an entry.
func FromEvent(ev session.Event, now time.Time) Entry {
	e := Entry{Timestamp: now, Source: ev.Type.String()}
	switch ev.Type {
	case session.EventResult, session.EventProjects:
		e.Summary = ev.Result.Message
		switch ev.Result.Kind {
		case session.KindWarning:
			e.Level = LevelWarn
		case session.KindError:
			e.Level = LevelError
		}
	case session.EventForms:
		e.Summary = "form updated"
	default:
		e.Summary = ev.Session.Status
		if e.Summary == "" {
			e.Summary = fmt.Sprintf("user %s, context %s", ev.Session.CurrentUser, ev.Session.SelectedContext)
		}
	}
	// Record dumps span several lines; the log keeps the first.
	if i := strings.IndexByte(e.Summary, '\n'); i >= 0 {
		e.Summary = strings.TrimSpace(e.Summary[:i]) + " …"
	}
	return e
}

// Styles controls the log's presentation.
type Styles struct {
	Frame     lipgloss.Style
	Header    lipgloss.Style
	Info      lipgloss.Style
	Warn      lipgloss.Style
	Error     lipgloss.Style
	Timestamp lipgloss.Style
	Source    lipgloss.Style
}

// DefaultStyles returns the stock styling.
func DefaultStyles() Styles {
	return Styles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("248")),
		Info:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Warn:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB347")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Source:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Model is a capped, scrollable event log.
type Model struct {
	viewport   viewport.Model
	entries    []Entry
	maxEntries int
	width      int
	height     int
	styles     Styles
}

// New returns an empty log holding at most maxEntries lines.
func New(maxEntries int) *Model {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	m := &Model{
		viewport:   viewport.New(viewport.WithWidth(1), viewport.WithHeight(1)),
		maxEntries: maxEntries,
		styles:     DefaultStyles(),
	}
	m.refresh()
	return m
}

// Update scrolls the log.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// SetSize resizes the log including its frame.
func (m *Model) SetSize(width, height int) {
	width, height = max(width, 10), max(height, 4)
	if m.width == width && m.height == height {
		return
	}
	m.width, m.height = width, height
	m.viewport.SetWidth(max(1, width-m.styles.Frame.GetHorizontalFrameSize()))
	m.viewport.SetHeight(max(1, height-m.styles.Frame.GetVerticalFrameSize()-1))
	m.refresh()
}

// View renders the framed log.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	body := lipgloss.JoinVertical(lipgloss.Left, m.styles.Header.Render("Activity"), m.viewport.View())
	return m.styles.Frame.Width(m.width - m.styles.Frame.GetHorizontalBorderSize()).Render(body)
}

// Append inserts e at the top of the log.
func (m *Model) Append(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	m.entries = append([]Entry{e}, m.entries...)
	if len(m.entries) > m.maxEntries {
		m.entries = m.entries[:m.maxEntries]
	}
	m.refresh()
	m.viewport.GotoTop()
}

// Entries returns the logged entries, newest first.
func (m *Model) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Clear drops all entries.
func (m *Model) Clear() {
	m.entries = nil
	m.refresh()
}

func (m *Model) refresh() {
	if len(m.entries) == 0 {
		m.viewport.SetContent(m.styles.Timestamp.Render("No events yet"))
		return
	}
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, m.render(e))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) render(e Entry) string {
	ts := m.styles.Timestamp.Render(e.Timestamp.Format("15:04:05"))
	src := m.styles.Source.Render(fmt.Sprintf("[%s]", e.Source))
	msg := e.Summary
	switch e.Level {
	case LevelWarn:
		msg = m.styles.Warn.Render(msg)
	case LevelError:
		msg = m.styles.Error.Render(msg)
	default:
		msg = m.styles.Info.Render(msg)
	}
	return fmt.Sprintf("%s %s %s", ts, src, msg)
}
