package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/fedash/pkg/datafed"
	"tableflip.dev/fedash/pkg/session"
)

const (
	sidebarWidth = 30
	minMainWidth = 30
	headerHeight = 3
	footerHeight = 1
	tabsHeight   = 2
)

func (m *Model) mainWidth() int {
	return max(m.width-sidebarWidth-1, minMainWidth)
}

// layout sizes the form inputs and the result pane to the window.
func (m *Model) layout() {
	w := m.mainWidth()
	for _, f := range m.forms {
		for _, fl := range f.fields {
			fl.SetWidth(w - 2)
		}
	}
	m.login.username.SetWidth(32)
	m.login.password.SetWidth(32)

	frame := m.th.Panel.Frame
	used := headerHeight + footerHeight + tabsHeight + m.forms[m.tab].height() + frame.GetVerticalFrameSize() + 1
	m.outputWidth = max(w-frame.GetHorizontalFrameSize(), 10)
	m.output.SetWidth(m.outputWidth)
	m.output.SetHeight(max(m.height-used, 3))
	if m.help != nil {
		m.help.SetSize(m.width-4, m.height-2)
	}
	m.activity.SetSize(m.width-4, m.height-2)
	m.refreshOutput()
}

// refreshOutput renders the pane for the current tab: the project listing on
// the projects tab, the last record result everywhere else.
func (m *Model) refreshOutput() {
	r := m.result
	if m.tab == tabProjects {
		r = m.projects
	}
	m.output.SetContent(m.renderResult(r, m.outputWidth))
	m.output.GotoTop()
}

func (m *Model) renderResult(r session.Result, width int) string {
	th := m.th.Result
	if r.Kind == "" {
		if m.tab == tabProjects {
			return th.Empty.Render("Press enter to list projects")
		}
		return th.Empty.Render("No results yet")
	}

	style := th.Success
	switch r.Kind {
	case session.KindWarning:
		style = th.Warning
	case session.KindError:
		style = th.Error
	}

	if projects, ok := r.Payload.([]datafed.Project); ok {
		lines := []string{style.Render(r.Message), ""}
		for _, p := range projects {
			line := p.ID
			if p.Title != "" {
				line += "  " + p.Title
			}
			lines = append(lines, wordwrap.String(line, width))
		}
		return strings.Join(lines, "\n")
	}

	if r.OK() && strings.Contains(r.Message, "```") {
		if out, err := renderMarkdown(r.Message, width); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return style.Render(wordwrap.String(r.Message, width))
}

// renderMarkdown uses a fixed style; probing the terminal background while
// the program owns stdin garbles input.
func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width, 10)),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.showHelp && m.help != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View())
	}
	if m.showActivity {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.activity.View())
	}
	if m.loginVisible() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.loginView())
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), " ", m.mainView())
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.footerView())
}

func (m *Model) headerView() string {
	th := m.th.Header
	scope := m.sess.SelectedContext
	if scope == "" {
		scope = m.sess.CurrentContext
	}
	detail := fmt.Sprintf("User: %s   Context: %s", m.sess.CurrentUser, scope)
	if m.sess.SelectedCollection != "" {
		detail += "   Collection: " + m.sess.SelectedCollection
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		th.Title.Render("DataFed Dashboard"),
		th.Detail.Render(detail),
		th.Status.Render(m.sess.Status),
	)
}

func (m *Model) sidebarView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.contexts.View(sidebarWidth),
		m.collections.View(sidebarWidth),
	)
}

func (m *Model) tabsView() string {
	th := m.th.Tabs
	parts := make([]string, 0, tabCount)
	for t := tab(0); t < tabCount; t++ {
		if t == m.tab {
			parts = append(parts, th.Active.Render(t.String()))
		} else {
			parts = append(parts, th.Inactive.Render(t.String()))
		}
	}
	return strings.Join(parts, th.Gap.Render("│")) + "\n"
}

func (m *Model) mainView() string {
	w := m.mainWidth()
	sections := []string{m.tabsView()}
	if f := m.forms[m.tab]; len(f.fields) > 0 {
		sections = append(sections, f.view(m.th.Panel.Label))
	}
	frame := m.th.Panel.Frame
	sections = append(sections, frame.Width(max(w-frame.GetHorizontalBorderSize(), 1)).Render(m.output.View()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) footerView() string {
	th := m.th.Footer
	if m.busy {
		return th.Busy.Render(fmt.Sprintf("%s %s…", m.spin.View(), m.busyOp))
	}
	if m.notice != "" {
		return th.Status.Render(m.notice)
	}
	keys := []struct{ key, desc string }{
		{"tab", "focus"},
		{"ctrl+n/p", "tabs"},
		{"ctrl+s", "submit"},
		{"ctrl+l", "login/logout"},
		{"f1", "help"},
		{"f2", "activity"},
		{"ctrl+c", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, th.Key.Render(k.key)+" "+th.Help.Render(k.desc))
	}
	return strings.Join(parts, th.Help.Render(" • "))
}

func (m *Model) loginView() string {
	th := m.th.Modal
	lines := []string{
		th.Title.Render("Log in to DataFed"),
		"",
		m.login.username.View(),
		m.login.password.View(),
	}
	if m.busy {
		lines = append(lines, "", m.spin.View()+" Logging in…")
	} else if s := m.sess.Status; s != "" {
		lines = append(lines, "", th.Error.Render(wordwrap.String(s, 48)))
	}
	lines = append(lines, "", m.th.Footer.Help.Render("enter to submit • esc to close"))
	return th.Frame.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
