package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header HeaderTheme
	Footer FooterTheme
	Panel  PanelTheme
	Tabs   TabsTheme
	Result ResultTheme
	Modal  ModalTheme
}

// HeaderTheme styles the title bar.
type HeaderTheme struct {
	Title  lipgloss.Style
	Detail lipgloss.Style
	Status lipgloss.Style
}

// FooterTheme groups styles used by the bottom help line.
type FooterTheme struct {
	Help   lipgloss.Style
	Key    lipgloss.Style
	Status lipgloss.Style
	Busy   lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame        lipgloss.Style
	FocusedFrame lipgloss.Style
	Title        lipgloss.Style
	Body         lipgloss.Style
	Item         lipgloss.Style
	Cursor       lipgloss.Style
	Selected     lipgloss.Style
	Diagnostic   lipgloss.Style
	Label        lipgloss.Style
}

// TabsTheme styles the operation tabs.
type TabsTheme struct {
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Gap      lipgloss.Style
}

// ResultTheme colors the result pane by outcome.
type ResultTheme struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Empty   lipgloss.Style
}

// ModalTheme styles centered modal overlays (e.g., login).
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
	Error lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	tab := lipgloss.NewStyle().Padding(0, 2)

	return Theme{
		Header: HeaderTheme{
			Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
			Detail: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Key:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Busy:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		},
		Panel: PanelTheme{
			Frame:        frame,
			FocusedFrame: frame.BorderForeground(lipgloss.Color("212")),
			Title:        lipgloss.NewStyle().Bold(true),
			Body:         lipgloss.NewStyle(),
			Item:         lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
			Cursor:       lipgloss.NewStyle().Reverse(true),
			Selected:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
			Diagnostic:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			Label:        lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		},
		Tabs: TabsTheme{
			Active:   tab.Bold(true).Foreground(lipgloss.Color("212")).Underline(true),
			Inactive: tab.Foreground(lipgloss.Color("244")),
			Gap:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		},
		Result: ResultTheme{
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			Empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("212")).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
			Error: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
	}
}
