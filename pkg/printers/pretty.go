package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/fedash/pkg/datafed"
	"tableflip.dev/fedash/pkg/session"
)

// PrettyPrint writes human oriented output.
type PrettyPrint struct {
	Out io.Writer
	// Markdown renders Markdown messages when set.
	Markdown bool
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " entry")
	default:
		_, _ = c.Fprintln(pp.out(), " entries")
	}
}

func kindColor(k session.Kind) *color.Color {
	switch k {
	case session.KindSuccess:
		return color.New(color.FgGreen, color.Bold)
	case session.KindWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// Result prints a record result.
func (pp *PrettyPrint) Result(r session.Result) {
	if r.Kind == "" {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprintln(pp.out(), "No output yet")
		return
	}
	_, _ = kindColor(r.Kind).Fprintf(pp.out(), "%s ", strings.ToUpper(string(r.Kind)))

	msg := r.Message
	if pp.Markdown && strings.Contains(msg, "```") {
		if rendered, err := RenderMarkdown(msg, 0); err == nil {
			_, _ = fmt.Fprintln(pp.out())
			_, _ = fmt.Fprint(pp.out(), rendered)
			return
		}
	}
	_, _ = fmt.Fprintln(pp.out(), msg)

	if f, ok := r.Payload.(datafed.Fields); ok && len(f.Keys) > 0 && !strings.Contains(msg, "```") {
		pp.Fields(f)
	}
}

// Fields prints a normalized record as aligned key/value rows.
func (pp *PrettyPrint) Fields(f datafed.Fields) {
	k := color.New(color.FgHiYellow, color.Faint)
	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true
	for _, key := range f.Keys {
		table.AddRow(k.Sprint(key), fmt.Sprint(f.Values[key]))
	}
	_, _ = fmt.Fprintln(pp.out(), table)
}

// Session prints who is logged in and what is selected.
func (pp *PrettyPrint) Session(s session.Session) {
	pp.Title("Session")
	table := uitable.New()
	table.AddRow("User:", s.CurrentUser)
	table.AddRow("Context:", s.CurrentContext)
	table.AddRow("Selected context:", none(s.SelectedContext))
	table.AddRow("Selected collection:", none(s.SelectedCollection))
	if s.Status != "" {
		table.AddRow("Status:", s.Status)
	}
	_, _ = fmt.Fprintln(pp.out(), table)
	pp.NewLine()
}

// List prints names with the selected one marked.
func (pp *PrettyPrint) List(title string, names []string, selected string) {
	pp.TitleWithCount(title, len(names))
	if len(names) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	sel := color.New(color.FgHiGreen, color.Bold)
	diag := color.New(color.FgRed)
	for _, n := range names {
		switch {
		case n == selected:
			_, _ = sel.Fprintf(pp.out(), "» %s\n", n)
		case strings.HasPrefix(n, "Error: "):
			_, _ = diag.Fprintf(pp.out(), "  %s\n", n)
		default:
			_, _ = fmt.Fprintf(pp.out(), "  %s\n", n)
		}
	}
	pp.NewLine()
}

// Projects prints a project table.
func (pp *PrettyPrint) Projects(projects []datafed.Project) {
	pp.TitleWithCount("Projects", len(projects))
	table := uitable.New()
	table.MaxColWidth = 60
	h := color.New(color.Bold)
	table.AddRow(h.Sprint("ID"), h.Sprint("TITLE"))
	for _, p := range projects {
		table.AddRow(p.ID, p.Title)
	}
	_, _ = fmt.Fprintln(pp.out(), table)
	pp.NewLine()
}

func none(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
