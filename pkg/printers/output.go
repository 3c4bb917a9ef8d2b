package printers

import (
	"io"

	"github.com/fatih/color"

	"tableflip.dev/fedash/pkg/datafed"
	"tableflip.dev/fedash/pkg/session"
)

// Output picks between pretty and encoded output for runners.
type Output struct {
	Out      io.Writer
	Format   Format
	Markdown bool
}

func (o Output) writer() io.Writer {
	if o.Out == nil {
		return color.Output
	}
	return o.Out
}

func (o Output) pretty() *PrettyPrint {
	return &PrettyPrint{Out: o.writer(), Markdown: o.Markdown}
}

func (o Output) encoded() bool {
	return o.Format == FormatJSON || o.Format == FormatYAML
}

// Result writes a record result.
func (o Output) Result(r session.Result) error {
	if o.encoded() {
		return Encode(o.writer(), o.Format, r)
	}
	o.pretty().Result(r)
	return nil
}

// Session writes a session summary.
func (o Output) Session(s session.Session) error {
	if o.encoded() {
		return Encode(o.writer(), o.Format, s)
	}
	o.pretty().Session(s)
	return nil
}

// List writes a list of names with the selected one marked.
func (o Output) List(title string, names []string, selected string) error {
	if o.encoded() {
		return Encode(o.writer(), o.Format, map[string]any{
			"items":    names,
			"selected": selected,
		})
	}
	o.pretty().List(title, names, selected)
	return nil
}

// Projects writes a project listing result.
func (o Output) Projects(r session.Result) error {
	if o.encoded() {
		return Encode(o.writer(), o.Format, r.Payload)
	}
	if projects, ok := r.Payload.([]datafed.Project); ok {
		o.pretty().Projects(projects)
		return nil
	}
	o.pretty().Result(r)
	return nil
}
