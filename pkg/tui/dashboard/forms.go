package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/textarea"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

type tab int

const (
	tabCreate tab = iota
	tabRead
	tabUpdate
	tabDelete
	tabTransfer
	tabProjects
	tabCount
)

func (t tab) String() string {
	switch t {
	case tabCreate:
		return "Create"
	case tabRead:
		return "Read"
	case tabUpdate:
		return "Update"
	case tabDelete:
		return "Delete"
	case tabTransfer:
		return "Transfer"
	case tabProjects:
		return "Projects"
	}
	return "?"
}

const areaHeight = 5

// field is one labelled input. Metadata fields are multi-line.
type field struct {
	label     string
	multiline bool
	input     textinput.Model
	area      textarea.Model
}

func newInput(label, placeholder string) *field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	return &field{label: label, input: ti}
}

func newArea(label, placeholder string) *field {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(areaHeight)
	return &field{label: label, multiline: true, area: ta}
}

func (f *field) Value() string {
	if f.multiline {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *field) SetValue(v string) {
	if f.multiline {
		f.area.SetValue(v)
		return
	}
	f.input.SetValue(v)
}

func (f *field) Focus() tea.Cmd {
	if f.multiline {
		return f.area.Focus()
	}
	return f.input.Focus()
}

func (f *field) Blur() {
	if f.multiline {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

func (f *field) SetWidth(w int) {
	if f.multiline {
		f.area.SetWidth(w)
		return
	}
	f.input.SetWidth(max(w-3, 1))
}

func (f *field) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.multiline {
		f.area, cmd = f.area.Update(msg)
	} else {
		f.input, cmd = f.input.Update(msg)
	}
	return cmd
}

// Height is the number of lines the field occupies, label included.
func (f *field) Height() int {
	if f.multiline {
		return areaHeight + 1
	}
	return 2
}

func (f *field) View(label lipgloss.Style) string {
	body := f.input.View()
	if f.multiline {
		body = f.area.View()
	}
	return label.Render(f.label) + "\n" + body
}

// form is the set of inputs of one tab.
type form struct {
	fields []*field
}

func (f *form) values() []string {
	out := make([]string, len(f.fields))
	for i, fl := range f.fields {
		out[i] = fl.Value()
	}
	return out
}

func (f *form) height() int {
	h := 0
	for _, fl := range f.fields {
		h += fl.Height()
	}
	return h
}

func (f *form) view(label lipgloss.Style) string {
	parts := make([]string, 0, len(f.fields))
	for _, fl := range f.fields {
		parts = append(parts, fl.View(label))
	}
	return strings.Join(parts, "\n")
}

// Indexes of the fields of each tab.
const (
	createTitle = iota
	createMetadata
	createFile
	createParent
)

const (
	updateID = iota
	updateMetadata
)

const (
	transferSource = iota
	transferDest
)

func newForms() [tabCount]*form {
	var forms [tabCount]*form
	forms[tabCreate] = &form{fields: []*field{
		newInput("Title", "record title"),
		newArea("Metadata", `{"key": "value"}`),
		newInput("Metadata file", "path to a JSON file, enter to load"),
		newInput("Parent collection", "defaults to the selected collection"),
	}}
	forms[tabRead] = &form{fields: []*field{
		newInput("Record ID", "d/123456"),
	}}
	forms[tabUpdate] = &form{fields: []*field{
		newInput("Record ID", "d/123456"),
		newArea("Metadata", `{"key": "value"}`),
	}}
	forms[tabDelete] = &form{fields: []*field{
		newInput("Record ID", "d/123456"),
	}}
	forms[tabTransfer] = &form{fields: []*field{
		newInput("Source record ID", "d/123456"),
		newInput("Destination collection", "c/123456"),
	}}
	forms[tabProjects] = &form{}
	return forms
}

// loginForm is the modal credential prompt.
type loginForm struct {
	username textinput.Model
	password textinput.Model
	focus    int
}

func newLoginForm() loginForm {
	u := textinput.New()
	u.Placeholder = "username"
	u.Prompt = "User     › "
	u.Focus()

	p := textinput.New()
	p.Placeholder = "password"
	p.Prompt = "Password › "
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'

	return loginForm{username: u, password: p}
}

func (l *loginForm) next() tea.Cmd {
	l.focus = (l.focus + 1) % 2
	if l.focus == 0 {
		l.password.Blur()
		return l.username.Focus()
	}
	l.username.Blur()
	return l.password.Focus()
}

func (l *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if l.focus == 0 {
		l.username, cmd = l.username.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return cmd
}

func (l *loginForm) clear() {
	l.username.SetValue("")
	l.password.SetValue("")
	l.focus = 1
	l.next()
}
