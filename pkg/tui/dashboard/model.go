// Package dashboard is the Bubble Tea front end of fedash: a login panel,
// context and collection pickers, one tab per record operation and a
// rendered result pane.
//
// The controller is only touched from Update, and remote operations run as
// commands one at a time. While an operation is in flight the model works
// from the last snapshot it received.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textinput"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/fedash/pkg/session"
	"tableflip.dev/fedash/pkg/tui/components/eventviewer"
	"tableflip.dev/fedash/pkg/tui/components/help"
	"tableflip.dev/fedash/pkg/tui/components/panel"
	"tableflip.dev/fedash/pkg/tui/theme"
	"tableflip.dev/fedash/pkg/workflow"
)

const noticeBusy = "Another operation is in progress"

// Focus stops. Stops from focusFields on index the current tab's fields.
const (
	focusContexts = iota
	focusCollections
	focusFields
)

type (
	actionDoneMsg struct {
		op       string
		sess     session.Session
		result   session.Result
		projects session.Result
		err      error
	}
	hubEventMsg     session.Event
	hubClosedMsg    struct{}
	watchStartedMsg struct {
		path string
		ch   <-chan workflow.MetadataChange
	}
	metadataChangedMsg struct {
		change workflow.MetadataChange
		ch     <-chan workflow.MetadataChange
	}
	watchErrMsg struct{ err error }
)

// Model is the dashboard.
type Model struct {
	c   *workflow.Controller
	ctx context.Context
	log *slog.Logger
	th  theme.Theme

	width, height int

	sess     session.Session
	result   session.Result
	projects session.Result

	contexts    panel.Model
	collections panel.Model
	forms       [tabCount]*form
	tab         tab
	focus       int
	login       loginForm

	output      viewport.Model
	outputWidth int
	spin        spinner.Model
	help        *help.Model
	showHelp    bool

	activity     *eventviewer.Model
	showActivity bool

	busy   bool
	busyOp string
	notice string

	events        <-chan session.Event
	watching      string
	stopWatch     context.CancelFunc
	pendingReload string
}

// Option configures the dashboard.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithTheme replaces the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) { m.th = th }
}

// New builds a dashboard over c. Events are received until ctx is done. When
// nobody is logged in the login panel is raised.
func New(ctx context.Context, c *workflow.Controller, opts ...Option) *Model {
	th := theme.Default()
	m := &Model{
		c:        c,
		ctx:      ctx,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		th:       th,
		width:    100,
		height:   32,
		forms:    newForms(),
		login:    newLoginForm(),
		output:   viewport.New(viewport.WithWidth(60), viewport.WithHeight(10)),
		activity: eventviewer.New(200),
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, o := range opts {
		o(m)
	}
	m.contexts = panel.New("Contexts", "No contexts", m.th.Panel)
	m.collections = panel.New("Collections", "No collections", m.th.Panel)
	m.events = c.Hub().Subscribe(ctx)

	if !c.Session().Authenticated {
		c.RequestLogin()
	}
	m.applySession(c.Session())
	m.result = c.Result()
	m.projects = c.Projects()
	m.focus = focusFields
	m.focusCurrent()
	m.layout()
	return m
}

// Init starts listening for controller events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

func waitForEvent(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return hubClosedMsg{}
		}
		return hubEventMsg(ev)
	}
}

func waitForChange(ch <-chan workflow.MetadataChange) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return metadataChangedMsg{change: change, ch: ch}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case actionDoneMsg:
		m.finish(msg)
		return m, nil

	case hubEventMsg:
		m.applyEvent(session.Event(msg))
		return m, waitForEvent(m.events)

	case hubClosedMsg:
		return m, nil

	case watchStartedMsg:
		m.watching = msg.path
		return m, waitForChange(msg.ch)

	case metadataChangedMsg:
		if m.busy {
			m.pendingReload = msg.change.Path
		} else {
			m.loadMetadata(msg.change.Path)
		}
		return m, waitForChange(msg.ch)

	case watchErrMsg:
		m.notice = msg.err.Error()
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	if m.showHelp {
		return m, m.help.Update(msg)
	}
	if m.showActivity {
		return m, m.activity.Update(msg)
	}
	var cmds []tea.Cmd
	if m.loginVisible() {
		cmds = append(cmds, m.login.update(msg))
	} else if f := m.currentField(); f != nil {
		cmds = append(cmds, f.Update(msg))
	}
	var cmd tea.Cmd
	m.output, cmd = m.output.Update(msg)
	return m, tea.Batch(append(cmds, cmd)...)
}

func (m *Model) loginVisible() bool {
	return m.sess.LoginRequested && !m.sess.Authenticated
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		m.close()
		return tea.Quit
	}

	if m.showHelp {
		switch key {
		case "esc", "f1", "q":
			m.showHelp = false
			return nil
		}
		return m.help.Update(msg)
	}
	if key == "f1" {
		m.showHelp = true
		m.help = help.New(m.width-4, m.height-2)
		return nil
	}

	if m.showActivity {
		switch key {
		case "esc", "f2", "q":
			m.showActivity = false
			return nil
		}
		return m.activity.Update(msg)
	}
	if key == "f2" {
		m.showActivity = true
		return nil
	}

	if m.loginVisible() {
		return m.handleLoginKey(msg)
	}

	switch key {
	case "ctrl+l":
		if m.sess.Authenticated {
			return m.start("logout", func(ctx context.Context) { m.c.Logout(ctx) })
		}
		if m.busy {
			m.notice = noticeBusy
			return nil
		}
		m.c.RequestLogin()
		m.applySession(m.c.Session())
		return nil
	case "tab":
		return m.moveFocus(1)
	case "shift+tab":
		return m.moveFocus(-1)
	case "ctrl+n":
		return m.switchTab(1)
	case "ctrl+p":
		return m.switchTab(-1)
	case "ctrl+s":
		return m.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return cmd
	}

	switch m.focus {
	case focusContexts:
		return m.handlePickerKey(&m.contexts, key, m.selectContext)
	case focusCollections:
		return m.handlePickerKey(&m.collections, key, m.selectCollection)
	}

	f := m.currentField()
	if f == nil {
		if key == "enter" {
			return m.submit()
		}
		return nil
	}
	if key == "enter" && !f.multiline {
		if m.tab == tabCreate && m.focus-focusFields == createFile {
			return m.loadAndWatch(f.Value())
		}
		return m.submit()
	}
	return f.Update(msg)
}

func (m *Model) handlePickerKey(p *panel.Model, key string, choose func(string) tea.Cmd) tea.Cmd {
	switch key {
	case "up", "k":
		p.Up()
	case "down", "j":
		p.Down()
	case "enter", "space":
		if name, ok := p.Current(); ok {
			return choose(name)
		}
	}
	return nil
}

func (m *Model) handleLoginKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if m.busy {
			return nil
		}
		m.c.DismissLogin()
		m.applySession(m.c.Session())
		return nil
	case "tab", "shift+tab", "up", "down":
		return m.login.next()
	case "enter":
		if m.login.focus == 0 {
			return m.login.next()
		}
		user, pass := m.login.username.Value(), m.login.password.Value()
		return m.start("login", func(ctx context.Context) { _ = m.c.Login(ctx, user, pass) })
	}
	return m.login.update(msg)
}

func (m *Model) selectContext(name string) tea.Cmd {
	if name == m.sess.SelectedContext {
		return nil
	}
	return m.start("select context", func(ctx context.Context) { _ = m.c.SelectContext(ctx, name) })
}

func (m *Model) selectCollection(name string) tea.Cmd {
	if m.busy {
		m.notice = noticeBusy
		return nil
	}
	if err := m.c.SelectCollection(name); err != nil {
		m.notice = err.Error()
		return nil
	}
	m.applySession(m.c.Session())
	return nil
}

// start runs fn as the single in-flight operation.
func (m *Model) start(op string, fn func(ctx context.Context)) tea.Cmd {
	if m.busy {
		m.notice = noticeBusy
		return nil
	}
	m.busy = true
	m.busyOp = op
	m.notice = ""
	c, ctx := m.c, m.ctx
	m.log.Debug("operation started", "op", op)
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		fn(ctx)
		return actionDoneMsg{
			op:       op,
			sess:     c.Session(),
			result:   c.Result(),
			projects: c.Projects(),
			err:      c.Err(),
		}
	})
}

func (m *Model) finish(msg actionDoneMsg) {
	m.busy = false
	m.busyOp = ""
	m.applySession(msg.sess)
	m.result = msg.result
	m.projects = msg.projects
	if msg.err != nil {
		m.log.Debug("operation failed", "op", msg.op, "error", msg.err)
	}
	switch msg.op {
	case "login":
		if msg.sess.Authenticated {
			m.login.clear()
		}
	case "logout":
		m.login.clear()
	case "select context":
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
	}
	if m.pendingReload != "" {
		path := m.pendingReload
		m.pendingReload = ""
		m.loadMetadata(path)
	}
	m.refreshOutput()
}

func (m *Model) applyEvent(ev session.Event) {
	m.activity.Append(eventviewer.FromEvent(ev, time.Now()))
	m.applySession(ev.Session)
	switch ev.Type {
	case session.EventResult:
		m.result = ev.Result
	case session.EventProjects:
		m.projects = ev.Result
	}
	m.refreshOutput()
}

func (m *Model) applySession(s session.Session) {
	m.sess = s
	m.contexts.SetItems(s.AvailableContexts, s.SelectedContext)
	m.collections.SetItems(s.AvailableCollections, s.SelectedCollection)
}

func (m *Model) submit() tea.Cmd {
	v := m.forms[m.tab].values()
	switch m.tab {
	case tabCreate:
		title, metadata, parent := v[createTitle], v[createMetadata], v[createParent]
		return m.start("create", func(ctx context.Context) { m.c.CreateRecord(ctx, title, metadata, parent) })
	case tabRead:
		id := v[0]
		return m.start("read", func(ctx context.Context) { m.c.ReadRecord(ctx, id) })
	case tabUpdate:
		id, metadata := v[updateID], v[updateMetadata]
		return m.start("update", func(ctx context.Context) { m.c.UpdateRecord(ctx, id, metadata) })
	case tabDelete:
		id := v[0]
		return m.start("delete", func(ctx context.Context) { m.c.DeleteRecord(ctx, id) })
	case tabTransfer:
		src, dest := v[transferSource], v[transferDest]
		return m.start("transfer", func(ctx context.Context) { m.c.TransferData(ctx, src, dest) })
	case tabProjects:
		return m.start("projects", func(ctx context.Context) { m.c.ListProjects(ctx) })
	}
	return nil
}

// loadAndWatch loads path into the create form and reloads it whenever it
// changes.
func (m *Model) loadAndWatch(path string) tea.Cmd {
	if m.busy {
		m.notice = noticeBusy
		return nil
	}
	if !m.loadMetadata(path) || path == m.watching {
		return nil
	}
	if m.stopWatch != nil {
		m.stopWatch()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.stopWatch = cancel
	return func() tea.Msg {
		ch, err := workflow.WatchMetadataFile(ctx, path)
		if err != nil {
			return watchErrMsg{err: err}
		}
		return watchStartedMsg{path: path, ch: ch}
	}
}

func (m *Model) loadMetadata(path string) bool {
	if err := m.c.LoadMetadataFile(path); err != nil {
		m.notice = err.Error()
		return false
	}
	m.forms[tabCreate].fields[createMetadata].SetValue(m.c.Forms().Create.Metadata)
	m.notice = fmt.Sprintf("Loaded metadata from %s", path)
	return true
}

func (m *Model) currentField() *field {
	i := m.focus - focusFields
	fields := m.forms[m.tab].fields
	if i < 0 || i >= len(fields) {
		return nil
	}
	return fields[i]
}

func (m *Model) focusCurrent() tea.Cmd {
	m.contexts.Blur()
	m.collections.Blur()
	for _, f := range m.forms[m.tab].fields {
		f.Blur()
	}
	switch m.focus {
	case focusContexts:
		m.contexts.Focus()
	case focusCollections:
		m.collections.Focus()
	default:
		if f := m.currentField(); f != nil {
			return f.Focus()
		}
	}
	return nil
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	stops := 2 + len(m.forms[m.tab].fields)
	i := (m.focus - focusContexts + delta + stops) % stops
	m.focus = i + focusContexts
	return m.focusCurrent()
}

func (m *Model) switchTab(delta int) tea.Cmd {
	m.tab = tab((int(m.tab) + delta + int(tabCount)) % int(tabCount))
	if m.focus >= focusFields {
		m.focus = focusFields
	}
	m.layout()
	m.refreshOutput()
	return m.focusCurrent()
}

func (m *Model) close() {
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
}
