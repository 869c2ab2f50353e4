// Package tui renders the note collection view-model as a terminal UI.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"devnotes/internal/notes"
)

// LoginFunc exchanges credentials for a stored session token.
type LoginFunc func(ctx context.Context, email, password string) error

type mode int

const (
	modeBrowse mode = iota
	modeLogin
	modeSearch
	modeForm
	modeConfirmDelete
)

// Messages.
type (
	changedMsg  struct{}
	startedMsg  struct{ err error }
	loggedInMsg struct{ err error }
	savedMsg    struct {
		note notes.Note
		err  error
	}
	opDoneMsg struct {
		action string
		err    error
	}
)

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	vm     *notes.ViewModel
	login  LoginFunc
	keys   keyMap
	help   help.Model
	spin   spinner.Model
	styles styles

	mode          mode
	started       bool
	authenticated bool

	search    textinput.Model
	form      *noteForm
	loginForm *loginForm
	deleteID  string

	status string
	width  int
	height int
}

// New creates the root model. lastEmail prefills the login form.
func New(ctx context.Context, vm *notes.ViewModel, login LoginFunc, lastEmail string) *Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search title, content, tags, code"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	snap := vm.Snapshot()
	return &Model{
		ctx:       ctx,
		vm:        vm,
		login:     login,
		keys:      newKeyMap(),
		help:      help.New(),
		spin:      sp,
		styles:    newStyles(snap.Theme),
		search:    search,
		loginForm: newLoginForm(lastEmail),
		width:     100,
		height:    30,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.start(), m.spin.Tick)
}

// waitForChange turns the next view-model change signal into a message.
func (m *Model) waitForChange() tea.Cmd {
	changes := m.vm.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) start() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: m.vm.Start(m.ctx)}
	}
}

// run performs a blocking view-model intent off the UI goroutine.
func (m *Model) run(action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{action: action, err: fn(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.form != nil {
			m.form.setWidth(m.detailWidth() - 4)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case changedMsg:
		cmd := m.syncSession()
		return m, tea.Batch(cmd, m.waitForChange())

	case startedMsg:
		m.started = true
		if msg.err != nil && !notes.IsAuthError(msg.err) {
			m.status = fmt.Sprintf("Could not reach the server: %v (r to retry)", msg.err)
		}
		return m, m.syncSession()

	case loggedInMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Login failed: %v", msg.err)
			return m, nil
		}
		m.status = ""
		return m, m.syncSession()

	case savedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Save failed: %v", msg.err)
			var ve *notes.ValidationError
			if m.form != nil && errors.As(msg.err, &ve) {
				return m, m.form.focusByName(ve.Field)
			}
			if notes.IsNotFound(msg.err) {
				m.closeForm()
			}
			return m, nil
		}
		m.status = fmt.Sprintf("Saved %q", msg.note.Title)
		m.closeForm()
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = msg.action + " done"
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

// syncSession switches between the login form and the browser as the
// view-model's authentication changes.
func (m *Model) syncSession() tea.Cmd {
	snap := m.vm.Snapshot()
	m.styles = newStyles(snap.Theme)

	switch {
	case snap.Authenticated && !m.authenticated:
		m.authenticated = true
		m.mode = modeBrowse
		m.loginForm.password.SetValue("")
	case !snap.Authenticated && !snap.AuthLoading && m.started && m.mode != modeLogin:
		m.authenticated = false
		m.mode = modeLogin
		m.form = nil
		if snap.Err != nil && notes.IsAuthError(snap.Err) {
			m.status = "Session expired, please log in again"
		}
		return m.loginForm.focusCurrent()
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	switch m.mode {
	case modeLogin:
		return m.handleLoginKey(msg)
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeForm:
		return m.handleFormKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	snap := m.vm.Snapshot()

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.next):
		m.vm.SelectNext()
	case key.Matches(msg, m.keys.prev):
		m.vm.SelectPrevious()
	case key.Matches(msg, m.keys.nextFilter):
		m.vm.SetFilter(cycleFilter(snap, 1))
	case key.Matches(msg, m.keys.prevFilter):
		m.vm.SetFilter(cycleFilter(snap, -1))
	case key.Matches(msg, m.keys.search):
		m.mode = modeSearch
		m.search.SetValue(snap.Search)
		return m.search.Focus()
	case key.Matches(msg, m.keys.create):
		return m.openForm(newNoteForm())
	case key.Matches(msg, m.keys.edit):
		if snap.Selected == nil {
			m.status = "Nothing selected"
			return nil
		}
		return m.openForm(editNoteForm(*snap.Selected))
	case key.Matches(msg, m.keys.remove):
		if snap.Selected == nil {
			m.status = "Nothing selected"
			return nil
		}
		m.deleteID = snap.Selected.ID
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete %q? (y/n)", snap.Selected.Title)
	case key.Matches(msg, m.keys.copyCode):
		m.copySelected(snap.Selected)
	case key.Matches(msg, m.keys.reload):
		return m.run("Reload", m.vm.Reload)
	case key.Matches(msg, m.keys.theme):
		if _, err := m.vm.ToggleTheme(); err != nil {
			m.status = fmt.Sprintf("Could not save theme: %v", err)
		}
		m.styles = newStyles(m.vm.Snapshot().Theme)
	case key.Matches(msg, m.keys.dismiss):
		m.vm.DismissError()
		m.status = ""
	case key.Matches(msg, m.keys.logout):
		return m.run("Logout", m.vm.Logout)
	case msg.String() == "?":
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.vm.SetSearch("")
		m.search.Blur()
		m.mode = modeBrowse
		return nil
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = modeBrowse
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.vm.SetSearch(m.search.Value())
	return cmd
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.status = "Canceled"
		return nil
	case "tab":
		return m.form.focusField(m.form.focus + 1)
	case "shift+tab":
		return m.form.focusField(m.form.focus - 1)
	case "ctrl+s":
		return m.save(m.form)
	}
	return m.form.update(msg)
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	id := m.deleteID
	m.deleteID = ""
	m.mode = modeBrowse

	if msg.String() != "y" {
		m.status = "Delete canceled"
		return nil
	}
	m.status = "Deleting..."
	return m.run("Delete", func(ctx context.Context) error {
		return m.vm.DeleteNote(ctx, id)
	})
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return tea.Quit
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m.loginForm.toggle()
	case tea.KeyEnter:
		if m.loginForm.focus == 0 {
			return m.loginForm.toggle()
		}
		email, password := m.loginForm.email.Value(), m.loginForm.password.Value()
		if email == "" || password == "" {
			m.status = "Email and password are required"
			return nil
		}
		m.status = "Logging in..."
		return func() tea.Msg {
			if err := m.login(m.ctx, email, password); err != nil {
				return loggedInMsg{err: err}
			}
			return loggedInMsg{err: m.vm.LoginSucceeded(m.ctx)}
		}
	}
	return m.loginForm.update(msg)
}

func (m *Model) openForm(f *noteForm) tea.Cmd {
	m.form = f
	m.form.setWidth(m.detailWidth() - 4)
	m.mode = modeForm
	m.status = ""
	return m.form.focusField(fieldTitle)
}

func (m *Model) closeForm() {
	m.form = nil
	if m.mode == modeForm {
		m.mode = modeBrowse
	}
}

func (m *Model) save(f *noteForm) tea.Cmd {
	draft := f.draft()
	id := f.editID
	m.status = "Saving..."
	return func() tea.Msg {
		if id == "" {
			note, err := m.vm.CreateNote(m.ctx, draft)
			return savedMsg{note: note, err: err}
		}
		note, err := m.vm.EditNote(m.ctx, id, draft)
		return savedMsg{note: note, err: err}
	}
}

// copySelected copies the code of n, or its content when it has none.
func (m *Model) copySelected(n *notes.Note) {
	if n == nil {
		m.status = "Nothing selected"
		return
	}
	text, what := n.Code, "code"
	if text == "" {
		text, what = n.Content, "content"
	}
	if text == "" {
		m.status = "Nothing to copy"
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.status = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.status = fmt.Sprintf("Copied %s of %q", what, n.Title)
}

// filterChoices lists every filter the sidebar offers, in display order.
func filterChoices(snap notes.Snapshot) []notes.Filter {
	choices := []notes.Filter{notes.FilterAll(), notes.FilterUncategorized()}
	for _, folder := range snap.Folders {
		choices = append(choices, notes.FilterFolder(folder))
	}
	for _, tag := range snap.Tags {
		choices = append(choices, notes.FilterTag(tag))
	}
	return choices
}

// cycleFilter returns the filter delta steps away from the active one.
// An active filter no longer offered restarts the cycle at AllNotes.
func cycleFilter(snap notes.Snapshot, delta int) notes.Filter {
	choices := filterChoices(snap)
	for i, f := range choices {
		if f == snap.Filter {
			return choices[(i+delta+len(choices))%len(choices)]
		}
	}
	return notes.FilterAll()
}

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, vm *notes.ViewModel, login LoginFunc, lastEmail string) error {
	p := tea.NewProgram(New(ctx, vm, login, lastEmail), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
