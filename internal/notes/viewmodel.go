package notes

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_auth_client.go -package=mocks devnotes/internal/notes AuthClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_store.go -package=mocks devnotes/internal/notes SessionStore

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Theme names accepted by ToggleTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// AuthClient resolves and ends the current session.
type AuthClient interface {
	// CurrentUser returns the user the session belongs to.
	CurrentUser(ctx context.Context) (User, error)
	// Logout ends the session on the collaborator's side.
	Logout(ctx context.Context) error
}

// SessionStore is the explicitly scoped session the view-model reads at
// startup and writes through on logout and theme changes.
type SessionStore interface {
	Token() string
	ClearToken() error
	Theme() string
	SetTheme(theme string) error
}

// Snapshot is the read-only output consumed by a UI.
type Snapshot struct {
	Authenticated bool
	AuthLoading   bool
	Loading       bool
	User          User

	Filter  Filter
	Search  string
	Visible []Note
	Total   int

	SelectedID string
	Selected   *Note

	Folders []string
	Tags    []string

	Theme string
	Err   error
}

// ViewModel composes the filter evaluator, the selection resolver and the
// collection store. Intents may be called from any goroutine; every state
// transition goes through reduce under a single lock.
type ViewModel struct {
	store   *Store
	auth    AuthClient
	session SessionStore
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	changes chan struct{}
}

// NewViewModel wires a ViewModel to store and registers it as the store
// observer.
func NewViewModel(store *Store, auth AuthClient, session SessionStore) *ViewModel {
	theme := session.Theme()
	if theme != ThemeLight {
		theme = ThemeDark
	}
	vm := &ViewModel{
		store:   store,
		auth:    auth,
		session: session,
		logger:  slog.Default(),
		state:   State{Theme: theme},
		changes: make(chan struct{}, 1),
	}
	store.SetObserver(vm.onStoreChange)
	return vm
}

// Changes signals after every state transition. Signals coalesce: a receiver
// should read Snapshot rather than count signals.
func (vm *ViewModel) Changes() <-chan struct{} {
	return vm.changes
}

// Snapshot returns the current outputs.
func (vm *ViewModel) Snapshot() Snapshot {
	vm.mu.Lock()
	s := vm.state
	vm.mu.Unlock()

	snap := Snapshot{
		Authenticated: s.Authenticated,
		AuthLoading:   s.AuthLoading,
		Loading:       s.pending > 0,
		User:          s.User,
		Filter:        s.Filter,
		Search:        s.Search,
		Visible:       slices.Clone(s.Visible),
		Total:         len(s.Notes),
		SelectedID:    s.Selected,
		Folders:       Folders(s.Notes),
		Tags:          Tags(s.Notes),
		Theme:         s.Theme,
		Err:           s.Err,
	}
	if i := indexOf(s.Visible, s.Selected); i >= 0 {
		selected := s.Visible[i]
		snap.Selected = &selected
	}
	return snap
}

// Start resolves the persisted session. Without a token the view-model stays
// logged out and no request is made.
func (vm *ViewModel) Start(ctx context.Context) error {
	if vm.session.Token() == "" {
		vm.logger.DebugContext(ctx, "no stored session")
		return nil
	}
	return vm.LoginSucceeded(ctx)
}

// LoginSucceeded resolves the current user and loads their notes.
func (vm *ViewModel) LoginSucceeded(ctx context.Context) error {
	vm.dispatch(authStarted{})

	user, err := vm.auth.CurrentUser(ctx)
	if err != nil {
		if IsAuthError(err) {
			vm.forceLogout(ctx, err)
			return err
		}
		vm.logger.WarnContext(ctx, "failed to resolve current user", "error", err)
		vm.dispatch(authUnavailable{err: err})
		return err
	}

	vm.store.SetUser(user.ID)
	vm.dispatch(authSucceeded{user: user})
	vm.logger.InfoContext(ctx, "session started", "user_id", user.ID)
	return vm.Reload(ctx)
}

// Logout ends the session and clears every piece of user state.
func (vm *ViewModel) Logout(ctx context.Context) error {
	return vm.endSession(ctx, nil)
}

// Reload refetches the collection. It is also the explicit retry after a
// transport failure.
func (vm *ViewModel) Reload(ctx context.Context) error {
	if !vm.authenticated() {
		return &AuthError{}
	}
	vm.dispatch(opStarted{})
	defer vm.dispatch(opFinished{})

	if _, err := vm.store.Reload(ctx); err != nil {
		return vm.fail(ctx, err)
	}
	vm.dispatch(errCleared{})
	return nil
}

// SetFilter changes the active filter.
func (vm *ViewModel) SetFilter(filter Filter) {
	vm.dispatch(filterSet{filter: filter})
}

// SetSearch changes the search term.
func (vm *ViewModel) SetSearch(search string) {
	vm.dispatch(searchSet{search: search})
}

// SelectNote selects id directly. Ids that are not visible are ignored and
// false is returned.
func (vm *ViewModel) SelectNote(id string) bool {
	return vm.dispatch(noteSelected{id: id}).Selected == id
}

// SelectNext moves the selection one visible note down.
func (vm *ViewModel) SelectNext() bool {
	return vm.selectRelative(1)
}

// SelectPrevious moves the selection one visible note up.
func (vm *ViewModel) SelectPrevious() bool {
	return vm.selectRelative(-1)
}

func (vm *ViewModel) selectRelative(delta int) bool {
	snap := vm.Snapshot()
	if len(snap.Visible) == 0 {
		return false
	}
	i := indexOf(snap.Visible, snap.SelectedID) + delta
	if i < 0 || i >= len(snap.Visible) {
		return false
	}
	return vm.SelectNote(snap.Visible[i].ID)
}

// CreateNote validates and stores a draft. On success the new note becomes
// the intended selection for the reload that follows; if the note is hidden
// by the active filter the usual fallback applies.
func (vm *ViewModel) CreateNote(ctx context.Context, draft Draft) (Note, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		vm.dispatch(failed{err: err})
		return Note{}, err
	}
	if !vm.authenticated() {
		return Note{}, &AuthError{}
	}
	vm.dispatch(opStarted{})
	defer vm.dispatch(opFinished{})

	note, err := vm.store.Create(ctx, draft)
	if err != nil {
		return note, vm.fail(ctx, err)
	}
	vm.logger.InfoContext(ctx, "note created", "note_id", note.ID)
	vm.dispatch(errCleared{})
	return note, nil
}

// EditNote replaces the editable fields of note id.
func (vm *ViewModel) EditNote(ctx context.Context, id string, draft Draft) (Note, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		vm.dispatch(failed{err: err})
		return Note{}, err
	}
	if !vm.authenticated() {
		return Note{}, &AuthError{}
	}
	vm.dispatch(opStarted{})
	defer vm.dispatch(opFinished{})

	note, err := vm.store.Update(ctx, id, draft)
	if err != nil {
		return note, vm.failWrite(ctx, err)
	}
	vm.logger.InfoContext(ctx, "note updated", "note_id", id)
	vm.dispatch(errCleared{})
	return note, nil
}

// DeleteNote removes note id. Confirmation is the caller's job. A selected
// note is deselected as soon as the server confirms, ahead of the reload.
func (vm *ViewModel) DeleteNote(ctx context.Context, id string) error {
	if !vm.authenticated() {
		return &AuthError{}
	}
	vm.dispatch(opStarted{})
	defer vm.dispatch(opFinished{})

	if err := vm.store.Delete(ctx, id); err != nil {
		return vm.failWrite(ctx, err)
	}
	vm.logger.InfoContext(ctx, "note deleted", "note_id", id)
	vm.dispatch(errCleared{})
	return nil
}

// ToggleTheme flips between dark and light and persists the choice.
func (vm *ViewModel) ToggleTheme() (string, error) {
	theme := ThemeLight
	if vm.Snapshot().Theme == ThemeLight {
		theme = ThemeDark
	}
	if err := vm.session.SetTheme(theme); err != nil {
		return vm.Snapshot().Theme, err
	}
	vm.dispatch(themeSet{theme: theme})
	return theme, nil
}

// DismissError clears the error banner.
func (vm *ViewModel) DismissError() {
	vm.dispatch(errCleared{})
}

// fail classifies err: an AuthError ends the session, anything else is kept
// for the UI. err is returned unchanged.
func (vm *ViewModel) fail(ctx context.Context, err error) error {
	if IsAuthError(err) {
		vm.forceLogout(ctx, err)
		return err
	}
	vm.logger.WarnContext(ctx, "note operation failed", "error", err)
	vm.dispatch(failed{err: err})
	return err
}

// failWrite is fail for update and delete. A NotFound means the note vanished
// remotely, so the collection is refreshed first; if that reload is rejected
// the session ends and the AuthError is returned instead.
func (vm *ViewModel) failWrite(ctx context.Context, err error) error {
	if IsNotFound(err) {
		if _, rerr := vm.store.Reload(ctx); IsAuthError(rerr) {
			return vm.fail(ctx, rerr)
		}
	}
	return vm.fail(ctx, err)
}

func (vm *ViewModel) forceLogout(ctx context.Context, cause error) {
	vm.logger.WarnContext(ctx, "session rejected, logging out", "error", cause)
	_ = vm.endSession(ctx, cause)
}

func (vm *ViewModel) endSession(ctx context.Context, cause error) error {
	seq := vm.store.Reset()
	vm.dispatch(loggedOut{cause: cause, seq: seq})

	var firstErr error
	if err := vm.auth.Logout(ctx); err != nil {
		vm.logger.WarnContext(ctx, "logout failed", "error", err)
		firstErr = err
	}
	if err := vm.session.ClearToken(); err != nil {
		vm.logger.WarnContext(ctx, "failed to clear session token", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (vm *ViewModel) onStoreChange(c Change) {
	switch c.Kind {
	case ChangeCreated:
		vm.dispatch(noteCreated{id: c.NoteID})
	case ChangeDeleted:
		vm.dispatch(noteDeleted{id: c.NoteID})
	case ChangeReloaded:
		vm.dispatch(collectionLoaded{coll: c.Collection})
	}
}

func (vm *ViewModel) authenticated() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state.Authenticated
}

func (vm *ViewModel) dispatch(ev event) State {
	vm.mu.Lock()
	vm.state = reduce(vm.state, ev)
	s := vm.state
	vm.mu.Unlock()

	select {
	case vm.changes <- struct{}{}:
	default:
	}
	return s
}
