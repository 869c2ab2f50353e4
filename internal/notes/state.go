package notes

// State is everything the view-model knows. Collection, filter and search are
// root state; Visible and Selected are derived from them by reduce and are
// never set any other way, except that a user selection may override Selected.
type State struct {
	Authenticated bool
	AuthLoading   bool
	User          User

	Notes  []Note
	seq    uint64
	Filter Filter
	Search string

	Visible  []Note
	Selected string

	// intended is the id a successful create asked to select. It survives
	// applied collections that do not contain it yet, which happens when a
	// reload issued before the create lands first.
	intended string

	pending int
	Theme   string
	Err     error
}

type event interface{ isEvent() }

type (
	authStarted      struct{}
	authSucceeded    struct{ user User }
	authUnavailable  struct{ err error }
	loggedOut        struct {
		cause error
		seq   uint64
	}
	opStarted        struct{}
	opFinished       struct{}
	collectionLoaded struct{ coll Collection }
	filterSet        struct{ filter Filter }
	searchSet        struct{ search string }
	noteSelected     struct{ id string }
	noteCreated      struct{ id string }
	noteDeleted      struct{ id string }
	failed           struct{ err error }
	errCleared       struct{}
	themeSet         struct{ theme string }
)

func (authStarted) isEvent()      {}
func (authSucceeded) isEvent()    {}
func (authUnavailable) isEvent()  {}
func (loggedOut) isEvent()        {}
func (opStarted) isEvent()        {}
func (opFinished) isEvent()       {}
func (collectionLoaded) isEvent() {}
func (filterSet) isEvent()        {}
func (searchSet) isEvent()        {}
func (noteSelected) isEvent()     {}
func (noteCreated) isEvent()      {}
func (noteDeleted) isEvent()      {}
func (failed) isEvent()           {}
func (errCleared) isEvent()       {}
func (themeSet) isEvent()         {}

// reduce is the only place State changes. It is pure: the returned State
// shares no mutable slices with the input beyond read-only notes.
func reduce(s State, ev event) State {
	switch ev := ev.(type) {
	case authStarted:
		s.AuthLoading = true

	case authSucceeded:
		s.AuthLoading = false
		s.Authenticated = true
		s.User = ev.user
		s.Err = nil

	case authUnavailable:
		s.AuthLoading = false
		s.Authenticated = false
		s.Err = ev.err

	case loggedOut:
		// Collections issued before the logout stay stale for the next user.
		theme, seq := s.Theme, max(s.seq, ev.seq)
		s = State{Theme: theme, seq: seq, Err: ev.cause}

	case opStarted:
		s.pending++

	case opFinished:
		if s.pending > 0 {
			s.pending--
		}

	case collectionLoaded:
		if !s.Authenticated || ev.coll.Seq <= s.seq || ev.coll.UserID != s.User.ID {
			return s
		}
		s.Notes = ev.coll.Notes
		s.seq = ev.coll.Seq
		previous := s.Selected
		if s.intended != "" && indexOf(s.Notes, s.intended) >= 0 {
			previous = s.intended
			s.intended = ""
		}
		s = recompute(s, previous)

	case filterSet:
		s.Filter = ev.filter
		s = recompute(s, s.Selected)

	case searchSet:
		s.Search = ev.search
		s = recompute(s, s.Selected)

	case noteSelected:
		if indexOf(s.Visible, ev.id) >= 0 {
			s.Selected = ev.id
			s.intended = ""
		}

	case noteCreated:
		s.intended = ev.id

	case noteDeleted:
		if s.Selected == ev.id {
			s.Selected = ""
		}
		if s.intended == ev.id {
			s.intended = ""
		}

	case failed:
		s.Err = ev.err

	case errCleared:
		s.Err = nil

	case themeSet:
		s.Theme = ev.theme
	}
	return s
}

// recompute derives the visible subset and resolves the selection against it.
func recompute(s State, previous string) State {
	s.Visible = Evaluate(s.Notes, s.Filter, s.Search)
	s.Selected = Resolve(s.Visible, previous)
	return s
}
