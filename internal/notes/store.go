package notes

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_persistence_client.go -package=mocks devnotes/internal/notes PersistenceClient

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// PersistenceClient stores notes on behalf of the authenticated user.
// This interface is defined from the store's perspective (consumer-first).
type PersistenceClient interface {
	// ListNotes returns every note of userID, in no particular order.
	ListNotes(ctx context.Context, userID string) ([]Note, error)
	// CreateNote stores a new note and returns it with id and timestamps.
	CreateNote(ctx context.Context, userID string, draft Draft) (Note, error)
	// UpdateNote replaces the editable fields of note id.
	UpdateNote(ctx context.Context, id string, draft Draft) (Note, error)
	// DeleteNote removes note id.
	DeleteNote(ctx context.Context, id string) error
}

// ChangeKind identifies what a Change reports.
type ChangeKind int

const (
	// ChangeCreated follows a successful remote create, before the reload.
	ChangeCreated ChangeKind = iota
	// ChangeUpdated follows a successful remote update, before the reload.
	ChangeUpdated
	// ChangeDeleted follows a successful remote delete, before the reload.
	ChangeDeleted
	// ChangeReloaded reports a collection that replaced the in-memory one.
	ChangeReloaded
)

// Change is delivered to the store observer.
type Change struct {
	Kind       ChangeKind
	Note       Note   // created or updated note
	NoteID     string // affected id for create, update and delete
	Collection Collection
}

// Collection is an immutable snapshot of the user's notes, most recent first.
// Seq is the sequence number of the reload that produced it.
type Collection struct {
	Notes  []Note
	Seq    uint64
	UserID string
}

// Store owns the in-memory note collection and keeps it in step with the
// persistence client. Writes always go remote first and are followed by a full
// reload; nothing is patched locally.
//
// Reloads are stamped with an increasing sequence number when issued. A
// completed reload replaces the collection only if no later-issued reload has
// already been applied, so a slow response can never overwrite a newer one.
type Store struct {
	client PersistenceClient
	logger *slog.Logger

	mu       sync.Mutex
	userID   string
	current  Collection
	issued   uint64
	observer func(Change)

	locks keyedMutex
}

// NewStore creates a Store backed by client.
func NewStore(client PersistenceClient) *Store {
	return &Store{
		client: client,
		logger: slog.Default(),
	}
}

// SetObserver registers fn to receive every write and applied reload.
// fn is called synchronously, outside the store lock.
func (s *Store) SetObserver(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// SetUser scopes the store to userID.
func (s *Store) SetUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}

// Reset forgets the user and the collection. Reloads still in flight are
// discarded when they complete. The returned sequence number is the last one
// issued before the reset.
func (s *Store) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.current = Collection{Seq: s.issued}
	return s.issued
}

// Current returns the last applied collection.
func (s *Store) Current() Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reload fetches all notes of the current user and replaces the collection.
// It returns the collection in effect afterwards, which is unchanged when the
// response turned out to be stale.
func (s *Store) Reload(ctx context.Context) (Collection, error) {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	userID := s.userID
	s.mu.Unlock()

	if userID == "" {
		return Collection{}, &AuthError{Err: fmt.Errorf("no authenticated user")}
	}

	list, err := s.client.ListNotes(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to reload notes", "seq", seq, "error", err)
		return s.Current(), err
	}

	s.mu.Lock()
	if seq <= s.current.Seq || userID != s.userID {
		current := s.current
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "discarding stale reload", "seq", seq, "applied", current.Seq)
		return current, nil
	}
	s.current = Collection{Notes: SortNotes(list), Seq: seq, UserID: userID}
	current := s.current
	observer := s.observer
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "notes reloaded", "seq", seq, "count", len(current.Notes))
	if observer != nil {
		observer(Change{Kind: ChangeReloaded, Collection: current})
	}
	return current, nil
}

// Create stores a new note and reloads. The created note is returned even if
// the reload that follows fails; the error then comes from the reload.
func (s *Store) Create(ctx context.Context, draft Draft) (Note, error) {
	userID := s.user()
	if userID == "" {
		return Note{}, &AuthError{Err: fmt.Errorf("no authenticated user")}
	}

	note, err := s.client.CreateNote(ctx, userID, draft)
	if err != nil {
		return Note{}, err
	}
	s.notify(Change{Kind: ChangeCreated, Note: note, NoteID: note.ID})

	if _, err := s.Reload(ctx); err != nil {
		return note, err
	}
	return note, nil
}

// Update replaces the editable fields of note id and reloads.
// Calls for the same id are serialized.
func (s *Store) Update(ctx context.Context, id string, draft Draft) (Note, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	note, err := s.client.UpdateNote(ctx, id, draft)
	if err != nil {
		return Note{}, err
	}
	s.notify(Change{Kind: ChangeUpdated, Note: note, NoteID: id})

	if _, err := s.Reload(ctx); err != nil {
		return note, err
	}
	return note, nil
}

// Delete removes note id and reloads. The observer hears about the deletion
// before the reload starts. Calls for the same id are serialized.
func (s *Store) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.client.DeleteNote(ctx, id); err != nil {
		return err
	}
	s.notify(Change{Kind: ChangeDeleted, NoteID: id})

	_, err := s.Reload(ctx)
	return err
}

// Notes returns a copy of the current notes.
func (s *Store) Notes() []Note {
	return slices.Clone(s.Current().Notes)
}

func (s *Store) user() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	observer := s.observer
	s.mu.Unlock()
	if observer != nil {
		observer(c)
	}
}

// keyedMutex serializes work per key without holding a lock per key forever.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock blocks until key is free and returns the matching unlock.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
