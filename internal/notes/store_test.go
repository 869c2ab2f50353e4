package notes_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"devnotes/internal/notes"
	"devnotes/internal/notes/mocks"

	"go.uber.org/mock/gomock"
)

// recorder collects store notifications.
type recorder struct {
	mu      sync.Mutex
	changes []notes.Change
}

func (r *recorder) observe(c notes.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) kinds() []notes.ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []notes.ChangeKind{}
	for _, c := range r.changes {
		out = append(out, c.Kind)
	}
	return out
}

func newStore(t *testing.T) (*notes.Store, *mocks.MockPersistenceClient, *recorder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockPersistenceClient(ctrl)
	store := notes.NewStore(client)
	rec := &recorder{}
	store.SetObserver(rec.observe)
	return store, client, rec
}

func TestStore_ReloadWithoutUser(t *testing.T) {
	store, _, rec := newStore(t)

	_, err := store.Reload(context.Background())
	if !notes.IsAuthError(err) {
		t.Fatalf("Reload() error = %v, want AuthError", err)
	}
	if len(rec.kinds()) != 0 {
		t.Errorf("observer notified without a user: %v", rec.kinds())
	}
}

func TestStore_ReloadSortsAndNotifies(t *testing.T) {
	store, client, rec := newStore(t)
	store.SetUser("u1")
	client.EXPECT().ListNotes(gomock.Any(), "u1").Return(scenario(), nil)

	coll, err := store.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() unexpected error: %v", err)
	}
	if coll.Seq != 1 || coll.UserID != "u1" {
		t.Errorf("Seq = %d UserID = %q, want 1 and u1", coll.Seq, coll.UserID)
	}
	var got []string
	for _, n := range store.Notes() {
		got = append(got, n.ID)
	}
	if !slices.Equal(got, []string{"2", "1"}) {
		t.Errorf("Notes() = %v, want [2 1]", got)
	}
	if kinds := rec.kinds(); !slices.Equal(kinds, []notes.ChangeKind{notes.ChangeReloaded}) {
		t.Errorf("changes = %v", kinds)
	}
}

func TestStore_ReloadErrorKeepsCollection(t *testing.T) {
	store, client, _ := newStore(t)
	store.SetUser("u1")
	client.EXPECT().ListNotes(gomock.Any(), "u1").Return(scenario(), nil)
	if _, err := store.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() unexpected error: %v", err)
	}

	transportErr := &notes.TransportError{Op: "list notes", Err: errors.New("timeout")}
	client.EXPECT().ListNotes(gomock.Any(), "u1").Return(nil, transportErr)
	coll, err := store.Reload(context.Background())
	if !errors.Is(err, transportErr) {
		t.Fatalf("Reload() error = %v, want transport error", err)
	}
	if len(coll.Notes) != 2 {
		t.Errorf("collection dropped on error: %v", coll.Notes)
	}
}

// An older reload finishing after a newer one must not replace its result.
func TestStore_StaleReloadDiscarded(t *testing.T) {
	store, client, rec := newStore(t)
	store.SetUser("u1")

	release := make(chan struct{})
	entered := make(chan struct{})
	old := scenario()[:1]
	fresh := scenario()

	gomock.InOrder(
		client.EXPECT().ListNotes(gomock.Any(), "u1").
			DoAndReturn(func(context.Context, string) ([]notes.Note, error) {
				close(entered)
				<-release
				return old, nil
			}),
		client.EXPECT().ListNotes(gomock.Any(), "u1").Return(fresh, nil),
	)

	done := make(chan notes.Collection)
	go func() {
		coll, err := store.Reload(context.Background())
		if err != nil {
			t.Errorf("slow Reload() unexpected error: %v", err)
		}
		done <- coll
	}()

	<-entered
	if _, err := store.Reload(context.Background()); err != nil {
		t.Fatalf("fast Reload() unexpected error: %v", err)
	}
	close(release)
	slow := <-done

	if slow.Seq != 2 || len(slow.Notes) != 2 {
		t.Errorf("slow Reload() returned seq %d with %d notes, want the newer collection", slow.Seq, len(slow.Notes))
	}
	if cur := store.Current(); cur.Seq != 2 || len(cur.Notes) != 2 {
		t.Errorf("Current() = seq %d with %d notes, want seq 2 with 2", cur.Seq, len(cur.Notes))
	}
	if kinds := rec.kinds(); len(kinds) != 1 {
		t.Errorf("observer notified %d times, want once", len(kinds))
	}
}

func TestStore_ResetDiscardsInFlightReload(t *testing.T) {
	store, client, rec := newStore(t)
	store.SetUser("u1")

	release := make(chan struct{})
	entered := make(chan struct{})
	client.EXPECT().ListNotes(gomock.Any(), "u1").
		DoAndReturn(func(context.Context, string) ([]notes.Note, error) {
			close(entered)
			<-release
			return scenario(), nil
		})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.Reload(context.Background())
	}()

	<-entered
	if seq := store.Reset(); seq != 1 {
		t.Errorf("Reset() = %d, want the in-flight reload's seq 1", seq)
	}
	close(release)
	<-done

	if n := len(store.Current().Notes); n != 0 {
		t.Errorf("Current() has %d notes after reset", n)
	}
	if kinds := rec.kinds(); len(kinds) != 0 {
		t.Errorf("observer notified after reset: %v", kinds)
	}
}

func TestStore_WritesNotifyBeforeReload(t *testing.T) {
	created := notes.Note{ID: "3", Title: "C", CreatedAt: base.Add(time.Hour)}

	tests := []struct {
		name  string
		setup func(c *mocks.MockPersistenceClient)
		run   func(s *notes.Store) error
		want  []notes.ChangeKind
	}{
		{
			name: "create",
			setup: func(c *mocks.MockPersistenceClient) {
				c.EXPECT().CreateNote(gomock.Any(), "u1", gomock.Any()).Return(created, nil)
			},
			run: func(s *notes.Store) error {
				_, err := s.Create(context.Background(), notes.Draft{Title: "C"})
				return err
			},
			want: []notes.ChangeKind{notes.ChangeCreated, notes.ChangeReloaded},
		},
		{
			name: "update",
			setup: func(c *mocks.MockPersistenceClient) {
				c.EXPECT().UpdateNote(gomock.Any(), "1", gomock.Any()).Return(scenario()[0], nil)
			},
			run: func(s *notes.Store) error {
				_, err := s.Update(context.Background(), "1", notes.Draft{Title: "A"})
				return err
			},
			want: []notes.ChangeKind{notes.ChangeUpdated, notes.ChangeReloaded},
		},
		{
			name: "delete",
			setup: func(c *mocks.MockPersistenceClient) {
				c.EXPECT().DeleteNote(gomock.Any(), "2").Return(nil)
			},
			run: func(s *notes.Store) error {
				return s.Delete(context.Background(), "2")
			},
			want: []notes.ChangeKind{notes.ChangeDeleted, notes.ChangeReloaded},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, client, rec := newStore(t)
			store.SetUser("u1")
			tt.setup(client)
			client.EXPECT().ListNotes(gomock.Any(), "u1").Return(scenario(), nil)

			if err := tt.run(store); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := rec.kinds(); !slices.Equal(got, tt.want) {
				t.Errorf("changes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_WriteFailureSkipsReload(t *testing.T) {
	store, client, rec := newStore(t)
	store.SetUser("u1")
	client.EXPECT().DeleteNote(gomock.Any(), "9").Return(&notes.NotFoundError{ID: "9"})

	err := store.Delete(context.Background(), "9")
	if !notes.IsNotFound(err) {
		t.Fatalf("Delete() error = %v, want NotFoundError", err)
	}
	if kinds := rec.kinds(); len(kinds) != 0 {
		t.Errorf("observer notified on failed write: %v", kinds)
	}
}

func TestStore_CreateReturnsNoteWhenReloadFails(t *testing.T) {
	store, client, _ := newStore(t)
	store.SetUser("u1")
	created := notes.Note{ID: "3", Title: "C"}
	client.EXPECT().CreateNote(gomock.Any(), "u1", gomock.Any()).Return(created, nil)
	client.EXPECT().ListNotes(gomock.Any(), "u1").Return(nil, &notes.TransportError{Op: "list notes", Err: errors.New("reset")})

	note, err := store.Create(context.Background(), notes.Draft{Title: "C"})
	if note.ID != "3" {
		t.Errorf("Create() note = %+v, want id 3", note)
	}
	if !notes.IsTransport(err) {
		t.Errorf("Create() error = %v, want TransportError", err)
	}
}

func TestStore_CreateWithoutUser(t *testing.T) {
	store, _, _ := newStore(t)
	if _, err := store.Create(context.Background(), notes.Draft{Title: "C"}); !notes.IsAuthError(err) {
		t.Errorf("Create() error = %v, want AuthError", err)
	}
}

func TestStore_UpdatesSerializedPerID(t *testing.T) {
	store, client, _ := newStore(t)
	store.SetUser("u1")

	var inFlight, maxInFlight atomic.Int32
	client.EXPECT().UpdateNote(gomock.Any(), "1", gomock.Any()).
		DoAndReturn(func(context.Context, string, notes.Draft) (notes.Note, error) {
			n := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return scenario()[0], nil
		}).Times(4)
	client.EXPECT().ListNotes(gomock.Any(), "u1").Return(scenario(), nil).Times(4)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Update(context.Background(), "1", notes.Draft{Title: "A"}); err != nil {
				t.Errorf("Update() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("concurrent updates of one note = %d, want 1", got)
	}
}
