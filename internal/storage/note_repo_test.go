package storage

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

// newNoteRepo returns a repo whose clock advances one second per call, and
// the ids of two users owning notes in it.
func newNoteRepo(t *testing.T) (*NoteRepo, string, string) {
	t.Helper()
	db := openTestDB(t)
	users := NewUserRepo(db)
	alice := createUser(t, users, "alice@example.com")
	bob := createUser(t, users, "bob@example.com")

	repo := NewNoteRepo(db)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo, alice.ID, bob.ID
}

func TestNoteRepo_CreateAndGet(t *testing.T) {
	repo, alice, _ := newNoteRepo(t)
	ctx := context.Background()

	note := &NoteRecord{
		UserID:   alice,
		Title:    "Deploy",
		Code:     "kubectl apply",
		Language: "bash",
		Category: "Work",
		Tags:     []string{"ops", "k8s"},
		Color:    "Teal",
	}
	if err := repo.Create(ctx, note); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if note.ID == "" {
		t.Fatal("Create() did not assign an ID")
	}
	if !note.CreatedAt.Equal(note.UpdatedAt) {
		t.Errorf("Create() CreatedAt %v != UpdatedAt %v", note.CreatedAt, note.UpdatedAt)
	}

	got, err := repo.GetByID(ctx, alice, note.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Deploy" || got.Code != "kubectl apply" || got.Color != "Teal" {
		t.Errorf("GetByID() = %+v", got)
	}
	if !slices.Equal(got.Tags, []string{"ops", "k8s"}) {
		t.Errorf("GetByID() tags = %v, want insertion order kept", got.Tags)
	}
	if !got.CreatedAt.Equal(note.CreatedAt) {
		t.Errorf("GetByID() CreatedAt = %v, want %v", got.CreatedAt, note.CreatedAt)
	}
}

func TestNoteRepo_NilTagsStoredAsEmpty(t *testing.T) {
	repo, alice, _ := newNoteRepo(t)
	ctx := context.Background()

	note := &NoteRecord{UserID: alice, Title: "No tags", Color: "Default"}
	if err := repo.Create(ctx, note); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := repo.GetByID(ctx, alice, note.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("GetByID() tags = %#v, want empty slice", got.Tags)
	}
}

func TestNoteRepo_ListByUser(t *testing.T) {
	repo, alice, bob := newNoteRepo(t)
	ctx := context.Background()

	for _, n := range []*NoteRecord{
		{UserID: alice, Title: "first"},
		{UserID: bob, Title: "bob's"},
		{UserID: alice, Title: "second"},
		{UserID: alice, Title: "third"},
	} {
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	notes, err := repo.ListByUser(ctx, alice)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	var titles []string
	for _, n := range notes {
		titles = append(titles, n.Title)
	}
	if want := []string{"third", "second", "first"}; !slices.Equal(titles, want) {
		t.Errorf("ListByUser() = %v, want %v", titles, want)
	}

	empty, err := repo.ListByUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListByUser() unknown user = %#v, want empty slice", empty)
	}
}

func TestNoteRepo_Update(t *testing.T) {
	repo, alice, bob := newNoteRepo(t)
	ctx := context.Background()

	note := &NoteRecord{UserID: alice, Title: "Original", Tags: []string{"a"}}
	if err := repo.Create(ctx, note); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	created := note.CreatedAt

	tests := []struct {
		name    string
		update  NoteRecord
		wantErr error
	}{
		{
			name:   "owner updates",
			update: NoteRecord{ID: note.ID, UserID: alice, Title: "Updated", Category: "Work", Tags: []string{"b"}, Color: "Red"},
		},
		{
			name:    "other user cannot update",
			update:  NoteRecord{ID: note.ID, UserID: bob, Title: "Hijack"},
			wantErr: ErrNotFound,
		},
		{
			name:    "unknown id",
			update:  NoteRecord{ID: "missing", UserID: alice, Title: "x"},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Update(ctx, &tt.update)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Update() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Update() unexpected error: %v", err)
			}
		})
	}

	got, err := repo.GetByID(ctx, alice, note.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Updated" || got.Category != "Work" || got.Color != "Red" || !slices.Equal(got.Tags, []string{"b"}) {
		t.Errorf("after Update() got %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("Update() changed CreatedAt: %v -> %v", created, got.CreatedAt)
	}
	if !got.UpdatedAt.After(created) {
		t.Errorf("Update() UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, created)
	}
}

func TestNoteRepo_Delete(t *testing.T) {
	repo, alice, bob := newNoteRepo(t)
	ctx := context.Background()

	note := &NoteRecord{UserID: alice, Title: "Doomed"}
	if err := repo.Create(ctx, note); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, bob, note.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() by other user error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, alice, note.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, alice, note.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, alice, note.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestNoteRepo_RequiresExistingUser(t *testing.T) {
	repo, _, _ := newNoteRepo(t)
	err := repo.Create(context.Background(), &NoteRecord{UserID: "ghost", Title: "orphan"})
	if err == nil {
		t.Error("Create() for unknown user should fail the foreign key")
	}
}
