package importer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"devnotes/internal/notes"
)

// fakeCreator records drafts and fails the titles listed in fail.
type fakeCreator struct {
	mu     sync.Mutex
	drafts []notes.Draft
	fail   map[string]error
}

func (f *fakeCreator) CreateNote(_ context.Context, userID string, draft notes.Draft) (notes.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[draft.Title]; err != nil {
		return notes.Note{}, err
	}
	f.drafts = append(f.drafts, draft)
	return notes.Note{ID: fmt.Sprintf("n%d", len(f.drafts)), Title: draft.Title, UserID: userID}, nil
}

func (f *fakeCreator) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, d := range f.drafts {
		out = append(out, d.Title)
	}
	slices.Sort(out)
	return out
}

func TestImport(t *testing.T) {
	root := writeTree(t, map[string]string{
		"inbox.md":       "Loose thought #idea",
		"work/deploy.md": "# Deploy\n\n```bash\nmake release\n```\n",
		"work/broken.md": "# Broken",
	})
	creator := &fakeCreator{fail: map[string]error{
		"Broken": &notes.ValidationError{Field: "title", Message: "rejected"},
	}}

	summary, err := Import(context.Background(), creator, "u1", root, Options{Tags: []string{"imported"}, Concurrency: 2})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Created != 2 || summary.Failed != 1 || len(summary.Results) != 3 {
		t.Fatalf("Import() summary = %+v", summary)
	}
	if got := creator.titles(); !slices.Equal(got, []string{"Deploy", "Inbox"}) {
		t.Errorf("created titles = %v", got)
	}

	byPath := make(map[string]Result)
	for _, r := range summary.Results {
		byPath[r.File.RelPath] = r
	}

	inbox := byPath["inbox.md"]
	if inbox.Draft.Category != "" || !slices.Equal(inbox.Draft.Tags, []string{"idea", "imported"}) {
		t.Errorf("inbox draft = %+v", inbox.Draft)
	}
	if inbox.Note.UserID != "u1" {
		t.Errorf("inbox note = %+v", inbox.Note)
	}

	deploy := byPath["work/deploy.md"]
	if deploy.Draft.Category != "work" || deploy.Draft.Code != "make release" || deploy.Draft.Color != notes.DefaultColor {
		t.Errorf("deploy draft = %+v", deploy.Draft)
	}

	if broken := byPath["work/broken.md"]; !notes.IsValidation(broken.Err) {
		t.Errorf("broken result error = %v", broken.Err)
	}
}

func TestImport_FolderOverride(t *testing.T) {
	root := writeTree(t, map[string]string{"a/one.md": "# One", "two.md": "# Two"})
	creator := &fakeCreator{}

	summary, err := Import(context.Background(), creator, "u1", root, Options{Folder: " Imported "})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	for _, r := range summary.Results {
		if r.Draft.Category != "Imported" {
			t.Errorf("%s category = %q, want Imported", r.File.RelPath, r.Draft.Category)
		}
	}
}

func TestImport_DryRun(t *testing.T) {
	root := writeTree(t, map[string]string{"one.md": "# One", "two.md": "# Two"})
	creator := &fakeCreator{}

	summary, err := Import(context.Background(), creator, "u1", root, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Created != 2 || len(creator.titles()) != 0 {
		t.Errorf("dry run summary = %+v, created %v", summary, creator.titles())
	}
}

func TestImport_AuthErrorAborts(t *testing.T) {
	root := writeTree(t, map[string]string{"one.md": "# One"})
	authErr := &notes.AuthError{Err: errors.New("401")}
	creator := &fakeCreator{fail: map[string]error{"One": authErr}}

	summary, err := Import(context.Background(), creator, "u1", root, Options{})
	if !notes.IsAuthError(err) {
		t.Fatalf("Import() error = %v, want auth error", err)
	}
	if summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
}
