package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	api "devnotes/internal/http"
	"devnotes/internal/service"
	"devnotes/internal/storage"
)

// setup points the client at a fresh server and a private session file.
func setup(t *testing.T) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "devnotes.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	srv := httptest.NewServer(api.NewRouter(&api.Deps{
		AuthService: service.NewAuthService(storage.NewUserRepo(db), "cli-secret", time.Hour, service.WithBcryptCost(bcrypt.MinCost)),
		NoteService: service.NewNoteService(storage.NewNoteRepo(db)),
		DB:          db,
	}))
	t.Cleanup(srv.Close)

	t.Chdir(t.TempDir())
	t.Setenv("DEVNOTES_API_URL", srv.URL+"/api")
	t.Setenv("DEVNOTES_SESSION_PATH", filepath.Join(t.TempDir(), "session.yaml"))
	t.Setenv("DEVNOTES_HTTP_TIMEOUT", "5s")
	t.Setenv("DEVNOTES_LOG_FILE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
}

// run executes one command line with stdin and returns its output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCmdRoot()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := run(t, stdin, args...)
	if err != nil {
		t.Fatalf("devnotes %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestCLI_SessionLifecycle(t *testing.T) {
	setup(t)

	if out := mustRun(t, "", "whoami"); !strings.Contains(out, "Not logged in") {
		t.Errorf("whoami before login = %q", out)
	}
	if _, err := run(t, "", "list"); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("list before login error = %v", err)
	}

	out := mustRun(t, "secret1\n", "register", "--username", "alice", "--email", "alice@example.com")
	if !strings.Contains(out, "Registered alice <alice@example.com>") {
		t.Errorf("register output = %q", out)
	}

	if _, err := run(t, "", "login", "--email", "alice@example.com", "--password", "wrong-one"); err == nil ||
		!strings.Contains(err.Error(), "invalid email or password") {
		t.Errorf("login with wrong password error = %v", err)
	}

	out = mustRun(t, "alice@example.com\nsecret1\n", "login")
	if !strings.Contains(out, "Logged in as alice (0 notes)") {
		t.Errorf("login output = %q", out)
	}
	if out := mustRun(t, "", "whoami"); !strings.Contains(out, "alice <alice@example.com>") {
		t.Errorf("whoami after login = %q", out)
	}

	mustRun(t, "", "logout")
	if out := mustRun(t, "", "whoami"); !strings.Contains(out, "Not logged in") {
		t.Errorf("whoami after logout = %q", out)
	}
}

func TestCLI_AddAndList(t *testing.T) {
	setup(t)
	mustRun(t, "", "register", "--username", "bob", "--email", "bob@example.com", "--password", "secret1")
	mustRun(t, "", "login", "--email", "bob@example.com", "--password", "secret1")

	mustRun(t, "", "add", "Deploy steps", "--folder", "Work", "--tags", "ops, release")
	mustRun(t, "", "add", "Reset branch", "--code", "git reset --hard", "--language", "bash", "--tags", "git")

	out := mustRun(t, "", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("list output = %q", out)
	}
	if !strings.HasPrefix(lines[0], "All Notes: 2 of 2 notes") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "*") || !strings.Contains(lines[1], "Reset branch") {
		t.Errorf("newest note should come first and be selected: %q", lines[1])
	}
	if !strings.Contains(lines[2], "[Work]") || !strings.Contains(lines[2], "#ops #release") {
		t.Errorf("second line = %q", lines[2])
	}

	out = mustRun(t, "", "list", "--folder", "Work")
	if !strings.Contains(out, "Folder: Work: 1 of 2 notes") || !strings.Contains(out, "* ") {
		t.Errorf("folder list = %q", out)
	}

	out = mustRun(t, "", "list", "--uncategorized", "--search", "RESET")
	if !strings.Contains(out, "1 of 2 notes") || !strings.Contains(out, "Reset branch") {
		t.Errorf("uncategorized search = %q", out)
	}

	out = mustRun(t, "", "list", "--tag", "missing")
	if !strings.Contains(out, "0 of 2 notes") || strings.Contains(out, "*") {
		t.Errorf("empty list should have no selection: %q", out)
	}

	if _, err := run(t, "", "add", "   "); err == nil {
		t.Error("add with a blank title should fail")
	}
	if _, err := run(t, "", "list", "--folder", "Work", "--tag", "ops"); err == nil {
		t.Error("--folder and --tag should be mutually exclusive")
	}
}

func TestCLI_Import(t *testing.T) {
	setup(t)
	mustRun(t, "", "register", "--username", "carol", "--email", "carol@example.com", "--password", "secret1")
	mustRun(t, "", "login", "--email", "carol@example.com", "--password", "secret1")

	vault := t.TempDir()
	if err := os.MkdirAll(filepath.Join(vault, "work"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"work/deploy.md": "# Deploy\n\nShip it #ops\n\n```bash\nmake release\n```\n",
		"idea.md":        "Loose thought",
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(vault, filepath.FromSlash(rel)), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := mustRun(t, "", "import", vault, "--dry-run")
	if !strings.Contains(out, `work/deploy.md -> "Deploy" [work]`) || !strings.Contains(out, "Would import 2 notes") {
		t.Errorf("dry run output = %q", out)
	}
	if out := mustRun(t, "", "list"); !strings.Contains(out, "0 of 0 notes") {
		t.Errorf("dry run created notes: %q", out)
	}

	out = mustRun(t, "", "import", vault, "--tags", "imported")
	if !strings.Contains(out, "Imported 2 notes") || !strings.Contains(out, "(0 failed)") {
		t.Errorf("import output = %q", out)
	}

	out = mustRun(t, "", "list", "--folder", "work")
	if !strings.Contains(out, "1 of 2 notes") || !strings.Contains(out, "Deploy  [work]  #ops #imported") {
		t.Errorf("folder list after import = %q", out)
	}
}

func TestCLI_ProfileAndPassword(t *testing.T) {
	setup(t)

	if _, err := run(t, "", "profile", "--username", "dave"); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("profile before login error = %v", err)
	}

	mustRun(t, "", "register", "--username", "dave", "--email", "dave@example.com", "--password", "secret1")
	mustRun(t, "", "login", "--email", "dave@example.com", "--password", "secret1")

	if out := mustRun(t, "", "profile", "--username", "  David  "); !strings.Contains(out, "Username changed to David") {
		t.Errorf("profile output = %q", out)
	}
	if out := mustRun(t, "", "whoami"); !strings.Contains(out, "David <dave@example.com>") {
		t.Errorf("whoami after profile = %q", out)
	}
	if _, err := run(t, "", "profile", "--username", "   "); err == nil || !strings.Contains(err.Error(), "username") {
		t.Errorf("blank username error = %v", err)
	}

	if _, err := run(t, "wrong-one\nsecret2\n", "passwd"); err == nil || err.Error() != "current password is incorrect" {
		t.Errorf("passwd with wrong current password error = %v", err)
	}
	if _, err := run(t, "", "passwd", "--current", "secret1", "--new", "abc"); err == nil || !strings.Contains(err.Error(), "password") {
		t.Errorf("passwd with short password error = %v", err)
	}

	if out := mustRun(t, "secret1\nsecret2\n", "passwd"); !strings.Contains(out, "Password changed") {
		t.Errorf("passwd output = %q", out)
	}
	// The token issued before the change stays valid.
	if out := mustRun(t, "", "whoami"); !strings.Contains(out, "David") {
		t.Errorf("whoami after passwd = %q", out)
	}

	mustRun(t, "", "logout")
	if _, err := run(t, "", "login", "--email", "dave@example.com", "--password", "secret1"); err == nil {
		t.Error("login with the old password should fail")
	}
	if out := mustRun(t, "", "login", "--email", "dave@example.com", "--password", "secret2"); !strings.Contains(out, "Logged in as David") {
		t.Errorf("login with the new password = %q", out)
	}
}
