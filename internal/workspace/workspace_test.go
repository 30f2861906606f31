package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lpakula/agent-moderails/internal/config"
	"github.com/lpakula/agent-moderails/internal/git"
	"github.com/lpakula/agent-moderails/internal/store"
	"github.com/lpakula/agent-moderails/internal/task"
)

func tempRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	return root
}

func TestInitCreatesLayout(t *testing.T) {
	root := tempRoot(t)

	w, err := Init(root, false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer w.Close()

	dir := filepath.Join(root, "agent", "moderails")
	if w.Dir != dir {
		t.Errorf("Dir = %q, want %q", w.Dir, dir)
	}
	if w.Root != root {
		t.Errorf("Root = %q, want %q", w.Root, root)
	}
	for _, p := range []string{
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, ".gitignore"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing file %s: %v", p, err)
		}
	}
	for _, d := range []string{
		config.MandatoryDir(dir),
		config.MemoriesDir(dir),
		config.TasksDir(dir),
		config.SkillsDir(dir),
	} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", d, err)
		}
	}

	// The database is created and migrated to the latest version.
	version, err := w.Store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != store.LatestSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, store.LatestSchemaVersion)
	}
	if !w.HasDatabase() {
		t.Error("HasDatabase = false after init")
	}
}

func TestInitRerunIsSafe(t *testing.T) {
	root := tempRoot(t)

	w1, err := Init(root, false)
	if err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if _, err := w1.Store.CreateEpic("auth"); err != nil {
		t.Fatalf("CreateEpic: %v", err)
	}
	w1.Close()

	w2, err := Init(root, false)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	defer w2.Close()

	// Existing data survives re-init.
	if _, err := w2.Store.GetEpic("auth"); err != nil {
		t.Errorf("epic lost after re-init: %v", err)
	}
}

func TestInitPrivateGitignore(t *testing.T) {
	root := tempRoot(t)
	rootIgnore := filepath.Join(root, ".gitignore")
	if err := os.WriteFile(rootIgnore, []byte("node_modules/"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Init(root, true)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	w.Close()

	data, err := os.ReadFile(rootIgnore)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "node_modules/") {
		t.Error("existing gitignore content lost")
	}
	if !strings.Contains(content, "*moderails*") {
		t.Errorf("private pattern not appended:\n%s", content)
	}

	// Private is recorded in the config.
	if !w.Config.Private {
		t.Error("Config.Private = false")
	}

	// Re-running init does not duplicate the pattern.
	w2, err := Init(root, true)
	if err != nil {
		t.Fatalf("re-Init: %v", err)
	}
	w2.Close()
	data, _ = os.ReadFile(rootIgnore)
	if n := strings.Count(string(data), "*moderails*"); n != 1 {
		t.Errorf("pattern appears %d times, want 1", n)
	}
}

func TestOpenWalksUpFromSubdirectory(t *testing.T) {
	root := tempRoot(t)
	w, err := Init(root, false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	w.Close()

	nested := filepath.Join(root, "src", "api", "handlers")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}

	opened, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer opened.Close()
	if opened.Root != root {
		t.Errorf("Root = %q, want %q", opened.Root, root)
	}
}

func TestOpenWithoutWorkspace(t *testing.T) {
	root := tempRoot(t)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(); err != config.ErrNotFound {
		t.Errorf("Open error = %v, want config.ErrNotFound", err)
	}
}

func TestEpicSummaryNoCompletedTasks(t *testing.T) {
	root := tempRoot(t)
	w, err := Init(root, false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer w.Close()

	if _, err := w.Store.CreateEpic("auth"); err != nil {
		t.Fatal(err)
	}
	summary, err := w.EpicSummary("auth", false)
	if err != nil {
		t.Fatalf("EpicSummary: %v", err)
	}
	want := "# Epic: auth\n\nNo completed tasks yet."
	if summary != want {
		t.Errorf("summary = %q, want %q", summary, want)
	}
}

func TestEpicSummaryCompletedTasks(t *testing.T) {
	root := tempRoot(t)
	w, err := Init(root, false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer w.Close()
	// Outside a git repository the changes section is omitted.
	w.Git = git.NewClientWithCommander(root, noGit{})

	if _, err := w.Store.CreateEpic("auth"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"add login", "add logout"} {
		created, err := w.Store.CreateTask(name, store.CreateTaskOptions{EpicName: "auth"})
		if err != nil {
			t.Fatalf("CreateTask(%s): %v", name, err)
		}
		summary := "implemented " + name
		if _, err := w.Store.UpdateTask(created.ID, task.TaskPatch{Summary: &summary}); err != nil {
			t.Fatal(err)
		}
		if _, err := w.Store.CompleteTask(created.ID, ""); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := w.EpicSummary("auth", false)
	if err != nil {
		t.Fatalf("EpicSummary: %v", err)
	}
	if !strings.HasPrefix(summary, "# Epic: auth\n") {
		t.Errorf("missing header:\n%s", summary)
	}
	first := strings.Index(summary, "- **add login**: implemented add login")
	second := strings.Index(summary, "- **add logout**: implemented add logout")
	if first < 0 || second < 0 || first > second {
		t.Errorf("task bullets missing or out of order:\n%s", summary)
	}
	if strings.Contains(summary, "## Changes") {
		t.Errorf("changes section rendered outside a repository:\n%s", summary)
	}
}

func TestEpicSummaryNotFound(t *testing.T) {
	root := tempRoot(t)
	w, err := Init(root, false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer w.Close()

	if _, err := w.EpicSummary("missing", false); !task.IsNotFound(err) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}

// noGit fails every command so the client reports a non-repository.
type noGit struct{}

func (noGit) Run(name string, args ...string) (string, error) {
	return "", os.ErrNotExist
}

func (noGit) RunInDir(dir, name string, args ...string) (string, error) {
	return "", os.ErrNotExist
}
