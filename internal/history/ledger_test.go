package history

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lpakula/agent-moderails/internal/git"
	"github.com/lpakula/agent-moderails/internal/store"
	"github.com/lpakula/agent-moderails/internal/task"
)

// fakeCommander returns canned output per command line.
type fakeCommander struct {
	responses map[string]string
}

func (f *fakeCommander) Run(name string, args ...string) (string, error) {
	return f.RunInDir("", name, args...)
}

func (f *fakeCommander) RunInDir(dir, name string, args ...string) (string, error) {
	key := name + " " + strings.Join(args, " ")
	if out, ok := f.responses[key]; ok {
		return out, nil
	}
	return "", errors.New("unexpected command: " + key)
}

func newTestLedger(t *testing.T, responses map[string]string) (*Ledger, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "moderails.db"), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	client := git.NewClientWithCommander(dir, &fakeCommander{responses: responses})
	path := filepath.Join(dir, "history.jsonl")
	return New(s, client, path), s, path
}

func completeTask(t *testing.T, s *store.Store, name, gitHash string) *task.Task {
	t.Helper()
	created, err := s.CreateTask(name, store.CreateTaskOptions{})
	if err != nil {
		t.Fatal(err)
	}
	done, err := s.CompleteTask(created.ID, gitHash)
	if err != nil {
		t.Fatal(err)
	}
	return done
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatal(err)
	}
	return len(strings.Split(strings.TrimRight(string(data), "\n"), "\n"))
}

func TestExportTaskIdempotent(t *testing.T) {
	ledger, s, path := newTestLedger(t, nil)
	done := completeTask(t, s, "ship feature", "")

	if err := ledger.ExportTask(done.ID); err != nil {
		t.Fatalf("ExportTask: %v", err)
	}
	if err := ledger.ExportTask(done.ID); err != nil {
		t.Fatalf("second ExportTask: %v", err)
	}
	if n := countLines(t, path); n != 1 {
		t.Errorf("ledger has %d lines, want 1", n)
	}

	entries := ledger.Entries()
	if len(entries) != 1 || entries[0].Name != "ship feature" || entries[0].ID != done.ID {
		t.Errorf("entries = %+v", entries)
	}
	if entries[0].CompletedAt == "" {
		t.Error("completed_at missing from exported entry")
	}
}

func TestExportTaskRequiresCompletion(t *testing.T) {
	ledger, s, path := newTestLedger(t, nil)
	created, err := s.CreateTask("wip", store.CreateTaskOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := ledger.ExportTask(created.ID); !task.IsValidation(err) {
		t.Errorf("export of in-progress task = %v, want ValidationError", err)
	}
	if n := countLines(t, path); n != 0 {
		t.Errorf("ledger has %d lines, want 0", n)
	}
}

func TestExportTaskRenamedFiles(t *testing.T) {
	responses := map[string]string{
		"git show --pretty=format: --name-status -M -C h1": "R100\told.go\tnew.go\nM\tmain.go",
	}
	ledger, s, _ := newTestLedger(t, responses)
	done := completeTask(t, s, "rename module", "h1")

	if err := ledger.ExportTask(done.ID); err != nil {
		t.Fatalf("ExportTask: %v", err)
	}
	entries := ledger.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %+v", entries)
	}
	files := entries[0].FilesChanged
	if len(files) != 2 || files[0] != "new.go" || files[1] != "main.go" {
		t.Errorf("files_changed = %v, want renamed path", files)
	}
}

func TestSyncFromFile(t *testing.T) {
	ledger, s, path := newTestLedger(t, nil)

	lines := []string{
		`{"id": "aaa111", "name": "from other machine", "type": "fix", "summary": "fixed", "files_changed": [], "completed_at": "2026-01-10T12:00:00Z"}`,
		`not json at all`,
		`{"id": "bbb222", "name": "second import", "type": "chore", "summary": "", "files_changed": ["a.go"], "completed_at": "2026-02-01T08:30:00Z"}`,
		`{"name": "legacy entry without id", "summary": "old format"}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	inserted, err := ledger.SyncFromFile()
	if err != nil {
		t.Fatalf("SyncFromFile: %v", err)
	}
	if inserted != 3 {
		t.Fatalf("inserted = %d, want 3 (malformed line skipped)", inserted)
	}

	got, err := s.GetTask("aaa111")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusCompleted || got.Type != task.TypeFix || got.EpicID != "" {
		t.Errorf("imported task = %+v", got)
	}
	if got.CompletedAt.Format(time.RFC3339) != "2026-01-10T12:00:00Z" {
		t.Errorf("completed_at = %v", got.CompletedAt)
	}
	legacy, err := s.FindTaskByName("legacy entry without id")
	if err != nil || legacy == nil {
		t.Fatalf("legacy entry not imported: %v", err)
	}

	// Unchanged file: the mtime gate skips the scan entirely.
	inserted, err = ledger.SyncFromFile()
	if err != nil || inserted != 0 {
		t.Fatalf("second sync = %d, %v", inserted, err)
	}

	// Touched mtime, same content: re-scan happens, but all ids exist.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	inserted, err = ledger.SyncFromFile()
	if err != nil || inserted != 0 {
		t.Fatalf("sync after touch = %d, %v", inserted, err)
	}
}

func TestSyncFromFileMissing(t *testing.T) {
	ledger, _, _ := newTestLedger(t, nil)
	inserted, err := ledger.SyncFromFile()
	if err != nil || inserted != 0 {
		t.Errorf("sync without file = %d, %v", inserted, err)
	}
}

func TestSearchByQuery(t *testing.T) {
	ledger, s, path := newTestLedger(t, nil)
	completeTask(t, s, "Add authentication", "")
	completeTask(t, s, "Fix login bug", "")

	results, err := ledger.SearchByQuery("auth|login")
	if err != nil {
		t.Fatalf("SearchByQuery: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want both tasks", results)
	}

	results, err = ledger.SearchByQuery("payments")
	if err != nil || len(results) != 0 {
		t.Errorf("SearchByQuery(payments) = %+v, %v", results, err)
	}

	// Ledger-only entries surface too, deduplicated by name.
	line := `{"id": "zzz999", "name": "Add authentication", "type": "feature", "summary": "exported elsewhere", "files_changed": [], "completed_at": "2026-01-01T00:00:00Z"}` + "\n" +
		`{"id": "yyy888", "name": "OAuth flow", "type": "feature", "summary": "", "files_changed": [], "completed_at": "2026-01-02T00:00:00Z"}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}
	results, err = ledger.SearchByQuery("auth")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("results = %+v, want store pair plus ledger-only OAuth entry", results)
	}
}

func TestSearchByFile(t *testing.T) {
	ledger, s, path := newTestLedger(t, nil)
	created, err := s.CreateTask("touch config", store.CreateTaskOptions{})
	if err != nil {
		t.Fatal(err)
	}
	summary := "rewrote internal/config/config.go"
	if _, err := s.UpdateTask(created.ID, task.TaskPatch{Summary: &summary}); err != nil {
		t.Fatal(err)
	}

	line := `{"id": "rrr777", "name": "remote work", "type": "fix", "summary": "", "files_changed": ["internal/config/config.go"], "completed_at": "2026-03-01T00:00:00Z"}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := ledger.SearchByFile("internal/config/config.go")
	if err != nil {
		t.Fatalf("SearchByFile: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
}
