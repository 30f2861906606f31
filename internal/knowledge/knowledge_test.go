package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lpakula/agent-moderails/internal/history"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMandatoryContext(t *testing.T) {
	dir := t.TempDir()
	svc := New(dir)

	if got := svc.MandatoryContext(); got != "" {
		t.Errorf("empty workspace context = %q", got)
	}

	writeFile(t, filepath.Join(dir, "context", "mandatory", "b-style.md"), "use tabs")
	writeFile(t, filepath.Join(dir, "context", "mandatory", "a-arch.md"), "hexagonal")
	writeFile(t, filepath.Join(dir, "context", "mandatory", "empty.md"), "   \n")

	got := svc.MandatoryContext()
	if !strings.Contains(got, "<!-- Context: a-arch.md (mandatory) -->") {
		t.Errorf("missing provenance header: %q", got)
	}
	if strings.Contains(got, "empty.md") {
		t.Error("blank files must be skipped")
	}
	if strings.Index(got, "hexagonal") > strings.Index(got, "use tabs") {
		t.Error("mandatory files not in name order")
	}
	if !strings.Contains(got, "\n\n---\n\n") {
		t.Error("sections not separated")
	}
}

func TestMemories(t *testing.T) {
	dir := t.TempDir()
	svc := New(dir)

	if names := svc.ListMemories(); names != nil {
		t.Errorf("ListMemories on empty workspace = %v", names)
	}
	if _, ok := svc.LoadMemory("ghost"); ok {
		t.Error("LoadMemory(ghost) reported success")
	}

	if err := svc.SaveMemory("auth-notes", "jwt is signed with HS256"); err != nil {
		t.Fatalf("SaveMemory: %v", err)
	}
	if err := svc.SaveMemory("db-notes", "sqlite wal mode"); err != nil {
		t.Fatal(err)
	}

	names := svc.ListMemories()
	if len(names) != 2 || names[0] != "auth-notes" || names[1] != "db-notes" {
		t.Errorf("ListMemories = %v", names)
	}
	content, ok := svc.LoadMemory("auth-notes")
	if !ok || content != "jwt is signed with HS256" {
		t.Errorf("LoadMemory = %q, %v", content, ok)
	}
}

func TestSkills(t *testing.T) {
	dir := t.TempDir()
	svc := New(dir)

	writeFile(t, filepath.Join(dir, "skills", "sql", "SKILL.md"), "how to write migrations")
	writeFile(t, filepath.Join(dir, "skills", "http", "SKILL.md"), "handler conventions")
	// Directory without SKILL.md is not a skill.
	if err := os.MkdirAll(filepath.Join(dir, "skills", "stub"), 0o755); err != nil {
		t.Fatal(err)
	}

	skills := svc.ListSkills()
	if len(skills) != 2 || skills[0] != "http" || skills[1] != "sql" {
		t.Errorf("ListSkills = %v", skills)
	}
	if !svc.HasSkill("sql") || svc.HasSkill("stub") {
		t.Error("HasSkill mismatch")
	}
}

func TestFilesTree(t *testing.T) {
	entries := []history.Entry{
		{FilesChanged: []string{"internal/config/config.go", "main.go"}},
		{FilesChanged: []string{"internal/config/config.go", "internal/store/tasks.go"}},
	}

	got := FilesTree(entries)
	want := strings.Join([]string{
		"internal/",
		"  config/",
		"    config.go (2 tasks)",
		"  store/",
		"    tasks.go",
		"main.go",
	}, "\n")
	if got != want {
		t.Errorf("FilesTree:\ngot:\n%s\nwant:\n%s", got, want)
	}

	if got := FilesTree(nil); got != "" {
		t.Errorf("FilesTree(nil) = %q", got)
	}
}
