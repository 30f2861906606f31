package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateBaseDir(t *testing.T) {
	valid := []string{"agent", "my-agent", "workspace2"}
	for _, name := range valid {
		if err := ValidateBaseDir(name); err != nil {
			t.Errorf("ValidateBaseDir(%q) = %v, want nil", name, err)
		}
	}
	invalid := []string{"", ".agent", "..", "a/b", `a\b`}
	for _, name := range invalid {
		if err := ValidateBaseDir(name); err == nil {
			t.Errorf("ValidateBaseDir(%q) = nil, want error", name)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	root := t.TempDir()
	cfg := Default(true)
	path, err := Save(cfg, root)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := filepath.Join(root, "agent", "moderails", "config.json")
	if path != want {
		t.Fatalf("Save path = %q, want %q", path, want)
	}

	got := Load(path)
	if got.BaseDir != "agent" || got.Version != SchemaVersion || !got.Private {
		t.Fatalf("Load = %+v", got)
	}
}

func TestLoadMissingOrCorrupt(t *testing.T) {
	got := Load(filepath.Join(t.TempDir(), "nope.json"))
	if got.BaseDir != DefaultBaseDir || got.Private {
		t.Fatalf("Load missing = %+v", got)
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	got = Load(path)
	if got.BaseDir != DefaultBaseDir {
		t.Fatalf("Load corrupt = %+v", got)
	}
}

func TestSaveRejectsBadBaseDir(t *testing.T) {
	if _, err := Save(Config{BaseDir: ".hidden", Version: SchemaVersion}, t.TempDir()); err == nil {
		t.Fatal("Save with dot-prefixed base dir should fail")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	cfgPath, err := Save(Default(false), root)
	if err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(root, "src", "pkg", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if resolve(t, found) != resolve(t, cfgPath) {
		t.Fatalf("Find = %q, want %q", found, cfgPath)
	}
}

func TestFindNonDefaultBaseDir(t *testing.T) {
	root := t.TempDir()
	cfgPath, err := Save(Config{BaseDir: "tooling", Version: SchemaVersion}, root)
	if err != nil {
		t.Fatal(err)
	}
	found, err := Find(root)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if resolve(t, found) != resolve(t, cfgPath) {
		t.Fatalf("Find = %q, want %q", found, cfgPath)
	}
}

func TestFindNotFound(t *testing.T) {
	if _, err := Find(t.TempDir()); err != ErrNotFound {
		t.Fatalf("Find = %v, want ErrNotFound", err)
	}
}

func TestPaths(t *testing.T) {
	ws := filepath.Join("proj", "agent", "moderails")
	if got := DBPath(ws); got != filepath.Join(ws, "moderails.db") {
		t.Errorf("DBPath = %q", got)
	}
	if got := HistoryPath(ws); got != filepath.Join(ws, "history.jsonl") {
		t.Errorf("HistoryPath = %q", got)
	}
	if got := MandatoryDir(ws); got != filepath.Join(ws, "context", "mandatory") {
		t.Errorf("MandatoryDir = %q", got)
	}
	if got := ProjectRoot(ws); got != "proj" {
		t.Errorf("ProjectRoot = %q", got)
	}
}

// resolve follows symlinks so macOS /var vs /private/var temp dirs compare equal.
func resolve(t *testing.T, p string) string {
	t.Helper()
	r, err := filepath.EvalSymlinks(p)
	if err != nil {
		return p
	}
	return r
}
