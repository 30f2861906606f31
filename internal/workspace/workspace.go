// Package workspace opens the discovered moderails directory and its
// collaborators (store, ledger, git, knowledge) as one unit with a single
// Close, and creates the on-disk layout on init.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lpakula/agent-moderails/internal/config"
	"github.com/lpakula/agent-moderails/internal/git"
	"github.com/lpakula/agent-moderails/internal/history"
	"github.com/lpakula/agent-moderails/internal/knowledge"
	"github.com/lpakula/agent-moderails/internal/modes"
	"github.com/lpakula/agent-moderails/internal/store"
)

// Workspace bundles everything a command needs. Each CLI invocation opens
// a fresh one and closes it on exit.
type Workspace struct {
	Config    config.Config
	Dir       string // the moderails directory
	Root      string // the project root
	Store     *store.Store
	Ledger    *history.Ledger
	Git       *git.Client
	Knowledge *knowledge.Service
}

// Open discovers the workspace by walking up from the current directory.
// Returns config.ErrNotFound when no workspace exists.
func Open() (*Workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfgPath, err := config.Find(cwd)
	if err != nil {
		return nil, err
	}
	return openAt(cfgPath)
}

func openAt(cfgPath string) (*Workspace, error) {
	dir := config.Dir(cfgPath)
	root := config.ProjectRoot(dir)

	s, err := store.Open(config.DBPath(dir), dir)
	if err != nil {
		return nil, err
	}
	client := git.NewClient(root)
	return &Workspace{
		Config:    config.Load(cfgPath),
		Dir:       dir,
		Root:      root,
		Store:     s,
		Ledger:    history.New(s, client, config.HistoryPath(dir)),
		Git:       client,
		Knowledge: knowledge.New(dir),
	}, nil
}

// Close releases the workspace's resources.
func (w *Workspace) Close() error {
	return w.Store.Close()
}

// HasDatabase reports whether the database file exists.
func (w *Workspace) HasDatabase() bool {
	return store.Exists(config.DBPath(w.Dir))
}

// ModeDeps assembles the context-builder dependencies for this workspace.
func (w *Workspace) ModeDeps() modes.Deps {
	return modes.Deps{
		Store:       w.Store,
		Ledger:      w.Ledger,
		Knowledge:   w.Knowledge,
		Git:         w.Git,
		EpicDiff:    w.EpicSummary,
		ProjectRoot: w.Root,
		BaseDir:     filepath.Join(w.Config.BaseDir, config.Subdir),
		Private:     w.Config.Private,
	}
}

// gitignoreBody is written into the moderails directory so the database
// never gets committed; the ledger and context files are meant to be
// shared and stay tracked.
const gitignoreBody = `*.db
*.db-journal
*.db-wal
*.db-shm
`

// privatePattern gitignores the whole workspace when init runs with
// --private.
const privatePattern = "*moderails*"

// Init creates the workspace layout under root and returns the opened
// workspace. Re-running init on an existing workspace is safe.
func Init(root string, private bool) (*Workspace, error) {
	cfg := config.Default(private)
	cfgPath, err := config.Save(cfg, root)
	if err != nil {
		return nil, err
	}
	dir := config.Dir(cfgPath)

	for _, sub := range []string{
		config.MandatoryDir(dir),
		config.MemoriesDir(dir),
		config.TasksDir(dir),
		config.SkillsDir(dir),
	} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", sub, err)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignoreBody), 0o644); err != nil {
		return nil, fmt.Errorf("write gitignore: %w", err)
	}
	if private {
		if err := appendRootGitignore(root, privatePattern); err != nil {
			return nil, err
		}
	}

	w, err := openAt(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := w.Store.Migrate(); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// appendRootGitignore adds a pattern to the project root .gitignore,
// creating the file if needed and skipping when already present.
func appendRootGitignore(root, pattern string) error {
	path := filepath.Join(root, ".gitignore")
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read root gitignore: %w", err)
	}
	for _, line := range splitLines(string(existing)) {
		if line == pattern {
			return nil
		}
	}
	content := string(existing)
	if content != "" && content[len(content)-1] != '\n' {
		content += "\n"
	}
	content += pattern + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write root gitignore: %w", err)
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
