// Package config handles the config.json marker file and the walk-up
// discovery that locates a moderails workspace from any subdirectory.
//
// On disk the workspace lives at <base_dir>/moderails/ relative to the
// project root, where base_dir defaults to "agent". The marker file,
// database, history ledger and context directories all live inside that
// directory; its exact layout is a compatibility contract with other
// implementations.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultBaseDir is the default name for the directory holding the
	// moderails subdirectory.
	DefaultBaseDir = "agent"

	// Subdir is the fixed name of the workspace directory under base_dir.
	Subdir = "moderails"

	// FileName is the marker/config file name.
	FileName = "config.json"

	// SchemaVersion is written to new config files.
	SchemaVersion = "1.0"
)

// ErrNotFound is returned when no workspace can be discovered from the
// starting directory.
var ErrNotFound = errors.New("no moderails workspace found")

// Config is the persisted configuration. The JSON shape is shared with
// other moderails implementations; do not rename fields.
type Config struct {
	BaseDir string `json:"base_dir"`
	Version string `json:"version"`
	Private bool   `json:"private,omitempty"`
}

// Default returns the configuration written by init.
func Default(private bool) Config {
	return Config{BaseDir: DefaultBaseDir, Version: SchemaVersion, Private: private}
}

// ValidateBaseDir rejects base directory names that would hide the
// workspace from editors or escape the project root.
func ValidateBaseDir(baseDir string) error {
	if baseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}
	if strings.HasPrefix(baseDir, ".") {
		return fmt.Errorf("base directory cannot start with a dot - dot-prefixed directories are protected by editors/agents")
	}
	if strings.ContainsAny(baseDir, `/\`) {
		return fmt.Errorf("base directory cannot contain path separators")
	}
	return nil
}

// Find walks up from start looking for <any-child>/moderails/config.json
// and returns the path to the config file.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				candidate := filepath.Join(dir, e.Name(), Subdir, FileName)
				if _, err := os.Stat(candidate); err == nil {
					return candidate, nil
				}
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads a config file. Unreadable or malformed files fall back to
// defaults so a corrupt marker never bricks the CLI.
func Load(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(false)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(false)
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = DefaultBaseDir
	}
	return cfg
}

// Save writes the config into <root>/<base_dir>/moderails/config.json,
// creating directories as needed, and returns the config file path.
func Save(cfg Config, root string) (string, error) {
	if err := ValidateBaseDir(cfg.BaseDir); err != nil {
		return "", err
	}
	dir := filepath.Join(root, cfg.BaseDir, Subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// Dir returns the workspace directory for a discovered config file.
func Dir(configPath string) string {
	return filepath.Dir(configPath)
}

// DBPath returns the database path inside a workspace directory.
func DBPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, "moderails.db")
}

// HistoryPath returns the history ledger path inside a workspace directory.
func HistoryPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, "history.jsonl")
}

// ContextDir returns the context directory inside a workspace directory.
func ContextDir(workspaceDir string) string {
	return filepath.Join(workspaceDir, "context")
}

// MandatoryDir holds context files loaded into every session.
func MandatoryDir(workspaceDir string) string {
	return filepath.Join(ContextDir(workspaceDir), "mandatory")
}

// MemoriesDir holds named memory files loaded on demand.
func MemoriesDir(workspaceDir string) string {
	return filepath.Join(ContextDir(workspaceDir), "memories")
}

// SkillsDir holds skill definitions attachable to epics.
func SkillsDir(workspaceDir string) string {
	return filepath.Join(workspaceDir, "skills")
}

// TasksDir holds per-task plan files.
func TasksDir(workspaceDir string) string {
	return filepath.Join(workspaceDir, "tasks")
}

// ProjectRoot returns the project root for a workspace directory
// (the parent of <base_dir>/moderails).
func ProjectRoot(workspaceDir string) string {
	return filepath.Dir(filepath.Dir(workspaceDir))
}
