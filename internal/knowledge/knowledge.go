// Package knowledge serves the file-based context surrounding the task
// ledger: mandatory context always shown to the agent, named memories
// loaded on demand, skill definitions attachable to epics, and the
// aggregated tree of files touched by past work.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lpakula/agent-moderails/internal/config"
	"github.com/lpakula/agent-moderails/internal/history"
)

// Service reads and writes context files inside one workspace directory.
type Service struct {
	dir string
}

// New creates a Service rooted at the workspace directory.
func New(workspaceDir string) *Service {
	return &Service{dir: workspaceDir}
}

// MandatoryContext concatenates every markdown file under
// context/mandatory/, in name order, each prefixed with a provenance
// comment. Returns "" when the directory is empty or absent.
func (s *Service) MandatoryContext() string {
	dir := config.MandatoryDir(s.dir)
	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return ""
	}
	sort.Strings(files)

	var parts []string
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil || strings.TrimSpace(string(data)) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("<!-- Context: %s (mandatory) -->\n%s", filepath.Base(f), string(data)))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// ListMemories returns the names of available memory files, without the
// .md extension, sorted.
func (s *Service) ListMemories() []string {
	files, err := filepath.Glob(filepath.Join(config.MemoriesDir(s.dir), "*.md"))
	if err != nil {
		return nil
	}
	var names []string
	for _, f := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(f), ".md"))
	}
	sort.Strings(names)
	return names
}

// LoadMemory reads one named memory. Returns "" and false when absent.
func (s *Service) LoadMemory(name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(config.MemoriesDir(s.dir), name+".md"))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// SaveMemory writes a named memory file, creating the memories directory
// if needed. An existing memory with the same name is overwritten.
func (s *Service) SaveMemory(name, content string) error {
	dir := config.MemoriesDir(s.dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create memories directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write memory: %w", err)
	}
	return nil
}

// ListSkills returns the skill names available under skills/, sorted.
// A skill is a subdirectory containing a SKILL.md file.
func (s *Service) ListSkills() []string {
	entries, err := os.ReadDir(config.SkillsDir(s.dir))
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(config.SkillsDir(s.dir), e.Name(), "SKILL.md")); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// HasSkill reports whether a named skill definition exists.
func (s *Service) HasSkill(name string) bool {
	_, err := os.Stat(filepath.Join(config.SkillsDir(s.dir), name, "SKILL.md"))
	return err == nil
}

// FilesTree renders the files touched across ledger entries as an
// indented directory tree, annotated with how many tasks touched each
// file. Returns "" when no entry carries file information.
func FilesTree(entries []history.Entry) string {
	counts := map[string]int{}
	for _, entry := range entries {
		for _, f := range entry.FilesChanged {
			counts[f]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	paths := make([]string, 0, len(counts))
	for p := range counts {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	var printed []string
	for _, p := range paths {
		segments := strings.Split(p, "/")
		dirs := segments[:len(segments)-1]
		// Print directory headers not already open from the previous path.
		common := 0
		for common < len(dirs) && common < len(printed) && printed[common] == dirs[common] {
			common++
		}
		for i := common; i < len(dirs); i++ {
			b.WriteString(strings.Repeat("  ", i))
			b.WriteString(dirs[i])
			b.WriteString("/\n")
		}
		printed = dirs

		b.WriteString(strings.Repeat("  ", len(dirs)))
		b.WriteString(segments[len(segments)-1])
		if n := counts[p]; n > 1 {
			fmt.Fprintf(&b, " (%d tasks)", n)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
