// Package history maintains history.jsonl, the append-only, shareable
// mirror of completed tasks. The ledger deliberately excludes epic
// membership and commit hashes; those stay local to the database.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lpakula/agent-moderails/internal/git"
	"github.com/lpakula/agent-moderails/internal/store"
	"github.com/lpakula/agent-moderails/internal/task"
)

// Entry is one ledger line. The JSON shape is shared across machines and
// implementations; field names must not change.
type Entry struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Summary      string   `json:"summary"`
	FilesChanged []string `json:"files_changed"`
	CompletedAt  string   `json:"completed_at"`
}

// Ledger reads and appends history.jsonl and syncs it with the store.
type Ledger struct {
	store *store.Store
	git   *git.Client
	path  string

	// lastMtime gates re-scanning within one process. Separate processes
	// always scan once.
	lastMtime time.Time
	synced    bool
}

// New creates a ledger bound to a store and a git client.
func New(s *store.Store, g *git.Client, path string) *Ledger {
	return &Ledger{store: s, git: g, path: path}
}

// ExportTask appends one ledger line for a completed task. Exporting the
// same task twice is a no-op; the existing file is scanned line by line
// and malformed lines are skipped rather than treated as fatal.
func (l *Ledger) ExportTask(taskID string) error {
	t, err := l.store.GetTask(taskID)
	if err != nil {
		return err
	}
	if t.Status != task.StatusCompleted {
		return &task.ValidationError{Field: "status", Reason: fmt.Sprintf("task '%s' is not completed", t.ID)}
	}

	for _, entry := range l.readEntries() {
		if entry.ID == t.ID {
			return nil
		}
	}

	var filesChanged []string
	if t.GitHash != "" {
		filesChanged = git.ParseNameStatus(l.git.NameStatus(t.GitHash))
	}
	if filesChanged == nil {
		filesChanged = []string{}
	}

	entry := Entry{
		ID:           t.ID,
		Name:         t.Name,
		Type:         string(t.Type),
		Summary:      t.Summary,
		FilesChanged: filesChanged,
		CompletedAt:  formatCompletedAt(t.CompletedAt),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode ledger entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	if info, err := os.Stat(l.path); err == nil {
		l.lastMtime = info.ModTime()
	}
	return nil
}

// SyncFromFile imports ledger entries missing from the store. Returns the
// number of inserted tasks. A missing file means nothing to do; an
// unchanged modification time since the last successful sync skips the
// scan. Imports never touch existing rows, force status to completed, and
// leave the epic association null.
func (l *Ledger) SyncFromFile() (int, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return 0, nil
	}
	if l.synced && info.ModTime().Equal(l.lastMtime) {
		return 0, nil
	}

	inserted := 0
	for _, entry := range l.readEntries() {
		exists := false
		if entry.ID != "" {
			exists, err = l.store.HasTask(entry.ID)
			if err != nil {
				return inserted, err
			}
		} else {
			// Legacy entries predate ids; match by name.
			existing, err := l.store.FindTaskByName(entry.Name)
			if err != nil {
				return inserted, err
			}
			exists = existing != nil
		}
		if exists || entry.Name == "" {
			continue
		}

		imported := &task.Task{
			ID:      entry.ID,
			Name:    entry.Name,
			Type:    task.Type(entry.Type),
			Summary: entry.Summary,
			Status:  task.StatusCompleted,
		}
		if ts, err := time.Parse(time.RFC3339, entry.CompletedAt); err == nil {
			imported.CompletedAt = ts
		}
		if err := l.store.InsertCompletedTask(imported); err != nil {
			return inserted, err
		}
		inserted++
	}

	l.lastMtime = info.ModTime()
	l.synced = true
	return inserted, nil
}

// ForceSync drops the modification-time gate and rescans the file.
func (l *Ledger) ForceSync() (int, error) {
	l.synced = false
	return l.SyncFromFile()
}

// Result is one search hit, drawn from the store or the ledger file.
type Result struct {
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	Epic         string   `json:"epic,omitempty"`
	Summary      string   `json:"summary"`
	GitHash      string   `json:"git_hash,omitempty"`
	CompletedAt  string   `json:"completed_at,omitempty"`
	FilesChanged []string `json:"files_changed,omitempty"`
}

// SearchByFile returns tasks that touched the given path. Both the store
// and the ledger file are consulted so work exported on other machines is
// found before it gets imported; results are deduplicated by name.
func (l *Ledger) SearchByFile(path string) ([]Result, error) {
	tasks, err := l.store.ListTasks("", "")
	if err != nil {
		return nil, err
	}

	var results []Result
	seen := map[string]bool{}
	for _, t := range tasks {
		if strings.Contains(t.Summary, path) || strings.Contains(t.FileName, path) {
			results = append(results, taskResult(t))
			seen[t.Name] = true
		}
	}
	for _, entry := range l.readEntries() {
		if seen[entry.Name] {
			continue
		}
		for _, f := range entry.FilesChanged {
			if f == path {
				results = append(results, entryResult(entry))
				seen[entry.Name] = true
				break
			}
		}
	}
	return results, nil
}

// SearchByQuery matches tasks whose name or summary contains any of the
// pipe-delimited terms, case-insensitively. Store and ledger are both
// scanned; results are deduplicated by name.
func (l *Ledger) SearchByQuery(query string) ([]Result, error) {
	var terms []string
	for _, term := range strings.Split(query, "|") {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			terms = append(terms, term)
		}
	}
	matches := func(name, summary string) bool {
		name, summary = strings.ToLower(name), strings.ToLower(summary)
		for _, term := range terms {
			if strings.Contains(name, term) || strings.Contains(summary, term) {
				return true
			}
		}
		return false
	}

	tasks, err := l.store.ListTasks("", "")
	if err != nil {
		return nil, err
	}

	var results []Result
	seen := map[string]bool{}
	for _, t := range tasks {
		if matches(t.Name, t.Summary) {
			results = append(results, taskResult(t))
			seen[t.Name] = true
		}
	}
	for _, entry := range l.readEntries() {
		if !seen[entry.Name] && matches(entry.Name, entry.Summary) {
			results = append(results, entryResult(entry))
			seen[entry.Name] = true
		}
	}
	return results, nil
}

// Entries returns every parseable ledger line.
func (l *Ledger) Entries() []Entry {
	return l.readEntries()
}

// readEntries scans the ledger file, skipping blank and malformed lines.
func (l *Ledger) readEntries() []Entry {
	f, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func taskResult(t task.Task) Result {
	return Result{
		Name:        t.Name,
		Status:      string(t.Status),
		Epic:        t.EpicName,
		Summary:     t.Summary,
		GitHash:     t.GitHash,
		CompletedAt: formatCompletedAt(t.CompletedAt),
	}
}

func entryResult(e Entry) Result {
	return Result{
		Name:         e.Name,
		Status:       string(task.StatusCompleted),
		Summary:      e.Summary,
		CompletedAt:  e.CompletedAt,
		FilesChanged: e.FilesChanged,
	}
}

func formatCompletedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
