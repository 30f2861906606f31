package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lpakula/agent-moderails/internal/task"
)

// EnsurePlanFile lazily materializes the plan document for a task. The
// first call picks a path under tasks/ (grouped by epic when the task has
// one), writes the rendered content, and records the relative path on the
// task row. Later calls return the existing path without rewriting the
// file.
func (s *Store) EnsurePlanFile(taskID string, render func(*task.Task) string) (string, error) {
	t, err := s.GetTask(taskID)
	if err != nil {
		return "", err
	}

	if t.FileName == "" {
		base := fmt.Sprintf("%s-%s.plan.md", task.Slugify(t.Name), t.ID)
		if t.EpicName != "" {
			t.FileName = filepath.Join("tasks", t.EpicName, base)
		} else {
			t.FileName = filepath.Join("tasks", base)
		}
		if err := s.saveTask(t); err != nil {
			return "", err
		}
	}

	path := filepath.Join(s.dir, t.FileName)
	if _, err := os.Stat(path); err == nil {
		return t.FileName, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create plan directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(render(t)), 0o644); err != nil {
		return "", fmt.Errorf("write plan file: %w", err)
	}
	return t.FileName, nil
}

// PlanFileContent reads the task's plan document. Returns "" when the task
// has no plan file yet or the file is missing.
func (s *Store) PlanFileContent(taskID string) (string, error) {
	t, err := s.GetTask(taskID)
	if err != nil {
		return "", err
	}
	if t.FileName == "" {
		return "", nil
	}
	data, err := os.ReadFile(filepath.Join(s.dir, t.FileName))
	if err != nil {
		return "", nil
	}
	return string(data), nil
}

// removePlanFile deletes the plan file of a task being removed. Absence is
// tolerated.
func (s *Store) removePlanFile(t *task.Task) {
	if t.FileName == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.dir, t.FileName))
}
