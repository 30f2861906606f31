// Package task defines the domain model shared by the store, the history
// ledger and the command surface: epics, tasks, sessions, their lifecycle
// enums and the validation rules applied at the edges.
package task

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status represents the lifecycle state of a task.
// The string values are persisted as-is in the database and in
// history.jsonl, so they must never change.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus validates a status string supplied on the command line.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("invalid status %q (valid: draft, in-progress, completed)", s)}
}

// Type categorizes a task. Persisted as plain strings.
type Type string

const (
	TypeFeature  Type = "feature"
	TypeFix      Type = "fix"
	TypeRefactor Type = "refactor"
	TypeChore    Type = "chore"
)

// ParseType validates a type string supplied on the command line.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeFeature, TypeFix, TypeRefactor, TypeChore:
		return Type(s), nil
	}
	return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("invalid type %q (valid: feature, fix, refactor, chore)", s)}
}

// Epic is a permanent grouping container for tasks. Epics are never
// deleted; Skills is an ordered set of skill names.
type Epic struct {
	ID     string   `json:"id"`
	Name   string   `json:"name" validate:"required,slug"`
	Skills []string `json:"skills,omitempty"`
}

// AddSkill appends a skill if not already present. Returns true when the
// epic changed.
func (e *Epic) AddSkill(name string) bool {
	for _, s := range e.Skills {
		if s == name {
			return false
		}
	}
	e.Skills = append(e.Skills, name)
	return true
}

// RemoveSkill removes a skill. Returns true when the epic changed.
func (e *Epic) RemoveSkill(name string) bool {
	for i, s := range e.Skills {
		if s == name {
			e.Skills = append(e.Skills[:i], e.Skills[i+1:]...)
			return true
		}
	}
	return false
}

// Task is a unit of work with a draft → in-progress → completed lifecycle.
// FileName stays empty until the task first enters plan mode.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=50"`
	Description string    `json:"description,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	Type        Type      `json:"type"`
	Status      Status    `json:"status"`
	GitHash     string    `json:"git_hash,omitempty"`
	EpicID      string    `json:"epic_id,omitempty"`
	EpicName    string    `json:"epic,omitempty"` // joined from epics, not stored on the row
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// Session tracks where the agent currently is for the single in-progress
// task. One session per task; deleted when the task completes.
type Session struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"task_id"`
	CurrentMode    string    `json:"current_mode"`
	LoadedMemories []string  `json:"loaded_memories,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AddMemory appends a memory name if not already loaded. Returns true when
// the session changed.
func (s *Session) AddMemory(name string) bool {
	for _, m := range s.LoadedMemories {
		if m == name {
			return false
		}
	}
	s.LoadedMemories = append(s.LoadedMemories, name)
	return true
}

// TaskPatch describes a partial task update. Nil fields are left unchanged
// (omission is not null).
type TaskPatch struct {
	Name        *string
	Description *string
	Summary     *string
	FileName    *string
	Type        *Type
	Status      *Status
	GitHash     *string
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
}

// ValidateEpic checks epic invariants (slug-formatted name).
func ValidateEpic(e *Epic) error {
	if err := validate.Struct(e); err != nil {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("epic name %q must be a slug (lowercase letters, digits and dashes)", e.Name)}
	}
	return nil
}

// ValidateTask checks task invariants (name length).
func ValidateTask(t *Task) error {
	if err := validate.Struct(t); err != nil {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("task name must be 1-50 characters (got %d)", len(t.Name))}
	}
	return nil
}
