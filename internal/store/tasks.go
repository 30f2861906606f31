package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lpakula/agent-moderails/internal/task"
)

const idRetryLimit = 5

// CreateTaskOptions carries the optional fields of CreateTask.
type CreateTaskOptions struct {
	EpicName    string
	Type        task.Type
	Status      task.Status
	Description string
}

// CreateTask inserts a new task. Status defaults to in-progress and type
// to feature. Creation fails with a ConflictError when it would produce a
// second in-progress task.
func (s *Store) CreateTask(name string, opts CreateTaskOptions) (*task.Task, error) {
	t := &task.Task{
		Name:        name,
		Description: opts.Description,
		Type:        opts.Type,
		Status:      opts.Status,
		CreatedAt:   time.Now().UTC(),
	}
	if t.Type == "" {
		t.Type = task.TypeFeature
	}
	if t.Status == "" {
		t.Status = task.StatusInProgress
	}
	if err := task.ValidateTask(t); err != nil {
		return nil, err
	}

	if opts.EpicName != "" {
		epic, err := s.GetEpic(opts.EpicName)
		if err != nil {
			return nil, err
		}
		t.EpicID = epic.ID
		t.EpicName = epic.Name
	}

	if t.Status == task.StatusInProgress {
		if err := s.checkInProgressConflict(""); err != nil {
			return nil, err
		}
	}

	id, err := s.freshID("tasks")
	if err != nil {
		return nil, err
	}
	t.ID = id

	if _, err := s.db.Exec(
		`INSERT INTO tasks (id, name, description, file_name, summary, type, status,
			git_hash, completed_at, epic_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.FileName, t.Summary, string(t.Type), string(t.Status),
		t.GitHash, nullTime(t.CompletedAt), nullString(t.EpicID), formatTime(t.CreatedAt),
	); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	if t.Status == task.StatusInProgress {
		if _, err := s.EnsureSession(t.ID); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// GetTask fetches a task by id.
func (s *Store) GetTask(id string) (*task.Task, error) {
	t, err := s.queryTask("t.id = ?", id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &task.NotFoundError{Kind: "task", Ref: id}
	}
	return t, nil
}

// FindTaskByName returns the first task with the given name, or nil.
// Used by ledger import to match legacy records that predate ids.
func (s *Store) FindTaskByName(name string) (*task.Task, error) {
	return s.queryTask("t.name = ?", name)
}

// HasTask reports whether a task row with the id exists.
func (s *Store) HasTask(id string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM tasks WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check task: %w", err)
	}
	return true, nil
}

// InProgressTask returns the current in-progress task, or nil.
func (s *Store) InProgressTask() (*task.Task, error) {
	return s.queryTask("t.status = ?", string(task.StatusInProgress))
}

// ListTasks returns tasks filtered by epic name and status; empty filters
// match everything. Ordering is left to the caller's sort policy.
func (s *Store) ListTasks(epicName string, status task.Status) ([]task.Task, error) {
	where := "1=1"
	var args []any
	if epicName != "" {
		epic, err := s.GetEpic(epicName)
		if err != nil {
			return nil, err
		}
		where += " AND t.epic_id = ?"
		args = append(args, epic.ID)
	}
	if status != "" {
		where += " AND t.status = ?"
		args = append(args, string(status))
	}

	rows, err := s.db.Query(taskSelect+" WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a partial update. Nil patch fields are left unchanged.
// Moving a task to in-progress re-runs the conflict check; moving it to
// completed stamps completed_at server-side.
func (s *Store) UpdateTask(id string, patch task.TaskPatch) (*task.Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status == task.StatusInProgress && t.Status != task.StatusInProgress {
		if err := s.checkInProgressConflict(t.ID); err != nil {
			return nil, err
		}
	}

	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Summary != nil {
		t.Summary = *patch.Summary
	}
	if patch.FileName != nil {
		t.FileName = *patch.FileName
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	if patch.GitHash != nil {
		t.GitHash = *patch.GitHash
	}
	if patch.Status != nil {
		t.Status = *patch.Status
		if t.Status == task.StatusCompleted {
			t.CompletedAt = time.Now().UTC()
		}
	}
	if err := task.ValidateTask(t); err != nil {
		return nil, err
	}

	if err := s.saveTask(t); err != nil {
		return nil, err
	}

	switch t.Status {
	case task.StatusInProgress:
		if _, err := s.EnsureSession(t.ID); err != nil {
			return nil, err
		}
	case task.StatusCompleted:
		if err := s.DeleteSessionForTask(t.ID); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// CompleteTask forces the task to completed, stamps completed_at, records
// the optional commit hash, and removes its session.
func (s *Store) CompleteTask(id, gitHash string) (*task.Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	t.Status = task.StatusCompleted
	t.CompletedAt = time.Now().UTC()
	if gitHash != "" {
		t.GitHash = gitHash
	}
	if err := s.saveTask(t); err != nil {
		return nil, err
	}
	if err := s.DeleteSessionForTask(t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask removes the task row, its session, and its plan file. A
// missing plan file is not an error.
func (s *Store) DeleteTask(id string) error {
	t, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if err := s.DeleteSessionForTask(t.ID); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", t.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.removePlanFile(t)
	return nil
}

// InsertCompletedTask inserts a completed task row as-is, preserving the
// given id when set. Used by ledger import; epic association is left null.
func (s *Store) InsertCompletedTask(t *task.Task) error {
	if t.ID == "" {
		id, err := s.freshID("tasks")
		if err != nil {
			return err
		}
		t.ID = id
	}
	t.Status = task.StatusCompleted
	if t.Type == "" {
		t.Type = task.TypeFeature
	}
	if t.CreatedAt.IsZero() {
		if !t.CompletedAt.IsZero() {
			t.CreatedAt = t.CompletedAt
		} else {
			t.CreatedAt = time.Now().UTC()
		}
	}
	if _, err := s.db.Exec(
		`INSERT INTO tasks (id, name, description, file_name, summary, type, status,
			git_hash, completed_at, epic_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.FileName, t.Summary, string(t.Type), string(t.Status),
		t.GitHash, nullTime(t.CompletedAt), nullString(t.EpicID), formatTime(t.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert imported task: %w", err)
	}
	return nil
}

// checkInProgressConflict fails when a task other than excludeID already
// holds in-progress status.
func (s *Store) checkInProgressConflict(excludeID string) error {
	existing, err := s.InProgressTask()
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return task.NewInProgressConflict(existing)
	}
	return nil
}

func (s *Store) saveTask(t *task.Task) error {
	if _, err := s.db.Exec(
		`UPDATE tasks SET name = ?, description = ?, file_name = ?, summary = ?,
			type = ?, status = ?, git_hash = ?, completed_at = ?, epic_id = ?
		 WHERE id = ?`,
		t.Name, t.Description, t.FileName, t.Summary, string(t.Type), string(t.Status),
		t.GitHash, nullTime(t.CompletedAt), nullString(t.EpicID), t.ID,
	); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

const taskSelect = `SELECT t.id, t.name, t.description, t.file_name, t.summary,
	t.type, t.status, t.git_hash, t.completed_at, t.epic_id, t.created_at, e.name
	FROM tasks t LEFT JOIN epics e ON e.id = t.epic_id`

func (s *Store) queryTask(where string, args ...any) (*task.Task, error) {
	row := s.db.QueryRow(taskSelect+" WHERE "+where+" LIMIT 1", args...)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return t, nil
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t           task.Task
		typ, status string
		completedAt sql.NullString
		epicID      sql.NullString
		epicName    sql.NullString
		createdAt   string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.FileName, &t.Summary,
		&typ, &status, &t.GitHash, &completedAt, &epicID, &createdAt, &epicName); err != nil {
		return nil, err
	}
	t.Type = task.Type(typ)
	t.Status = task.Status(status)
	t.EpicID = epicID.String
	t.EpicName = epicName.String
	t.CreatedAt = parseTime(createdAt)
	if completedAt.Valid && completedAt.String != "" {
		t.CompletedAt = parseTime(completedAt.String)
	}
	return &t, nil
}

// freshID generates a 6-char id, retrying on the vanishingly unlikely
// primary key collision.
func (s *Store) freshID(table string) (string, error) {
	for i := 0; i < idRetryLimit; i++ {
		id := task.NewID()
		var one int
		err := s.db.QueryRow("SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
		if err == sql.ErrNoRows {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("check id collision: %w", err)
		}
	}
	return "", fmt.Errorf("could not generate a unique id after %d attempts", idRetryLimit)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
