package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lpakula/agent-moderails/internal/task"
)

// ActiveSession returns the session of the current in-progress task, or
// nil when no task is in-progress. "Active" is defined through the task,
// not through recency.
func (s *Store) ActiveSession() (*task.Session, error) {
	t, err := s.InProgressTask()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	return s.sessionForTask(t.ID)
}

// EnsureSession creates a session for the task if none exists yet.
func (s *Store) EnsureSession(taskID string) (*task.Session, error) {
	existing, err := s.sessionForTask(taskID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	sess := &task.Session{
		ID:          task.NewSessionID(),
		TaskID:      taskID,
		CurrentMode: "start",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.db.Exec(
		`INSERT INTO sessions (id, task_id, current_mode, loaded_memories, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.TaskID, sess.CurrentMode, marshalList(sess.LoadedMemories),
		formatTime(sess.CreatedAt), formatTime(sess.UpdatedAt),
	); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// SetSessionMode updates current_mode on the active session. Returns nil
// without error when no task is in-progress; the session is optional
// decoration on the task lifecycle.
func (s *Store) SetSessionMode(mode string) (*task.Session, error) {
	sess, err := s.ActiveSession()
	if err != nil || sess == nil {
		return nil, err
	}
	sess.CurrentMode = mode
	sess.UpdatedAt = time.Now().UTC()
	if err := s.saveSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// AddSessionMemory records a loaded memory on the active session. Returns
// false when no session is active or the memory was already recorded.
func (s *Store) AddSessionMemory(name string) (bool, error) {
	sess, err := s.ActiveSession()
	if err != nil || sess == nil {
		return false, err
	}
	if !sess.AddMemory(name) {
		return false, nil
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := s.saveSession(sess); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteActiveSession removes the active session. Returns false when none
// exists.
func (s *Store) DeleteActiveSession() (bool, error) {
	sess, err := s.ActiveSession()
	if err != nil || sess == nil {
		return false, err
	}
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", sess.ID); err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return true, nil
}

// DeleteSessionForTask removes the session of a specific task, if any.
func (s *Store) DeleteSessionForTask(taskID string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE task_id = ?", taskID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) sessionForTask(taskID string) (*task.Session, error) {
	row := s.db.QueryRow(
		`SELECT id, task_id, current_mode, loaded_memories, created_at, updated_at
		 FROM sessions WHERE task_id = ?`, taskID,
	)
	var (
		sess        task.Session
		memoriesRaw string
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&sess.ID, &sess.TaskID, &sess.CurrentMode, &memoriesRaw, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	sess.LoadedMemories = unmarshalList(memoriesRaw)
	sess.CreatedAt = parseTime(createdAt)
	sess.UpdatedAt = parseTime(updatedAt)
	return &sess, nil
}

func (s *Store) saveSession(sess *task.Session) error {
	if _, err := s.db.Exec(
		"UPDATE sessions SET current_mode = ?, loaded_memories = ?, updated_at = ? WHERE id = ?",
		sess.CurrentMode, marshalList(sess.LoadedMemories), formatTime(sess.UpdatedAt), sess.ID,
	); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}
