package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lpakula/agent-moderails/internal/task"
)

// CreateEpic validates the slug name, checks uniqueness, and inserts a new
// epic with a fresh id.
func (s *Store) CreateEpic(name string) (*task.Epic, error) {
	epic := &task.Epic{Name: name}
	if err := task.ValidateEpic(epic); err != nil {
		return nil, err
	}

	existing, err := s.findEpic(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &task.ConflictError{
			ExistingID:   existing.ID,
			ExistingName: existing.Name,
			Reason:       fmt.Sprintf("epic '%s' already exists", existing.Name),
		}
	}

	epic.ID, err = s.freshID("epics")
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(
		"INSERT INTO epics (id, name, skills) VALUES (?, ?, ?)",
		epic.ID, epic.Name, marshalList(epic.Skills),
	); err != nil {
		return nil, fmt.Errorf("insert epic: %w", err)
	}
	return epic, nil
}

// GetEpic resolves an epic by id or name.
func (s *Store) GetEpic(ref string) (*task.Epic, error) {
	epic, err := s.findEpic(ref)
	if err != nil {
		return nil, err
	}
	if epic == nil {
		return nil, &task.NotFoundError{Kind: "epic", Ref: ref}
	}
	return epic, nil
}

// findEpic matches by id first, then by name. Returns nil, nil when absent.
func (s *Store) findEpic(ref string) (*task.Epic, error) {
	row := s.db.QueryRow(
		"SELECT id, name, skills FROM epics WHERE id = ? OR name = ? LIMIT 1", ref, ref,
	)
	epic, err := scanEpic(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query epic: %w", err)
	}
	return epic, nil
}

// ListEpics returns all epics ordered by name.
func (s *Store) ListEpics() ([]*task.Epic, error) {
	rows, err := s.db.Query("SELECT id, name, skills FROM epics ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list epics: %w", err)
	}
	defer rows.Close()

	var epics []*task.Epic
	for rows.Next() {
		epic, err := scanEpic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan epic: %w", err)
		}
		epics = append(epics, epic)
	}
	return epics, rows.Err()
}

// RenameEpic changes an epic's name. The new name must be a valid slug
// and not collide with another epic.
func (s *Store) RenameEpic(ref, name string) (*task.Epic, error) {
	epic, err := s.GetEpic(ref)
	if err != nil {
		return nil, err
	}
	other, err := s.findEpic(name)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != epic.ID {
		return nil, &task.ConflictError{
			ExistingID:   other.ID,
			ExistingName: other.Name,
			Reason:       fmt.Sprintf("epic '%s' already exists", other.Name),
		}
	}
	epic.Name = name
	if err := task.ValidateEpic(epic); err != nil {
		return nil, err
	}
	if _, err := s.db.Exec("UPDATE epics SET name = ? WHERE id = ?", epic.Name, epic.ID); err != nil {
		return nil, fmt.Errorf("rename epic: %w", err)
	}
	return epic, nil
}

// UpdateEpicSkills persists the skill list of an existing epic.
func (s *Store) UpdateEpicSkills(ref string, skills []string) (*task.Epic, error) {
	epic, err := s.GetEpic(ref)
	if err != nil {
		return nil, err
	}
	epic.Skills = skills
	if _, err := s.db.Exec(
		"UPDATE epics SET skills = ? WHERE id = ?", marshalList(epic.Skills), epic.ID,
	); err != nil {
		return nil, fmt.Errorf("update epic skills: %w", err)
	}
	return epic, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpic(row rowScanner) (*task.Epic, error) {
	var (
		epic      task.Epic
		skillsRaw string
	)
	if err := row.Scan(&epic.ID, &epic.Name, &skillsRaw); err != nil {
		return nil, err
	}
	epic.Skills = unmarshalList(skillsRaw)
	return &epic, nil
}

// marshalList encodes a string list as JSON, never failing for plain strings.
func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
